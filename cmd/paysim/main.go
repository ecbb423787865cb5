package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/machinehub/payments-api/internal/adapter/queue"
	"github.com/machinehub/payments-api/internal/service/auth"
	"github.com/machinehub/payments-api/internal/service/payment"
)

var (
	serverURL   = flag.String("server", "http://localhost:8080", "Payments API base URL")
	requests    = flag.Int("n", 10, "Number of payment intents to create")
	concurrency = flag.Int("c", 2, "Concurrent requests")
	amount      = flag.Int64("amount", 1999, "Amount in minor currency units")
	currency    = flag.String("currency", "", "ISO 4217 currency code (server default when empty)")
	token       = flag.String("token", "", "Bearer token")
	jwtSecret   = flag.String("jwt-secret", "", "Mint a short-lived token with this HS256 secret instead of -token")
	subject     = flag.String("subject", "paysim", "Subject for minted tokens")
	issuer      = flag.String("issuer", "", "Issuer for minted tokens")
	audience    = flag.String("audience", "", "Audience for minted tokens")
	natsURL     = flag.String("watch-nats", "", "Count intent-created events on this NATS server")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	bearer := *token
	if bearer == "" && *jwtSecret != "" {
		bearer, err = auth.SignToken(auth.Config{
			Secret:   *jwtSecret,
			Issuer:   *issuer,
			Audience: *audience,
		}, *subject, 10*time.Minute)
		if err != nil {
			logger.Fatal("Failed to mint token", zap.Error(err))
		}
	}

	var events atomic.Int64
	if *natsURL != "" {
		mq, err := queue.NewNATSQueue(*natsURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer mq.Close()
		err = mq.Subscribe(payment.SubjectIntentCreated, func(data []byte) error {
			events.Add(1)
			logger.Debug("Intent event", zap.ByteString("event", data))
			return nil
		})
		if err != nil {
			logger.Fatal("Failed to subscribe", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simulator := NewSimulator(&SimulatorConfig{
		ServerURL:   *serverURL,
		Requests:    *requests,
		Concurrency: *concurrency,
		Amount:      *amount,
		Currency:    *currency,
		Token:       bearer,
	}, logger)

	summary, err := simulator.Run(ctx)
	if err != nil {
		logger.Warn("Run interrupted", zap.Error(err))
	}

	if *natsURL != "" {
		// give in-flight events a moment to arrive
		time.Sleep(500 * time.Millisecond)
	}

	fields := []zap.Field{
		zap.Int("requests", *requests),
		zap.Int("client_secrets", summary.ClientSecrets),
		zap.Int("duplicate_secrets", summary.Duplicates),
		zap.Duration("elapsed", summary.Elapsed),
	}
	for _, code := range summary.Statuses() {
		fields = append(fields, zap.Int(fmt.Sprintf("status_%d", code), summary.ByStatus[code]))
	}
	if *natsURL != "" {
		fields = append(fields, zap.Int64("events", events.Load()))
	}
	logger.Info("Payment simulation finished", fields...)

	if summary.ClientSecrets != *requests {
		os.Exit(1)
	}
}
