package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// SimulatorConfig holds the load shape for one run.
type SimulatorConfig struct {
	ServerURL   string
	Requests    int
	Concurrency int
	Amount      int64
	Currency    string
	Token       string
	Timeout     time.Duration
}

// Summary counts responses by status code. Status 0 means a transport error.
type Summary struct {
	ByStatus      map[int]int
	ClientSecrets int
	Duplicates    int
	Elapsed       time.Duration
}

type Simulator struct {
	config *SimulatorConfig
	client *fasthttp.Client
	log    *zap.Logger
}

func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 35 * time.Second
	}

	return &Simulator{
		config: config,
		client: &fasthttp.Client{
			Name:                "paysim",
			MaxConnsPerHost:     config.Concurrency,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		log: log,
	}
}

type intentBody struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type intentResult struct {
	status int
	secret string
}

// Run issues config.Requests createPaymentIntent calls and stops early if
// ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) (*Summary, error) {
	body, err := json.Marshal(intentBody{Amount: s.config.Amount, Currency: s.config.Currency})
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	url := s.config.ServerURL + "/api/v1/payment-intents"

	jobs := make(chan int)
	results := make(chan intentResult)
	var wg sync.WaitGroup

	for w := 0; w < s.config.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				results <- s.createIntent(url, body, n)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for n := 0; n < s.config.Requests; n++ {
			select {
			case jobs <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	start := time.Now()
	summary := &Summary{ByStatus: map[int]int{}}
	seen := map[string]struct{}{}
	for r := range results {
		summary.ByStatus[r.status]++
		if r.secret == "" {
			continue
		}
		summary.ClientSecrets++
		if _, dup := seen[r.secret]; dup {
			summary.Duplicates++
		}
		seen[r.secret] = struct{}{}
	}
	summary.Elapsed = time.Since(start)

	return summary, ctx.Err()
}

func (s *Simulator) createIntent(url string, body []byte, n int) intentResult {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Request-ID", fmt.Sprintf("paysim-%d", n))
	if s.config.Token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+s.config.Token)
	}
	req.SetBody(body)

	if err := s.client.DoTimeout(req, resp, s.config.Timeout); err != nil {
		s.log.Warn("Request failed", zap.Int("n", n), zap.Error(err))
		return intentResult{}
	}

	result := intentResult{status: resp.StatusCode()}
	if result.status != fasthttp.StatusOK {
		s.log.Debug("Non-OK response",
			zap.Int("n", n),
			zap.Int("status", result.status),
			zap.ByteString("body", resp.Body()),
		)
		return result
	}

	var out struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		s.log.Warn("Malformed response", zap.Int("n", n), zap.Error(err))
		return result
	}
	result.secret = out.ClientSecret
	return result
}

// Statuses returns the observed status codes in ascending order.
func (sum *Summary) Statuses() []int {
	codes := make([]int, 0, len(sum.ByStatus))
	for code := range sum.ByStatus {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
