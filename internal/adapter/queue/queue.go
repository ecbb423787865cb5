package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/machinehub/payments-api/pkg/config"
)

// MessageQueue publishes payment events and lets tooling subscribe to them.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

const (
	DriverNone     = "none"
	DriverNATS     = "nats"
	DriverRabbitMQ = "rabbitmq"
)

// New connects the driver named in cfg. It returns nil, nil for the none
// driver; callers treat a nil queue as "events disabled".
func New(cfg config.EventsConfig, log *zap.Logger) (MessageQueue, error) {
	switch cfg.Driver {
	case "", DriverNone:
		log.Info("Event publishing disabled")
		return nil, nil
	case DriverNATS:
		return NewNATSQueue(cfg.NATSURL, log)
	case DriverRabbitMQ:
		return NewRabbitMQQueue(cfg.RabbitMQURL, log)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
