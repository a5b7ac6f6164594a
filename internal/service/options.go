package service

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/pkg/kafka"
	"github.com/goliatone/go-kafkaforms/pkg/msgtemplate"
)

// Option customises a service.
type Option func(*settings)

type settings struct {
	base    kafka.Config
	dial    Dialer
	logger  *zap.Logger
	engines *msgtemplate.Registry
}

func newSettings(opts []Option) settings {
	s := settings{dial: DialKafka, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithKafkaConfig sets the client settings shared by every group. Brokers
// and MaxTimeout are taken from the group.
func WithKafkaConfig(cfg kafka.Config) Option {
	return func(s *settings) {
		s.base = cfg
	}
}

// WithDialer replaces how Kafka clients are built.
func WithDialer(dial Dialer) Option {
	return func(s *settings) {
		if dial != nil {
			s.dial = dial
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngines sets the message template engines. msgtemplate.Default() is
// used otherwise.
func WithEngines(registry *msgtemplate.Registry) Option {
	return func(s *settings) {
		s.engines = registry
	}
}
