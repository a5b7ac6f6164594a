// Package service implements bootstrap group and message template
// operations on top of the store and the Kafka client.
package service

import (
	"context"
	"time"

	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
)

// Broker is the Kafka surface the services use. *kafka.Client implements
// it.
type Broker interface {
	Publish(ctx context.Context, rec kafka.Record) (kafka.RecordMetadata, error)
	Topics(ctx context.Context) ([]string, error)
	Consume(ctx context.Context, req kafka.ConsumeRequest) ([]kafka.Message, error)
}

// Dialer builds a Broker for one cluster configuration.
type Dialer func(cfg kafka.Config) (Broker, error)

// DialKafka is the default Dialer.
func DialKafka(cfg kafka.Config) (Broker, error) {
	return kafka.NewClient(cfg)
}

// clusterConfig overlays a group's brokers and timeout on the base client
// configuration.
func clusterConfig(base kafka.Config, group store.BootstrapGroup, timeout time.Duration) kafka.Config {
	cfg := base
	cfg.Brokers = append([]string(nil), group.BootstrapServers...)
	switch {
	case timeout > 0:
		cfg.MaxTimeout = timeout
	case group.MaxTimeout > 0:
		cfg.MaxTimeout = group.Timeout()
	}
	return cfg
}
