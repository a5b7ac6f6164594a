package kafka

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

const (
	DefaultVersion    = "2.1.1"
	DefaultClientID   = "kafkaforms"
	DefaultMaxTimeout = 5 * time.Second
)

// Config describes how to reach one Kafka cluster.
type Config struct {
	Brokers  []string    `json:"brokers" mapstructure:"brokers"`
	Version  string      `json:"version,omitempty" mapstructure:"version"`
	ClientID string      `json:"clientId,omitempty" mapstructure:"clientId"`
	SASL     *SASLConfig `json:"sasl,omitempty" mapstructure:"sasl"`
	TLS      *TLSConfig  `json:"tls,omitempty" mapstructure:"tls"`
	// MaxTimeout bounds producer connection retries and consume polling.
	MaxTimeout time.Duration `json:"maxTimeout,omitempty" mapstructure:"maxTimeout"`
}

// SASLConfig enables SASL authentication. Mechanism is PLAIN (default),
// SCRAM-SHA-256 or SCRAM-SHA-512.
type SASLConfig struct {
	Enable    bool   `json:"enable" mapstructure:"enable"`
	Mechanism string `json:"mechanism,omitempty" mapstructure:"mechanism"`
	Username  string `json:"username" mapstructure:"username"`
	Password  string `json:"password" mapstructure:"password"`
}

// TLSConfig enables TLS on broker connections.
type TLSConfig struct {
	Enable             bool   `json:"enable" mapstructure:"enable"`
	ServerName         string `json:"serverName,omitempty" mapstructure:"serverName"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" mapstructure:"insecureSkipVerify"`
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.MaxTimeout <= 0 {
		c.MaxTimeout = DefaultMaxTimeout
	}
	return c
}

// Sarama builds the sarama configuration for c. Producers wait for all
// in-sync replicas and report successes, as sync producers require.
func (c Config) Sarama() (*sarama.Config, error) {
	c = c.WithDefaults()
	if len(c.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	cfg := sarama.NewConfig()
	version, err := sarama.ParseKafkaVersion(c.Version)
	if err != nil {
		return nil, fmt.Errorf("kafka: invalid version %q: %w", c.Version, err)
	}
	cfg.Version = version
	cfg.ClientID = c.ClientID
	cfg.Net.DialTimeout = c.MaxTimeout
	cfg.Metadata.Timeout = c.MaxTimeout

	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	cfg.Consumer.Return.Errors = true

	if c.SASL != nil && c.SASL.Enable {
		switch strings.ToLower(strings.TrimSpace(c.SASL.Mechanism)) {
		case "", "plain":
			cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		case "scram-sha-256", "sha256":
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
			cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &scramClient{HashGeneratorFcn: sha256Generator}
			}
		case "scram-sha-512", "sha512":
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &scramClient{HashGeneratorFcn: sha512Generator}
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedMechanism, c.SASL.Mechanism)
		}
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.User = c.SASL.Username
		cfg.Net.SASL.Password = c.SASL.Password
	}

	if c.TLS != nil && c.TLS.Enable {
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = &tls.Config{
			ServerName:         c.TLS.ServerName,
			InsecureSkipVerify: c.TLS.InsecureSkipVerify, //nolint:gosec
			MinVersion:         tls.VersionTLS12,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka: config: %w", err)
	}
	return cfg, nil
}
