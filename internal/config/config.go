// Package config loads the application configuration from a YAML file,
// KAFKAFORMS_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-kafkaforms/pkg/kafka"
)

const EnvPrefix = "KAFKAFORMS"

// Config holds application-wide configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Kafka   kafka.Config  `mapstructure:"kafka"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

var ErrInvalid = errors.New("config: invalid configuration")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.readHeaderTimeout", 3*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("kafka.version", kafka.DefaultVersion)
	v.SetDefault("kafka.clientId", kafka.DefaultClientID)
	v.SetDefault("kafka.maxTimeout", kafka.DefaultMaxTimeout)
	v.SetDefault("kafka.sasl.enable", false)
	v.SetDefault("kafka.sasl.mechanism", "PLAIN")
	v.SetDefault("kafka.sasl.username", "")
	v.SetDefault("kafka.sasl.password", "")
	v.SetDefault("kafka.tls.enable", false)
	v.SetDefault("kafka.tls.serverName", "")
	v.SetDefault("kafka.tls.insecureSkipVerify", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads cfgFile, or kafkaforms.yaml from $HOME/.config or the working
// directory when cfgFile is empty. A missing default file is not an error.
// Flags whose names match config keys ("server.addr") override both.
func Load(cfgFile string, flags ...*pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("kafkaforms")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, fs := range flags {
		if fs == nil {
			continue
		}
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unable to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for the postgres driver", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%w: metrics.path must start with /", ErrInvalid)
	}
	return nil
}
