package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
	want := ServerConfig{Addr: ":8080", ReadHeaderTimeout: 3 * time.Second, ShutdownTimeout: 5 * time.Second}
	if diff := cmp.Diff(want, cfg.Server); diff != "" {
		t.Fatalf("server mismatch (-want +got):\n%s", diff)
	}
	if cfg.Store.Driver != DriverMemory || cfg.Kafka.ClientID != "kafkaforms" || cfg.Kafka.MaxTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Store, cfg.Kafka)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kafkaforms.yaml")
	yaml := `
server:
  addr: ":9000"
store:
  driver: postgres
  dsn: postgres://localhost/forms
kafka:
  clientId: forms-ui
  maxTimeout: 2s
  sasl:
    enable: true
    username: svc
log:
  level: debug
`
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KAFKAFORMS_LOG_FORMAT", "console")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "", "")
	if err := flags.Parse([]string{"--server.addr=:7000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(file, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.File != file {
		t.Fatalf("expected file %q, got %q", file, cfg.File)
	}
	if cfg.Server.Addr != ":7000" {
		t.Fatalf("expected flag to win, got %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != DriverPostgres || cfg.Store.DSN != "postgres://localhost/forms" {
		t.Fatalf("unexpected store: %+v", cfg.Store)
	}
	if cfg.Kafka.ClientID != "forms-ui" || cfg.Kafka.MaxTimeout != 2*time.Second {
		t.Fatalf("unexpected kafka: %+v", cfg.Kafka)
	}
	if cfg.Kafka.SASL == nil || !cfg.Kafka.SASL.Enable || cfg.Kafka.SASL.Username != "svc" {
		t.Fatalf("unexpected sasl: %+v", cfg.Kafka.SASL)
	}
	if diff := cmp.Diff(LogConfig{Level: "debug", Format: "console"}, cfg.Log); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"postgres without dsn", Config{Store: StoreConfig{Driver: DriverPostgres}}},
		{"unknown driver", Config{Store: StoreConfig{Driver: "sqlite"}}},
		{"relative metrics path", Config{Store: StoreConfig{Driver: DriverMemory}, Metrics: MetricsConfig{Enabled: true, Path: "metrics"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
