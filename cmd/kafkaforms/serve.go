package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/internal/config"
	"github.com/goliatone/go-kafkaforms/internal/server"
	"github.com/goliatone/go-kafkaforms/internal/service"
	"github.com/goliatone/go-kafkaforms/internal/store"
	"github.com/goliatone/go-kafkaforms/internal/store/postgres"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/html"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	f := cmd.Flags()
	f.StringP("server.addr", "l", ":8080", "listen address")
	f.String("store.driver", config.DriverMemory, "store driver (memory, postgres)")
	f.StringP("store.dsn", "c", "", "PostgreSQL connection string")
	f.Bool("metrics.enabled", true, "serve prometheus metrics")
	return cmd
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Driver == config.DriverPostgres {
		return postgres.Open(ctx, cfg.DSN)
	}
	return store.NewMemory(), nil
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []service.Option{
		service.WithKafkaConfig(cfg.Kafka),
		service.WithLogger(a.logger),
	}
	groups := service.NewGroups(st.Groups(), opts...)
	templates, err := service.NewTemplates(st.Templates(), groups, opts...)
	if err != nil {
		return err
	}
	forms, err := html.New()
	if err != nil {
		return err
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	srv, err := server.New(server.Options{
		Groups:            groups,
		Templates:         templates,
		Forms:             forms,
		Logger:            a.logger,
		MetricsPath:       metricsPath,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	a.logger.Info("store ready", zap.String("driver", cfg.Store.Driver))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
