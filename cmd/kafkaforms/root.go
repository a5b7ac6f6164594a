package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/internal/config"
	"github.com/goliatone/go-kafkaforms/internal/logging"
)

// app holds state shared by the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "kafkaforms",
		Short:         "Kafka message templates with schema driven forms",
		Long:          `kafkaforms stores message templates, renders input forms from their schemas and publishes the rendered messages to Kafka.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/kafkaforms.yaml)")
	pf.StringP("log.level", "L", "info", "log level (debug, info, warn, error, none)")
	pf.String("log.format", "json", "log format (json, console)")

	root.AddCommand(
		newServeCmd(a),
		newSchemaCmd(a),
		newFillCmd(a),
		newPNGCmd(a),
	)
	return root
}

// init loads configuration with the command's flags bound over it and
// builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	if cfg.File != "" {
		logger.Debug("using config file", zap.String("file", cfg.File))
	}
	return nil
}
