package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/kafka"
	"github.com/goliatone/go-kafkaforms/pkg/msgtemplate"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/tui"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
	"github.com/goliatone/go-kafkaforms/pkg/validation"
)

var errNoTopic = errors.New("--topic is required with --publish")

type fillOptions struct {
	format   string
	output   string
	attempts int
	template string
	engine   string
	publish  bool
	topic    string
	key      string
}

func newFillCmd(a *app) *cobra.Command {
	opts := fillOptions{}
	cmd := &cobra.Command{
		Use:   "fill <file|url>",
		Short: "Prompt for a value of a schema in the terminal",
		Long: `fill walks the schema interactively and prints the collected value.
With --template the value is rendered through a message template first, and
with --publish the result is sent to Kafka.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fill(cmd, args[0], opts, nil)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", string(tui.OutputFormatJSON), "output format (json, form, pretty)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	f.IntVar(&opts.attempts, "attempts", 3, "prompt again this many times while the value is invalid")
	f.StringVarP(&opts.template, "template", "t", "", "message template file")
	f.StringVarP(&opts.engine, "engine", "e", msgtemplate.EnginePongo2, "template engine")
	f.BoolVarP(&opts.publish, "publish", "p", false, "publish the message to Kafka")
	f.StringSlice("kafka.brokers", nil, "Kafka bootstrap servers")
	f.StringVar(&opts.topic, "topic", "", "topic to publish to")
	f.StringVarP(&opts.key, "key", "k", "", "message key")
	return cmd
}

// fill runs the prompt loop. driver replaces the survey prompts when set.
func (a *app) fill(cmd *cobra.Command, source string, opts fillOptions, driver tui.PromptDriver) error {
	ctx := cmd.Context()
	if opts.publish && opts.topic == "" {
		return errNoTopic
	}
	node, err := loadSchema(ctx, source)
	if err != nil {
		return err
	}
	if err := schema.Validate(node); err != nil {
		return err
	}

	format := tui.OutputFormat(opts.format)
	if opts.template != "" || opts.publish {
		format = tui.OutputFormatJSON
	}
	tuiOpts := []tui.Option{tui.WithOutputFormat(format), tui.WithOutput(cmd.ErrOrStderr())}
	if driver != nil {
		tuiOpts = append(tuiOpts, tui.WithPromptDriver(driver))
	}
	renderer, err := tui.New(tuiOpts...)
	if err != nil {
		return err
	}

	session := form.NewSession(node)
	out, err := collect(ctx, renderer, session, node, opts.attempts)
	if err != nil {
		return err
	}

	if opts.template != "" {
		out, err = renderTemplate(ctx, opts, session.Collect())
		if err != nil {
			return err
		}
	}

	if !opts.publish {
		return writeOutput(cmd.OutOrStdout(), opts.output, append(out, '\n'))
	}
	return a.publish(ctx, cmd.OutOrStdout(), opts, out)
}

// collect prompts until the collected value validates or attempts run out.
func collect(ctx context.Context, r *tui.Renderer, session *form.Session, node schema.Node, attempts int) ([]byte, error) {
	if attempts < 1 {
		attempts = 1
	}
	var errs map[string][]string
	for i := 0; i < attempts; i++ {
		out, err := r.Render(ctx, session, render.RenderOptions{Errors: errs})
		if err != nil {
			return nil, err
		}
		result := validation.ValidateValue(node, session.Collect())
		if result.Valid {
			return out, nil
		}
		errs = result.Errors()
	}
	return nil, fmt.Errorf("%w after %d attempt(s)", errInvalidValue, attempts)
}

func renderTemplate(ctx context.Context, opts fillOptions, input any) ([]byte, error) {
	source, err := os.ReadFile(opts.template)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	registry, err := msgtemplate.Default()
	if err != nil {
		return nil, err
	}
	return registry.Render(ctx, opts.engine, string(source), input)
}

func (a *app) publish(ctx context.Context, w io.Writer, opts fillOptions, value []byte) error {
	client, err := kafka.NewClient(a.cfg.Kafka)
	if err != nil {
		return err
	}
	rec := kafka.Record{Topic: opts.topic, Value: value}
	if opts.key != "" {
		rec.Key = []byte(opts.key)
	}
	meta, err := client.Publish(ctx, rec)
	if err != nil {
		return err
	}
	a.logger.Info("published",
		zap.String("topic", meta.Topic),
		zap.Int32("partition", meta.Partition),
		zap.Int64("offset", meta.Offset),
	)
	return json.NewEncoder(w).Encode(meta)
}
