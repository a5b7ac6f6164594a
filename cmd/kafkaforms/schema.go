package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
	"github.com/goliatone/go-kafkaforms/pkg/validation"
)

const httpTimeout = 10 * time.Second

var errInvalidValue = errors.New("value does not match schema")

func newSchemaCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Convert and check schema documents",
	}
	cmd.AddCommand(newSchemaConvertCmd(), newSchemaCheckCmd())
	return cmd
}

func newSchemaConvertCmd() *cobra.Command {
	var (
		output string
		indent string
	)
	cmd := &cobra.Command{
		Use:   "convert <file|url>",
		Short: "Normalise a JSON or YAML schema document into interchange JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := loadSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := schema.Validate(node); err != nil {
				return err
			}
			out, err := interchange.Encode(node)
			if err != nil {
				return err
			}
			if indent != "" {
				var buf bytes.Buffer
				if err := json.Indent(&buf, out, "", indent); err != nil {
					return err
				}
				out = buf.Bytes()
			}
			return writeOutput(cmd.OutOrStdout(), output, append(out, '\n'))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&indent, "indent", "", "indent string for pretty output")
	return cmd
}

func newSchemaCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema> <value.json|->",
		Short: "Validate a JSON value against a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := loadSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			var value any
			if err := json.Unmarshal(raw, &value); err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			result := validation.ValidateValue(node, value)
			if result.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, issue := range result.Issues {
				path := issue.Path
				if path == "" {
					path = "/"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, issue.Message)
			}
			return fmt.Errorf("%w: %d issue(s)", errInvalidValue, len(result.Issues))
		},
	}
}
