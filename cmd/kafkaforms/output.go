package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-kafkaforms/internal/loader"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readInput reads path, or stdin for "-".
func readInput(r io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(r)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// loadSchema reads a schema document from a file path or http(s) URL.
func loadSchema(ctx context.Context, raw string) (schema.Node, error) {
	src, ok := loader.ParseSource(raw)
	if !ok {
		return nil, fmt.Errorf("invalid schema source: %q", raw)
	}
	l := loader.New(loader.Options{AllowHTTP: true, Timeout: httpTimeout})
	return l.LoadSchema(ctx, src)
}
