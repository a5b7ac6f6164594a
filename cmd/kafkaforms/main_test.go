package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-kafkaforms/pkg/renderers/tui"
)

const personYAML = `type: object
title: Person
properties:
  name:
    type: string
    minLength: 2
  active:
    type: boolean
`

// execute runs the root command in an isolated directory so no user
// config file is picked up.
func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewReader(stdin))
	root.SetArgs(append([]string{"--log.level", "none"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSchemaConvert(t *testing.T) {
	src := writeFile(t, "person.yaml", personYAML)

	got, err := execute(t, nil, "schema", "convert", src)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := `{"type":"object","title":"Person","properties":{"name":{"type":"string","title":"","minLength":2},"active":{"type":"boolean","title":""}}}` + "\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaConvertToFile(t *testing.T) {
	src := writeFile(t, "person.yaml", personYAML)
	dest := filepath.Join(t.TempDir(), "person.json")

	if _, err := execute(t, nil, "schema", "convert", "--indent", "  ", "-o", dest, src); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"title\": \"Person\"") {
		t.Fatalf("expected indented output, got:\n%s", data)
	}
}

func TestSchemaConvertRejectsInvalidBounds(t *testing.T) {
	src := writeFile(t, "bad.json", `{"type":"string","minLength":5,"maxLength":2}`)

	if _, err := execute(t, nil, "schema", "convert", src); err == nil {
		t.Fatal("expected an error for minLength above maxLength")
	}
}

func TestSchemaCheck(t *testing.T) {
	src := writeFile(t, "person.yaml", personYAML)

	got, err := execute(t, []byte(`{"name":"ada","active":true}`), "schema", "check", src, "-")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if got != "ok\n" {
		t.Fatalf("output = %q", got)
	}

	got, err = execute(t, []byte(`{"name":"a"}`), "schema", "check", src, "-")
	if !errors.Is(err, errInvalidValue) {
		t.Fatalf("expected errInvalidValue, got %v", err)
	}
	if !strings.HasPrefix(got, "/name: ") {
		t.Fatalf("expected the issue to point at /name, got %q", got)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	payload := []byte(`{"id":42,"status":"NEW"}`)
	dir := t.TempDir()
	img := filepath.Join(dir, "payload.png")

	if _, err := execute(t, payload, "png", "encode", "-o", img, "-"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := execute(t, nil, "png", "decode", img)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(string(payload), got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPNGEncodeTooSmall(t *testing.T) {
	if _, err := execute(t, []byte("0123456789"), "png", "encode", "--width", "1", "--height", "1", "-"); err == nil {
		t.Fatal("expected an error for a 1x1 image")
	}
}

type scriptedDriver struct {
	inputs  []string
	confirm []bool
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	if len(d.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := d.confirm[0]
	d.confirm = d.confirm[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func runFill(t *testing.T, opts fillOptions, driver tui.PromptDriver) string {
	t.Helper()
	src := writeFile(t, "person.yaml", personYAML)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)

	a := &app{logger: zap.NewNop()}
	if err := a.fill(cmd, src, opts, driver); err != nil {
		t.Fatalf("fill: %v", err)
	}
	return out.String()
}

func TestFillPrintsCollectedValue(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"ada"}, confirm: []bool{true}}

	got := runFill(t, fillOptions{format: "json", attempts: 1}, driver)
	if diff := cmp.Diff(`{"active":true,"name":"ada"}`+"\n", got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFillRendersTemplate(t *testing.T) {
	tmpl := writeFile(t, "greeting.tmpl", `hello {{ name }}{% if active %}!{% endif %}`)
	driver := &scriptedDriver{inputs: []string{"ada"}, confirm: []bool{true}}

	got := runFill(t, fillOptions{format: "pretty", attempts: 1, template: tmpl, engine: "pongo2"}, driver)
	if diff := cmp.Diff("hello ada!\n", got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFillPublishNeedsTopic(t *testing.T) {
	a := &app{logger: zap.NewNop()}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	err := a.fill(cmd, "unused.yaml", fillOptions{publish: true}, &scriptedDriver{})
	if !errors.Is(err, errNoTopic) {
		t.Fatalf("expected errNoTopic, got %v", err)
	}
}
