package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	defaults     []string
	messages     []string
	inputPos     int
	selectPos    int
	confirmPos   int
	inputErr     error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.defaults = append(s.defaults, cfg.Default)
	s.messages = append(s.messages, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func orderSchema() schema.Node {
	name := schema.New(schema.KindString).(schema.StringNode).WithMinLength(schema.Int(2))
	status := schema.StringNode{Common: schema.Common{
		Title:         "Status",
		Specification: schema.SpecificationEnum,
		Enum:          []string{`"a"`, `"b"`},
	}}
	count := schema.WithDefault(schema.WithKind(schema.New(schema.KindNumber), schema.KindInteger), "2").(schema.NumberNode).
		WithMinimum(schema.Float(0))
	tags := schema.New(schema.KindArray).(schema.ArrayNode).
		WithItems(schema.New(schema.KindString)).
		WithMaxItems(schema.Int(2))

	return schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("name", name).
		AddProperty("status", status).
		AddProperty("count", count).
		AddProperty("active", schema.New(schema.KindBoolean)).
		AddProperty("tags", tags)
}

func TestRender_FillsEveryKind(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"x", "xy", "-1", "1.5", "3", "t1", "t2"},
		selectIdx: []int{1},
		confirm:   []bool{true, true, true},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), form.NewSession(orderSchema()), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{"active":true,"count":3,"name":"xy","status":"b","tags":["t1","t2"]}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 3 {
		t.Fatalf("expected 3 validation messages, got %v", driver.infoMessages)
	}
	if driver.confirmPos != 3 {
		t.Fatalf("expected no add prompt past maxItems, confirms used %d", driver.confirmPos)
	}
	if driver.defaults[2] != "2" {
		t.Fatalf("count prompt default = %q, want seeded 2", driver.defaults[2])
	}
}

func TestRender_MinItemsAddedWithoutAsking(t *testing.T) {
	tags := schema.New(schema.KindArray).(schema.ArrayNode).
		WithItems(schema.New(schema.KindString)).
		WithMinItems(schema.Int(1))
	root := schema.New(schema.KindObject).(schema.ObjectNode).AddProperty("tags", tags)

	driver := &stubDriver{
		inputs:  []string{"a"},
		confirm: []bool{false},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.ContentType() != "text/plain" {
		t.Fatalf("content type = %q", r.ContentType())
	}

	out, err := r.Render(context.Background(), form.NewSession(root), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("tags[0]=a\n", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	want := []string{"Item 1", "Add element to tags?"}
	if diff := cmp.Diff(want, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ShowsFieldErrorsAndTheme(t *testing.T) {
	root := schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("name", schema.New(schema.KindString))
	driver := &stubDriver{inputs: []string{"n"}}
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{PromptPrefix: "> ", ErrorPrefix: "! "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = r.Render(context.Background(), form.NewSession(root), render.RenderOptions{
		Errors: map[string][]string{"/name": {"taken"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"! Invalid name: taken"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"> name"}, driver.messages); diff != "" {
		t.Fatalf("prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_AbortPropagates(t *testing.T) {
	root := schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("name", schema.New(schema.KindString))
	r, err := New(WithPromptDriver(&stubDriver{inputErr: ErrAborted}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = r.Render(context.Background(), form.NewSession(root), render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFlattenForm(t *testing.T) {
	got := flattenForm(map[string]any{
		"name": "x",
		"meta": map[string]any{"n": 2.0},
		"tags": []any{"a", "b"},
	})
	want := "meta.n=2&name=x&tags%5B%5D=a&tags%5B%5D=b"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestSurveyDriverInfoWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(WithOutput(&buf), WithTheme(Theme{InfoPrefix: "* "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if err := r.info(context.Background(), "topic is required"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if diff := cmp.Diff("* topic is required\n", buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.info(ctx, "late"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
