package msgtemplate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/goliatone/go-kafkaforms/pkg/render/template/pongo"
)

// Pongo2 renders Django style templates. Output is not HTML escaped. Map
// inputs expose their keys at the top level; the whole value is also
// available as "input".
type Pongo2 struct {
	engine *pongo.Engine
}

// NewPongo2 builds a pongo2 engine with autoescaping off.
func NewPongo2() (*Pongo2, error) {
	engine, err := pongo.New(pongo.WithName("msgtemplate"), pongo.WithAutoescape(false))
	if err != nil {
		return nil, err
	}
	return &Pongo2{engine: engine}, nil
}

func (p *Pongo2) Name() string { return EnginePongo2 }

func (p *Pongo2) Render(_ context.Context, source string, input any) ([]byte, error) {
	out, err := p.engine.RenderString(source, templateContext(input))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// GoTemplate renders text/template sources with the input as dot. The json
// func encodes a value; default returns its first argument when the second
// is empty.
type GoTemplate struct {
	funcs template.FuncMap
}

func NewGoTemplate() *GoTemplate {
	return &GoTemplate{funcs: template.FuncMap{
		"json":    toJSON,
		"default": defaultValue,
	}}
}

func (g *GoTemplate) Name() string { return EngineGoTemplate }

func (g *GoTemplate) Render(_ context.Context, source string, input any) ([]byte, error) {
	tmpl, err := template.New("message").Funcs(g.funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, input); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON ignores the source and emits the input as compact JSON.
type JSON struct{}

func (JSON) Name() string { return EngineJSON }

func (JSON) Render(_ context.Context, _ string, input any) ([]byte, error) {
	return marshalJSON(input)
}

// Raw emits the source verbatim.
type Raw struct{}

func (Raw) Name() string { return EngineRaw }

func (Raw) Render(_ context.Context, source string, _ any) ([]byte, error) {
	return []byte(source), nil
}

func templateContext(input any) map[string]any {
	ctx := map[string]any{}
	if fields, ok := input.(map[string]any); ok {
		for key, value := range fields {
			ctx[key] = value
		}
	}
	ctx["input"] = input
	return ctx
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func toJSON(v any) (string, error) {
	out, err := marshalJSON(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func defaultValue(fallback, value any) any {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if v == "" {
			return fallback
		}
	}
	return value
}
