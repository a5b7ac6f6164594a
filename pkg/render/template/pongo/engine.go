// Package pongo is the pongo2 implementation of template.TemplateRenderer.
// The HTML renderer loads its embedded form templates through it and the
// message template registry renders stored PONGO2 templates with it.
package pongo

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-kafkaforms/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	name       string
	templates  fs.FS
	extension  string
	autoescape bool
	globals    map[string]any
}

// WithName labels the template set; it shows up in pongo2 errors.
func WithName(name string) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.name = name
		}
	}
}

// WithFS loads named templates from files. Use os.DirFS for a directory.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithAutoescape toggles HTML escaping. Form pages keep the default (on);
// message templates turn it off so JSON and plain text pass through intact.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			if cfg.globals == nil {
				cfg.globals = make(map[string]any, len(data))
			}
			cfg.globals[key] = value
		}
	}
}

// Engine renders named templates from an fs.FS and inline sources. Both are
// compiled once and cached.
type Engine struct {
	mu         sync.RWMutex
	set        *pongo2.TemplateSet
	compiled   map[string]*pongo2.Template
	extension  string
	autoescape bool
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Without WithFS only inline sources render.
func New(options ...Option) (*Engine, error) {
	cfg := config{name: "kafkaforms", extension: ".tpl", autoescape: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	files := cfg.templates
	if files == nil {
		files = noFiles{}
	}

	e := &Engine{
		set:        pongo2.NewSet(cfg.name, pongo2.NewFSLoader(files)),
		compiled:   make(map[string]*pongo2.Template),
		extension:  cfg.extension,
		autoescape: cfg.autoescape,
	}
	registerFilters()

	if err := e.GlobalContext(cfg.globals); err != nil {
		return nil, fmt.Errorf("pongo: global data: %w", err)
	}
	return e, nil
}

// Render treats name as inline content when it holds template tags and as
// a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes a named template.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	if !strings.HasSuffix(name, e.extension) {
		name += e.extension
	}
	tmpl, err := e.compile("file:"+name, func() (*pongo2.Template, error) {
		return e.set.FromFile(name)
	})
	if err != nil {
		return "", fmt.Errorf("pongo: load template %q: %w", name, err)
	}
	return e.execute(tmpl, data, out)
}

// RenderString compiles and executes inline template content.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	if !e.autoescape {
		source = "{% autoescape off %}" + source + "{% endautoescape %}"
	}
	sum := sha256.Sum256([]byte(source))
	tmpl, err := e.compile("inline:"+hex.EncodeToString(sum[:]), func() (*pongo2.Template, error) {
		return e.set.FromString(source)
	})
	if err != nil {
		return "", fmt.Errorf("pongo: parse template: %w", err)
	}
	return e.execute(tmpl, data, out)
}

// RegisterFilter installs fn as a pongo2 filter. Filters are process wide,
// so a name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("pongo: engine is nil")
	}
	if data == nil {
		return nil
	}
	globals, err := toContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(globals)
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: template data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute: %w", err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Engine) compile(key string, build func() (*pongo2.Template, error)) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.compiled[key]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.compiled[key]; ok {
		return tmpl, nil
	}
	tmpl, err := build()
	if err != nil {
		return nil, err
	}
	e.compiled[key] = tmpl
	return tmpl, nil
}

// noFiles is the loader of engines that only render inline sources.
type noFiles struct{}

func (noFiles) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// toContext turns template data into a pongo2 context. Maps are used as
// they are; any other value goes through JSON so struct fields appear under
// their JSON names.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{}
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("%T is not an object: %w", data, err)
	}
	return ctx, nil
}

func registerFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("tojson") {
		_ = pongo2.RegisterFilter("tojson", filterToJSON)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterToJSON encodes a value as JSON, e.g. {{ input.user|tojson }}.
func filterToJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(in.Interface()); err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsSafeValue(strings.TrimSuffix(buf.String(), "\n")), nil
}
