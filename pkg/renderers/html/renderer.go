package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	rendertemplate "github.com/goliatone/go-kafkaforms/pkg/render/template"
	"github.com/goliatone/go-kafkaforms/pkg/render/template/pongo"
)

const formTemplate = "templates/form.tpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. It must
// contain templates/form.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer draws a form session as an HTML form that round-trips through
// ApplyForm.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithName("html"),
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the session's current control tree. Field errors whose
// pointer matches no control are shown with the form level errors.
func (r *Renderer) Render(_ context.Context, session *form.Session, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}
	if session == nil {
		return nil, errors.New("html renderer: session is nil")
	}

	root := session.Render()
	mapped := render.MapErrors(root, options.Errors)
	formErrors := render.MergeFormErrors(options.FormErrors, mapped.Form...)

	title := options.Title
	if title == "" {
		title = root.Label
	}
	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}
	submit := strings.TrimSpace(options.SubmitLabel)
	if submit == "" {
		submit = "Submit"
	}

	hidden := make([]any, 0, len(options.Hidden))
	for _, field := range options.Hidden {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": map[string]any{
			"action":      options.Action,
			"method":      method,
			"title":       sanitizeLabel(title),
			"submitLabel": submit,
			"errors":      stringsToAny(formErrors),
			"hidden":      hidden,
			"rows":        flatten(root, mapped.Fields),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
