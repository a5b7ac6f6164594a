// Package kafkaforms is the top-level entry point: load a schema document,
// turn it into a form session and render it.
package kafkaforms

import (
	"context"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/html"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// RenderOptions describes per-request overrides that renderers use for the
// form action, hidden fields and server-side validation errors.
type RenderOptions = render.RenderOptions

// NewSession starts a form session for node.
func NewSession(node schema.Node) *form.Session {
	return form.NewSession(node)
}

// GenerateHTML loads the schema at source and renders an empty HTML form for
// it. It is the simplest entry point for callers that just want markup.
func GenerateHTML(ctx context.Context, source Source, options RenderOptions, loaderOptions ...LoaderOptions) ([]byte, error) {
	var opts LoaderOptions
	if len(loaderOptions) > 0 {
		opts = loaderOptions[0]
	}
	node, err := NewLoader(opts).LoadSchema(ctx, source)
	if err != nil {
		return nil, err
	}
	return GenerateHTMLFromSchema(ctx, node, options)
}

// GenerateHTMLFromSchema renders a form for an already decoded schema.
func GenerateHTMLFromSchema(ctx context.Context, node schema.Node, options RenderOptions) ([]byte, error) {
	if err := schema.Validate(node); err != nil {
		return nil, err
	}
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, NewSession(node), options)
}
