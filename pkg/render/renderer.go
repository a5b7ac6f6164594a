package render

import (
	"context"

	"github.com/goliatone/go-kafkaforms/pkg/form"
)

// Renderer turns a form session into a byte representation (an HTML form,
// a filled JSON document from an interactive terminal, ...). Renderers may
// drive the session, so callers should not share one across goroutines.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, session *form.Session, options RenderOptions) ([]byte, error)
}
