package kafkaforms

import (
	"context"

	"github.com/goliatone/go-kafkaforms/internal/loader"
	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// Source aliases the loader source so callers outside the module can name
// schema locations.
type Source = loader.Source

// LoaderOptions configures NewLoader.
type LoaderOptions = loader.Options

// SchemaLoader reads and decodes schema documents.
type SchemaLoader interface {
	Load(ctx context.Context, src Source) ([]byte, error)
	LoadSchema(ctx context.Context, src Source) (schema.Node, error)
}

// SourceFromFile points at a local schema document.
func SourceFromFile(path string) Source { return loader.SourceFromFile(path) }

// SourceFromURL points at a schema document served over HTTP(S).
func SourceFromURL(raw string) Source { return loader.SourceFromURL(raw) }

// NewLoader constructs a loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options LoaderOptions) SchemaLoader {
	return loader.New(options)
}

// ParseSchema decodes an interchange JSON document.
func ParseSchema(raw []byte) (schema.Node, error) {
	return interchange.Decode(raw)
}

// EncodeSchema returns the canonical interchange JSON of node.
func EncodeSchema(node schema.Node) ([]byte, error) {
	return interchange.Encode(node)
}
