// Package loader reads schema documents from files, an fs.FS or HTTP and
// decodes them into schema trees.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

var (
	ErrHTTPDisabled      = errors.New("loader: http support disabled")
	ErrUnsupportedSource = errors.New("loader: unsupported source kind")
)

// Options configure a Loader. HTTP sources are only read when HTTPClient is
// set or AllowHTTP is true.
type Options struct {
	FileSystem fs.FS
	HTTPClient *http.Client
	AllowHTTP  bool
	Timeout    time.Duration
	// MaxBytes caps documents; zero means DefaultMaxBytes.
	MaxBytes int64
}

// Loader delegates to file, fs.FS or HTTP strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	maxBytes  int64
}

// New constructs a Loader.
func New(options Options) *Loader {
	timeout := options.Timeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTP:
		httpClient = &http.Client{Timeout: timeout}
	}

	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Loader{
		maxBytes:  maxBytes,
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches the raw document.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	switch src.Kind {
	case SourceKindFile:
		return loadLocal(ctx, nil, src.Location, l.maxBytes)
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("loader: fs is nil")
		}
		return loadLocal(ctx, l.fs, src.Location, l.maxBytes)
	case SourceKindURL:
		if !l.allowHTTP {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.http, src.Location, l.timeout, l.maxBytes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, src.Kind)
	}
}

// LoadSchema fetches and decodes a document. ".yaml" and ".yml" locations
// are read as YAML, everything else as interchange JSON.
func (l *Loader) LoadSchema(ctx context.Context, src Source) (schema.Node, error) {
	data, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	var node schema.Node
	if src.isYAML() {
		node, err = interchange.DecodeYAML(data)
	} else {
		node, err = interchange.Decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", src.Location, err)
	}
	return node, nil
}
