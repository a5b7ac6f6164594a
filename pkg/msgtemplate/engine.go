package msgtemplate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Engine names.
const (
	EnginePongo2     = "PONGO2"
	EngineGoTemplate = "GO_TEMPLATE"
	EngineJSON       = "JSON"
	EngineRaw        = "RAW"
)

var (
	// ErrUnknownEngine is returned for engine names with no registration.
	ErrUnknownEngine = errors.New("msgtemplate: unknown engine")
	// ErrDuplicateEngine is returned when registering a name twice.
	ErrDuplicateEngine = errors.New("msgtemplate: engine already registered")
)

// Engine renders a template source against an input value.
type Engine interface {
	Name() string
	Render(ctx context.Context, source string, input any) ([]byte, error)
}

// Registry maps engine names, compared case-insensitively, to engines.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry returns a registry holding engines.
func NewRegistry(engines ...Engine) (*Registry, error) {
	r := &Registry{engines: make(map[string]Engine, len(engines))}
	for _, engine := range engines {
		if err := r.Register(engine); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry with the PONGO2, GO_TEMPLATE, JSON and RAW
// engines.
func Default() (*Registry, error) {
	pongo, err := NewPongo2()
	if err != nil {
		return nil, err
	}
	return NewRegistry(pongo, NewGoTemplate(), JSON{}, Raw{})
}

// Register adds engine under its Name.
func (r *Registry) Register(engine Engine) error {
	if engine == nil {
		return errors.New("msgtemplate: engine is nil")
	}
	key := normalizeName(engine.Name())
	if key == "" {
		return errors.New("msgtemplate: engine name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEngine, key)
	}
	r.engines[key] = engine
	return nil
}

// Get returns the engine registered as name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return engine, nil
}

// Names lists registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render looks up engine and renders source with it.
func (r *Registry) Render(ctx context.Context, engine, source string, input any) ([]byte, error) {
	e, err := r.Get(engine)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := e.Render(ctx, source, input)
	if err != nil {
		return nil, fmt.Errorf("msgtemplate: %s: %w", e.Name(), err)
	}
	return out, nil
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
