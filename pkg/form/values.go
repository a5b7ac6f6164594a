package form

import (
	"fmt"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// Path aliases schema.Path so callers can build value addresses without
// importing both packages.
type Path = schema.Path

// ValueTree holds collected values as nested map[string]any / []any
// containers addressed by Path. Unset array elements are nil.
type ValueTree struct {
	root any
}

// NewValueTree returns an empty tree.
func NewValueTree() *ValueTree {
	return &ValueTree{}
}

// Get resolves path. The boolean is false when any segment is missing.
func (t *ValueTree) Get(path Path) (any, bool) {
	if t == nil || t.root == nil {
		return nil, false
	}
	current := t.root
	for _, seg := range path {
		switch node := current.(type) {
		case map[string]any:
			if seg.IsIndex() {
				return nil, false
			}
			next, ok := node[seg.Key()]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if !seg.IsIndex() || seg.Index() < 0 || seg.Index() >= len(node) {
				return nil, false
			}
			current = node[seg.Index()]
		default:
			return nil, false
		}
	}
	return current, true
}

// Has reports whether a non-nil value exists at path.
func (t *ValueTree) Has(path Path) bool {
	v, ok := t.Get(path)
	return ok && v != nil
}

// Set writes value at path, creating intermediate maps for key segments and
// growing slices (padding with nil) for index segments.
func (t *ValueTree) Set(path Path, value any) error {
	next, err := setIn(t.root, path, 0, value)
	if err != nil {
		return err
	}
	t.root = next
	return nil
}

func setIn(container any, path Path, depth int, value any) (any, error) {
	if depth == len(path) {
		return value, nil
	}
	seg := path[depth]
	if seg.IsIndex() {
		if seg.Index() < 0 {
			return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, path[:depth+1])
		}
		var list []any
		switch typed := container.(type) {
		case nil:
		case []any:
			list = typed
		default:
			return nil, fmt.Errorf("%w: %s holds %T, not a list", ErrShapeMismatch, path[:depth], container)
		}
		for len(list) <= seg.Index() {
			list = append(list, nil)
		}
		child, err := setIn(list[seg.Index()], path, depth+1, value)
		if err != nil {
			return nil, err
		}
		list[seg.Index()] = child
		return list, nil
	}

	var obj map[string]any
	switch typed := container.(type) {
	case nil:
		obj = make(map[string]any)
	case map[string]any:
		obj = typed
	default:
		return nil, fmt.Errorf("%w: %s holds %T, not an object", ErrShapeMismatch, path[:depth], container)
	}
	child, err := setIn(obj[seg.Key()], path, depth+1, value)
	if err != nil {
		return nil, err
	}
	obj[seg.Key()] = child
	return obj, nil
}

// Unset removes the value at path. Object members are deleted; list
// elements are reset to nil so sibling indices stay stable. Unsetting the
// root empties the tree.
func (t *ValueTree) Unset(path Path) {
	if len(path) == 0 {
		t.root = nil
		return
	}
	parent, ok := t.Get(path.Parent())
	if !ok {
		return
	}
	last, _ := path.Last()
	switch node := parent.(type) {
	case map[string]any:
		if !last.IsIndex() {
			delete(node, last.Key())
		}
	case []any:
		if last.IsIndex() && last.Index() >= 0 && last.Index() < len(node) {
			node[last.Index()] = nil
		}
	}
}

// Len returns the length of the list at path; zero when absent.
func (t *ValueTree) Len(path Path) int {
	v, ok := t.Get(path)
	if !ok {
		return 0
	}
	list, _ := v.([]any)
	return len(list)
}

// Append adds value to the list at path, creating the list when missing,
// and returns the new element's index.
func (t *ValueTree) Append(path Path, value any) (int, error) {
	current, _ := t.Get(path)
	var list []any
	switch typed := current.(type) {
	case nil:
	case []any:
		list = typed
	default:
		return 0, fmt.Errorf("%w: %s holds %T, not a list", ErrShapeMismatch, path, current)
	}
	list = append(list, value)
	if err := t.Set(path, list); err != nil {
		return 0, err
	}
	return len(list) - 1, nil
}

// Resize grows or truncates the list at path to n elements.
func (t *ValueTree) Resize(path Path, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: length %d", ErrIndexOutOfRange, n)
	}
	current, _ := t.Get(path)
	var list []any
	switch typed := current.(type) {
	case nil:
		list = []any{}
	case []any:
		list = typed
	default:
		return fmt.Errorf("%w: %s holds %T, not a list", ErrShapeMismatch, path, current)
	}
	if len(list) > n {
		list = list[:n:n]
	}
	for len(list) < n {
		list = append(list, nil)
	}
	return t.Set(path, list)
}

// RemoveAt deletes element i of the list at path; later elements shift down
// by one.
func (t *ValueTree) RemoveAt(path Path, i int) error {
	current, ok := t.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexOutOfRange, path.Child(schema.Index(i)))
	}
	list, isList := current.([]any)
	if !isList {
		return fmt.Errorf("%w: %s holds %T, not a list", ErrShapeMismatch, path, current)
	}
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: %s", ErrIndexOutOfRange, path.Child(schema.Index(i)))
	}
	out := make([]any, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return t.Set(path, out)
}

// Snapshot returns a deep copy of the whole tree.
func (t *ValueTree) Snapshot() any {
	if t == nil {
		return nil
	}
	return deepCopy(t.root)
}

// Reset empties the tree.
func (t *ValueTree) Reset() {
	t.root = nil
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
