package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: a property name or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key builds a property segment.
func Key(name string) Segment { return Segment{key: name} }

// Index builds an array element segment.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the property name; empty for index segments.
func (s Segment) Key() string { return s.key }

// Index returns the element index; zero for key segments.
func (s Segment) Index() int { return s.index }

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path addresses a node in a value tree from the root. The empty path is the
// root itself.
type Path []Segment

// Child returns a new path extended with seg. The receiver is never
// modified, so sibling paths built from the same parent do not alias.
func (p Path) Child(seg ...Segment) Path {
	out := make(Path, 0, len(p)+len(seg))
	out = append(out, p...)
	return append(out, seg...)
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders a dotted display form such as "items[0].name".
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if !seg.isIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Pointer renders the path as a JSON pointer ("/items/0/name"). The root is
// the empty string.
func (p Path) Pointer() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		if seg.isIndex {
			b.WriteString(strconv.Itoa(seg.index))
			continue
		}
		b.WriteString(escapePointer(seg.key))
	}
	return b.String()
}

// Lookup resolves a value path to the schema node describing it. Every
// index segment resolves to the array's Items.
func Lookup(root Node, path Path) (Node, error) {
	current := root
	for i, seg := range path {
		if current == nil {
			return nil, ErrNilNode
		}
		switch typed := current.(type) {
		case ObjectNode:
			if seg.isIndex {
				return nil, fmt.Errorf("%w: index at %s", ErrPathMismatch, path[:i+1])
			}
			child, ok := typed.Property(seg.key)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path[:i+1])
			}
			current = child
		case ArrayNode:
			if !seg.isIndex {
				return nil, fmt.Errorf("%w: key at %s", ErrPathMismatch, path[:i+1])
			}
			if seg.index < 0 {
				return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, path[:i+1])
			}
			current = typed.Items
			if current == nil {
				current = Placeholder()
			}
		default:
			return nil, fmt.Errorf("%w: %s is a %s leaf", ErrPathMismatch, path[:i], current.Kind())
		}
	}
	if current == nil {
		return nil, ErrNilNode
	}
	return current, nil
}

// Walk visits node and every descendant schema node depth first, in
// declaration order. The path passed to fn uses index 0 for array items.
// Returning an error from fn stops the walk.
func Walk(node Node, fn func(path Path, node Node) error) error {
	return walk(nil, node, fn)
}

func walk(path Path, node Node, fn func(Path, Node) error) error {
	if node == nil {
		return nil
	}
	if err := fn(path, node); err != nil {
		return err
	}
	switch typed := node.(type) {
	case ObjectNode:
		for _, prop := range typed.Properties {
			if err := walk(path.Child(Key(prop.Name)), prop.Schema, fn); err != nil {
				return err
			}
		}
	case ArrayNode:
		return walk(path.Child(Index(0)), typed.Items, fn)
	}
	return nil
}

func escapePointer(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// UnescapePointer reverses the JSON pointer escaping of a single token.
func UnescapePointer(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
