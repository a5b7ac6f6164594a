package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/interchange"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// Session owns one schema tree and the value tree collected against it. It
// is not safe for concurrent use.
type Session struct {
	root   schema.Node
	values *ValueTree
	// seeded records paths whose default was materialised or which the user
	// touched; defaults are never applied to them again.
	seeded map[string]Path
}

// NewSession starts a session with an empty value tree.
func NewSession(root schema.Node) *Session {
	s := &Session{}
	s.Load(root)
	return s
}

// Load swaps the schema and resets the value tree. Values collected
// against a previous schema are discarded rather than merged.
func (s *Session) Load(root schema.Node) {
	if root == nil {
		root = schema.New(schema.KindObject)
	}
	s.root = schema.Clone(root)
	s.values = NewValueTree()
	s.seeded = make(map[string]Path)
}

// Schema returns a copy of the session's schema.
func (s *Session) Schema() schema.Node {
	return schema.Clone(s.root)
}

// Value returns the value at path.
func (s *Session) Value(path Path) (any, bool) {
	return s.values.Get(path)
}

// Len returns the number of elements of the array at path.
func (s *Session) Len(path Path) int {
	return s.values.Len(path)
}

// Render walks the schema top-down and returns the control tree. Defaults
// are materialised the first time a path without a value is rendered.
func (s *Session) Render() Control {
	return s.render(s.root, nil, "")
}

func (s *Session) render(node schema.Node, path Path, name string) Control {
	base := node.Base()
	ctrl := Control{
		Path:     path,
		Name:     name,
		Label:    base.Title,
		Node:     node,
		Nullable: base.Nullable,
	}
	if ctrl.Label == "" {
		ctrl.Label = name
	}

	if err := s.seed(node, path); err != nil {
		ctrl.Error = err.Error()
	}
	ctrl.Value, ctrl.HasValue = s.values.Get(path)
	if ctrl.Value == nil {
		ctrl.HasValue = false
	}

	switch typed := node.(type) {
	case schema.StringNode:
		ctrl.Kind = ControlText
		ctrl.MinLength = typed.MinLength
		ctrl.MaxLength = typed.MaxLength
		if usesSelect(typed) {
			ctrl.Kind = ControlSelect
			options, err := enumOptions(typed)
			if err != nil {
				ctrl.Error = err.Error()
			}
			if base.Default == "" {
				ctrl.Required = true
				options = append([]Option{{Label: ""}}, options...)
			}
			current := ctrl.Text()
			for i := range options {
				options[i].Selected = options[i].Text() == current
			}
			ctrl.Options = options
		}
	case schema.NumberNode:
		ctrl.Kind = ControlNumber
		ctrl.Integer = typed.Integer
		ctrl.Minimum = typed.Minimum
		ctrl.Maximum = typed.Maximum
	case schema.BooleanNode:
		ctrl.Kind = ControlCheckbox
	case schema.ObjectNode:
		ctrl.Kind = ControlGroup
		ctrl.Children = make([]Control, 0, len(typed.Properties))
		for _, prop := range typed.Properties {
			ctrl.Children = append(ctrl.Children, s.render(prop.Schema, path.Child(schema.Key(prop.Name)), prop.Name))
		}
	case schema.ArrayNode:
		ctrl.Kind = ControlList
		ctrl.MinItems = typed.MinItems
		ctrl.MaxItems = typed.MaxItems
		items := typed.Items
		if items == nil {
			items = schema.Placeholder()
		}
		n := s.values.Len(path)
		ctrl.Children = make([]Control, 0, n)
		for i := 0; i < n; i++ {
			child := s.render(items, path.Child(schema.Index(i)), strconv.Itoa(i))
			child.Label = elementLabel(items, i)
			ctrl.Children = append(ctrl.Children, child)
		}
	}
	return ctrl
}

func elementLabel(items schema.Node, i int) string {
	title := items.Base().Title
	if title == "" {
		title = "Item"
	}
	return fmt.Sprintf("%s %d", title, i+1)
}

// seed writes node's default at path once, when no value exists there yet.
func (s *Session) seed(node schema.Node, path Path) error {
	key := path.Pointer()
	if _, done := s.seeded[key]; done {
		return nil
	}
	if s.values.Has(path) {
		return nil
	}
	value, ok, err := DecodeDefault(node)
	if err != nil {
		s.seeded[key] = path
		return err
	}
	if !ok {
		return nil
	}
	if err := s.values.Set(path, value); err != nil {
		return err
	}
	s.seeded[key] = path
	return nil
}

func (s *Session) touch(path Path) {
	s.seeded[path.Pointer()] = path
}

// Set stores value at path without conversion.
func (s *Session) Set(path Path, value any) error {
	if _, err := s.lookup(path); err != nil {
		return err
	}
	if err := s.values.Set(path, value); err != nil {
		return err
	}
	s.touch(path)
	return nil
}

// Input parses text for the leaf at path and stores it. Empty text clears
// string and number leaves; enum strings only accept one of their options.
// Numbers use floating point parsing and integer leaves reject fractions.
func (s *Session) Input(path Path, text string) error {
	node, err := s.lookup(path)
	if err != nil {
		return err
	}
	switch typed := node.(type) {
	case schema.StringNode:
		if text == "" {
			return s.Clear(path)
		}
		if usesSelect(typed) {
			options, err := enumOptions(typed)
			if err != nil {
				return err
			}
			for _, opt := range options {
				if opt.Text() == text {
					return s.Set(path, opt.Value)
				}
			}
			return fmt.Errorf("%w: %q is not an option of %s", ErrInvalidInput, text, path)
		}
		return s.Set(path, text)
	case schema.NumberNode:
		if strings.TrimSpace(text) == "" {
			return s.Clear(path)
		}
		v, err := interchange.ParseNumber(text, typed.Integer)
		if err != nil {
			return fmt.Errorf("%w at %s: %v", ErrInvalidInput, path, err)
		}
		return s.Set(path, v)
	case schema.BooleanNode:
		b, err := parseBool(text)
		if err != nil {
			return fmt.Errorf("%w at %s: %v", ErrInvalidInput, path, err)
		}
		return s.Set(path, b)
	default:
		return fmt.Errorf("%w: %s is a %s, not a leaf", ErrInvalidInput, path, node.Kind())
	}
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "on", "1", "yes":
		return true, nil
	case "false", "off", "0", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", text)
}

// Clear removes the value at path. The path stays marked as touched so its
// default is not re-applied.
func (s *Session) Clear(path Path) error {
	if _, err := s.lookup(path); err != nil {
		return err
	}
	s.values.Unset(path)
	s.touch(path)
	return nil
}

// AddElement appends one unset element to the array at path and returns its
// index.
func (s *Session) AddElement(path Path) (int, error) {
	if err := s.requireArray(path); err != nil {
		return 0, err
	}
	return s.values.Append(path, nil)
}

// SetLen grows or truncates the array at path to n elements.
func (s *Session) SetLen(path Path, n int) error {
	if err := s.requireArray(path); err != nil {
		return err
	}
	s.touch(path)
	if n == s.values.Len(path) && s.values.Has(path) {
		return nil
	}
	return s.values.Resize(path, n)
}

// RemoveElement deletes element i of the array at path. Later elements move
// down one index, and so does the record of which of their paths were
// already seeded.
func (s *Session) RemoveElement(path Path, i int) error {
	if err := s.requireArray(path); err != nil {
		return err
	}
	if err := s.values.RemoveAt(path, i); err != nil {
		return err
	}

	depth := len(path)
	removed := path.Child(schema.Index(i))
	shifted := make(map[string]Path, len(s.seeded))
	for key, seededPath := range s.seeded {
		switch {
		case seededPath.HasPrefix(removed):
			continue
		case seededPath.HasPrefix(path) && len(seededPath) > depth && seededPath[depth].IsIndex() && seededPath[depth].Index() > i:
			moved := seededPath.Child()
			moved[depth] = schema.Index(seededPath[depth].Index() - 1)
			shifted[moved.Pointer()] = moved
		default:
			shifted[key] = seededPath
		}
	}
	s.seeded = shifted
	return nil
}

// Collect returns a deep copy of the collected values. Objects are maps
// keyed by property name, arrays are slices, and untouched leaves without a
// default are absent.
func (s *Session) Collect() any {
	snapshot := s.values.Snapshot()
	if snapshot == nil {
		if _, isObject := s.root.(schema.ObjectNode); isObject {
			return map[string]any{}
		}
	}
	return snapshot
}

func (s *Session) lookup(path Path) (schema.Node, error) {
	node, err := schema.Lookup(s.root, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathNotFound, err)
	}
	return node, nil
}

func (s *Session) requireArray(path Path) error {
	node, err := s.lookup(path)
	if err != nil {
		return err
	}
	if _, ok := node.(schema.ArrayNode); !ok {
		return fmt.Errorf("%w: %s is a %s", ErrNotArray, path, node.Kind())
	}
	return nil
}
