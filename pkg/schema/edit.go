package schema

import (
	"fmt"
	"unicode/utf8"
)

// Every helper in this file is copy-on-write: the input node is never
// modified and the returned node shares no mutable state with it.

// WithTitle returns node with its title replaced, truncated to
// MaxTitleLength runes.
func WithTitle(node Node, title string) Node {
	base := node.Base().clone()
	base.Title = truncateRunes(title, MaxTitleLength)
	return node.clone().withBase(base)
}

// WithNullable toggles nullability.
func WithNullable(node Node, nullable bool) Node {
	base := node.Base().clone()
	base.Nullable = nullable
	return node.clone().withBase(base)
}

// WithSpecification switches the specification. Switching to enum keeps any
// previously entered items so toggling back and forth is lossless.
func WithSpecification(node Node, spec Specification) Node {
	base := node.Base().clone()
	if spec != SpecificationEnum {
		spec = SpecificationNone
	}
	base.Specification = spec
	return node.clone().withBase(base)
}

// WithDefault replaces the string-encoded default literal.
func WithDefault(node Node, literal string) Node {
	base := node.Base().clone()
	base.Default = literal
	return node.clone().withBase(base)
}

// WithKind retypes a node. Common fields survive; kind specific constraints
// are dropped because they do not apply to the new kind. Retyping between
// number and integer keeps the numeric bounds.
func WithKind(node Node, kind Kind) Node {
	if node.Kind() == kind {
		return Clone(node)
	}
	base := node.Base().clone()
	if num, ok := node.(NumberNode); ok && (kind == KindNumber || kind == KindInteger) {
		num = num.clone().(NumberNode)
		num.Integer = kind == KindInteger
		return num
	}
	return New(kind).withBase(base)
}

// AddEnumItem appends an empty enum item.
func AddEnumItem(node Node) Node {
	base := node.Base().clone()
	base.Enum = append(base.Enum, "")
	return node.clone().withBase(base)
}

// SetEnumItem replaces the enum item at index.
func SetEnumItem(node Node, index int, literal string) (Node, error) {
	base := node.Base().clone()
	if index < 0 || index >= len(base.Enum) {
		return nil, fmt.Errorf("%w: enum index %d", ErrIndexOutOfRange, index)
	}
	base.Enum[index] = literal
	return node.clone().withBase(base), nil
}

// RemoveEnumItem deletes the enum item at index.
func RemoveEnumItem(node Node, index int) (Node, error) {
	base := node.Base().clone()
	if index < 0 || index >= len(base.Enum) {
		return nil, fmt.Errorf("%w: enum index %d", ErrIndexOutOfRange, index)
	}
	base.Enum = append(base.Enum[:index:index], base.Enum[index+1:]...)
	return node.clone().withBase(base), nil
}

// WithMinLength sets the minimum length, raising MaxLength when it would fall
// below the new minimum.
func (n StringNode) WithMinLength(v *int) StringNode {
	n = n.clone().(StringNode)
	n.MinLength = cloneInt(v)
	if v != nil && n.MaxLength != nil && *n.MaxLength < *v {
		n.MaxLength = cloneInt(v)
	}
	return n
}

// WithMaxLength sets the maximum length, lowering MinLength when needed.
func (n StringNode) WithMaxLength(v *int) StringNode {
	n = n.clone().(StringNode)
	n.MaxLength = cloneInt(v)
	if v != nil && n.MinLength != nil && *n.MinLength > *v {
		n.MinLength = cloneInt(v)
	}
	return n
}

// WithMinimum sets the lower bound, raising Maximum when it would fall below
// the new minimum.
func (n NumberNode) WithMinimum(v *float64) NumberNode {
	n = n.clone().(NumberNode)
	n.Minimum = cloneFloat(v)
	if v != nil && n.Maximum != nil && *n.Maximum < *v {
		n.Maximum = cloneFloat(v)
	}
	return n
}

// WithMaximum sets the upper bound, lowering Minimum when needed.
func (n NumberNode) WithMaximum(v *float64) NumberNode {
	n = n.clone().(NumberNode)
	n.Maximum = cloneFloat(v)
	if v != nil && n.Minimum != nil && *n.Minimum > *v {
		n.Minimum = cloneFloat(v)
	}
	return n
}

// WithItems replaces the element schema. A nil items node resets it to the
// placeholder.
func (n ArrayNode) WithItems(items Node) ArrayNode {
	n = n.clone().(ArrayNode)
	if items == nil {
		items = Placeholder()
	}
	n.Items = Clone(items)
	return n
}

// WithMinItems sets the minimum element count.
func (n ArrayNode) WithMinItems(v *int) ArrayNode {
	n = n.clone().(ArrayNode)
	n.MinItems = cloneInt(v)
	if v != nil && n.MaxItems != nil && *n.MaxItems < *v {
		n.MaxItems = cloneInt(v)
	}
	return n
}

// WithMaxItems sets the maximum element count.
func (n ArrayNode) WithMaxItems(v *int) ArrayNode {
	n = n.clone().(ArrayNode)
	n.MaxItems = cloneInt(v)
	if v != nil && n.MinItems != nil && *n.MinItems > *v {
		n.MinItems = cloneInt(v)
	}
	return n
}

// AddProperty appends a property. Names are not checked here; Validate
// reports duplicates so editors can show both entries while the user fixes
// them.
func (n ObjectNode) AddProperty(name string, child Node) ObjectNode {
	n = n.clone().(ObjectNode)
	if child == nil {
		child = Placeholder()
	}
	n.Properties = append(n.Properties, Property{Name: name, Schema: Clone(child)})
	return n
}

// RenameProperty changes the name of the property at index.
func (n ObjectNode) RenameProperty(index int, name string) (ObjectNode, error) {
	if index < 0 || index >= len(n.Properties) {
		return ObjectNode{}, fmt.Errorf("%w: property index %d", ErrIndexOutOfRange, index)
	}
	n = n.clone().(ObjectNode)
	n.Properties[index].Name = name
	return n, nil
}

// SetPropertySchema replaces the schema of the property at index.
func (n ObjectNode) SetPropertySchema(index int, child Node) (ObjectNode, error) {
	if index < 0 || index >= len(n.Properties) {
		return ObjectNode{}, fmt.Errorf("%w: property index %d", ErrIndexOutOfRange, index)
	}
	if child == nil {
		child = Placeholder()
	}
	n = n.clone().(ObjectNode)
	n.Properties[index].Schema = Clone(child)
	return n, nil
}

// RemoveProperty deletes the property at index.
func (n ObjectNode) RemoveProperty(index int) (ObjectNode, error) {
	if index < 0 || index >= len(n.Properties) {
		return ObjectNode{}, fmt.Errorf("%w: property index %d", ErrIndexOutOfRange, index)
	}
	n = n.clone().(ObjectNode)
	n.Properties = append(n.Properties[:index:index], n.Properties[index+1:]...)
	return n, nil
}

// Property returns the first property called name.
func (n ObjectNode) Property(name string) (Node, bool) {
	for _, prop := range n.Properties {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// Update applies fn to the node at path and returns a new root with the
// result spliced in. Ancestors along the path are copied; siblings are
// cloned with them so the returned tree never aliases the input.
func Update(root Node, path Path, fn func(Node) (Node, error)) (Node, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	if len(path) == 0 {
		next, err := fn(Clone(root))
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, ErrNilNode
		}
		return next, nil
	}

	head, rest := path[0], path[1:]
	switch typed := root.(type) {
	case ObjectNode:
		if head.IsIndex() {
			return nil, fmt.Errorf("%w: index %s on object", ErrPathMismatch, head)
		}
		for i, prop := range typed.Properties {
			if prop.Name != head.Key() {
				continue
			}
			child, err := Update(prop.Schema, rest, fn)
			if err != nil {
				return nil, err
			}
			return typed.SetPropertySchema(i, child)
		}
		return nil, fmt.Errorf("%w: property %q", ErrPathNotFound, head.Key())
	case ArrayNode:
		if !head.IsIndex() {
			return nil, fmt.Errorf("%w: key %s on array", ErrPathMismatch, head)
		}
		items := typed.Items
		if items == nil {
			items = Placeholder()
		}
		child, err := Update(items, rest, fn)
		if err != nil {
			return nil, err
		}
		return typed.WithItems(child), nil
	default:
		return nil, fmt.Errorf("%w: %s has no children", ErrPathMismatch, root.Kind())
	}
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}
