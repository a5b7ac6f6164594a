package schema

import "fmt"

// Kind enumerates the field kinds a schema node can describe.
type Kind string

const (
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Kinds lists every supported kind in the order editors present them.
var Kinds = []Kind{KindString, KindBoolean, KindNumber, KindInteger, KindObject, KindArray}

// ParseKind validates a raw kind name.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindString, KindBoolean, KindNumber, KindInteger, KindObject, KindArray:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedKind, raw)
	}
}

// Specification adorns a node with an extra value restriction.
type Specification string

const (
	SpecificationNone Specification = "none"
	SpecificationEnum Specification = "enum"
)

// MaxTitleLength bounds node titles, counted in runes.
const MaxTitleLength = 64

// Common holds the fields shared by every node variant.
//
// Enum entries and Default are string-encoded literals: enum entries are JSON
// literals, Default is the raw string for string nodes, a numeral or
// "true"/"false" for scalars, and a JSON document for objects and arrays. An
// empty Default means no default.
type Common struct {
	Title         string
	Nullable      bool
	Specification Specification
	Enum          []string
	Default       string
}

// Node is the closed set of schema variants. Consumers switch over the
// concrete types StringNode, NumberNode, BooleanNode, ObjectNode and
// ArrayNode; no other implementations exist.
type Node interface {
	Kind() Kind
	Base() Common
	withBase(Common) Node
	clone() Node
}

// StringNode describes a text leaf.
type StringNode struct {
	Common
	MinLength *int
	MaxLength *int
}

// NumberNode describes a numeric leaf. Integer switches the reported kind
// between number and integer; both share the same constraints.
type NumberNode struct {
	Common
	Integer bool
	Minimum *float64
	Maximum *float64
}

// BooleanNode describes a true/false leaf.
type BooleanNode struct {
	Common
}

// Property is a named child of an object node.
type Property struct {
	Name   string
	Schema Node
}

// ObjectNode describes a mapping with declared, ordered properties.
type ObjectNode struct {
	Common
	Properties []Property
}

// ArrayNode describes a sequence whose elements all share Items.
type ArrayNode struct {
	Common
	Items    Node
	MinItems *int
	MaxItems *int
}

func (n StringNode) Kind() Kind { return KindString }

func (n NumberNode) Kind() Kind {
	if n.Integer {
		return KindInteger
	}
	return KindNumber
}

func (n BooleanNode) Kind() Kind { return KindBoolean }
func (n ObjectNode) Kind() Kind  { return KindObject }
func (n ArrayNode) Kind() Kind   { return KindArray }

func (n StringNode) Base() Common  { return n.Common }
func (n NumberNode) Base() Common  { return n.Common }
func (n BooleanNode) Base() Common { return n.Common }
func (n ObjectNode) Base() Common  { return n.Common }
func (n ArrayNode) Base() Common   { return n.Common }

func (n StringNode) withBase(c Common) Node  { n.Common = c; return n }
func (n NumberNode) withBase(c Common) Node  { n.Common = c; return n }
func (n BooleanNode) withBase(c Common) Node { n.Common = c; return n }
func (n ObjectNode) withBase(c Common) Node  { n.Common = c; return n }
func (n ArrayNode) withBase(c Common) Node   { n.Common = c; return n }

func (n StringNode) clone() Node {
	n.Common = n.Common.clone()
	n.MinLength = cloneInt(n.MinLength)
	n.MaxLength = cloneInt(n.MaxLength)
	return n
}

func (n NumberNode) clone() Node {
	n.Common = n.Common.clone()
	n.Minimum = cloneFloat(n.Minimum)
	n.Maximum = cloneFloat(n.Maximum)
	return n
}

func (n BooleanNode) clone() Node {
	n.Common = n.Common.clone()
	return n
}

func (n ObjectNode) clone() Node {
	n.Common = n.Common.clone()
	if n.Properties != nil {
		props := make([]Property, len(n.Properties))
		for i, prop := range n.Properties {
			props[i] = Property{Name: prop.Name, Schema: Clone(prop.Schema)}
		}
		n.Properties = props
	}
	return n
}

func (n ArrayNode) clone() Node {
	n.Common = n.Common.clone()
	n.Items = Clone(n.Items)
	n.MinItems = cloneInt(n.MinItems)
	n.MaxItems = cloneInt(n.MaxItems)
	return n
}

func (c Common) clone() Common {
	if c.Enum != nil {
		c.Enum = append([]string(nil), c.Enum...)
	}
	return c
}

// Clone returns a deep copy of the subtree rooted at node.
func Clone(node Node) Node {
	if node == nil {
		return nil
	}
	return node.clone()
}

// New returns an empty node of the requested kind. Arrays start with a
// placeholder string item, matching what an editor shows for a fresh array.
func New(kind Kind) Node {
	base := Common{Specification: SpecificationNone}
	switch kind {
	case KindBoolean:
		return BooleanNode{Common: base}
	case KindNumber:
		return NumberNode{Common: base}
	case KindInteger:
		return NumberNode{Common: base, Integer: true}
	case KindObject:
		return ObjectNode{Common: base}
	case KindArray:
		return ArrayNode{Common: base, Items: Placeholder()}
	default:
		return StringNode{Common: base}
	}
}

// Placeholder is the node substituted wherever a child schema is missing: an
// untitled, non-nullable string.
func Placeholder() Node {
	return StringNode{Common: Common{Specification: SpecificationNone}}
}

// IsEnum reports whether the node carries the enum specification.
func IsEnum(node Node) bool {
	return node != nil && node.Base().Specification == SpecificationEnum
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Int returns a pointer to v; handy for optional bounds.
func Int(v int) *int { return &v }

// Float returns a pointer to v; handy for optional bounds.
func Float(v float64) *float64 { return &v }
