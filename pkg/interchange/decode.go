package interchange

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
	"github.com/valyala/fastjson"
)

// Decode parses an interchange JSON document into a schema tree. Properties
// are read in document order. A missing type falls back to string, a
// nullable type array drops its "null" member, and array items fall back to
// the placeholder node.
func Decode(raw []byte) (schema.Node, error) {
	var parser fastjson.Parser
	value, err := parser.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("interchange: parse: %w", err)
	}
	return decodeNode(value, "")
}

func decodeNode(v *fastjson.Value, ptr string) (schema.Node, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w at %s", ErrNotObject, pointer(ptr))
	}

	kind, nullable, err := decodeType(v.Get("type"), ptr)
	if err != nil {
		return nil, err
	}

	base := schema.Common{
		Nullable:      nullable,
		Specification: schema.SpecificationNone,
	}
	if title := v.Get("title"); title != nil {
		if title.Type() != fastjson.TypeString {
			return nil, fmt.Errorf("%w at %s/title: expected string", ErrInvalidKeyword, pointer(ptr))
		}
		base.Title = string(title.GetStringBytes())
	}

	if enum := v.Get("enum"); enum != nil {
		items, err := enum.Array()
		if err != nil {
			return nil, fmt.Errorf("%w at %s/enum: expected array", ErrInvalidEnum, pointer(ptr))
		}
		base.Specification = schema.SpecificationEnum
		for _, item := range items {
			base.Enum = append(base.Enum, string(canonical(nil, item)))
		}
	}

	def := v.Get("default")
	if def != nil && def.Type() == fastjson.TypeNull {
		def = nil
	}

	switch kind {
	case schema.KindString:
		node := schema.StringNode{Common: base}
		if node.MinLength, err = optInt(v, "minLength", ptr); err != nil {
			return nil, err
		}
		if node.MaxLength, err = optInt(v, "maxLength", ptr); err != nil {
			return nil, err
		}
		if def != nil {
			switch def.Type() {
			case fastjson.TypeString:
				node.Default = string(def.GetStringBytes())
			case fastjson.TypeObject, fastjson.TypeArray:
				return nil, fmt.Errorf("%w at %s/default: expected scalar", ErrInvalidDefault, pointer(ptr))
			default:
				node.Default = def.String()
			}
		}
		return node, nil

	case schema.KindNumber, schema.KindInteger:
		node := schema.NumberNode{Common: base, Integer: kind == schema.KindInteger}
		if node.Minimum, err = optFloat(v, "minimum", ptr); err != nil {
			return nil, err
		}
		if node.Maximum, err = optFloat(v, "maximum", ptr); err != nil {
			return nil, err
		}
		if def != nil {
			var literal string
			switch def.Type() {
			case fastjson.TypeNumber:
				literal = def.String()
			case fastjson.TypeString:
				literal = string(def.GetStringBytes())
			default:
				return nil, fmt.Errorf("%w at %s/default: expected number", ErrInvalidDefault, pointer(ptr))
			}
			num, err := ParseNumber(literal, node.Integer)
			if err != nil {
				return nil, fmt.Errorf("%w at %s/default: %v", ErrInvalidDefault, pointer(ptr), err)
			}
			node.Default = strconv.FormatFloat(num, 'f', -1, 64)
		}
		return node, nil

	case schema.KindBoolean:
		node := schema.BooleanNode{Common: base}
		if def != nil {
			switch def.Type() {
			case fastjson.TypeTrue:
				node.Default = "true"
			case fastjson.TypeFalse:
				node.Default = "false"
			case fastjson.TypeString:
				s := string(def.GetStringBytes())
				if s != "true" && s != "false" {
					return nil, fmt.Errorf("%w at %s/default: %q is not a boolean", ErrInvalidDefault, pointer(ptr), s)
				}
				node.Default = s
			default:
				return nil, fmt.Errorf("%w at %s/default: expected boolean", ErrInvalidDefault, pointer(ptr))
			}
		}
		return node, nil

	case schema.KindObject:
		node := schema.ObjectNode{Common: base}
		if props := v.Get("properties"); props != nil {
			obj, err := props.Object()
			if err != nil {
				return nil, fmt.Errorf("%w at %s/properties: expected object", ErrInvalidKeyword, pointer(ptr))
			}
			seen := make(map[string]struct{}, obj.Len())
			var visitErr error
			obj.Visit(func(key []byte, child *fastjson.Value) {
				if visitErr != nil {
					return
				}
				name := string(key)
				if name == "" {
					visitErr = fmt.Errorf("interchange: %w at %s/properties", schema.ErrEmptyPropertyName, pointer(ptr))
					return
				}
				if _, dup := seen[name]; dup {
					visitErr = fmt.Errorf("interchange: %w %q at %s/properties", schema.ErrDuplicateProperty, name, pointer(ptr))
					return
				}
				seen[name] = struct{}{}
				decoded, err := decodeNode(child, ptr+"/properties/"+escapeToken(name))
				if err != nil {
					visitErr = err
					return
				}
				node.Properties = append(node.Properties, schema.Property{Name: name, Schema: decoded})
			})
			if visitErr != nil {
				return nil, visitErr
			}
		}
		if def != nil {
			if def.Type() != fastjson.TypeObject {
				return nil, fmt.Errorf("%w at %s/default: expected object", ErrInvalidDefault, pointer(ptr))
			}
			node.Default = string(canonical(nil, def))
		}
		return node, nil

	case schema.KindArray:
		node := schema.ArrayNode{Common: base}
		if items := v.Get("items"); items != nil {
			decoded, err := decodeNode(items, ptr+"/items")
			if err != nil {
				return nil, err
			}
			node.Items = decoded
		} else {
			node.Items = schema.Placeholder()
		}
		if node.MinItems, err = optInt(v, "minItems", ptr); err != nil {
			return nil, err
		}
		if node.MaxItems, err = optInt(v, "maxItems", ptr); err != nil {
			return nil, err
		}
		if def != nil {
			if def.Type() != fastjson.TypeArray {
				return nil, fmt.Errorf("%w at %s/default: expected array", ErrInvalidDefault, pointer(ptr))
			}
			node.Default = string(canonical(nil, def))
		}
		return node, nil
	}
	return nil, fmt.Errorf("interchange: %w %q at %s", schema.ErrUnsupportedKind, kind, pointer(ptr))
}

// decodeType reads "type" as either a kind name or a list of kind names in
// which "null" marks nullability.
func decodeType(v *fastjson.Value, ptr string) (schema.Kind, bool, error) {
	if v == nil {
		return schema.KindString, false, nil
	}
	switch v.Type() {
	case fastjson.TypeString:
		kind, err := schema.ParseKind(string(v.GetStringBytes()))
		if err != nil {
			return "", false, fmt.Errorf("interchange: %w at %s/type", err, pointer(ptr))
		}
		return kind, false, nil
	case fastjson.TypeArray:
		nullable := false
		var names []string
		for _, entry := range v.GetArray() {
			if entry.Type() != fastjson.TypeString {
				return "", false, fmt.Errorf("%w at %s/type: expected strings", ErrInvalidType, pointer(ptr))
			}
			name := string(entry.GetStringBytes())
			if name == "null" {
				nullable = true
				continue
			}
			names = append(names, name)
		}
		switch len(names) {
		case 0:
			return schema.KindString, nullable, nil
		case 1:
			kind, err := schema.ParseKind(names[0])
			if err != nil {
				return "", false, fmt.Errorf("interchange: %w at %s/type", err, pointer(ptr))
			}
			return kind, nullable, nil
		default:
			return "", false, fmt.Errorf("%w at %s/type: union of %v", ErrInvalidType, pointer(ptr), names)
		}
	default:
		return schema.KindString, false, nil
	}
}

func optInt(v *fastjson.Value, key, ptr string) (*int, error) {
	field := v.Get(key)
	if field == nil || field.Type() == fastjson.TypeNull {
		return nil, nil
	}
	n, err := field.Int()
	if err != nil {
		return nil, fmt.Errorf("%w at %s/%s: expected integer", ErrInvalidKeyword, pointer(ptr), key)
	}
	return &n, nil
}

func optFloat(v *fastjson.Value, key, ptr string) (*float64, error) {
	field := v.Get(key)
	if field == nil || field.Type() == fastjson.TypeNull {
		return nil, nil
	}
	f, err := field.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w at %s/%s: expected number", ErrInvalidKeyword, pointer(ptr), key)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w at %s/%s: %s is not a finite number", ErrInvalidKeyword, pointer(ptr), key, field.String())
	}
	return &f, nil
}

// canonical appends the compact JSON encoding of v. Object members keep
// their document order and strings are re-escaped without HTML escaping.
func canonical(dst []byte, v *fastjson.Value) []byte {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		dst = append(dst, '{')
		first := true
		obj.Visit(func(key []byte, child *fastjson.Value) {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendString(dst, string(key))
			dst = append(dst, ':')
			dst = canonical(dst, child)
		})
		return append(dst, '}')
	case fastjson.TypeArray:
		dst = append(dst, '[')
		for i, item := range v.GetArray() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = canonical(dst, item)
		}
		return append(dst, ']')
	case fastjson.TypeString:
		return appendString(dst, string(v.GetStringBytes()))
	default:
		return v.MarshalTo(dst)
	}
}

func appendString(dst []byte, s string) []byte {
	var buf bytes.Buffer
	writeString(&buf, s)
	return append(dst, buf.Bytes()...)
}

func pointer(ptr string) string {
	if ptr == "" {
		return "#"
	}
	return "#" + ptr
}

func escapeToken(token string) string {
	return schema.Path{schema.Key(token)}.Pointer()[1:]
}
