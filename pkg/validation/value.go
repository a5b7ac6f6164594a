package validation

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

// ToOpenAPI converts a node tree into an OpenAPI 3.0 schema for value
// validation. String enums without a default become required properties of
// their parent, since their form control starts on an empty choice.
func ToOpenAPI(node schema.Node) *openapi3.Schema {
	base := node.Base()
	out := &openapi3.Schema{
		Title:    base.Title,
		Nullable: base.Nullable,
	}
	if schema.IsEnum(node) {
		out.Enum = enumValues(base.Enum)
	}

	switch typed := node.(type) {
	case schema.StringNode:
		out.Type = &openapi3.Types{openapi3.TypeString}
		if typed.MinLength != nil && *typed.MinLength > 0 {
			out.MinLength = uint64(*typed.MinLength)
		}
		out.MaxLength = toUint64(typed.MaxLength)
	case schema.NumberNode:
		out.Type = &openapi3.Types{openapi3.TypeNumber}
		if typed.Integer {
			out.Type = &openapi3.Types{openapi3.TypeInteger}
		}
		out.Min = typed.Minimum
		out.Max = typed.Maximum
	case schema.BooleanNode:
		out.Type = &openapi3.Types{openapi3.TypeBoolean}
	case schema.ObjectNode:
		out.Type = &openapi3.Types{openapi3.TypeObject}
		out.Properties = make(openapi3.Schemas, len(typed.Properties))
		for _, prop := range typed.Properties {
			out.Properties[prop.Name] = openapi3.NewSchemaRef("", ToOpenAPI(prop.Schema))
			if requiredChoice(prop.Schema) {
				out.Required = append(out.Required, prop.Name)
			}
		}
	case schema.ArrayNode:
		out.Type = &openapi3.Types{openapi3.TypeArray}
		items := typed.Items
		if items == nil {
			items = schema.Placeholder()
		}
		out.Items = openapi3.NewSchemaRef("", ToOpenAPI(items))
		if typed.MinItems != nil && *typed.MinItems > 0 {
			out.MinItems = uint64(*typed.MinItems)
		}
		out.MaxItems = toUint64(typed.MaxItems)
	}
	return out
}

// ValidateValue checks a collected value against node. Every failure is
// reported, each located by a pointer into the value.
func ValidateValue(node schema.Node, value any) Result {
	if node == nil {
		return Result{Issues: []Issue{{Message: schema.ErrNilNode.Error()}}}
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return Result{Issues: []Issue{{Message: "value is not JSON: " + err.Error()}}}
	}

	err = ToOpenAPI(node).VisitJSON(normalized, openapi3.MultiErrors())
	if err == nil {
		return Result{Valid: true}
	}
	return Result{Issues: valueIssues(node, err)}
}

func valueIssues(root schema.Node, err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, inner := range multi {
			out = append(out, valueIssues(root, inner)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return []Issue{{Message: err.Error()}}
	}

	tokens := schemaErr.JSONPointer()
	path := make(schema.Path, 0, len(tokens))
	for _, token := range tokens {
		path = append(path, schema.Key(token))
	}
	ptr := path.Pointer()

	field := strings.Join(tokens, ".")
	if parsed, err := form.ParsePointer(root, ptr); err == nil {
		field = parsed.String()
	}

	message := schemaErr.Reason
	if message == "" {
		message = schemaErr.Error()
	}
	return []Issue{{Path: ptr, Field: field, Message: message}}
}

func requiredChoice(node schema.Node) bool {
	_, isString := node.(schema.StringNode)
	return isString && schema.IsEnum(node) && node.Base().Default == ""
}

func enumValues(entries []string) []any {
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(entry), &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func toUint64(v *int) *uint64 {
	if v == nil || *v < 0 {
		return nil
	}
	n := uint64(*v)
	return &n
}

// normalizeValue round-trips value through JSON so typed Go values (ints,
// structs, typed slices) reach the validator as map/slice/float64.
func normalizeValue(value any) (any, error) {
	switch value.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
