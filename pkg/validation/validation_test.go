package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

func orderNode() schema.Node {
	status := schema.StringNode{Common: schema.Common{
		Specification: schema.SpecificationEnum,
		Enum:          []string{`"new"`, `"paid"`},
	}}
	qty := schema.WithKind(schema.New(schema.KindNumber), schema.KindInteger).(schema.NumberNode).
		WithMinimum(schema.Float(1))
	tags := schema.New(schema.KindArray).(schema.ArrayNode).
		WithItems(schema.New(schema.KindString).(schema.StringNode).WithMaxLength(schema.Int(3))).
		WithMaxItems(schema.Int(2))

	return schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("status", status).
		AddProperty("qty", qty).
		AddProperty("note", schema.WithNullable(schema.New(schema.KindString), true)).
		AddProperty("tags", tags)
}

func TestValidateValueAcceptsCollectedValue(t *testing.T) {
	value := map[string]any{
		"status": "paid",
		"qty":    2.0,
		"note":   nil,
		"tags":   []any{"a", "bc"},
	}
	result := ValidateValue(orderNode(), value)
	if !result.Valid {
		t.Fatalf("expected valid, got %#v", result.Issues)
	}
}

func TestValidateValueReportsEveryIssue(t *testing.T) {
	value := map[string]any{
		"qty":  1.5,
		"tags": []any{"a", "long"},
	}
	result := ValidateValue(orderNode(), value)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}

	got := map[string]string{}
	for _, issue := range result.Issues {
		got[issue.Path] = issue.Field
	}
	want := map[string]string{
		"/status": "status",
		"/qty":    "qty",
		"/tags/1": "tags[1]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issue locations mismatch (-want +got):\n%s", diff)
	}
	if len(result.Errors()["/tags/1"]) != 1 {
		t.Fatalf("expected one message for /tags/1, got %#v", result.Errors())
	}
}

func TestValidateValueNormalizesTypedValues(t *testing.T) {
	node := schema.New(schema.KindArray).(schema.ArrayNode).
		WithItems(schema.WithKind(schema.New(schema.KindNumber), schema.KindInteger))
	if result := ValidateValue(node, []int{1, 2}); !result.Valid {
		t.Fatalf("expected valid, got %#v", result.Issues)
	}
}

func TestToOpenAPIRequiresEnumWithoutDefault(t *testing.T) {
	withDefault := schema.WithDefault(schema.StringNode{Common: schema.Common{
		Specification: schema.SpecificationEnum,
		Enum:          []string{`"x"`, ` `},
	}}, "x")
	root := schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("status", orderNode().(schema.ObjectNode).Properties[0].Schema).
		AddProperty("kind", withDefault)

	out := ToOpenAPI(root)
	if diff := cmp.Diff([]string{"status"}, out.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"x"}, out.Properties["kind"].Value.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchema(t *testing.T) {
	node, result := ValidateSchema([]byte(`{"type":"object","title":"","properties":{"n":{"type":"string","title":"","minLength":5,"maxLength":2}}}`))
	if node == nil {
		t.Fatalf("expected decoded node")
	}
	want := []Issue{{Field: "n", Message: "lower bound exceeds upper bound: min length 5 > max length 2"}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	node, result = ValidateSchema([]byte(`{"type":"object","properties":{"n":{"type":"string","minLength":"x"}}}`))
	if node != nil || result.Valid {
		t.Fatalf("expected decode failure")
	}
	want = []Issue{{Path: "/properties/n/minLength", Field: "n.minLength", Message: "invalid keyword: expected integer"}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	_, result = ValidateSchema([]byte(`{"type":"object","properties":{"q":{"type":"integer","default":3.5}}}`))
	want = []Issue{{Path: "/properties/q/default", Field: "q.default", Message: `invalid default: "3.5" is not an integer`}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	_, result = ValidateSchema([]byte(`{"type":"object","properties":{"n":{"type":"number","maximum":1e400}}}`))
	if result.Valid || len(result.Issues) != 1 || result.Issues[0].Path != "/properties/n/maximum" {
		t.Fatalf("expected a maximum issue, got %+v", result.Issues)
	}
}
