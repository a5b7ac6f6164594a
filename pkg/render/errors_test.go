package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
)

func TestMapErrors(t *testing.T) {
	owner := schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("email", schema.New(schema.KindString)).
		AddProperty("a/b", schema.New(schema.KindString))
	root := schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("name", schema.New(schema.KindString)).
		AddProperty("owner", owner).
		AddProperty("tags", schema.New(schema.KindArray))

	session := form.NewSession(root)
	if _, err := session.AddElement(form.Path{schema.Key("tags")}); err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	ctrl := session.Render()

	payload := map[string][]string{
		"/name":              {"Name is required"},
		"owner.email":        {"Email invalid"},
		"$.input.tags[0]":    {"Tag must be unique"},
		"#/owner/a~1b":       {"Slash key"},
		"/owner/missing":     {"Owner incomplete"},
		"non_field_errors":   {"Form level error"},
		"request/unknown":    {"Should fall back to form errors"},
		"":                   {"Unscoped form error", " "},
	}

	mapped := render.MapErrors(ctrl, payload)

	wantFields := map[string][]string{
		"/name":        {"Name is required"},
		"/owner/email": {"Email invalid"},
		"/tags/0":      {"Tag must be unique"},
		"/owner/a~1b":  {"Slash key"},
		"/owner":       {"Owner incomplete"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
