package html_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/render"
	"github.com/goliatone/go-kafkaforms/pkg/renderers/html"
	"github.com/goliatone/go-kafkaforms/pkg/schema"
	"github.com/goliatone/go-kafkaforms/pkg/testsupport"
)

func orderSchema() schema.Node {
	status := schema.StringNode{Common: schema.Common{
		Title:         "Status",
		Specification: schema.SpecificationEnum,
		Enum:          []string{`"a"`, `"b"`},
	}}
	count := schema.WithDefault(schema.WithKind(schema.New(schema.KindNumber), schema.KindInteger), "2")
	tags := schema.New(schema.KindArray).(schema.ArrayNode).
		WithItems(schema.WithTitle(schema.New(schema.KindString), "Tag")).
		WithMaxItems(schema.Int(2))

	return schema.WithTitle(schema.New(schema.KindObject).(schema.ObjectNode).
		AddProperty("name", schema.WithTitle(schema.New(schema.KindString), "Name <b>")).
		AddProperty("status", status).
		AddProperty("count", count).
		AddProperty("active", schema.New(schema.KindBoolean)).
		AddProperty("tags", tags), "Order")
}

func TestRendererDrawsControls(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" || renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected renderer identity %q %q", renderer.Name(), renderer.ContentType())
	}

	session := form.NewSession(orderSchema())
	out, err := renderer.Render(context.Background(), session, render.RenderOptions{
		Action: "/submit",
		Hidden: []render.HiddenField{render.Hidden("templateId", "t-1")},
		Errors: map[string][]string{
			"/count":  {"too big"},
			"/absent": {"unknown field"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)

	for _, fragment := range []string{
		`<form class="kf-form" method="POST" action="/submit" novalidate>`,
		`<h2 class="kf-form__title">Order</h2>`,
		`<input type="hidden" name="templateId" value="t-1">`,
		`<label for="kf-name">Name</label>`,
		`name="/name" value=""`,
		`<select id="kf-status" name="/status" required>`,
		`<option value="a">a</option>`,
		`name="/count" value="2" step="1"`,
		`<input type="hidden" name="/active" value="false">`,
		`<input type="hidden" name="_len:/tags" value="0">`,
		`value="add:/tags"`,
		`<p class="kf-error">too big</p>`,
		`<li>unknown field</li>`,
	} {
		if !strings.Contains(doc, fragment) {
			t.Fatalf("rendered form missing %q:\n%s", fragment, doc)
		}
	}
	if strings.Contains(doc, "<b>") {
		t.Fatalf("label markup was not stripped:\n%s", doc)
	}
}

func TestRendererFixtureDefaults(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	session := form.NewSession(testsupport.LoadSchema(t, "order.yaml"))
	out, err := renderer.Render(testsupport.Context(), session, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)

	for _, fragment := range []string{
		`<h2 class="kf-form__title">Order event</h2>`,
		`<option value="created" selected>created</option>`,
		`name="/amount" value="9.99"`,
		`name="/orderId" value="" minlength="1"`,
		`<input type="hidden" name="_len:/tags" value="0">`,
	} {
		if !strings.Contains(doc, fragment) {
			t.Fatalf("rendered form missing %q:\n%s", fragment, doc)
		}
	}
}

func TestRendererDrawsListItems(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	session := form.NewSession(orderSchema())
	tags := form.Path{schema.Key("tags")}
	for i := 0; i < 2; i++ {
		if _, err := session.AddElement(tags); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}
	if err := session.Input(tags.Child(schema.Index(1)), "blue"); err != nil {
		t.Fatalf("Input: %v", err)
	}

	out, err := renderer.Render(context.Background(), session, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)
	for _, fragment := range []string{
		`<input type="hidden" name="_len:/tags" value="2">`,
		`<span class="kf-item__label">Tag 2</span>`,
		`value="remove:/tags:1"`,
		`name="/tags/1" value="blue"`,
		`value="add:/tags" disabled`,
	} {
		if !strings.Contains(doc, fragment) {
			t.Fatalf("rendered form missing %q:\n%s", fragment, doc)
		}
	}
}

func TestApplyFormCollectsValues(t *testing.T) {
	session := form.NewSession(orderSchema())
	values := url.Values{
		"/name":      {"x"},
		"/status":    {"b"},
		"/count":     {"5"},
		"/active":    {"false", "true"},
		"_len:/tags": {"1"},
		"/tags/0":    {"t1"},
		"templateId": {"ignored"},
		"_action":    {"add:/tags"},
	}

	action, err := html.ApplyForm(session, values)
	if err != nil {
		t.Fatalf("ApplyForm: %v", err)
	}
	if action.Kind != html.ActionAdd || action.Path.Pointer() != "/tags" {
		t.Fatalf("unexpected action %+v", action)
	}

	want := map[string]any{
		"name":   "x",
		"status": "b",
		"count":  5.0,
		"active": true,
		"tags":   []any{"t1", nil},
	}
	if diff := cmp.Diff(want, session.Collect()); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFormRemoveShiftsElements(t *testing.T) {
	session := form.NewSession(orderSchema())
	values := url.Values{
		"_len:/tags": {"2"},
		"/tags/0":    {"a"},
		"/tags/1":    {"b"},
		"_action":    {"remove:/tags:0"},
	}

	action, err := html.ApplyForm(session, values)
	if err != nil {
		t.Fatalf("ApplyForm: %v", err)
	}
	if action.Kind != html.ActionRemove || action.Index != 0 {
		t.Fatalf("unexpected action %+v", action)
	}
	got, _ := session.Value(form.Path{schema.Key("tags")})
	if diff := cmp.Diff([]any{"b"}, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFormReportsFieldErrors(t *testing.T) {
	session := form.NewSession(orderSchema())
	action, err := html.ApplyForm(session, url.Values{
		"/count": {"1.5"},
		"/name":  {"kept"},
	})

	var fieldErrs html.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if action.Kind != html.ActionSubmit {
		t.Fatalf("unexpected action %+v", action)
	}
	want := html.FieldErrors{"/count": {`"1.5" is not a whole number`}}
	if diff := cmp.Diff(want, fieldErrs); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if got, _ := session.Value(form.Path{schema.Key("name")}); got != "kept" {
		t.Fatalf("other fields not applied, name = %#v", got)
	}
}

func TestApplyFormRejectsMalformedPosts(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"unknown field", url.Values{"/nope": {"x"}}, form.ErrInvalidPointer},
		{"bad action", url.Values{"_action": {"explode"}}, html.ErrInvalidAction},
		{"bad remove index", url.Values{"_action": {"remove:/tags:x"}}, html.ErrInvalidAction},
		{"bad length", url.Values{"_len:/tags": {"-1"}}, html.ErrInvalidLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := html.ApplyForm(form.NewSession(orderSchema()), tc.values)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
