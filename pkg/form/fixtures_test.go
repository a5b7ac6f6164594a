package form_test

import (
	"testing"

	"github.com/goliatone/go-kafkaforms/pkg/form"
	"github.com/goliatone/go-kafkaforms/pkg/testsupport"
)

func TestFixtureDefaultsSeededOnRender(t *testing.T) {
	session := form.NewSession(testsupport.LoadSchema(t, "order.yaml"))
	root := session.Render()

	if got := len(root.Children); got != 7 {
		t.Fatalf("expected 7 controls, got %d", got)
	}
	want := map[string]any{
		"status":  "created",
		"amount":  9.99,
		"express": false,
	}
	if diff := testsupport.CompareGolden(want, session.Collect()); diff != "" {
		t.Fatalf("collected defaults mismatch (-want +got):\n%s", diff)
	}

	status := root.Children[1]
	if status.Kind != form.ControlSelect || status.Required {
		t.Fatalf("status should be an optional select, got %+v", status)
	}
	if len(status.Options) != 3 || !status.Options[0].Selected {
		t.Fatalf("expected three options with the default selected, got %+v", status.Options)
	}
}
