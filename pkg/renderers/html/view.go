package html

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-kafkaforms/pkg/form"
)

const (
	// LenPrefix marks hidden inputs carrying an array length, "_len:/tags".
	LenPrefix = "_len:"
	// ActionField names the submit buttons' field.
	ActionField = "_action"
	// RootName is the input name of a scalar root, which has an empty pointer.
	RootName = "#"
)

// fieldName returns the input name for a control.
func fieldName(ctrl form.Control) string {
	if ptr := ctrl.Pointer(); ptr != "" {
		return ptr
	}
	return RootName
}

func fieldID(ctrl form.Control) string {
	ptr := ctrl.Pointer()
	if ptr == "" {
		return "kf-root"
	}
	replacer := strings.NewReplacer("/", "-", "~", "_", " ", "_")
	return "kf" + replacer.Replace(ptr)
}

// flatten linearises the control tree into template rows. Open and close
// rows bracket groups, lists and list items so the template needs no
// recursion.
func flatten(ctrl form.Control, errs map[string][]string) []any {
	var rows []any
	if ctrl.Kind == form.ControlGroup && len(ctrl.Path) == 0 {
		for _, child := range ctrl.Children {
			rows = appendControl(rows, child, errs)
		}
		return rows
	}
	return appendControl(rows, ctrl, errs)
}

func appendControl(rows []any, ctrl form.Control, errs map[string][]string) []any {
	ptr := ctrl.Pointer()
	switch ctrl.Kind {
	case form.ControlGroup:
		rows = append(rows, map[string]any{
			"kind":    "group_open",
			"pointer": ptr,
			"label":   sanitizeLabel(ctrl.Label),
		})
		for _, child := range ctrl.Children {
			rows = appendControl(rows, child, errs)
		}
		return append(rows, map[string]any{"kind": "group_close"})

	case form.ControlList:
		n := ctrl.Len()
		rows = append(rows, map[string]any{
			"kind":    "list_open",
			"pointer": ptr,
			"label":   sanitizeLabel(ctrl.Label),
			"lenName": LenPrefix + ptr,
			"length":  strconv.Itoa(n),
			"errors":  stringsToAny(errs[ptr]),
		})
		canRemove := ctrl.MinItems == nil || n > *ctrl.MinItems
		for i, child := range ctrl.Children {
			rows = append(rows, map[string]any{
				"kind":         "item_open",
				"pointer":      child.Pointer(),
				"label":        sanitizeLabel(child.Label),
				"removeAction": "remove:" + ptr + ":" + strconv.Itoa(i),
				"canRemove":    canRemove,
			})
			// element labels live on the item row
			child.Label = ""
			rows = appendControl(rows, child, errs)
			rows = append(rows, map[string]any{"kind": "item_close"})
		}
		return append(rows, map[string]any{
			"kind":      "list_close",
			"addAction": "add:" + ptr,
			"canAdd":    ctrl.MaxItems == nil || n < *ctrl.MaxItems,
		})
	}

	row := map[string]any{
		"kind":     "field",
		"control":  string(ctrl.Kind),
		"name":     fieldName(ctrl),
		"id":       fieldID(ctrl),
		"label":    sanitizeLabel(ctrl.Label),
		"value":    ctrl.Text(),
		"required": ctrl.Required,
		"errors":   stringsToAny(errs[ptr]),
	}
	switch ctrl.Kind {
	case form.ControlSelect:
		options := make([]any, 0, len(ctrl.Options))
		for _, opt := range ctrl.Options {
			options = append(options, map[string]any{
				"value":    opt.Text(),
				"label":    opt.Label,
				"selected": opt.Selected,
			})
		}
		row["options"] = options
	case form.ControlCheckbox:
		row["checked"] = ctrl.Checked()
	case form.ControlNumber:
		row["step"] = "any"
		if ctrl.Integer {
			row["step"] = "1"
		}
		row["min"] = formatBound(ctrl.Minimum)
		row["max"] = formatBound(ctrl.Maximum)
	case form.ControlText:
		row["minLength"] = formatCount(ctrl.MinLength)
		row["maxLength"] = formatCount(ctrl.MaxLength)
	}
	return append(rows, row)
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatCount(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func stringsToAny(in []string) []any {
	if len(in) == 0 {
		return nil
	}
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
