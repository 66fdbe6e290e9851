// Package forms turns submitted form data into validated service inputs and
// describes the forms the diary pages render.
package forms

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindCheckbox Kind = "checkbox"
	KindSelect   Kind = "select"
	KindPassword Kind = "password"
	KindEmail    Kind = "email"
)

// Field describes one form control.
type Field struct {
	Name    string            `json:"name"`
	Label   string            `json:"label"`
	Kind    Kind              `json:"kind"`
	Value   string            `json:"value,omitempty"`
	Checked bool              `json:"checked,omitempty"`
	Options []string          `json:"options,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

const (
	classControl = "form-control"
	classCheck   = "form-check-input"
)

// Style applies the common CSS classes to every field: checkboxes get
// form-check-input, everything else form-control plus the label as
// placeholder. Attributes already present on a field are preserved.
func Style(fields []Field) []Field {
	for i := range fields {
		f := &fields[i]
		if f.Attrs == nil {
			f.Attrs = map[string]string{}
		}
		if f.Kind == KindCheckbox {
			setDefault(f.Attrs, "class", classCheck)
			continue
		}
		setDefault(f.Attrs, "class", classControl)
		if f.Label != "" {
			setDefault(f.Attrs, "placeholder", f.Label)
		}
	}
	return fields
}

func setDefault(m map[string]string, k, v string) {
	if _, ok := m[k]; !ok {
		m[k] = v
	}
}
