package forms

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/server/fields"
	"github.com/dmitrijs2005/diary/internal/server/models"
)

const MaxDefaultTargetsLength = 255

// SettingsInput is a validated display settings submission.
type SettingsInput struct {
	ShowTargets    bool
	ShowTags       bool
	DefaultTargets string
	// Theme is empty when the form did not choose one.
	Theme models.Theme
	// Names is nil when no custom field list was submitted.
	Names []string
}

// ParseSettings validates the settings form. Checkboxes absent from the
// submission are false.
func ParseSettings(v Values) (*SettingsInput, error) {
	verr := common.NewValidationError()

	in := &SettingsInput{
		ShowTargets:    v.Bool("show_targets"),
		ShowTags:       v.Bool("show_tags"),
		DefaultTargets: strings.TrimSpace(v.String("default_targets")),
		Theme:          models.Theme(strings.TrimSpace(v.String("theme"))),
		Names:          NameList(v),
	}

	switch {
	case !fields.ValidText(in.DefaultTargets):
		verr.Add("default_targets", fields.InvalidTextMessage)
	case utf8.RuneCountInString(in.DefaultTargets) > MaxDefaultTargetsLength:
		verr.Add("default_targets", "must be at most 255 characters")
	}
	if in.Theme != "" && !in.Theme.Valid() {
		verr.Add("theme", "must be light or dark")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// NameList returns the raw custom field names from either the "[]" or the
// plain spelling of the list key, or nil if neither was submitted.
func NameList(v Values) []string {
	if !v.Has(fields.NameListKeyArray) && !v.Has(fields.NameListKey) {
		return nil
	}
	names := v.List(fields.NameListKeyArray, fields.NameListKey)
	if names == nil {
		names = []string{}
	}
	return names
}

// SettingsFields describes the settings form controls.
func SettingsFields(s *models.Settings) []Field {
	return Style([]Field{
		{Name: "show_targets", Label: "Show targets", Kind: KindCheckbox, Checked: s.ShowTargets},
		{Name: "show_tags", Label: "Show tags", Kind: KindCheckbox, Checked: s.ShowTags},
		{Name: "theme", Label: "Theme", Kind: KindSelect, Value: string(s.Theme), Options: []string{string(models.ThemeLight), string(models.ThemeDark)}},
		{
			Name: "default_targets", Label: "Default targets", Kind: KindText, Value: s.DefaultTargets,
			Attrs: map[string]string{"placeholder": "e.g. Read a book, Run 5km"},
		},
	})
}
