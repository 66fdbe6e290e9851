package models

import "slices"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// FieldSchema is the ordered list of custom field names a user has defined.
type FieldSchema []string

// Has reports whether name is defined.
func (s FieldSchema) Has(name string) bool {
	return slices.Contains(s, name)
}

// Settings controls which optional parts of the diary a user sees and which
// custom fields their entries carry. There is exactly one row per user.
type Settings struct {
	UserID           string
	ShowTargets      bool
	ShowTags         bool
	Theme            Theme
	DefaultTargets   string
	CustomFieldNames FieldSchema
}

// DefaultSettings returns the values a freshly created settings row has.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:           userID,
		ShowTargets:      true,
		ShowTags:         true,
		Theme:            ThemeLight,
		CustomFieldNames: FieldSchema{},
	}
}
