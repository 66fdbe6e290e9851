// Package fields keeps the custom fields of diary entries in line with the
// field names a user has defined in their settings.
//
// Names live on the user's settings as an ordered list; values live in
// per-entry rows. Forms carry each value under Key(name), and the name list
// itself under NameListKey (or its "[]" spelling). Both sides of a form round
// trip must use Key so that rendering and parsing agree.
package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/server/models"
)

const (
	KeyPrefix        = "custom_"
	NameListKey      = "custom_fields"
	NameListKeyArray = "custom_fields[]"

	MaxNameLength  = 50
	MaxValueLength = 255
)

// FormField is one custom field as shown on an entry form.
type FormField struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Key returns the form key carrying the value of the named field. The name is
// embedded verbatim.
func Key(name string) string {
	return KeyPrefix + name
}

// BuildFormModel returns one FormField per defined name, in defined order.
// Missing values render as "". Values stored under names that are no longer
// defined are left out of the form but stay in storage until the next save.
func BuildFormModel(defined models.FieldSchema, existing models.FieldValues) []FormField {
	out := make([]FormField, 0, len(defined))
	for _, name := range defined {
		out = append(out, FormField{Name: name, Key: Key(name), Value: existing[name]})
	}
	return out
}

// NormalizeNames cleans a submitted list of field names: names are trimmed,
// empty ones dropped, and repeats removed keeping the first occurrence.
// Names that are not valid UTF-8 or contain control characters are dropped
// too. Order is otherwise preserved.
//
// Everything malformed is filtered silently except length: a name longer
// than MaxNameLength is reported as a ValidationError so the user learns the
// limit instead of losing the field.
func NormalizeNames(raw []string) (models.FieldSchema, error) {
	out := make(models.FieldSchema, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	verr := common.NewValidationError()

	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || !validName(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			verr.Add(NameListKey, "field name \""+name+"\" is longer than 50 characters")
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// Collect picks the submitted values of the defined fields for one entry.
// Values are trimmed. A field whose value ends up empty produces no row,
// unless keepBlank is set, in which case it is kept with an empty value.
// Submitted keys that do not match a defined name are ignored.
func Collect(entryID string, defined models.FieldSchema, submitted map[string]string, keepBlank bool) []models.CustomField {
	out := make([]models.CustomField, 0, len(defined))
	for _, name := range defined {
		value := strings.TrimSpace(submitted[Key(name)])
		if value == "" && !keepBlank {
			continue
		}
		out = append(out, models.CustomField{
			EntryID:  entryID,
			Position: len(out),
			Name:     name,
			Value:    value,
		})
	}
	return out
}

// CheckValues reports submitted values of defined fields that exceed
// MaxValueLength after trimming or that ValidText rejects.
func CheckValues(defined models.FieldSchema, submitted map[string]string) error {
	verr := common.NewValidationError()
	for _, name := range defined {
		key := Key(name)
		value := strings.TrimSpace(submitted[key])
		switch {
		case !ValidText(value):
			verr.Add(key, InvalidTextMessage)
		case utf8.RuneCountInString(value) > MaxValueLength:
			verr.Add(key, "value is longer than 255 characters")
		}
	}
	return verr.OrNil()
}

const InvalidTextMessage = "contains invalid characters"

// ValidText reports whether s can be stored as text: valid UTF-8 without NUL
// bytes. Other control characters such as newlines are allowed.
func ValidText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

func validName(name string) bool {
	return utf8.ValidString(name) && !strings.ContainsFunc(name, unicode.IsControl)
}
