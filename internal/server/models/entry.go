package models

import "time"

// Entry is one diary record. UserID never changes after creation.
type Entry struct {
	ID        string
	UserID    string
	Text      string
	Targets   string
	Tags      []string
	Fields    []CustomField
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomField is a user-defined named value stored for one entry.
type CustomField struct {
	EntryID  string
	Position int
	Name     string
	Value    string
}

// FieldValues is the name → value view of an entry's custom fields.
type FieldValues map[string]string

// Values returns the stored custom fields keyed by name.
func (e *Entry) Values() FieldValues {
	v := make(FieldValues, len(e.Fields))
	for _, f := range e.Fields {
		v[f.Name] = f.Value
	}
	return v
}

// EntryFilter narrows an entry listing. Zero values mean "no filter".
type EntryFilter struct {
	TextContains string
	TagEquals    string
	Limit        int
	Offset       int
}
