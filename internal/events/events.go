// Package events publishes diary domain events for other services to consume.
package events

import "context"

const (
	TopicEntryCreated    = "diary.entry.created"
	TopicEntryUpdated    = "diary.entry.updated"
	TopicEntryDeleted    = "diary.entry.deleted"
	TopicSettingsUpdated = "diary.settings.updated"
	TopicUserRegistered  = "diary.user.registered"
)

type EntryChanged struct {
	EntryID string   `json:"entry_id"`
	UserID  string   `json:"user_id"`
	Tags    []string `json:"tags,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

type EntryDeleted struct {
	EntryID string `json:"entry_id"`
	UserID  string `json:"user_id"`
}

type SettingsUpdated struct {
	UserID           string   `json:"user_id"`
	CustomFieldNames []string `json:"custom_field_names"`
}

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
