// Package models defines server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID           string
	Email        string
	DisplayName  string
	Phone        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	AvatarKey    string
	CreatedAt    time.Time
}

// Confirmation is a pending email confirmation link issued on registration.
type Confirmation struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
