// Package users declares the account storage contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/diary/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its generated ID and CreatedAt.
	// A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Activate(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id, displayName, phone string) error
	SetAvatar(ctx context.Context, id, key string) error
	SetPassword(ctx context.Context, id, hash string) error
	// Delete removes the user. Entries, settings and confirmations go with it.
	Delete(ctx context.Context, id string) error
}
