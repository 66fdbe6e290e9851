// Package entries stores diary entries. Tags and custom field values are kept
// by their own repositories and joined in by the service layer.
package entries

import (
	"context"

	"github.com/dmitrijs2005/diary/internal/server/models"
)

type Repository interface {
	// Create inserts entry and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, entry *models.Entry) error
	// Update rewrites text and targets of an entry owned by entry.UserID and
	// refreshes UpdatedAt. A missing or foreign entry yields ErrorNotFound.
	Update(ctx context.Context, entry *models.Entry) error
	// Get returns the entry only if userID owns it.
	Get(ctx context.Context, userID, id string) (*models.Entry, error)
	// List returns the user's entries newest first.
	List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error)
	// Count returns how many entries List would yield without Limit/Offset.
	Count(ctx context.Context, userID string, filter models.EntryFilter) (int, error)
	Delete(ctx context.Context, userID, id string) error
}
