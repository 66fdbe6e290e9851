// Package customfields stores the per-entry values of user-defined fields.
package customfields

import (
	"context"

	"github.com/dmitrijs2005/diary/internal/server/models"
)

type Repository interface {
	// DeleteAll removes every stored value of entryID.
	DeleteAll(ctx context.Context, entryID string) error
	// InsertMany stores rows. Rows must have unique names within an entry.
	InsertMany(ctx context.Context, rows []models.CustomField) error
	// ListByEntry returns the stored values in position order.
	ListByEntry(ctx context.Context, entryID string) ([]models.CustomField, error)
}
