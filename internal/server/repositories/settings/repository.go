// Package settings stores the single per-user display settings row, which
// also holds the ordered list of custom field names.
package settings

import (
	"context"

	"github.com/dmitrijs2005/diary/internal/server/models"
)

type Repository interface {
	// Get returns the user's settings or common.ErrorNotFound. It never
	// creates a row.
	Get(ctx context.Context, userID string) (*models.Settings, error)
	// Ensure returns the user's settings, creating the default row first if
	// none exists. Concurrent callers end up with the same single row.
	Ensure(ctx context.Context, userID string) (*models.Settings, error)
	// Update overwrites every column of the user's row.
	Update(ctx context.Context, s *models.Settings) error
}
