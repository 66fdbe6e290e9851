// Package confirmations stores the one-time email confirmation tokens issued
// when an account is registered.
package confirmations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/diary/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// confirmation tokens.
type Repository interface {
	// Create stores token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns the confirmation for token, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.Confirmation, error)

	// Delete removes a token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error
}
