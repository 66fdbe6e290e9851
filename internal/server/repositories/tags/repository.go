// Package tags stores the free-form labels attached to diary entries.
package tags

import "context"

type Repository interface {
	// Replace makes tags the exact label set of entryID.
	Replace(ctx context.Context, entryID string, tags []string) error
	// ForEntries returns the labels of each listed entry, sorted.
	ForEntries(ctx context.Context, entryIDs []string) (map[string][]string, error)
	// Distinct returns every label the user has used, sorted.
	Distinct(ctx context.Context, userID string) ([]string, error)
}
