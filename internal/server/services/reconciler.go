// Package services contains the diary business logic. Services validate
// input before any write, group related writes with dbx.WithTx, and report
// failures with the sentinel errors of package common.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/server/fields"
	"github.com/dmitrijs2005/diary/internal/server/models"
	"github.com/dmitrijs2005/diary/internal/server/repositories/repomanager"
)

// Reconciler keeps stored custom field rows in line with a user's defined
// field names.
type Reconciler struct {
	repomanager repomanager.RepositoryManager
	keepBlank   bool
}

func NewReconciler(m repomanager.RepositoryManager, keepBlank bool) *Reconciler {
	return &Reconciler{repomanager: m, keepBlank: keepBlank}
}

// Reconcile replaces every custom field row of entryID with the values
// submitted for the defined names. Run it on the transaction that writes the
// entry so a failure leaves the previous rows in place.
func (r *Reconciler) Reconcile(ctx context.Context, tx dbx.DBTX, entryID string, defined models.FieldSchema, submitted map[string]string) ([]models.CustomField, error) {
	rows := fields.Collect(entryID, defined, submitted, r.keepBlank)

	repo := r.repomanager.CustomFields(tx)
	if err := repo.DeleteAll(ctx, entryID); err != nil {
		return nil, fmt.Errorf("error clearing custom fields: %w", err)
	}
	if len(rows) > 0 {
		if err := repo.InsertMany(ctx, rows); err != nil {
			return nil, fmt.Errorf("error storing custom fields: %w", err)
		}
	}
	return rows, nil
}

// SetDefinedNames normalizes raw and stores it as the user's field names,
// creating the settings row if needed. Entries are not touched: values of
// removed names stay stored until the entry is saved again.
func (r *Reconciler) SetDefinedNames(ctx context.Context, db dbx.DBTX, userID string, raw []string) (*models.Settings, error) {
	if raw == nil {
		raw = []string{}
	}
	return r.UpdateSettings(ctx, db, userID, raw, nil)
}

// UpdateSettings loads the user's settings, applies edit and, when raw is
// not nil, replaces the field names with the normalized raw list before
// storing the result. Names are validated before anything is written.
func (r *Reconciler) UpdateSettings(ctx context.Context, db dbx.DBTX, userID string, raw []string, edit func(*models.Settings)) (*models.Settings, error) {
	var names models.FieldSchema
	if raw != nil {
		var err error
		if names, err = fields.NormalizeNames(raw); err != nil {
			return nil, err
		}
	}

	repo := r.repomanager.Settings(db)
	s, err := repo.Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	if edit != nil {
		edit(s)
	}
	if raw != nil {
		s.CustomFieldNames = names
	}
	if err := repo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	return s, nil
}
