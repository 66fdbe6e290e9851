package customfields

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, entryID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM custom_fields WHERE entry_id = $1`, entryID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertMany(ctx context.Context, rows []models.CustomField) error {
	query := `
		INSERT INTO custom_fields (entry_id, position, name, value)
		VALUES ($1, $2, $3, $4)
	`
	for _, f := range rows {
		if _, err := r.db.ExecContext(ctx, query, f.EntryID, f.Position, f.Name, f.Value); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) ListByEntry(ctx context.Context, entryID string) ([]models.CustomField, error) {
	query := `
		SELECT entry_id, position, name, value FROM custom_fields
		WHERE entry_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.CustomField
	for rows.Next() {
		var f models.CustomField
		if err := rows.Scan(&f.EntryID, &f.Position, &f.Name, &f.Value); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
