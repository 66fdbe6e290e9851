package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/dbx"
	"github.com/dmitrijs2005/diary/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	query := `
		SELECT user_id, show_targets, show_tags, theme, default_targets, custom_field_names
		FROM settings
		WHERE user_id = $1
	`
	var (
		s     models.Settings
		theme string
		names []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &s.ShowTargets, &s.ShowTags, &theme, &s.DefaultTargets, &names)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.Theme = models.Theme(theme)
	s.CustomFieldNames = models.FieldSchema{}
	if len(names) > 0 {
		if err := json.Unmarshal(names, &s.CustomFieldNames); err != nil {
			return nil, fmt.Errorf("decode custom field names: %w", err)
		}
	}
	return &s, nil
}

func (r *PostgresRepository) Ensure(ctx context.Context, userID string) (*models.Settings, error) {
	query := `
		INSERT INTO settings (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.Settings) error {
	names := s.CustomFieldNames
	if names == nil {
		names = models.FieldSchema{}
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode custom field names: %w", err)
	}

	query := `
		UPDATE settings
		SET show_targets = $2, show_tags = $3, theme = $4, default_targets = $5, custom_field_names = $6
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		s.UserID, s.ShowTargets, s.ShowTags, string(s.Theme), s.DefaultTargets, string(encoded))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
