package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/diary/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace should run inside the same transaction as the entry write.
func (r *PostgresRepository) Replace(ctx context.Context, entryID string, tags []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = $1`, entryID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, tag := range tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`, entryID, tag)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func placeholders(n, from int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(p, ", ")
}

func (r *PostgresRepository) ForEntries(ctx context.Context, entryIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(entryIDs))
	for i, id := range entryIDs {
		args[i] = id
	}
	query := `SELECT entry_id, tag FROM entry_tags WHERE entry_id IN (` +
		placeholders(len(entryIDs), 1) + `) ORDER BY entry_id, tag`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		out[id] = append(out[id], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) Distinct(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT t.tag FROM entry_tags t
		JOIN entries e ON e.id = t.entry_id
		WHERE e.user_id = $1
		ORDER BY t.tag
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}
