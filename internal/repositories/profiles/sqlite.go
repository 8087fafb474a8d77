package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NoTermTm/noterm-vault/internal/common"
	"github.com/NoTermTm/noterm-vault/internal/dbx"
	"github.com/NoTermTm/noterm-vault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.AuthProfile) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	query := `
		INSERT INTO profiles (id, position, body)
		VALUES (?,
			COALESCE(
				(SELECT position FROM profiles p WHERE p.id = ?),
				(SELECT COALESCE(MAX(position), 0) + 1 FROM profiles)),
			?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body
	`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.ID, string(body)); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.AuthProfile, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM profiles WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p models.AuthProfile
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.AuthProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM profiles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AuthProfile, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var p models.AuthProfile
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
