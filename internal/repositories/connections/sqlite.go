package connections

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

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.ConnectionRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize connection: %w", err)
	}

	// new records append at the end; existing ones keep their position
	query := `
		INSERT INTO connections (id, position, body)
		VALUES (?,
			COALESCE(
				(SELECT position FROM connections c WHERE c.id = ?),
				(SELECT COALESCE(MAX(position), 0) + 1 FROM connections)),
			?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body
	`
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.ID, string(body)); err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.ConnectionRecord, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM connections WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	var rec models.ConnectionRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode connection: %w", err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.ConnectionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM connections ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	result := make([]*models.ConnectionRecord, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan connection row: %w", err)
		}
		var rec models.ConnectionRecord
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode connection: %w", err)
		}
		result = append(result, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connection rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}
