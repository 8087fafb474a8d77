// Package connections is the document store for connection records, in
// on-disk (possibly-encrypted) form. Records keep their insertion order.
package connections

import (
	"context"

	"github.com/NoTermTm/noterm-vault/internal/models"
)

type Repository interface {
	// Upsert inserts a record or replaces the body of an existing one,
	// keeping its position in the sequence.
	Upsert(ctx context.Context, rec *models.ConnectionRecord) error

	// GetByID returns common.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.ConnectionRecord, error)

	// GetAll returns all records in stored order.
	GetAll(ctx context.Context) ([]*models.ConnectionRecord, error)

	DeleteByID(ctx context.Context, id string) error
}
