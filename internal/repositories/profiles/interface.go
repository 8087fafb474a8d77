// Package profiles is the document store for reusable auth profiles, in
// on-disk (possibly-encrypted) form. Records keep their insertion order.
package profiles

import (
	"context"

	"github.com/NoTermTm/noterm-vault/internal/models"
)

type Repository interface {
	// Upsert inserts a profile or replaces the body of an existing one,
	// keeping its position in the sequence.
	Upsert(ctx context.Context, p *models.AuthProfile) error

	// GetByID returns common.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.AuthProfile, error)

	// GetAll returns all profiles in stored order.
	GetAll(ctx context.Context) ([]*models.AuthProfile, error)

	DeleteByID(ctx context.Context, id string) error
}
