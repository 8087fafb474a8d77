package profiles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/NoTermTm/noterm-vault/internal/common"
	"github.com/NoTermTm/noterm-vault/internal/cryptox"
	"github.com/NoTermTm/noterm-vault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE profiles (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  body TEXT NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsertAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p := &models.AuthProfile{
		ID:       "p1",
		Name:     "deploy key",
		Username: "deploy",
		AuthMethod: models.AuthMethod{
			Type:       models.AuthMethodPrivateKey,
			PrivateKey: models.EncryptedSecret(cryptox.EncryptedPayload{IV: "aXY=", Data: "a2V5"}),
		},
	}
	require.NoError(t, r.Upsert(ctx, p))

	got, err := r.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "deploy key", got.Name)
	assert.Equal(t, models.AuthMethodPrivateKey, got.AuthMethod.Type)
	assert.True(t, got.AuthMethod.PrivateKey.IsEncrypted())
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll_PreservesOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, r.Upsert(ctx, &models.AuthProfile{ID: id}))
	}

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, "p2", all[1].ID)
}

func TestDeleteByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.AuthProfile{ID: "p1"}))
	require.NoError(t, r.DeleteByID(ctx, "p1"))

	_, err := r.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
