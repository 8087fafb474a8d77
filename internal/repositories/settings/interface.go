// Package settings persists application settings consumed by the vault,
// including the master-key material and the persist-secrets preference.
package settings

import "context"

// Keys consumed by the security layer.
const (
	KeyMasterKeyHash    = "security.masterKeyHash"
	KeyMasterKeySalt    = "security.masterKeySalt"
	KeyMasterKeyEncSalt = "security.masterKeyEncSalt"
	KeyLockTimeout      = "security.lockTimeoutMinutes"
	KeySavePassword     = "connection.savePassword"
)

// Repository is a string key/value settings store. Get returns "" for
// missing keys; absence and emptiness are equivalent for every consumer.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
