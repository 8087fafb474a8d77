// Package vault composes the credential-vault core: the per-operation
// security context, the secret-field codec, the merge-on-save policy, and
// the service tying them to the document stores.
package vault

import (
	"context"
	"fmt"
	"strconv"

	"github.com/NoTermTm/noterm-vault/internal/cryptox"
	"github.com/NoTermTm/noterm-vault/internal/keyring"
	"github.com/NoTermTm/noterm-vault/internal/logging"
	"github.com/NoTermTm/noterm-vault/internal/models"
	"github.com/NoTermTm/noterm-vault/internal/repositories/settings"
)

// SecurityContext is the ephemeral, per-operation view of the vault's
// security state. It is recomputed for every operation and never persisted.
type SecurityContext struct {
	// MasterKey is the cached passphrase, nil while the vault is locked or
	// while no encryption salt exists yet.
	MasterKey []byte

	// EncryptionSalt is stable across all secrets under one master key.
	EncryptionSalt string

	// PersistSecrets mirrors the "save passwords" preference.
	PersistSecrets bool
}

// HasMasterKey reports whether an unlocked passphrase is available.
func (sc SecurityContext) HasMasterKey() bool { return sc.MasterKey != nil }

// CanEncrypt reports whether secrets may be written as ciphertext.
func (sc SecurityContext) CanEncrypt() bool {
	return sc.HasMasterKey() && sc.PersistSecrets && sc.EncryptionSalt != ""
}

// Resolver builds a SecurityContext from the settings store and the session
// keyring. Its one permitted write side effect is the first-use bootstrap of
// the encryption salt.
type Resolver struct {
	settings settings.Repository
	keyring  *keyring.Keyring
	log      logging.Logger
}

func NewResolver(s settings.Repository, k *keyring.Keyring, log logging.Logger) *Resolver {
	return &Resolver{settings: s, keyring: k, log: log}
}

// Resolve reads the persist-secrets preference and master-key material, and
// combines them with the cached passphrase. If persistence is enabled, a
// hash exists, and a passphrase is cached but no encryption salt exists yet,
// one is generated and persisted. The cached passphrase is exposed only when
// an encryption salt is present.
func (r *Resolver) Resolve(ctx context.Context) (SecurityContext, error) {
	persist, err := readPersistSecrets(ctx, r.settings)
	if err != nil {
		return SecurityContext{}, err
	}

	material, err := LoadMasterKeyMaterial(ctx, r.settings)
	if err != nil {
		return SecurityContext{}, err
	}

	cached, unlocked := r.keyring.Get()

	if persist && material.HasHash() && unlocked && material.EncryptionSalt == "" {
		salt, err := cryptox.GenerateSalt(cryptox.SaltLength)
		if err != nil {
			return SecurityContext{}, err
		}
		if err := r.settings.Set(ctx, settings.KeyMasterKeyEncSalt, salt); err != nil {
			return SecurityContext{}, fmt.Errorf("failed to bootstrap encryption salt: %w", err)
		}
		material.EncryptionSalt = salt
		r.log.Info(ctx, "encryption salt bootstrapped")
	}

	sc := SecurityContext{
		EncryptionSalt: material.EncryptionSalt,
		PersistSecrets: persist,
	}
	if unlocked && material.EncryptionSalt != "" {
		sc.MasterKey = cached
	}
	return sc, nil
}

// LoadMasterKeyMaterial assembles the persisted master-key state from the
// settings store. Missing keys read as empty values.
func LoadMasterKeyMaterial(ctx context.Context, s settings.Repository) (models.MasterKeyMaterial, error) {
	var m models.MasterKeyMaterial
	var err error

	if m.Hash, err = s.Get(ctx, settings.KeyMasterKeyHash); err != nil {
		return m, err
	}
	if m.VerificationSalt, err = s.Get(ctx, settings.KeyMasterKeySalt); err != nil {
		return m, err
	}
	if m.EncryptionSalt, err = s.Get(ctx, settings.KeyMasterKeyEncSalt); err != nil {
		return m, err
	}

	raw, err := s.Get(ctx, settings.KeyLockTimeout)
	if err != nil {
		return m, err
	}
	if raw != "" {
		if m.LockTimeoutMinutes, err = strconv.Atoi(raw); err != nil {
			return m, fmt.Errorf("invalid lock timeout %q: %w", raw, err)
		}
	}
	return m, nil
}

func readPersistSecrets(ctx context.Context, s settings.Repository) (bool, error) {
	v, err := s.Get(ctx, settings.KeySavePassword)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}
