package vault

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/NoTermTm/noterm-vault/internal/common"
	"github.com/NoTermTm/noterm-vault/internal/cryptox"
	"github.com/NoTermTm/noterm-vault/internal/dbx"
	"github.com/NoTermTm/noterm-vault/internal/keyring"
	"github.com/NoTermTm/noterm-vault/internal/logging"
	"github.com/NoTermTm/noterm-vault/internal/models"
	"github.com/NoTermTm/noterm-vault/internal/repositories/connections"
	"github.com/NoTermTm/noterm-vault/internal/repositories/profiles"
	"github.com/NoTermTm/noterm-vault/internal/repositories/settings"
	"github.com/google/uuid"
)

// Service is the application-facing surface of the credential vault: master
// passphrase lifecycle, connection and profile persistence with envelope
// encryption, and the scrubbed export bundle.
//
// Independent operations may run concurrently; the keyring is the only
// shared mutable state. Storage errors from the repositories are propagated
// unchanged, never retried here.
type Service struct {
	db      *sql.DB
	keyring *keyring.Keyring
	log     logging.Logger
}

// NewService binds the vault to its database, session keyring, and logger.
func NewService(db *sql.DB, k *keyring.Keyring, log logging.Logger) *Service {
	return &Service{db: db, keyring: k, log: log}
}

func (s *Service) settingsRepo(db dbx.DBTX) settings.Repository {
	return settings.NewSQLiteRepository(db)
}

func (s *Service) connectionRepo(db dbx.DBTX) connections.Repository {
	return connections.NewSQLiteRepository(db)
}

func (s *Service) profileRepo(db dbx.DBTX) profiles.Repository {
	return profiles.NewSQLiteRepository(db)
}

func (s *Service) resolver(db dbx.DBTX) *Resolver {
	return NewResolver(s.settingsRepo(db), s.keyring, s.log)
}

func validatePassphrase(passphrase, confirm []byte) error {
	if len(passphrase) < common.MinPassphraseLength {
		return common.ErrPassphraseTooShort
	}
	if !bytes.Equal(passphrase, confirm) {
		return common.ErrConfirmationMismatch
	}
	return nil
}

// SetMasterPassphrase establishes the master passphrase for the first time:
// it stores the verification digest and salt, and caches the passphrase for
// the session. The encryption salt is not created here; it is bootstrapped
// lazily on first encrypting use.
func (s *Service) SetMasterPassphrase(ctx context.Context, passphrase, confirm []byte) error {
	if err := validatePassphrase(passphrase, confirm); err != nil {
		return err
	}

	repo := s.settingsRepo(s.db)
	material, err := LoadMasterKeyMaterial(ctx, repo)
	if err != nil {
		return err
	}
	if material.HasHash() {
		return common.ErrMasterKeyExists
	}

	salt, err := cryptox.GenerateSalt(cryptox.SaltLength)
	if err != nil {
		return err
	}
	hash, err := cryptox.DeriveVerificationHash(passphrase, salt)
	if err != nil {
		return err
	}

	if err := repo.Set(ctx, settings.KeyMasterKeySalt, salt); err != nil {
		return err
	}
	if err := repo.Set(ctx, settings.KeyMasterKeyHash, hash); err != nil {
		return err
	}

	s.keyring.Set(passphrase)
	s.log.Info(ctx, "master passphrase set")
	return nil
}

// Unlock verifies the passphrase against the stored digest and caches it for
// the session. Verification failure is a validation error, not a decryption
// error.
func (s *Service) Unlock(ctx context.Context, passphrase []byte) error {
	material, err := LoadMasterKeyMaterial(ctx, s.settingsRepo(s.db))
	if err != nil {
		return err
	}
	if !material.HasHash() {
		return common.ErrNoMasterKey
	}
	if !cryptox.VerifyMasterKey(passphrase, material.VerificationSalt, material.Hash) {
		return common.ErrWrongPassphrase
	}

	s.keyring.Set(passphrase)
	s.log.Info(ctx, "vault unlocked")
	return nil
}

// Lock drops the cached passphrase. Idle-lock policies call this too.
func (s *Service) Lock(ctx context.Context) {
	s.keyring.Clear()
	s.log.Info(ctx, "vault locked")
}

// IsLocked reports whether no passphrase is cached for the session.
func (s *Service) IsLocked() bool {
	return !s.keyring.IsSet()
}

// HasMasterPassphrase reports whether a master passphrase has been set up.
func (s *Service) HasMasterPassphrase(ctx context.Context) (bool, error) {
	material, err := LoadMasterKeyMaterial(ctx, s.settingsRepo(s.db))
	if err != nil {
		return false, err
	}
	return material.HasHash(), nil
}

// ChangeMasterPassphrase re-keys the vault: every stored secret is decrypted
// under the current passphrase and re-encrypted under the new one, inside a
// single transaction. This is the only flow allowed to rotate the encryption
// salt, because it rewrites all ciphertext along with it.
func (s *Service) ChangeMasterPassphrase(ctx context.Context, current, next, confirm []byte) error {
	if err := validatePassphrase(next, confirm); err != nil {
		return err
	}

	material, err := LoadMasterKeyMaterial(ctx, s.settingsRepo(s.db))
	if err != nil {
		return err
	}
	if !material.HasHash() {
		return common.ErrNoMasterKey
	}
	if !cryptox.VerifyMasterKey(current, material.VerificationSalt, material.Hash) {
		return common.ErrWrongPassphrase
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		newVerSalt, err := cryptox.GenerateSalt(cryptox.SaltLength)
		if err != nil {
			return err
		}
		newHash, err := cryptox.DeriveVerificationHash(next, newVerSalt)
		if err != nil {
			return err
		}

		newEncSalt := ""
		if material.EncryptionSalt != "" {
			if newEncSalt, err = cryptox.GenerateSalt(cryptox.SaltLength); err != nil {
				return err
			}
			if err := s.rekeySecrets(ctx, tx, current, material.EncryptionSalt, next, newEncSalt); err != nil {
				return err
			}
		}

		repo := s.settingsRepo(tx)
		if err := repo.Set(ctx, settings.KeyMasterKeySalt, newVerSalt); err != nil {
			return err
		}
		if err := repo.Set(ctx, settings.KeyMasterKeyHash, newHash); err != nil {
			return err
		}
		if newEncSalt != "" {
			if err := repo.Set(ctx, settings.KeyMasterKeyEncSalt, newEncSalt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to change master passphrase: %w", err)
	}

	s.keyring.Set(next)
	s.log.Info(ctx, "master passphrase changed")
	return nil
}

// rekeySecrets rewrites every stored secret field from (oldKey, oldSalt) to
// (newKey, newSalt). Legacy plaintext fields are encrypted along the way.
func (s *Service) rekeySecrets(ctx context.Context, tx dbx.DBTX, oldKey []byte, oldSalt string, newKey []byte, newSalt string) error {
	reencrypt := func(rec models.SecretCarrier) error {
		for _, f := range rec.AllSecretFields() {
			plain := f.Value.Plaintext()
			if f.Value.IsEncrypted() {
				var err error
				if plain, err = cryptox.DecryptString(f.Value.Payload(), oldKey, oldSalt); err != nil {
					return fmt.Errorf("field %s: %w", f.Name, err)
				}
			}
			if plain == "" {
				*f.Value = models.PlainSecret("")
				continue
			}
			payload, err := cryptox.EncryptString(plain, newKey, newSalt)
			if err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
			*f.Value = models.EncryptedSecret(payload)
		}
		return nil
	}

	connRepo := s.connectionRepo(tx)
	conns, err := connRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, c := range conns {
		if err := reencrypt(c); err != nil {
			return err
		}
		if err := connRepo.Upsert(ctx, c); err != nil {
			return err
		}
	}

	profRepo := s.profileRepo(tx)
	profs, err := profRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, p := range profs {
		if err := reencrypt(p); err != nil {
			return err
		}
		if err := profRepo.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMasterPassphrase verifies the passphrase, then removes the master-key
// material. When secret persistence is enabled, stored ciphertext is
// decrypted to plaintext-on-disk form (the user keeps persistence without a
// key); otherwise secret fields are blanked. Any decryption failure aborts
// the whole removal.
func (s *Service) RemoveMasterPassphrase(ctx context.Context, passphrase []byte) error {
	material, err := LoadMasterKeyMaterial(ctx, s.settingsRepo(s.db))
	if err != nil {
		return err
	}
	if !material.HasHash() {
		return common.ErrNoMasterKey
	}
	if !cryptox.VerifyMasterKey(passphrase, material.VerificationSalt, material.Hash) {
		return common.ErrWrongPassphrase
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.settingsRepo(tx)

		persist, err := readPersistSecrets(ctx, repo)
		if err != nil {
			return err
		}

		if material.EncryptionSalt != "" {
			if err := s.stripEncryption(ctx, tx, passphrase, material.EncryptionSalt, persist); err != nil {
				return err
			}
		}

		for _, key := range []string{settings.KeyMasterKeyHash, settings.KeyMasterKeySalt, settings.KeyMasterKeyEncSalt} {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove master passphrase: %w", err)
	}

	s.keyring.Clear()
	s.log.Info(ctx, "master passphrase removed")
	return nil
}

func (s *Service) stripEncryption(ctx context.Context, tx dbx.DBTX, key []byte, salt string, persist bool) error {
	strip := func(rec models.SecretCarrier) error {
		for _, f := range rec.AllSecretFields() {
			if !f.Value.IsEncrypted() {
				continue
			}
			if !persist {
				*f.Value = models.PlainSecret("")
				continue
			}
			plain, err := cryptox.DecryptString(f.Value.Payload(), key, salt)
			if err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
			*f.Value = models.PlainSecret(plain)
		}
		return nil
	}

	connRepo := s.connectionRepo(tx)
	conns, err := connRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, c := range conns {
		if err := strip(c); err != nil {
			return err
		}
		if err := connRepo.Upsert(ctx, c); err != nil {
			return err
		}
	}

	profRepo := s.profileRepo(tx)
	profs, err := profRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, p := range profs {
		if err := strip(p); err != nil {
			return err
		}
		if err := profRepo.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// SetPersistSecrets stores the "save passwords" preference.
func (s *Service) SetPersistSecrets(ctx context.Context, enabled bool) error {
	return s.settingsRepo(s.db).Set(ctx, settings.KeySavePassword, strconv.FormatBool(enabled))
}

// SetLockTimeout stores the idle-lock timeout in minutes. Enforcement is an
// external policy that calls Lock.
func (s *Service) SetLockTimeout(ctx context.Context, minutes int) error {
	return s.settingsRepo(s.db).Set(ctx, settings.KeyLockTimeout, strconv.Itoa(minutes))
}

// LockTimeoutMinutes returns the configured idle-lock timeout; 0 means none.
func (s *Service) LockTimeoutMinutes(ctx context.Context) (int, error) {
	material, err := LoadMasterKeyMaterial(ctx, s.settingsRepo(s.db))
	if err != nil {
		return 0, err
	}
	return material.LockTimeoutMinutes, nil
}

// SaveConnection writes one connection. Secret fields go through the
// merge-on-save policy (against the freshest on-disk snapshot) and then the
// codec; an encryption failure aborts the save. The stored record is left
// untouched in rec; its on-disk twin is built on a copy.
func (s *Service) SaveConnection(ctx context.Context, rec *models.ConnectionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	sc, err := s.resolver(s.db).Resolve(ctx)
	if err != nil {
		return err
	}

	onDisk := *rec

	// snapshot read happens immediately before the merge to narrow the
	// lost-update window; full serialization is the storage boundary's job
	repo := s.connectionRepo(s.db)
	var prior models.SecretCarrier
	if p, err := repo.GetByID(ctx, rec.ID); err == nil {
		prior = p
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	MergeOnSave(&onDisk, prior, sc)
	if err := SerializeSecrets(&onDisk, sc); err != nil {
		return err
	}

	return repo.Upsert(ctx, &onDisk)
}

// SaveConnections writes a batch of connections with the same merge and
// codec treatment as SaveConnection, in one transaction: either every record
// is stored or none is.
func (s *Service) SaveConnections(ctx context.Context, recs []*models.ConnectionRecord) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sc, err := s.resolver(tx).Resolve(ctx)
		if err != nil {
			return err
		}

		repo := s.connectionRepo(tx)
		for _, rec := range recs {
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}

			onDisk := *rec

			var prior models.SecretCarrier
			if p, err := repo.GetByID(ctx, rec.ID); err == nil {
				prior = p
			} else if !errors.Is(err, common.ErrNotFound) {
				return err
			}

			MergeOnSave(&onDisk, prior, sc)
			if err := SerializeSecrets(&onDisk, sc); err != nil {
				return err
			}
			if err := repo.Upsert(ctx, &onDisk); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListConnections returns all connections with their secret fields resolved
// fail-soft under the current security context.
func (s *Service) ListConnections(ctx context.Context) ([]*models.ConnectionRecord, error) {
	sc, err := s.resolver(s.db).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.connectionRepo(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		DeserializeSecrets(ctx, rec, sc, s.log)
	}
	return recs, nil
}

// GetConnection returns one connection with secrets resolved fail-soft.
func (s *Service) GetConnection(ctx context.Context, id string) (*models.ConnectionRecord, error) {
	sc, err := s.resolver(s.db).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.connectionRepo(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	DeserializeSecrets(ctx, rec, sc, s.log)
	return rec, nil
}

// DeleteConnection removes one connection.
func (s *Service) DeleteConnection(ctx context.Context, id string) error {
	return s.connectionRepo(s.db).DeleteByID(ctx, id)
}

// SaveProfile writes one auth profile, with the same merge and codec
// treatment as connections.
func (s *Service) SaveProfile(ctx context.Context, p *models.AuthProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	sc, err := s.resolver(s.db).Resolve(ctx)
	if err != nil {
		return err
	}

	onDisk := *p

	repo := s.profileRepo(s.db)
	var prior models.SecretCarrier
	if existing, err := repo.GetByID(ctx, p.ID); err == nil {
		prior = existing
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	MergeOnSave(&onDisk, prior, sc)
	if err := SerializeSecrets(&onDisk, sc); err != nil {
		return err
	}

	return repo.Upsert(ctx, &onDisk)
}

// ListProfiles returns all profiles with secrets resolved fail-soft.
func (s *Service) ListProfiles(ctx context.Context) ([]*models.AuthProfile, error) {
	sc, err := s.resolver(s.db).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	profs, err := s.profileRepo(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profs {
		DeserializeSecrets(ctx, p, sc, s.log)
	}
	return profs, nil
}

// GetProfile returns one profile with secrets resolved fail-soft.
func (s *Service) GetProfile(ctx context.Context, id string) (*models.AuthProfile, error) {
	sc, err := s.resolver(s.db).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.profileRepo(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	DeserializeSecrets(ctx, p, sc, s.log)
	return p, nil
}

// DeleteProfile removes a profile and clears the reference on every
// connection that pointed at it, in one transaction, so no dangling
// references are left behind.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		connRepo := s.connectionRepo(tx)
		conns, err := connRepo.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range conns {
			if c.ProfileID != id {
				continue
			}
			c.ProfileID = ""
			if err := connRepo.Upsert(ctx, c); err != nil {
				return err
			}
		}
		return s.profileRepo(tx).DeleteByID(ctx, id)
	})
}
