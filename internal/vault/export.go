package vault

import (
	"context"

	"github.com/NoTermTm/noterm-vault/internal/models"
	"github.com/NoTermTm/noterm-vault/internal/repositories/settings"
)

// ExportBundle is the portable dump of the vault's records. Secret fields
// and the master-key hash and salts are scrubbed to the empty string before
// inclusion: an export never contains ciphertext or plaintext secrets.
type ExportBundle struct {
	Connections []*models.ConnectionRecord `json:"connections"`
	Profiles    []*models.AuthProfile      `json:"profiles"`
	Settings    map[string]string          `json:"settings"`
}

// Export builds a bundle from the on-disk records with every secret zeroed.
func (s *Service) Export(ctx context.Context) (*ExportBundle, error) {
	conns, err := s.connectionRepo(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range conns {
		scrubSecrets(c)
	}

	profs, err := s.profileRepo(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profs {
		scrubSecrets(p)
	}

	repo := s.settingsRepo(s.db)
	savePassword, err := repo.Get(ctx, settings.KeySavePassword)
	if err != nil {
		return nil, err
	}
	lockTimeout, err := repo.Get(ctx, settings.KeyLockTimeout)
	if err != nil {
		return nil, err
	}

	return &ExportBundle{
		Connections: conns,
		Profiles:    profs,
		Settings: map[string]string{
			settings.KeySavePassword:     savePassword,
			settings.KeyLockTimeout:      lockTimeout,
			settings.KeyMasterKeyHash:    "",
			settings.KeyMasterKeySalt:    "",
			settings.KeyMasterKeyEncSalt: "",
		},
	}, nil
}

// scrubSecrets blanks every secret-capable field, active variant or not.
func scrubSecrets(rec models.SecretCarrier) {
	for _, f := range rec.AllSecretFields() {
		*f.Value = models.PlainSecret("")
	}
}
