package vault

import (
	"context"
	"fmt"

	"github.com/NoTermTm/noterm-vault/internal/cryptox"
	"github.com/NoTermTm/noterm-vault/internal/logging"
	"github.com/NoTermTm/noterm-vault/internal/models"
)

// DeserializeSecrets resolves every secret field of a loaded record into
// plaintext form, in place. Plaintext (legacy) values pass through unchanged.
// Encrypted values decrypt when a master key is available; while locked, or
// on any decryption failure, the field resolves to the empty string. A locked
// or partially-keyed vault is an expected steady state, so failures are
// logged and downgraded, never surfaced per-field, and ciphertext is never
// surfaced as plaintext.
func DeserializeSecrets(ctx context.Context, rec models.SecretCarrier, sc SecurityContext, log logging.Logger) {
	for _, f := range rec.SecretFields() {
		if !f.Value.IsEncrypted() {
			continue
		}
		if !sc.HasMasterKey() {
			*f.Value = models.PlainSecret("")
			continue
		}
		plain, err := cryptox.DecryptString(f.Value.Payload(), sc.MasterKey, sc.EncryptionSalt)
		if err != nil {
			log.Warn(ctx, "secret field unresolved", "field", f.Name)
			*f.Value = models.PlainSecret("")
			continue
		}
		*f.Value = models.PlainSecret(plain)
	}
}

// SerializeSecrets converts every secret field into its on-disk form, in
// place. Fields already holding ciphertext (substituted by the merge policy,
// or round-tripped untouched) pass through verbatim. A blank value is always
// stored as the empty string: blank means explicit clear. A non-blank value
// is encrypted when the context permits; while locked with persistence
// enabled it stays plaintext (the merge policy's explicit-value-wins branch);
// in every other case it is dropped to the empty string so secrets are never
// written unencrypted by accident.
//
// Serialization walks the union of secret-capable fields, not just the
// active variant's: after a protocol or auth-method switch the old variant's
// resolved value still sits in an inactive field, and skipping it would
// write that value to disk bare.
//
// Any encryption failure is returned and must abort the whole save.
func SerializeSecrets(rec models.SecretCarrier, sc SecurityContext) error {
	for _, f := range rec.AllSecretFields() {
		if f.Value.IsEncrypted() {
			continue
		}
		plain := f.Value.Plaintext()
		if plain == "" {
			*f.Value = models.PlainSecret("")
			continue
		}

		switch {
		case sc.CanEncrypt():
			payload, err := cryptox.EncryptString(plain, sc.MasterKey, sc.EncryptionSalt)
			if err != nil {
				return fmt.Errorf("failed to encrypt field %s: %w", f.Name, err)
			}
			*f.Value = models.EncryptedSecret(payload)
		case sc.PersistSecrets && !sc.HasMasterKey():
			// typed while locked: the explicit value wins and is stored as
			// entered (see merge-on-save)
		default:
			*f.Value = models.PlainSecret("")
		}
	}
	return nil
}
