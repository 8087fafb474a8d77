package vault

import "github.com/NoTermTm/noterm-vault/internal/models"

// MergeOnSave preserves untouched ciphertext when a record is saved while the
// vault is locked but secret persistence is enabled. Without it, a record the
// UI round-tripped but never decrypted would overwrite every secret with the
// empty string.
//
// For each secret field: an empty in-memory value means "never decrypted
// because locked", so the prior on-disk payload (matched by record id,
// fetched by the caller immediately before this call) is substituted
// verbatim. Ciphertext bytes are copied, never decrypted, so this works
// while locked. A non-empty value was typed explicitly and wins.
//
// A field carrying the explicit-clear marker (models.ClearedSecret) is
// exempt: clearing wins over merging, and the field is stored empty.
func MergeOnSave(rec, prior models.SecretCarrier, sc SecurityContext) {
	if sc.HasMasterKey() || !sc.PersistSecrets || prior == nil {
		return
	}

	// the union of secret-capable fields, so ciphertext in a field the
	// current variant does not expose survives the round trip too
	priorFields := make(map[string]models.SecretValue)
	for _, f := range prior.AllSecretFields() {
		priorFields[f.Name] = *f.Value
	}

	for _, f := range rec.AllSecretFields() {
		if !f.Value.IsEmpty() || f.Value.IsCleared() {
			continue
		}
		if pv, ok := priorFields[f.Name]; ok && pv.IsEncrypted() {
			*f.Value = pv
		}
	}
}
