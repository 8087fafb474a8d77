// Package models defines the vault record types and their on-disk shapes.
package models

import (
	"encoding/json"
	"errors"

	"github.com/NoTermTm/noterm-vault/internal/cryptox"
)

// ErrBadSecretShape reports a stored secret field that is neither a bare
// string nor an encrypted payload object.
var ErrBadSecretShape = errors.New("secret field has unrecognized shape")

// encTag marks an encrypted payload object on the wire.
const encTag = 1

// wirePayload is the exact on-disk JSON shape of an encrypted secret:
//
//	{ "__enc": 1, "iv": "<base64>", "data": "<base64>" }
type wirePayload struct {
	Enc  int    `json:"__enc"`
	IV   string `json:"iv"`
	Data string `json:"data"`
}

// SecretValue is a secret field's value: either plaintext (legacy or
// never-encrypted) or an encrypted payload. The discrimination happens once,
// at the storage boundary, by shape, never by speculative decryption.
type SecretValue struct {
	encrypted bool
	cleared   bool
	plain     string
	payload   cryptox.EncryptedPayload
}

// PlainSecret wraps a plaintext value.
func PlainSecret(s string) SecretValue {
	return SecretValue{plain: s}
}

// ClearedSecret marks a field the user explicitly emptied. It serializes to
// the empty string like any blank value, but the marker exempts the field
// from merge-on-save, so an explicit clear wins even while the vault is
// locked. The marker exists only in memory; on-disk empty strings load as
// plain (untouched) values.
func ClearedSecret() SecretValue {
	return SecretValue{cleared: true}
}

// EncryptedSecret wraps an encrypted payload.
func EncryptedSecret(p cryptox.EncryptedPayload) SecretValue {
	return SecretValue{encrypted: true, payload: p}
}

// IsEncrypted reports whether the value holds ciphertext.
func (v SecretValue) IsEncrypted() bool { return v.encrypted }

// IsEmpty reports whether the value is an empty plaintext string.
func (v SecretValue) IsEmpty() bool { return !v.encrypted && v.plain == "" }

// IsCleared reports whether the field was explicitly emptied by the user.
func (v SecretValue) IsCleared() bool { return v.cleared }

// Plaintext returns the plaintext value; empty when the value is encrypted.
func (v SecretValue) Plaintext() string {
	if v.encrypted {
		return ""
	}
	return v.plain
}

// Payload returns the encrypted payload; zero when the value is plaintext.
func (v SecretValue) Payload() cryptox.EncryptedPayload {
	return v.payload
}

// MarshalJSON writes either a bare JSON string or the tagged payload object.
// The payload shape round-trips byte-exact.
func (v SecretValue) MarshalJSON() ([]byte, error) {
	if !v.encrypted {
		return json.Marshal(v.plain)
	}
	return json.Marshal(wirePayload{Enc: encTag, IV: v.payload.IV, Data: v.payload.Data})
}

// UnmarshalJSON discriminates by shape: a JSON string is legacy plaintext, an
// object carrying the __enc tag is an encrypted payload.
func (v *SecretValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = PlainSecret(s)
		return nil
	}

	var w wirePayload
	if err := json.Unmarshal(data, &w); err != nil {
		return ErrBadSecretShape
	}
	if w.Enc != encTag {
		return ErrBadSecretShape
	}
	*v = EncryptedSecret(cryptox.EncryptedPayload{IV: w.IV, Data: w.Data})
	return nil
}

// SecretField names one secret field of a record and points at its value.
type SecretField struct {
	Name  string
	Value *SecretValue
}

// SecretCarrier is implemented by every record variant that owns secret
// fields. It lets the codec and the merge-on-save policy stay generic
// instead of branching per variant.
//
// SecretFields covers the active variant only and is what readers resolve
// for display. AllSecretFields covers the union of variants; every path
// that writes, re-keys, or scrubs secrets iterates the union, so a variant
// switch cannot smuggle an inactive field past the codec.
type SecretCarrier interface {
	SecretFields() []SecretField
	AllSecretFields() []SecretField
}
