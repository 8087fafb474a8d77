package models

// MasterKeyMaterial is everything persisted about the master passphrase:
// never the passphrase itself, only its verification digest and the two
// independent salts.
//
// Once EncryptionSalt has been used to encrypt any stored secret it must
// never be regenerated, or all existing ciphertext becomes permanently
// undecryptable.
type MasterKeyMaterial struct {
	Hash               string
	VerificationSalt   string
	EncryptionSalt     string
	LockTimeoutMinutes int
}

// HasHash reports whether a master passphrase has been set.
func (m MasterKeyMaterial) HasHash() bool {
	return m.Hash != "" && m.VerificationSalt != ""
}
