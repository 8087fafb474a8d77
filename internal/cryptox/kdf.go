package cryptox

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"

	"github.com/NoTermTm/noterm-vault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// The two derivations are cryptographically independent: the verification
// digest uses SHA-512 and the encryption key SHA-256, each with its own
// iteration count. A leaked verification hash gives no advantage toward the
// encryption key, and changing the verification scheme never invalidates
// stored ciphertext.
const (
	// verificationIterations is fixed; changing it invalidates stored hashes.
	verificationIterations = 100_000
	verificationHashLength = 64

	// encryptionIterations is tunable independently of verification.
	encryptionIterations = 100_000
	encryptionKeyLength  = 32 // AES-256
)

// Key is an opaque handle to a derived symmetric key. The raw key material is
// deliberately not exportable; wipe it with Wipe when no longer needed.
type Key struct {
	key []byte
}

// Wipe overwrites the key material in memory.
func (k *Key) Wipe() {
	common.WipeByteArray(k.key)
}

// DeriveVerificationHash derives the high-iteration digest used to confirm a
// re-entered passphrase. The digest is used only for equality checks, never
// as a cipher key.
func DeriveVerificationHash(passphrase []byte, verificationSalt string) (string, error) {
	salt, err := decodeSalt(verificationSalt)
	if err != nil {
		return "", err
	}
	digest := pbkdf2.Key(passphrase, salt, verificationIterations, verificationHashLength, sha512.New)
	return base64.StdEncoding.EncodeToString(digest), nil
}

// DeriveEncryptionKey derives the AEAD key bound to the encryption salt.
func DeriveEncryptionKey(passphrase []byte, encryptionSalt string) (*Key, error) {
	salt, err := decodeSalt(encryptionSalt)
	if err != nil {
		return nil, err
	}
	k := pbkdf2.Key(passphrase, salt, encryptionIterations, encryptionKeyLength, sha256.New)
	return &Key{key: k}, nil
}

// VerifyMasterKey recomputes the verification digest and compares it against
// the stored hash in constant time. Returns false, never an error, when the
// hash or salt are absent or malformed.
func VerifyMasterKey(passphrase []byte, verificationSalt string, storedHash string) bool {
	if verificationSalt == "" || storedHash == "" {
		return false
	}
	candidate, err := DeriveVerificationHash(passphrase, verificationSalt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
