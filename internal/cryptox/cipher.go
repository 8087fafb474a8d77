package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/NoTermTm/noterm-vault/internal/common"
)

// nonceLength is the GCM standard nonce size (96 bits).
const nonceLength = 12

// EncryptedPayload is the result of one envelope encryption: a fresh random
// IV and the AEAD ciphertext, both base64-encoded. Payloads are immutable;
// every encryption produces a new IV.
type EncryptedPayload struct {
	IV   string
	Data string
}

// EncryptString encrypts a single secret string under the key derived from
// (passphrase, encryptionSalt) using AES-256-GCM.
func EncryptString(plaintext string, passphrase []byte, encryptionSalt string) (EncryptedPayload, error) {
	key, err := DeriveEncryptionKey(passphrase, encryptionSalt)
	if err != nil {
		return EncryptedPayload{}, err
	}
	defer key.Wipe()

	aesgcm, err := newGCM(key)
	if err != nil {
		return EncryptedPayload{}, err
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return EncryptedPayload{}, fmt.Errorf("%w: %v", common.ErrEnvironment, err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	return EncryptedPayload{
		IV:   base64.StdEncoding.EncodeToString(nonce),
		Data: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// DecryptString authenticated-decrypts a payload produced by EncryptString.
// Authentication failure (wrong passphrase, corrupted payload, salt mismatch)
// yields common.ErrDecryptionFailed; partial or unauthenticated output is
// never returned.
func DecryptString(payload EncryptedPayload, passphrase []byte, encryptionSalt string) (string, error) {
	key, err := DeriveEncryptionKey(passphrase, encryptionSalt)
	if err != nil {
		return "", err
	}
	defer key.Wipe()

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce, err := base64.StdEncoding.DecodeString(payload.IV)
	if err != nil || len(nonce) != nonceLength {
		return "", fmt.Errorf("%w: bad nonce", common.ErrDecryptionFailed)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", common.ErrDecryptionFailed)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func newGCM(key *Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEnvironment, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEnvironment, err)
	}
	return aesgcm, nil
}
