// Package cryptox implements the envelope-encryption primitives of the
// credential vault: salt generation, the two PBKDF2 derivations bound to a
// master passphrase, and the AES-GCM string cipher.
package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/NoTermTm/noterm-vault/internal/common"
)

// SaltLength is the default salt size in bytes.
const SaltLength = 16

// GenerateSalt returns lengthBytes of cryptographically secure random data,
// base64-encoded. Pass SaltLength for the default size.
func GenerateSalt(lengthBytes int) (string, error) {
	if lengthBytes <= 0 {
		lengthBytes = SaltLength
	}
	b := make([]byte, lengthBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEnvironment, err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// decodeSalt turns a base64 salt back into raw bytes.
func decodeSalt(salt string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	return b, nil
}
