package cryptox

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/NoTermTm/noterm-vault/internal/common"
)

func TestGenerateSalt(t *testing.T) {
	s1, err := GenerateSalt(SaltLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, err := GenerateSalt(SaltLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1 == s2 {
		t.Errorf("expected two different salts, got identical")
	}
	raw, err := base64.StdEncoding.DecodeString(s1)
	if err != nil {
		t.Fatalf("salt is not valid base64: %v", err)
	}
	if len(raw) != SaltLength {
		t.Errorf("expected %d raw bytes, got %d", SaltLength, len(raw))
	}
}

func TestDeriveVerificationHash_Deterministic(t *testing.T) {
	passphrase := []byte("secret-passphrase")
	salt := "c2FsdA=="

	h1, err := DeriveVerificationHash(passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := DeriveVerificationHash(passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Errorf("expected same result for same inputs, got different")
	}
}

func TestVerifyMasterKey(t *testing.T) {
	passphrase := []byte("secret-passphrase")
	salt, err := GenerateSalt(SaltLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash, err := DeriveVerificationHash(passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !VerifyMasterKey(passphrase, salt, hash) {
		t.Errorf("expected verification to succeed for the original triple")
	}
	if VerifyMasterKey([]byte("other"), salt, hash) {
		t.Errorf("expected verification to fail for a different passphrase")
	}
	otherSalt, _ := GenerateSalt(SaltLength)
	if VerifyMasterKey(passphrase, otherSalt, hash) {
		t.Errorf("expected verification to fail for a different salt")
	}
	if VerifyMasterKey(passphrase, "", hash) {
		t.Errorf("expected false for absent salt")
	}
	if VerifyMasterKey(passphrase, salt, "") {
		t.Errorf("expected false for absent hash")
	}
	if VerifyMasterKey(passphrase, "%%%not-base64%%%", hash) {
		t.Errorf("expected false for malformed salt, not an error")
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	passphrase := []byte("correct-horse-1")
	salt, err := GenerateSalt(SaltLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, plaintext := range []string{"", "p@ssw0rd!", "многобайтовый секрет", "line1\nline2"} {
		payload, err := EncryptString(plaintext, passphrase, salt)
		if err != nil {
			t.Fatalf("encrypt error: %v", err)
		}
		got, err := DecryptString(payload, passphrase, salt)
		if err != nil {
			t.Fatalf("decrypt error: %v", err)
		}
		if got != plaintext {
			t.Errorf("round-trip mismatch: got %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptString_FreshIVPerCall(t *testing.T) {
	passphrase := []byte("correct-horse-1")
	salt := "c2FsdA=="

	p1, err := EncryptString("same", passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := EncryptString("same", passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.IV == p2.IV {
		t.Errorf("expected a fresh IV for every encryption")
	}
}

// Scenario: fixed salt, known passphrase; decrypting with the wrong
// passphrase must fail with ErrDecryptionFailed, never return other plaintext.
func TestDecryptString_WrongPassphrase(t *testing.T) {
	salt := "c2FsdA=="

	payload, err := EncryptString("p@ssw0rd!", []byte("correct-horse-1"), salt)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}

	got, err := DecryptString(payload, []byte("correct-horse-1"), salt)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	if got != "p@ssw0rd!" {
		t.Errorf("expected original plaintext, got %q", got)
	}

	if _, err := DecryptString(payload, []byte("wrong"), salt); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptString_CorruptedPayload(t *testing.T) {
	passphrase := []byte("correct-horse-1")
	salt := "c2FsdA=="

	payload, err := EncryptString("p@ssw0rd!", passphrase, salt)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}

	corrupted := payload
	raw, _ := base64.StdEncoding.DecodeString(corrupted.Data)
	raw[0] ^= 0xff
	corrupted.Data = base64.StdEncoding.EncodeToString(raw)

	if _, err := DecryptString(corrupted, passphrase, salt); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed for corrupted payload, got %v", err)
	}

	badNonce := payload
	badNonce.IV = "short"
	if _, err := DecryptString(badNonce, passphrase, salt); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed for bad nonce, got %v", err)
	}
}

func TestDecryptString_SaltMismatch(t *testing.T) {
	passphrase := []byte("correct-horse-1")

	payload, err := EncryptString("secret", passphrase, "c2FsdA==")
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	if _, err := DecryptString(payload, passphrase, "b3RoZXJzYWx0"); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed for salt mismatch, got %v", err)
	}
}

func TestVerificationAndEncryptionDerivationsDiffer(t *testing.T) {
	passphrase := []byte("secret-passphrase")
	salt := "c2FsdA=="

	hash, err := DeriveVerificationHash(passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, err := DeriveEncryptionKey(passphrase, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer key.Wipe()

	rawHash, _ := base64.StdEncoding.DecodeString(hash)
	if len(rawHash) == len(key.key) {
		t.Fatalf("expected digest and key lengths to differ")
	}
}
