// Package common defines shared constants and sentinel errors used across
// the vault layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

// MinPassphraseLength is the minimum accepted master passphrase length.
const MinPassphraseLength = 6

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrEnvironment signals that a required cryptographic primitive is
	// unavailable. Fatal: security-sensitive operations must be refused.
	ErrEnvironment = errors.New("cryptographic environment unavailable")

	// ErrDecryptionFailed signals AEAD authentication failure: wrong
	// passphrase, corrupted payload, or salt mismatch.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrValidation is the class for malformed user input; the specific
	// errors below wrap it so both levels match with errors.Is.
	ErrValidation = errors.New("validation error")

	ErrPassphraseTooShort = fmt.Errorf(
		"%w: passphrase must be at least %d characters", ErrValidation, MinPassphraseLength)
	ErrConfirmationMismatch = fmt.Errorf(
		"%w: passphrase confirmation does not match", ErrValidation)
	ErrWrongPassphrase = fmt.Errorf("%w: wrong passphrase", ErrValidation)

	// ErrNoMasterKey is returned by operations that require a master
	// passphrase to have been set.
	ErrNoMasterKey = errors.New("no master passphrase is set")

	// ErrMasterKeyExists is returned when setting a passphrase while one
	// already exists; callers should change it instead.
	ErrMasterKeyExists = errors.New("a master passphrase is already set")
)
