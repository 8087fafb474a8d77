// Package keyring holds the unlocked master passphrase for the current
// process session. Nothing here is ever written to persistent storage, logs,
// or export bundles.
package keyring

import (
	"sync/atomic"

	"github.com/NoTermTm/noterm-vault/internal/common"
)

// Keyring is an explicitly owned handle to the session's master passphrase:
// empty at process start, set on successful unlock or passphrase-set, cleared
// on lock, key change, key removal, or idle timeout (an external policy).
//
// The slot is always replaced wholesale, never partially mutated, so a single
// atomic pointer suffices. Construct one per process and inject it into the
// operations that need it.
type Keyring struct {
	slot atomic.Pointer[[]byte]
}

// New returns an empty Keyring.
func New() *Keyring {
	return &Keyring{}
}

// Set caches a copy of the passphrase for the session.
func (k *Keyring) Set(passphrase []byte) {
	cp := make([]byte, len(passphrase))
	copy(cp, passphrase)
	k.slot.Store(&cp)
}

// Get returns a copy of the cached passphrase, or ok=false while locked.
// Callers should wipe the copy when done.
func (k *Keyring) Get() ([]byte, bool) {
	p := k.slot.Load()
	if p == nil {
		return nil, false
	}
	cp := make([]byte, len(*p))
	copy(cp, *p)
	return cp, true
}

// Clear wipes and drops the cached passphrase.
func (k *Keyring) Clear() {
	p := k.slot.Swap(nil)
	if p != nil {
		common.WipeByteArray(*p)
	}
}

// IsSet reports whether a passphrase is cached.
func (k *Keyring) IsSet() bool {
	return k.slot.Load() != nil
}
