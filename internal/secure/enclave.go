// Package secure provides memory-safe storage for sensitive material such
// as secret store passwords and decrypted payloads. It wraps
// memguard.Enclave so plaintext is encrypted at rest in memory and, where
// the platform allows, protected from swapping via mlock.
package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when a buffer is used after Destroy.
var ErrDestroyed = errors.New("secure: buffer destroyed")

// Buffer holds sensitive bytes in an encrypted in-memory enclave.
type Buffer struct {
	enclave *memguard.Enclave

	mu        sync.RWMutex
	destroyed bool
}

// NewBuffer copies data into a protected enclave. The caller should zero
// the original slice after construction.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave(data)}
}

// With decrypts the buffer and invokes fn with the plaintext. The plaintext
// lives in a locked memguard buffer that is wiped before With returns, so
// fn must not retain the slice.
func (b *Buffer) With(fn func(data []byte) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return ErrDestroyed
	}

	locked, err := b.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// Destroy marks the buffer as unusable. Idempotent. The enclave's encrypted
// contents are left for garbage collection; callers wanting a hard purge of
// all memguard state should call memguard.Purge at process exit.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
