// Package memstore is the reference in-memory Store (§4.5): a hash-to-chunk
// map guarded by a mutex, adapted from
// registry/storage/driver/inmemory's path-to-file map in the same spirit —
// a backend intended for examples and tests, not production persistence.
package memstore

import (
	"context"
	"sync"

	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
	"github.com/opencas/hkvault/hkstore"
	"github.com/sirupsen/logrus"
)

// Driver is the minimal Get/PutEncrypted backend memstore.New wraps in
// hkstore.Base.
type Driver struct {
	mu     sync.RWMutex
	chunks map[hkhash.Hash][]byte
}

// NewDriver constructs an empty Driver.
func NewDriver() *Driver {
	return &Driver{chunks: make(map[hkhash.Hash][]byte)}
}

// Get returns a copy of the stored chunk, or hkerr.NotFoundError if absent.
func (d *Driver) Get(ctx context.Context, h hkhash.Hash) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chunk, ok := d.chunks[h]
	if !ok {
		return nil, hkerr.NotFoundError{Hash: h.String()}
	}
	out := make([]byte, len(chunk))
	copy(out, chunk)
	return out, nil
}

// PutEncrypted inserts ciphertext under h, overwriting idempotently (the
// same hash always carries the same bytes by construction, so a repeat
// write is a no-op in effect even though it re-copies).
func (d *Driver) PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := make([]byte, len(ciphertext))
	copy(stored, ciphertext)
	d.chunks[h] = stored

	logrus.WithFields(logrus.Fields{
		"hash":  h.String(),
		"bytes": len(ciphertext),
	}).Debug("memstore.PutEncrypted")
	return nil
}

// Len reports how many chunks are currently stored, useful in tests that
// assert on dedup behavior.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.chunks)
}

// New wraps a fresh Driver as an hkstore.Store.
func New(cipher hkstore.Cipher, metrics hkstore.Metrics) *hkstore.Base {
	return hkstore.New(NewDriver(), cipher, metrics)
}
