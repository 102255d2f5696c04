package hkey

import (
	"context"
	"sync"

	"github.com/opencas/hkvault/hkcipher"
	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
)

// memBackend is a minimal in-memory Backend for exercising the put/resolve
// pipeline without a real store package, mirroring memstore.Driver's shape
// but kept local to avoid an import cycle (memstore depends on hkstore,
// which depends on hkey).
type memBackend struct {
	mu     sync.Mutex
	chunks map[hkhash.Hash][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{chunks: make(map[hkhash.Hash][]byte)}
}

func (b *memBackend) Get(_ context.Context, h hkhash.Hash) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.chunks[h]
	if !ok {
		return nil, hkerr.NotFoundError{Hash: h.String()}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *memBackend) PutEncrypted(_ context.Context, h hkhash.Hash, ciphertext []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(ciphertext))
	copy(out, ciphertext)
	b.chunks[h] = out
	return nil
}

func (b *memBackend) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

func newTestEnv() *Env {
	return &Env{
		Backend: newMemBackend(),
		Cipher:  hkcipher.NewSelfContained(hkhash.Compute([]byte("test master key"))),
	}
}
