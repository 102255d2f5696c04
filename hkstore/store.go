// Package hkstore defines the Store/AsyncStore contracts (§4.4) and wraps
// the hkey triage pipeline behind them, the way
// registry/storage/driver.StorageDriver separates the backend contract
// from registry/storage/driver/base.Base's shared behavior.
package hkstore

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkey"
	"github.com/opencas/hkvault/hkhash"
	"github.com/opencas/hkvault/internal/hkcontext"
)

// Store is a synchronous content-addressed backend: fetch a ciphertext by
// hash, persist one keyed by its own hash, and the derived triage pipeline
// that turns arbitrary bytes into an Hkey.
type Store interface {
	// Get fetches a stored ciphertext. It fails with hkerr.NotFoundError
	// if hash is not present.
	Get(ctx context.Context, h hkhash.Hash) ([]byte, error)

	// PutEncrypted persists ciphertext under its own hash. Idempotent.
	PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) error

	// Put runs the size-triage pipeline over data and returns the
	// resulting Hkey (§4.4).
	Put(ctx context.Context, data []byte) (hkey.Hkey, error)

	// Resolve returns h's full logical bytes.
	Resolve(ctx context.Context, h hkey.Hkey) ([]byte, error)

	// ResolveSlice returns h's logical bytes within r.
	ResolveSlice(ctx context.Context, h hkey.Hkey, r hkey.Range) ([]byte, error)
}

// Cipher is the subset of hkcipher.Cipher a Store needs to run the triage
// pipeline and resolve ciphertext back to plaintext.
type Cipher interface {
	Encrypt(plaintext []byte) (ciphertext []byte, keyHash, ciphertextHash hkhash.Hash, err error)
	Decrypt(ciphertext []byte, keyHash hkhash.Hash) (plaintext []byte, err error)
	Validate(data []byte) bool
}

// Metrics is an optional observability hook; any method may be left as a
// no-op. A caller wires this to expvar counters (as
// registry/storage/cache/redis does) or a metrics backend of their
// choosing; hkstore never requires one.
type Metrics interface {
	Hit(op string)
	Miss(op string)
	Put(op string, bytes int)
}

// noopMetrics discards every observation.
type noopMetrics struct{}

func (noopMetrics) Hit(string)      {}
func (noopMetrics) Miss(string)     {}
func (noopMetrics) Put(string, int) {}

// Backend is the minimal capability a driver must supply; Base adds the
// derived Put/Resolve/ResolveSlice methods and metrics instrumentation on
// top, the way base.Base adds path validation and duration logging on top
// of a minimal storagedriver.StorageDriver.
type Backend interface {
	Get(ctx context.Context, h hkhash.Hash) ([]byte, error)
	PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) error
}

// Base wraps a Backend with the derived triage/resolve operations so a
// concrete driver only has to implement Get and PutEncrypted.
type Base struct {
	Backend
	Cipher  Cipher
	Metrics Metrics
}

var _ Store = (*Base)(nil)

// New wraps backend and cipher as a Store. A nil metrics disables
// instrumentation.
func New(backend Backend, cipher Cipher, metrics Metrics) *Base {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Base{Backend: backend, Cipher: cipher, Metrics: metrics}
}

func (b *Base) env() *hkey.Env {
	return &hkey.Env{Backend: hkeyBackend{b}, Cipher: b.Cipher}
}

// Put runs the size-triage pipeline (§4.4).
func (b *Base) Put(ctx context.Context, data []byte) (hkey.Hkey, error) {
	b.Metrics.Put("put", len(data))
	hkcontext.GetLogger(ctx).Debugf("hkstore: put %s", humanize.Bytes(uint64(len(data))))
	return hkey.Put(ctx, b.env(), data)
}

// Resolve returns h's full logical bytes.
func (b *Base) Resolve(ctx context.Context, h hkey.Hkey) ([]byte, error) {
	return hkey.Resolve(ctx, b.env(), h)
}

// ResolveSlice returns h's logical bytes within r.
func (b *Base) ResolveSlice(ctx context.Context, h hkey.Hkey, r hkey.Range) ([]byte, error) {
	return hkey.ResolveSlice(ctx, b.env(), h, r)
}

// hkeyBackend adapts Base's metrics-instrumented Get/PutEncrypted to
// hkey.Backend so hkey never has to know about Metrics.
type hkeyBackend struct{ b *Base }

func (hb hkeyBackend) Get(ctx context.Context, h hkhash.Hash) ([]byte, error) {
	data, err := hb.b.Backend.Get(ctx, h)
	switch {
	case err == nil:
		hb.b.Metrics.Hit("get")
	case isNotFound(err):
		hb.b.Metrics.Miss("get")
	}
	return data, err
}

func (hb hkeyBackend) PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) error {
	return hb.b.Backend.PutEncrypted(ctx, h, ciphertext)
}

func isNotFound(err error) bool {
	_, ok := err.(hkerr.NotFoundError)
	return ok
}
