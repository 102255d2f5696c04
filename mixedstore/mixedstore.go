// Package mixedstore implements MixedStore (§4.6): a composite backend
// fanning reads and writes across zero or more synchronous and zero or
// more asynchronous child stores. The all-must-succeed write path is
// grounded on the errgroup.SetLimit fan-out in
// registry/storage/garbagecollect.go; the first-success read/write race is
// a manual channel fan-in, since errgroup itself only models "all must
// succeed," not "first one wins."
package mixedstore

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
	"github.com/opencas/hkvault/hkstore"
	"github.com/opencas/hkvault/internal/hkcontext"
)

// Policy selects MixedStore's write behavior.
type Policy int

const (
	// WriteToAll requires every configured backend to accept the write.
	WriteToAll Policy = iota
	// WriteToOne succeeds as soon as any one backend accepts the write.
	WriteToOne
)

// Backend fans Get/PutEncrypted across its configured child stores. It
// satisfies hkstore.Backend, so New wraps it in hkstore.Base to obtain the
// full Store surface (Put/Resolve/ResolveSlice) for free, the same way
// memstore.New wraps its Driver.
type Backend struct {
	mu     sync.RWMutex
	sync   []hkstore.Store
	async  []hkstore.AsyncStore
	policy Policy
}

// NewBackend constructs a Backend over the given child stores.
func NewBackend(policy Policy, sync []hkstore.Store, async []hkstore.AsyncStore) *Backend {
	return &Backend{
		policy: policy,
		sync:   append([]hkstore.Store(nil), sync...),
		async:  append([]hkstore.AsyncStore(nil), async...),
	}
}

// New wraps a MixedStore Backend as a full hkstore.Store.
func New(policy Policy, sync []hkstore.Store, async []hkstore.AsyncStore, cipher hkstore.Cipher, metrics hkstore.Metrics) *hkstore.Base {
	return hkstore.New(NewBackend(policy, sync, async), cipher, metrics)
}

// AddSync appends a synchronous backend under the write lock.
func (b *Backend) AddSync(s hkstore.Store) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sync = append(b.sync, s)
}

// AddAsync appends an asynchronous backend under the write lock.
func (b *Backend) AddAsync(a hkstore.AsyncStore) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.async = append(b.async, a)
}

func (b *Backend) snapshot() (sync []hkstore.Store, async []hkstore.AsyncStore) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]hkstore.Store(nil), b.sync...), append([]hkstore.AsyncStore(nil), b.async...)
}

// Get iterates sync backends in order, returning the first success; on
// exhaustion it races every async backend and returns the first success,
// else the accumulated last error (§4.6's read algorithm). The lock is
// released (via snapshot) before any of this runs, per §5.
func (b *Backend) Get(ctx context.Context, h hkhash.Hash) ([]byte, error) {
	syncs, asyncs := b.snapshot()
	if len(syncs) == 0 && len(asyncs) == 0 {
		return nil, hkerr.StorageError{Reason: "no stores configured"}
	}

	var lastErr error
	for _, s := range syncs {
		data, err := s.Get(ctx, h)
		if err == nil {
			return data, nil
		}
		lastErr = err
		hkcontext.GetLogger(ctx).WithError(err).Debug("mixedstore: sync backend miss")
	}
	if len(asyncs) == 0 {
		return nil, lastErr
	}
	return raceBytes(asyncs, func(a hkstore.AsyncStore) <-chan hkstore.Result[[]byte] {
		return a.Get(ctx, h)
	}, lastErr)
}

// PutEncrypted writes ciphertext under h according to the configured
// Policy (§4.6's write algorithm).
func (b *Backend) PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) error {
	syncs, asyncs := b.snapshot()
	if len(syncs) == 0 && len(asyncs) == 0 {
		return hkerr.StorageError{Reason: "no stores configured"}
	}

	if b.policy == WriteToAll {
		for _, s := range syncs {
			if err := s.PutEncrypted(ctx, h, ciphertext); err != nil {
				return err
			}
		}
		g, groupCtx := errgroup.WithContext(ctx)
		g.SetLimit(len(asyncs))
		for _, a := range asyncs {
			a := a
			g.Go(func() error {
				res := <-a.PutEncrypted(groupCtx, h, ciphertext)
				return res.Err
			})
		}
		return g.Wait()
	}

	var lastErr error
	for _, s := range syncs {
		if err := s.PutEncrypted(ctx, h, ciphertext); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if len(asyncs) == 0 {
		return lastErr
	}
	_, err := raceBytes(asyncs, func(a hkstore.AsyncStore) <-chan hkstore.Result[[]byte] {
		ch := make(chan hkstore.Result[[]byte], 1)
		go func() {
			res := <-a.PutEncrypted(ctx, h, ciphertext)
			ch <- hkstore.Result[[]byte]{Err: res.Err}
		}()
		return ch
	}, lastErr)
	return err
}

// raceBytes launches start against every backend and returns the first
// success, or the accumulated last error (seeded with priorErr) if every
// one fails.
func raceBytes(backends []hkstore.AsyncStore, start func(hkstore.AsyncStore) <-chan hkstore.Result[[]byte], priorErr error) ([]byte, error) {
	results := make(chan hkstore.Result[[]byte], len(backends))
	for _, a := range backends {
		a := a
		go func() { results <- <-start(a) }()
	}

	lastErr := priorErr
	for i := 0; i < len(backends); i++ {
		res := <-results
		if res.Err == nil {
			return res.Value, nil
		}
		lastErr = res.Err
	}
	return nil, lastErr
}

var _ hkstore.Backend = (*Backend)(nil)
