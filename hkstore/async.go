package hkstore

import (
	"context"

	"github.com/opencas/hkvault/hkey"
	"github.com/opencas/hkvault/hkhash"
)

// Result carries either a value or an error, never both, through an
// AsyncStore future channel.
type Result[T any] struct {
	Value T
	Err   error
}

// future runs fn on its own goroutine and returns a channel that receives
// exactly one Result before closing — the "suspended computation" §5 asks
// every AsyncStore operation to return, without inventing a bespoke promise
// type: a buffered, single-send channel is the idiomatic Go equivalent.
func future[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn(ctx)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// AsyncStore is structurally identical to Store, but every operation
// yields a suspended computation instead of blocking the caller (§4.4,
// §5's "Suspension points").
type AsyncStore interface {
	Get(ctx context.Context, h hkhash.Hash) <-chan Result[[]byte]
	PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) <-chan Result[struct{}]
	Put(ctx context.Context, data []byte) <-chan Result[hkey.Hkey]
	Resolve(ctx context.Context, h hkey.Hkey) <-chan Result[[]byte]
	ResolveSlice(ctx context.Context, h hkey.Hkey, r hkey.Range) <-chan Result[[]byte]
}

// AsyncFromSync adapts any Store into an AsyncStore by running each call on
// its own goroutine. This is the default §4.4 describes for AsyncStore: Go
// has no function coloring, so there is no separate async implementation to
// write, only a uniform way to make a synchronous one awaitable.
type AsyncFromSync struct {
	Store Store
}

var _ AsyncStore = AsyncFromSync{}

func (a AsyncFromSync) Get(ctx context.Context, h hkhash.Hash) <-chan Result[[]byte] {
	return future(ctx, func(ctx context.Context) ([]byte, error) {
		return a.Store.Get(ctx, h)
	})
}

func (a AsyncFromSync) PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) <-chan Result[struct{}] {
	return future(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Store.PutEncrypted(ctx, h, ciphertext)
	})
}

func (a AsyncFromSync) Put(ctx context.Context, data []byte) <-chan Result[hkey.Hkey] {
	return future(ctx, func(ctx context.Context) (hkey.Hkey, error) {
		return a.Store.Put(ctx, data)
	})
}

func (a AsyncFromSync) Resolve(ctx context.Context, h hkey.Hkey) <-chan Result[[]byte] {
	return future(ctx, func(ctx context.Context) ([]byte, error) {
		return a.Store.Resolve(ctx, h)
	})
}

func (a AsyncFromSync) ResolveSlice(ctx context.Context, h hkey.Hkey, r hkey.Range) <-chan Result[[]byte] {
	return future(ctx, func(ctx context.Context) ([]byte, error) {
		return a.Store.ResolveSlice(ctx, h, r)
	})
}
