// Package storefactory registers named Store constructors so a deployment
// can pick a backend by configuration string, the way
// registry/storage/driver/factory lets the registry pick a storage driver
// by name.
package storefactory

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/opencas/hkvault/hkstore"
)

// Factory constructs a Store from a flat parameter map. Parameter keys
// should be lowercase, matching the teacher's StorageDriverFactory
// convention.
type Factory interface {
	Create(parameters map[string]any) (hkstore.Store, error)
}

var factories = make(map[string]Factory)

// Register makes a Store factory available by name. Panics if name is
// already registered or factory is nil, matching
// registry/storage/driver/factory.Register's fail-fast behavior for what
// is, in both cases, a startup-time programming error.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("storefactory: nil Factory for " + name)
	}
	if _, registered := factories[name]; registered {
		panic("storefactory: " + name + " already registered")
	}
	factories[name] = factory
}

// Create builds the named Store and verifies it can round-trip a chunk
// before returning it.
func Create(ctx context.Context, name string, parameters map[string]any) (hkstore.Store, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, UnregisteredStoreError{Name: name}
	}
	store, err := factory.Create(parameters)
	if err != nil {
		return nil, err
	}
	if err := verify(ctx, store); err != nil {
		return nil, fmt.Errorf("storefactory: %q failed verification: %w", name, err)
	}
	return store, nil
}

// verify round-trips a small random payload through Put and Resolve,
// confirming the backend can actually read back what it writes.
func verify(ctx context.Context, store hkstore.Store) error {
	probe := make([]byte, 32)
	if _, err := rand.Read(probe); err != nil {
		return fmt.Errorf("generating verification payload: %w", err)
	}

	h, err := store.Put(ctx, probe)
	if err != nil {
		return fmt.Errorf("verification put: %w", err)
	}

	got, err := store.Resolve(ctx, h)
	if err != nil {
		return fmt.Errorf("verification resolve: %w", err)
	}
	if string(got) != string(probe) {
		return fmt.Errorf("verification resolve returned %d bytes, want %d", len(got), len(probe))
	}
	return nil
}

// UnregisteredStoreError records an attempt to Create an unregistered
// Store.
type UnregisteredStoreError struct {
	Name string
}

func (e UnregisteredStoreError) Error() string {
	return fmt.Sprintf("storefactory: store not registered: %s", e.Name)
}
