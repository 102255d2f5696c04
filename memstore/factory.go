package memstore

import (
	"crypto/rand"
	"fmt"

	"github.com/opencas/hkvault/hkcipher"
	"github.com/opencas/hkvault/hkhash"
	"github.com/opencas/hkvault/hkstore"
	"github.com/opencas/hkvault/storefactory"
)

const driverName = "memstore"

func init() {
	storefactory.Register(driverName, factory{})
}

// factory implements storefactory.Factory for memstore, the way
// inmemory's inMemoryDriverFactory registers itself with
// registry/storage/driver/factory in an init().
type factory struct{}

// Create builds a memstore-backed Store. The optional "masterkey"
// parameter, a TextSize-hex string, seeds the self-contained convergent
// cipher deterministically (useful for tests); otherwise a random key is
// generated.
func (factory) Create(parameters map[string]any) (hkstore.Store, error) {
	masterKey, err := masterKeyFrom(parameters)
	if err != nil {
		return nil, err
	}
	return New(hkcipher.NewSelfContained(masterKey), nil), nil
}

func masterKeyFrom(parameters map[string]any) (hkhash.Hash, error) {
	raw, ok := parameters["masterkey"]
	if !ok {
		var seed [32]byte
		if _, err := rand.Read(seed[:]); err != nil {
			return hkhash.Hash{}, fmt.Errorf("generating master key: %w", err)
		}
		return hkhash.Compute(seed[:]), nil
	}

	s, ok := raw.(string)
	if !ok {
		return hkhash.Hash{}, fmt.Errorf("memstore: masterkey parameter must be a string")
	}
	return hkhash.Parse(s)
}
