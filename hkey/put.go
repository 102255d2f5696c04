package hkey

import (
	"context"

	"github.com/opencas/hkvault/hkhash"
)

// Put runs the size-triage pipeline from §4.4: inline small inputs as Raw,
// store already-valid ciphertext as Direct, single-shot encrypt and store
// mid-sized plaintext as Encrypted, and build a long-tree node (then shrink
// it to a stored LongHkey reference) for anything larger than a single
// chunk.
func Put(ctx context.Context, env *Env, data []byte) (Hkey, error) {
	n := len(data)

	switch {
	case n <= MaxSizeRaw:
		return Raw(data), nil

	case n <= MaxEncryptedSize && env.Cipher.Validate(data):
		h := hkhash.Compute(data)
		if err := env.Backend.PutEncrypted(ctx, h, data); err != nil {
			return Hkey{}, err
		}
		return Direct(h), nil

	case n <= MaxDecryptedSize:
		ciphertext, keyHash, ciphertextHash, err := env.Cipher.Encrypt(data)
		if err != nil {
			return Hkey{}, err
		}
		if err := env.Backend.PutEncrypted(ctx, ciphertextHash, ciphertext); err != nil {
			return Hkey{}, err
		}
		return Encrypted(ciphertextHash, keyHash), nil

	default:
		node, err := FromBlob(ctx, env, data)
		if err != nil {
			return Hkey{}, err
		}
		return node.store(ctx, env)
	}
}
