package hkey

import (
	"context"

	"github.com/opencas/hkvault/hkb64"
	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
)

// Shrink reduces h to a variant cheap enough to compact or format: Raw and
// Base64 values that still fit inline pass through unchanged, oversized
// ones and every List/LongHkeyExpanded go through Put and come back wrapped
// as a stored reference. Direct/Encrypted/ListRef/LongHkey are already
// reference forms and pass through unchanged (§4.3/§4.4).
func Shrink(ctx context.Context, env *Env, h Hkey) (Hkey, error) {
	switch h.kind {
	case KindRaw:
		if len(h.payload) <= MaxSizeRaw {
			return h, nil
		}
		return Put(ctx, env, h.payload)

	case KindBase64:
		if len(hkb64.Encode(h.payload)) <= MaxSizeBase64 {
			return h, nil
		}
		return Put(ctx, env, h.payload)

	case KindDirect, KindEncrypted, KindListRef, KindLongHkey:
		return h, nil

	case KindList:
		hash, key, err := storeViaEncryptedWrap(ctx, env, []byte(Format(h)))
		if err != nil {
			return Hkey{}, err
		}
		return ListRefOf(hash, key), nil

	case KindLongHkeyExpanded:
		return h.expanded.store(ctx, env)

	default:
		return Hkey{}, hkerr.UnreachableError{Reason: "Shrink: unknown kind " + h.kind.String()}
	}
}

// storeViaEncryptedWrap runs data through the full triage pipeline and
// requires the result to be an Encrypted reference, per §4.3's "store()"
// contract shared by List and LongHkeyExpanded: both persist their text
// form the same way and differ only in which stored-ref Kind wraps the
// resulting (hash, key) pair. Text short enough for Put to inline as Raw
// is encrypted and stored directly, so it still yields a stored reference.
func storeViaEncryptedWrap(ctx context.Context, env *Env, data []byte) (hash, key hkhash.Hash, err error) {
	stored, err := Put(ctx, env, data)
	if err != nil {
		return hkhash.Hash{}, hkhash.Hash{}, err
	}
	if stored.kind == KindRaw {
		ciphertext, keyHash, ciphertextHash, err := env.Cipher.Encrypt(data)
		if err != nil {
			return hkhash.Hash{}, hkhash.Hash{}, err
		}
		if err := env.Backend.PutEncrypted(ctx, ciphertextHash, ciphertext); err != nil {
			return hkhash.Hash{}, hkhash.Hash{}, err
		}
		return ciphertextHash, keyHash, nil
	}
	if stored.kind != KindEncrypted {
		return hkhash.Hash{}, hkhash.Hash{}, hkerr.StorageError{
			Reason: "expected Put to produce Encrypted, got " + stored.kind.String(),
		}
	}
	return stored.hash, stored.key, nil
}
