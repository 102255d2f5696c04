package hkey

import (
	"context"

	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
)

// listRefTag and encryptedTag are XORed into the low bit of the first
// hash's first byte in the two-hash compact form to distinguish Encrypted
// from ListRef/LongHkey without spending an extra byte. hkhash.Compute
// always clears that bit first, so real hashes are never perturbed by an
// Encrypted encoding (tag 0) and are cleanly recoverable from a
// ListRef/LongHkey encoding (tag 1) by clearing the bit back.
const (
	encryptedTag byte = 0
	listRefTag   byte = 1
)

// Compact renders h in its binary ("compact") form (§4.1). Oversized Raw,
// Base64, List, and LongHkeyExpanded values are reduced via Shrink first,
// which requires env for the serialize/encrypt/store round trip.
func Compact(ctx context.Context, env *Env, h Hkey) ([]byte, error) {
	shrunk, err := Shrink(ctx, env, h)
	if err != nil {
		return nil, err
	}

	switch shrunk.kind {
	case KindRaw, KindBase64:
		return cloneBytes(shrunk.payload), nil

	case KindDirect:
		return shrunk.hash.Bytes(), nil

	case KindEncrypted:
		return packHashPair(shrunk.hash, shrunk.key, encryptedTag), nil

	case KindListRef, KindLongHkey:
		return packHashPair(shrunk.hash, shrunk.key, listRefTag), nil

	default:
		return nil, hkerr.UnreachableError{Reason: "Shrink left a " + shrunk.kind.String() + " variant"}
	}
}

func packHashPair(h, k hkhash.Hash, tag byte) []byte {
	out := make([]byte, 0, 2*hkhash.Size)
	hb := h.Bytes()
	hb[0] = (hb[0] &^ 1) ^ tag
	out = append(out, hb...)
	out = append(out, k.Bytes()...)
	return out
}

// FromCompact parses the binary form: hkhash.Size bytes are a Direct, two
// hashes' worth are Encrypted or ListRef by the tag bit, and any other
// length is a literal Raw. Every byte string of the two digest lengths is
// accepted as a digest, so FromCompact does not fail in practice; any
// error from hkhash.FromCompact is returned unchanged.
func FromCompact(b []byte) (Hkey, error) {
	switch len(b) {
	case hkhash.Size:
		h, err := hkhash.FromCompact(b)
		if err != nil {
			return Hkey{}, err
		}
		return Direct(h), nil

	case 2 * hkhash.Size:
		tag := b[0] & 1

		hb := make([]byte, hkhash.Size)
		copy(hb, b[:hkhash.Size])
		hb[0] &^= 1
		h, err := hkhash.FromCompact(hb)
		if err != nil {
			return Hkey{}, err
		}

		k, err := hkhash.FromCompact(b[hkhash.Size:])
		if err != nil {
			return Hkey{}, err
		}

		if tag == encryptedTag {
			return Encrypted(h, k), nil
		}
		// LongHkey and ListRef share this encoding; from_compact always
		// restores a ListRef, per §8 property 3.
		return ListRefOf(h, k), nil

	default:
		return Raw(b), nil
	}
}
