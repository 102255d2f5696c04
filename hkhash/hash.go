// Package hkhash provides the concrete reference implementation of the
// "Hash" collaborator that the Hkey algebra treats as an opaque external
// type: a fixed-width content digest with a canonical hex text encoding and
// a shorter binary encoding.
//
// The rest of hkvault never assumes the digest algorithm is SHA-256 beyond
// the sizing constants below; swapping the algorithm means changing Size
// and Compute together. This mirrors how github.com/opencontainers/go-digest
// carries an algorithm-prefixed string, except the Hkey text grammar (§6 of
// the specification) has no room for an algorithm prefix, so Size is fixed
// at compile time rather than carried per value.
package hkhash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/opencas/hkvault/hkerr"
)

// Size is HASH_SIZE_COMPACT, the binary width of a digest in bytes.
const Size = sha256.Size

// TextSize is HASH_SIZE, the width of a digest in its canonical hex text
// encoding.
const TextSize = Size * 2

// Hash is a fixed-width content digest, comparable and cheap to copy.
type Hash [Size]byte

// Zero is the all-zero Hash, used as a sentinel meaning "no key" where a
// Hash-shaped parameter is optional (e.g. self-contained ciphertexts).
var Zero Hash

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool { return h == Zero }

// Compute returns the digest of data.
//
// The low bit of the first byte is always forced to zero. This reserves it
// as the tag bit the Hkey compact binary form (see hkey.Compact) XORs a
// variant tag into, so that compacting an Encrypted reference (tag 0) never
// perturbs a real hash and from_compact can always recover the canonical,
// lookup-able hash by clearing the same bit back to zero.
func Compute(data []byte) Hash {
	h := sha256.Sum256(data)
	h[0] &^= 1
	return Hash(h)
}

// String renders the canonical lowercase-hex text form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the compact binary encoding.
func (h Hash) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, h[:])
	return out
}

// Less orders two hashes lexicographically over their bytes. Ordering of
// LongHkeyExpanded children (hkey's Compare) goes by their text form and
// does not use Less.
func (h Hash) Less(o Hash) bool {
	for i := range h {
		if h[i] != o[i] {
			return h[i] < o[i]
		}
	}
	return false
}

// Parse reads the canonical hex text form. It fails with hkerr.HashError if
// s is not exactly TextSize hex characters.
func Parse(s string) (Hash, error) {
	if len(s) != TextSize {
		return Hash{}, hkerr.HashError{Reason: "wrong text length"}
	}
	var h Hash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, hkerr.HashError{Reason: "invalid hex: " + err.Error()}
	}
	return h, nil
}

// FromCompact reads the binary encoding. It fails with hkerr.HashError if b
// is not exactly Size bytes.
func FromCompact(b []byte) (Hash, error) {
	if len(b) != Size {
		return Hash{}, hkerr.HashError{Reason: "wrong binary length"}
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
