// Package hkey implements the Hkey algebra from the specification: the
// tagged-variant reference value that names a byte sequence, its canonical
// textual and binary ("compact") encodings, its parser, and its resolution
// against a backing Store. The recursive long-blob tree
// (LongHkeyExpanded/LongHkey) lives in this same package rather than a
// sibling one, because the two are mutually recursive in the specification
// itself: a LongHkeyExpanded's parts are Hkeys, and LongHkeyExpanded is
// itself one of the Hkey variants.
package hkey

import (
	"context"

	"github.com/opencas/hkvault/hkhash"
)

// Kind tags which variant an Hkey holds.
type Kind uint8

const (
	KindRaw Kind = iota
	KindBase64
	KindDirect
	KindEncrypted
	KindListRef
	KindList
	KindLongHkey
	KindLongHkeyExpanded
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "Raw"
	case KindBase64:
		return "Base64"
	case KindDirect:
		return "Direct"
	case KindEncrypted:
		return "Encrypted"
	case KindListRef:
		return "ListRef"
	case KindList:
		return "List"
	case KindLongHkey:
		return "LongHkey"
	case KindLongHkeyExpanded:
		return "LongHkeyExpanded"
	default:
		return "Unknown"
	}
}

// Hkey is an immutable, cheaply-copyable reference to a byte sequence of
// arbitrary size. The zero value is not a valid Hkey; construct one with
// Raw, Base64Payload, Direct, Encrypted, ListRefOf, List, LongHkeyRef, or
// Expanded.
type Hkey struct {
	kind Kind

	// Raw, Base64: literal payload bytes (identical representation;
	// Format renders both as "B"+base64, so Kind does not affect the
	// text form).
	payload []byte

	// Direct: hash. Encrypted, ListRef, LongHkey: hash and key.
	hash hkhash.Hash
	key  hkhash.Hash

	// List: ordered children.
	children []Hkey

	// LongHkeyExpanded: the in-memory tree node.
	expanded *LongHkeyExpanded
}

// Raw constructs a literal inline Hkey. Callers building large values
// should go through Put instead, which picks the right variant for the
// input size.
func Raw(b []byte) Hkey {
	return Hkey{kind: KindRaw, payload: cloneBytes(b)}
}

// Base64Payload constructs an Hkey whose canonical text is "B"+base64(b).
// Used by the parser for "B"-prefixed text and for unprefixed inputs that
// fall back to the Base64 case (§4.1 rule 9) because they decode as base64.
func Base64Payload(b []byte) Hkey {
	return Hkey{kind: KindBase64, payload: cloneBytes(b)}
}

// Direct constructs a reference to a ciphertext whose key is recoverable
// from the ciphertext itself.
func Direct(h hkhash.Hash) Hkey {
	return Hkey{kind: KindDirect, hash: h}
}

// Encrypted constructs a reference to a ciphertext with its key carried
// alongside.
func Encrypted(h, k hkhash.Hash) Hkey {
	return Hkey{kind: KindEncrypted, hash: h, key: k}
}

// ListRefOf constructs an indirection whose decrypted plaintext is the
// textual form of another Hkey.
func ListRefOf(h, k hkhash.Hash) Hkey {
	return Hkey{kind: KindListRef, hash: h, key: k}
}

// List constructs an ordered sequence of Hkeys whose concatenated
// resolutions form the value.
func List(children []Hkey) Hkey {
	return Hkey{kind: KindList, children: append([]Hkey(nil), children...)}
}

// LongHkeyRef constructs a stored reference to a serialized
// LongHkeyExpanded node.
func LongHkeyRef(h, k hkhash.Hash) Hkey {
	return Hkey{kind: KindLongHkey, hash: h, key: k}
}

// Expanded wraps an in-memory tree node as an Hkey. This form is transient:
// it is never emitted by Put and must be reduced via Shrink before being
// compacted or persisted.
func Expanded(n *LongHkeyExpanded) Hkey {
	return Hkey{kind: KindLongHkeyExpanded, expanded: n}
}

// Kind reports which variant h holds.
func (h Hkey) Kind() Kind { return h.kind }

// Payload returns the literal bytes of a Raw or Base64 Hkey.
func (h Hkey) Payload() ([]byte, bool) {
	if h.kind != KindRaw && h.kind != KindBase64 {
		return nil, false
	}
	return cloneBytes(h.payload), true
}

// HashKey returns the (hash, key) pair of a Direct (key is zero), Encrypted,
// ListRef, or LongHkey Hkey.
func (h Hkey) HashKey() (hash, key hkhash.Hash, ok bool) {
	switch h.kind {
	case KindDirect, KindEncrypted, KindListRef, KindLongHkey:
		return h.hash, h.key, true
	default:
		return hkhash.Hash{}, hkhash.Hash{}, false
	}
}

// Children returns the ordered children of a List Hkey.
func (h Hkey) Children() ([]Hkey, bool) {
	if h.kind != KindList {
		return nil, false
	}
	return append([]Hkey(nil), h.children...), true
}

// Node returns the in-memory tree node of a LongHkeyExpanded Hkey.
func (h Hkey) Node() (*LongHkeyExpanded, bool) {
	if h.kind != KindLongHkeyExpanded {
		return nil, false
	}
	return h.expanded, true
}

// Equal reports whether a and b denote the same Hkey value, structurally.
func Equal(a, b Hkey) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindRaw, KindBase64:
		return string(a.payload) == string(b.payload)
	case KindDirect:
		return a.hash == b.hash
	case KindEncrypted, KindListRef, KindLongHkey:
		return a.hash == b.hash && a.key == b.key
	case KindList:
		if len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	case KindLongHkeyExpanded:
		return a.expanded.Compare(b.expanded) == 0
	default:
		return false
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Backend is the minimal persistence capability the Hkey algebra needs: it
// is satisfied by hkstore.Store and hkstore.Backend alike, so this package
// never imports hkstore and no import cycle forms.
type Backend interface {
	// Get fetches a stored ciphertext by its hash.
	Get(ctx context.Context, h hkhash.Hash) ([]byte, error)

	// PutEncrypted persists a ciphertext chunk keyed by its hash.
	// Idempotent: storing an already-present hash is a no-op.
	PutEncrypted(ctx context.Context, h hkhash.Hash, ciphertext []byte) error
}

// Env bundles the two collaborators every non-trivial Hkey operation
// needs: somewhere to read and write chunks, and something to decrypt and
// encrypt them.
type Env struct {
	Backend Backend
	Cipher  cipher
}

// cipher is the subset of hkcipher.Cipher that hkey depends on, declared
// locally so this package does not import hkcipher for its exported
// surface; hkcipher.Convergent (and any other hkcipher.Cipher) satisfies
// it structurally.
type cipher interface {
	Encrypt(plaintext []byte) (ciphertext []byte, keyHash, ciphertextHash hkhash.Hash, err error)
	Decrypt(ciphertext []byte, keyHash hkhash.Hash) (plaintext []byte, err error)
	Validate(data []byte) bool
}
