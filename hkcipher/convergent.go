package hkcipher

import (
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
)

// Wire format tags. The first byte of every ciphertext this cipher produces
// identifies how to recover the key.
const (
	tagKeyed         byte = 0x01 // key must be supplied to Decrypt
	tagSelfContained byte = 0x02 // key is wrapped inside the ciphertext
)

// minCiphertextLen is the shortest plausible output: one tag byte plus one
// empty AEAD seal (just the tag).
const minCiphertextLen = 1 + chacha20poly1305.Overhead

// Convergent is the reference Cipher: the key for a chunk is the SHA-256
// digest of its plaintext, so encrypting the same bytes twice always
// produces the same ciphertext and the same key.
//
// A zero Convergent value is ready to use for the keyed mode. Call
// NewSelfContained to additionally support the self-contained admission
// path (Direct Hkeys), which wraps the content key under a fixed master
// key embedded in the Convergent value.
type Convergent struct {
	masterKey  hkhash.Hash
	hasWrapKey bool
}

// NewSelfContained returns a Convergent whose self-contained mode wraps
// content keys under masterKey. Two Convergent values with different master
// keys cannot decrypt each other's self-contained ciphertexts.
func NewSelfContained(masterKey hkhash.Hash) Convergent {
	return Convergent{masterKey: masterKey, hasWrapKey: true}
}

var zeroNonce [chacha20poly1305.NonceSize]byte

func seal(key hkhash.Hash, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.Bytes())
	if err != nil {
		return nil, hkerr.CipherError{Reason: "construct aead", Err: err}
	}
	return aead.Seal(nil, zeroNonce[:], plaintext, nil), nil
}

func open(key hkhash.Hash, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.Bytes())
	if err != nil {
		return nil, hkerr.CipherError{Reason: "construct aead", Err: err}
	}
	plaintext, err := aead.Open(nil, zeroNonce[:], sealed, nil)
	if err != nil {
		return nil, hkerr.CipherError{Reason: "authentication failed", Err: err}
	}
	return plaintext, nil
}

// Encrypt implements Cipher.
func (c Convergent) Encrypt(plaintext []byte) (ciphertext []byte, keyHash, ciphertextHash hkhash.Hash, err error) {
	key := hkhash.Compute(plaintext)

	sealed, err := seal(key, plaintext)
	if err != nil {
		return nil, hkhash.Hash{}, hkhash.Hash{}, err
	}

	out := make([]byte, 0, 1+len(sealed))
	out = append(out, tagKeyed)
	out = append(out, sealed...)

	return out, key, hkhash.Compute(out), nil
}

// EncryptSelfContained seals plaintext the same way as Encrypt but wraps
// the content key inside the ciphertext under the configured master key,
// so Decrypt can recover it without a separate keyHash. The result is
// admissible through the Store put pipeline's "Direct" path.
func (c Convergent) EncryptSelfContained(plaintext []byte) (ciphertext []byte, ciphertextHash hkhash.Hash, err error) {
	if !c.hasWrapKey {
		return nil, hkhash.Hash{}, hkerr.CipherError{Reason: "no master key configured for self-contained mode"}
	}

	key := hkhash.Compute(plaintext)

	wrappedKey, err := seal(c.masterKey, key.Bytes())
	if err != nil {
		return nil, hkhash.Hash{}, err
	}

	sealedPayload, err := seal(key, plaintext)
	if err != nil {
		return nil, hkhash.Hash{}, err
	}

	out := make([]byte, 0, 1+len(wrappedKey)+len(sealedPayload))
	out = append(out, tagSelfContained)
	out = append(out, wrappedKey...)
	out = append(out, sealedPayload...)

	return out, hkhash.Compute(out), nil
}

// Decrypt implements Cipher.
func (c Convergent) Decrypt(ciphertext []byte, keyHash hkhash.Hash) ([]byte, error) {
	if len(ciphertext) < minCiphertextLen {
		return nil, hkerr.CipherError{Reason: "ciphertext too short"}
	}

	switch ciphertext[0] {
	case tagKeyed:
		if keyHash.IsZero() {
			return nil, hkerr.CipherError{Reason: "keyed ciphertext requires a key hash"}
		}
		return open(keyHash, ciphertext[1:])
	case tagSelfContained:
		if !c.hasWrapKey {
			return nil, hkerr.CipherError{Reason: "no master key configured for self-contained mode"}
		}
		wrappedLen := hkhash.Size + chacha20poly1305.Overhead
		if len(ciphertext) < 1+wrappedLen {
			return nil, hkerr.CipherError{Reason: "self-contained ciphertext truncated"}
		}
		keyBytes, err := open(c.masterKey, ciphertext[1:1+wrappedLen])
		if err != nil {
			return nil, err
		}
		key, err := hkhash.FromCompact(keyBytes)
		if err != nil {
			return nil, hkerr.CipherError{Reason: "recovered key malformed", Err: err}
		}
		return open(key, ciphertext[1+wrappedLen:])
	default:
		return nil, hkerr.CipherError{Reason: "unrecognized ciphertext tag"}
	}
}

// Validate implements Cipher. Only self-contained ciphertext qualifies: the
// Store put pipeline's "already-ciphertext" admission path (§4.4 step 2)
// produces a Direct Hkey, which carries no key hash and so can only ever
// be decrypted self-contained. A tagKeyed ciphertext admitted that way
// would be unresolvable later, since Decrypt requires a non-zero key hash
// for that tag.
func (c Convergent) Validate(data []byte) bool {
	return len(data) >= 1+hkhash.Size+2*chacha20poly1305.Overhead && data[0] == tagSelfContained
}

var _ Cipher = Convergent{}
