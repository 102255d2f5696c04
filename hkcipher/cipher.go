// Package hkcipher defines the "Cipher" collaborator the specification
// treats as an opaque external dependency, plus one concrete, convergent
// reference implementation.
//
// Convergent encryption means identical plaintexts always produce identical
// ciphertexts and identical keys, which is what lets the Store de-duplicate
// leaves by content hash. The reference cipher derives its key directly from
// the plaintext digest and seals with a fixed nonce under
// golang.org/x/crypto/chacha20poly1305 — safe here specifically because the
// key itself already varies with the plaintext, so nonce reuse under a fixed
// key never happens. The deterministic, misuse-resistant spirit of this
// construction is grounded on the HS1-SIV AEAD in Yawning-hs1siv, which
// derives its synthetic IV from the message rather than relying on a
// caller-supplied nonce.
package hkcipher

import (
	"github.com/opencas/hkvault/hkhash"
)

// Cipher is the deterministic symmetric scheme the Hkey algebra builds on.
type Cipher interface {
	// Encrypt seals plaintext, returning the ciphertext, the hash of the
	// derived key (needed to decrypt), and the hash of the ciphertext
	// (used to address it in a Store).
	Encrypt(plaintext []byte) (ciphertext []byte, keyHash, ciphertextHash hkhash.Hash, err error)

	// Decrypt opens ciphertext using keyHash. If the ciphertext is
	// self-contained (see Validate), keyHash may be hkhash.Zero and the
	// key is recovered from the ciphertext itself.
	Decrypt(ciphertext []byte, keyHash hkhash.Hash) (plaintext []byte, err error)

	// Validate reports whether data looks like a well-formed ciphertext
	// produced by this cipher, used by the Store put pipeline to decide
	// whether an oversized input is already-encrypted and can be adopted
	// as-is (the "Direct" admission path).
	Validate(data []byte) bool
}
