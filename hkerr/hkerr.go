// Package hkerr defines the error kinds produced by the hkvault packages.
//
// Each kind is a distinct, small struct type with an Error method, in the
// style of the plain error structs in registry/storage/driver (PathNotFoundError,
// InvalidPathError, InvalidOffsetError) rather than a centralized error-code
// registry: this module has no HTTP surface, so there is nothing for an
// error-code table to serve.
package hkerr

import "fmt"

// FormatError is returned when a textual or binary Hkey is malformed: a bad
// bracket, the wrong length for a prefixed form, an invalid digest, a bad
// range-entry, or a parse-int failure.
type FormatError struct {
	Reason string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("hkey: invalid format: %s", e.Reason)
}

// RangeError is returned when a requested slice extends past the resolved
// payload. Actual carries the true size of the payload.
type RangeError struct {
	Actual int64
}

func (e RangeError) Error() string {
	return fmt.Sprintf("hkey: range out of bounds, actual size %d", e.Actual)
}

// StorageError is returned when a backend fails to produce a required
// chunk, produces an unexpected variant for a serialized node, or reports
// that no backends are configured.
type StorageError struct {
	Reason string
	Err    error
}

func (e StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hkey: storage error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("hkey: storage error: %s", e.Reason)
}

func (e StorageError) Unwrap() error { return e.Err }

// CipherError is returned when encryption, decryption, or ciphertext
// validation fails.
type CipherError struct {
	Reason string
	Err    error
}

func (e CipherError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hkey: cipher error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("hkey: cipher error: %s", e.Reason)
}

func (e CipherError) Unwrap() error { return e.Err }

// HashError is returned when digest parsing or validation fails.
type HashError struct {
	Reason string
}

func (e HashError) Error() string {
	return fmt.Sprintf("hkey: invalid hash: %s", e.Reason)
}

// ConcurrencyError is returned for a poisoned lock or a future consumed
// more than once.
type ConcurrencyError struct {
	Reason string
}

func (e ConcurrencyError) Error() string {
	return fmt.Sprintf("hkey: concurrency error: %s", e.Reason)
}

// UnreachableError is a defensive error for an invariant violation along an
// untaken branch, e.g. an unknown Kind in Resolve or Shrink.
type UnreachableError struct {
	Reason string
}

func (e UnreachableError) Error() string {
	return fmt.Sprintf("hkey: unreachable: %s", e.Reason)
}

// NotFoundError is returned when a backend has no chunk for the requested
// hash.
type NotFoundError struct {
	Hash string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("hkey: not found: %s", e.Hash)
}
