package hkey

import "github.com/opencas/hkvault/hkhash"

// Sizing constants from the specification's data model (§3). Most are
// decisions, not derivations; where one is derived from another, the
// derivation is spelled out alongside it.
const (
	// HashSize is HASH_SIZE, the canonical hex text width of a digest.
	HashSize = hkhash.TextSize

	// HashSizeCompact is HASH_SIZE_COMPACT, the binary width of a digest.
	HashSizeCompact = hkhash.Size

	// DoubleHashSize is the text width of a hash+key pair.
	DoubleHashSize = 2 * HashSize

	// MaxSizeRaw is the inline-as-bytes threshold: Put inlines inputs of at
	// most MaxSizeRaw bytes as Raw, and Shrink passes a Raw of at most
	// MaxSizeRaw bytes through unchanged.
	MaxSizeRaw = HashSizeCompact - 1

	// MaxSizeBase64 is the inline-as-text threshold, measured in bytes of
	// the base64 text itself (not the decoded payload).
	MaxSizeBase64 = (MaxSizeRaw / 3) * 4

	// MaxEncryptedSize is the upper bound on payload size admitted
	// through the "direct" (already-ciphertext) triage path.
	MaxEncryptedSize = 4629

	// MaxDecryptedSize is the upper bound on a single chunk's plaintext
	// size for single-shot encryption.
	MaxDecryptedSize = 4096

	// SegmentMaxLength is LHKEY_SEGMENT_MAX_LENGTH, the size of a leaf
	// segment at tree depth 0.
	SegmentMaxLength = 1 << 12

	// PartCount is LHKEY_PART_COUNT, the fan-out of a long-tree node.
	PartCount = 1 << 4

	// LevelMaxLength is LHKEY_LEVEL_MAX_LENGTH, the payload capacity of a
	// depth-0 node.
	LevelMaxLength = 1 << 16
)
