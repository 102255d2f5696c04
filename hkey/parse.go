package hkey

import (
	"github.com/opencas/hkvault/hkb64"
	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
)

// Parse implements try_parse from §4.1/§6. It always succeeds for
// unprefixed input (falling back to Base64 or Raw) and only returns an
// error when a prefix byte announces a specific shape that fails to
// validate: a hkerr.FormatError for bad length, base64 or brackets, or a
// hkerr.HashError for a malformed digest. Parsing performs no I/O.
//
// The numbered algorithm in §4.1 omits the explicit 'B' prefix rule that
// the textual grammar in §6 and the format table both require; this
// implementation follows the grammar (the more complete and more
// authoritative of the two, and the one with no ambiguity) and treats a
// leading 'B' as introducing base64 text, checked ahead of the other
// single-byte prefixes since they are mutually exclusive on the first byte.
func Parse(s string) (Hkey, error) {
	if len(s) == 0 {
		return Base64Payload(nil), nil
	}

	switch s[0] {
	case 'B':
		b, err := hkb64.Decode(s[1:])
		if err != nil {
			return Hkey{}, err
		}
		return Base64Payload(b), nil

	case 'D':
		if len(s) != HashSize+1 {
			return Hkey{}, hkerr.FormatError{Reason: "D-prefixed Hkey has wrong length"}
		}
		h, err := hkhash.Parse(s[1:])
		if err != nil {
			return Hkey{}, err
		}
		return Direct(h), nil

	case 'E':
		if len(s) != DoubleHashSize+1 {
			return Hkey{}, hkerr.FormatError{Reason: "E-prefixed Hkey has wrong length"}
		}
		h, k, err := parseHashPair(s[1:])
		if err != nil {
			return Hkey{}, err
		}
		return Encrypted(h, k), nil

	case 'L':
		if len(s) != DoubleHashSize+1 {
			return Hkey{}, hkerr.FormatError{Reason: "L-prefixed Hkey has wrong length"}
		}
		h, k, err := parseHashPair(s[1:])
		if err != nil {
			return Hkey{}, err
		}
		// Parse always produces ListRef for the "L"+hash+key text that
		// ListRef and LongHkey share; resolving the ListRef re-parses the
		// stored plaintext, which yields the long-tree node when it
		// begins with '{'.
		return ListRefOf(h, k), nil

	case '[':
		return parseList(s)

	case '{':
		n, err := ParseLongHkeyExpanded(s)
		if err != nil {
			return Hkey{}, err
		}
		return Expanded(n), nil
	}

	switch len(s) {
	case HashSize:
		h, err := hkhash.Parse(s)
		if err != nil {
			return fallback(s), nil
		}
		return Direct(h), nil
	case DoubleHashSize:
		h, k, err := parseHashPair(s)
		if err != nil {
			return fallback(s), nil
		}
		return Encrypted(h, k), nil
	}

	return fallback(s), nil
}

// fallback implements §4.1 rule 9: decode s as base64 and hold the decoded
// bytes as payload when it is valid base64, Raw otherwise — the same
// decode-before-storing contract the 'B'-prefixed case above uses, so every
// KindBase64 Hkey holds decoded payload bytes everywhere (Resolve/Format
// never re-decode it).
func fallback(s string) Hkey {
	if b, err := hkb64.Decode(s); err == nil {
		return Base64Payload(b)
	}
	return Raw([]byte(s))
}

func parseHashPair(s string) (h, k hkhash.Hash, err error) {
	h, err = hkhash.Parse(s[:HashSize])
	if err != nil {
		return hkhash.Hash{}, hkhash.Hash{}, err
	}
	k, err = hkhash.Parse(s[HashSize:])
	if err != nil {
		return hkhash.Hash{}, hkhash.Hash{}, err
	}
	return h, k, nil
}

func parseList(s string) (Hkey, error) {
	if s[len(s)-1] != ']' {
		return Hkey{}, hkerr.FormatError{Reason: "unterminated list"}
	}
	close := matchingClose(s, 0)
	if close != len(s)-1 {
		return Hkey{}, hkerr.FormatError{Reason: "malformed list brackets"}
	}

	inner := s[1 : len(s)-1]
	if inner == "" {
		return List(nil), nil
	}

	parts := splitTopLevel(inner, ',')
	children := make([]Hkey, 0, len(parts))
	for _, p := range parts {
		child, err := Parse(p)
		if err != nil {
			return Hkey{}, err
		}
		children = append(children, child)
	}
	return List(children), nil
}
