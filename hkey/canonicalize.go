package hkey

// Canonicalize reduces h to the fixed point parse(format(h)): Raw collapses
// into Base64, non-canonical base64 spellings re-encode under the Hkey
// alphabet, and every other variant passes through unchanged (§4.1's
// canonical-form rule). The round-trip property (§8) guarantees this never
// fails for a well-formed h, so a parse error here indicates Format itself
// produced malformed text.
func Canonicalize(h Hkey) Hkey {
	canon, err := Parse(Format(h))
	if err != nil {
		panic("hkey: Format produced unparsable text: " + err.Error())
	}
	return canon
}

// CanonicalizeText parses s and re-formats the result, converging
// non-canonical textual spellings (added base64 padding, injected
// whitespace, alternate alphabets) to their canonical form in one round.
func CanonicalizeText(s string) (string, error) {
	h, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(h), nil
}
