package hkey

import (
	"strings"

	"github.com/opencas/hkvault/hkb64"
)

// Format renders h in its canonical textual form (§4.1, §6).
func Format(h Hkey) string {
	switch h.kind {
	case KindRaw, KindBase64:
		// Raw serializes identically to Base64 (§4.1's textual form
		// table); the parser never reconstructs Raw from text, which is
		// exactly the "normalize Raw to Base64" canonicalization rule.
		return "B" + hkb64.Encode(h.payload)
	case KindDirect:
		return h.hash.String()
	case KindEncrypted:
		return "E" + h.hash.String() + h.key.String()
	case KindListRef:
		return "L" + h.hash.String() + h.key.String()
	case KindLongHkey:
		// Textually indistinguishable from ListRef: Parse reads this text
		// back as ListRef, and resolving that ListRef re-parses the stored
		// "{...}" body as the long-tree node.
		return "L" + h.hash.String() + h.key.String()
	case KindList:
		var b strings.Builder
		b.WriteByte('[')
		for i, child := range h.children {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Format(child))
		}
		b.WriteByte(']')
		return b.String()
	case KindLongHkeyExpanded:
		return h.expanded.Format()
	default:
		return ""
	}
}
