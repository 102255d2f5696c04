package hkey

import (
	"strconv"
	"strings"

	"github.com/opencas/hkvault/hkerr"
)

// Part is one element of a LongHkeyExpanded's ordered sequence: a disjoint
// byte range paired with the Hkey covering it.
type Part struct {
	Range Range
	Key   Hkey
}

// LongHkeyExpanded is the in-memory node of the recursive long-blob tree
// (§4.3). Depth 0 means every part is a leaf (Raw/Base64/Direct/Encrypted)
// covering at most SegmentMaxLength bytes; depth > 0 means every part's Key
// is a LongHkey covering SegmentMaxLength*PartCount^depth bytes.
type LongHkeyExpanded struct {
	Depth uint32
	Size  int64
	Parts []Part
}

// CalculateDepth returns the smallest depth d >= min such that
// size <= LevelMaxLength * PartCount^d. It never returns less than min, so
// a sequence of updates can never shrink an existing tree's depth even if
// its logical size falls (§8 property 7).
func CalculateDepth(min uint32, size int64) uint32 {
	d := min
	for levelCapacity(d) < size {
		d++
	}
	return d
}

// levelCapacity is LHKEY_LEVEL_MAX_LENGTH * 16^d, saturating at the
// largest representable int64 instead of overflowing.
func levelCapacity(d uint32) int64 {
	capacity := int64(LevelMaxLength)
	for i := uint32(0); i < d; i++ {
		if capacity > (1<<62)/PartCount {
			return 1<<63 - 1
		}
		capacity *= PartCount
	}
	return capacity
}

// CalculateSegmentLength is LHKEY_SEGMENT_MAX_LENGTH * PartCount^depth,
// i.e. 1 << (12 + 4*depth), saturating rather than overflowing.
func CalculateSegmentLength(depth uint32) int64 {
	shift := 12 + 4*depth
	if shift >= 62 {
		return 1<<62 - 1
	}
	return int64(1) << shift
}

// Format renders the node's canonical text form: "{depth;size;ranges}",
// with no range entries (and no trailing comma) when size is zero.
func (n *LongHkeyExpanded) Format() string {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(strconv.FormatUint(uint64(n.Depth), 10))
	b.WriteByte(';')
	b.WriteString(strconv.FormatInt(n.Size, 10))
	b.WriteByte(';')
	for i, p := range n.Parts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(p.Range.Start, 10))
		b.WriteByte('-')
		b.WriteString(strconv.FormatInt(p.Range.End-1, 10))
		b.WriteByte(':')
		b.WriteString(Format(p.Key))
	}
	b.WriteByte('}')
	return b.String()
}

// ParseLongHkeyExpanded parses the "{depth;size;ranges}" text form.
func ParseLongHkeyExpanded(s string) (*LongHkeyExpanded, error) {
	if len(s) < 2 || s[0] != '{' {
		return nil, hkerr.FormatError{Reason: "not a LongHkeyExpanded"}
	}
	close := matchingClose(s, 0)
	if close != len(s)-1 {
		return nil, hkerr.FormatError{Reason: "malformed LongHkeyExpanded brackets"}
	}

	inner := s[1 : len(s)-1]
	fields := strings.SplitN(inner, ";", 3)
	if len(fields) != 3 {
		return nil, hkerr.FormatError{Reason: "LongHkeyExpanded needs depth;size;ranges"}
	}

	depth, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return nil, hkerr.FormatError{Reason: "bad depth: " + err.Error()}
	}
	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, hkerr.FormatError{Reason: "bad size: " + err.Error()}
	}

	n := &LongHkeyExpanded{Depth: uint32(depth), Size: size}

	rangeList := fields[2]
	if rangeList == "" {
		if size != 0 {
			return nil, hkerr.FormatError{Reason: "empty range list only allowed when size is 0"}
		}
		return n, nil
	}
	if size == 0 {
		return nil, hkerr.FormatError{Reason: "non-empty range list requires a non-zero size"}
	}

	entries := splitTopLevel(rangeList, ',')
	n.Parts = make([]Part, 0, len(entries))
	for _, e := range entries {
		p, err := parseRangeEntry(e)
		if err != nil {
			return nil, err
		}
		n.Parts = append(n.Parts, p)
	}
	return n, nil
}

func parseRangeEntry(s string) (Part, error) {
	dash := strings.IndexByte(s, '-')
	if dash < 0 {
		return Part{}, hkerr.FormatError{Reason: "range entry missing '-': " + s}
	}
	colon := strings.IndexByte(s[dash+1:], ':')
	if colon < 0 {
		return Part{}, hkerr.FormatError{Reason: "range entry missing ':': " + s}
	}
	colon += dash + 1

	start, err := strconv.ParseInt(s[:dash], 10, 64)
	if err != nil {
		return Part{}, hkerr.FormatError{Reason: "bad range start: " + err.Error()}
	}
	endInclusive, err := strconv.ParseInt(s[dash+1:colon], 10, 64)
	if err != nil {
		return Part{}, hkerr.FormatError{Reason: "bad range end: " + err.Error()}
	}
	key, err := Parse(s[colon+1:])
	if err != nil {
		return Part{}, err
	}

	return Part{Range: Range{Start: start, End: endInclusive + 1}, Key: key}, nil
}

// Compare orders nodes first by size, then by number of parts, then
// lexicographically by each child Hkey's text form (§4.3).
func (n *LongHkeyExpanded) Compare(o *LongHkeyExpanded) int {
	if n.Size != o.Size {
		if n.Size < o.Size {
			return -1
		}
		return 1
	}
	if len(n.Parts) != len(o.Parts) {
		if len(n.Parts) < len(o.Parts) {
			return -1
		}
		return 1
	}
	for i := range n.Parts {
		a, b := Format(n.Parts[i].Key), Format(o.Parts[i].Key)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}
