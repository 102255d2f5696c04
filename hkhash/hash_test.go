package hkhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeClearsTagBit(t *testing.T) {
	for _, input := range [][]byte{nil, []byte("hello"), []byte{0xff, 0xff, 0xff}} {
		h := Compute(input)
		require.Zero(t, h[0]&1, "Compute must always clear the low bit of byte 0")
	}
}

func TestComputeDeterministic(t *testing.T) {
	a := Compute([]byte("content"))
	b := Compute([]byte("content"))
	require.Equal(t, a, b)
}

func TestParseRoundTrip(t *testing.T) {
	h := Compute([]byte("round trip me"))
	parsed, err := Parse(h.String())
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestParseWrongLength(t *testing.T) {
	_, err := Parse("abc")
	require.Error(t, err)
}

func TestFromCompactRoundTrip(t *testing.T) {
	h := Compute([]byte("binary round trip"))
	parsed, err := FromCompact(h.Bytes())
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestFromCompactWrongLength(t *testing.T) {
	_, err := FromCompact([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestLess(t *testing.T) {
	var a, b Hash
	a[0], b[0] = 1, 2
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
}

func TestIsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.False(t, Compute([]byte("x")).IsZero())
}
