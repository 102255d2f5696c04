package hkey

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencas/hkvault/hkb64"
	"github.com/opencas/hkvault/hkhash"
)

func TestParseEmptyStringIsEmptyBase64(t *testing.T) {
	h, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, KindBase64, h.Kind())
	payload, ok := h.Payload()
	require.True(t, ok)
	require.Empty(t, payload)
}

func TestParseUnprefixedUTF8FallsBackToBase64(t *testing.T) {
	h, err := Parse("not a prefix at all")
	require.NoError(t, err)
	require.Equal(t, KindBase64, h.Kind())
}

func TestParseUnprefixedBase64FallbackDecodesPayload(t *testing.T) {
	want := []byte("some arbitrary payload bytes")
	h, err := Parse(hkb64.Encode(want))
	require.NoError(t, err)
	require.Equal(t, KindBase64, h.Kind())

	payload, ok := h.Payload()
	require.True(t, ok)
	require.Equal(t, want, payload)
	require.Equal(t, "B"+hkb64.Encode(want), Format(h))
}

func TestParseUnprefixedNonUTF8FallsBackToRaw(t *testing.T) {
	invalid := string([]byte{0xff, 0xfe, 0xfd})
	h, err := Parse(invalid)
	require.NoError(t, err)
	require.Equal(t, KindRaw, h.Kind())
}

func TestParseBarePairOfHashesIsEncrypted(t *testing.T) {
	h1, k1 := hkhash.Compute([]byte("x")), hkhash.Compute([]byte("y"))
	text := h1.String() + k1.String()
	h, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, KindEncrypted, h.Kind())
}

func TestParseBareSingleHashIsDirect(t *testing.T) {
	h1 := hkhash.Compute([]byte("x"))
	h, err := Parse(h1.String())
	require.NoError(t, err)
	require.Equal(t, KindDirect, h.Kind())
}

func TestParseBPrefixRejectsGarbageBase64(t *testing.T) {
	_, err := Parse("B!!!not base64!!!")
	require.Error(t, err)
}

func TestParseDPrefixWrongLength(t *testing.T) {
	_, err := Parse("Dtooshort")
	require.Error(t, err)
}

func TestParseEPrefixWrongLength(t *testing.T) {
	_, err := Parse("Etooshort")
	require.Error(t, err)
}

func TestParseLPrefixAlwaysProducesListRef(t *testing.T) {
	h1, k1 := hkhash.Compute([]byte("x")), hkhash.Compute([]byte("y"))
	text := "L" + h1.String() + k1.String()
	h, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, KindListRef, h.Kind())
}

func TestParseListUnterminatedFails(t *testing.T) {
	_, err := Parse("[B" + hkb64.Encode([]byte("a")))
	require.Error(t, err)
}

func TestParseListEmpty(t *testing.T) {
	h, err := Parse("[]")
	require.NoError(t, err)
	children, ok := h.Children()
	require.True(t, ok)
	require.Empty(t, children)
}

func TestParseListNested(t *testing.T) {
	inner := "[" + Format(Base64Payload([]byte("a"))) + "]"
	outer := "[" + inner + "," + Format(Base64Payload([]byte("b"))) + "]"
	h, err := Parse(outer)
	require.NoError(t, err)
	children, ok := h.Children()
	require.True(t, ok)
	require.Len(t, children, 2)
	require.Equal(t, KindList, children[0].Kind())
}
