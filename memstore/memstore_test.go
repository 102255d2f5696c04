package memstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencas/hkvault/hkcipher"
	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkey"
	"github.com/opencas/hkvault/hkhash"
)

func testCipher() hkcipher.Convergent {
	return hkcipher.NewSelfContained(hkhash.Compute([]byte("memstore test master key")))
}

func TestDriverGetMissingReturnsNotFound(t *testing.T) {
	d := NewDriver()
	_, err := d.Get(context.Background(), hkhash.Compute([]byte("absent")))
	require.Error(t, err)
	var nf hkerr.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDriverPutEncryptedIsIdempotent(t *testing.T) {
	d := NewDriver()
	ctx := context.Background()
	h := hkhash.Compute([]byte("chunk"))

	require.NoError(t, d.PutEncrypted(ctx, h, []byte("chunk")))
	require.Equal(t, 1, d.Len())
	require.NoError(t, d.PutEncrypted(ctx, h, []byte("chunk")))
	require.Equal(t, 1, d.Len())
}

func TestDriverGetReturnsACopyNotTheStoredSlice(t *testing.T) {
	d := NewDriver()
	ctx := context.Background()
	h := hkhash.Compute([]byte("chunk"))
	require.NoError(t, d.PutEncrypted(ctx, h, []byte("chunk")))

	got, err := d.Get(ctx, h)
	require.NoError(t, err)
	got[0] = 'X'

	got2, err := d.Get(ctx, h)
	require.NoError(t, err)
	require.True(t, bytes.Equal(got2, []byte("chunk")))
}

func TestStoreRoundTripsArbitraryBytes(t *testing.T) {
	store := New(testCipher(), nil)
	ctx := context.Background()

	for _, data := range [][]byte{
		nil,
		[]byte("small"),
		bytes.Repeat([]byte("mid "), 200),
		bytes.Repeat([]byte("long-blob-content "), 1000),
	} {
		h, err := store.Put(ctx, data)
		require.NoError(t, err)
		got, err := store.Resolve(ctx, h)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestStoreResolveSliceMatchesFullResolve(t *testing.T) {
	store := New(testCipher(), nil)
	ctx := context.Background()
	data := bytes.Repeat([]byte("0123456789"), 2000)

	h, err := store.Put(ctx, data)
	require.NoError(t, err)

	full, err := store.Resolve(ctx, h)
	require.NoError(t, err)

	r := hkey.Range{Start: 1234, End: 5678}
	got, err := store.ResolveSlice(ctx, h, r)
	require.NoError(t, err)
	require.Equal(t, full[1234:5678], got)
}
