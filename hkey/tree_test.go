package hkey

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBlobBuildsDepthZeroTreeForModerateSize(t *testing.T) {
	env := newTestEnv()
	data := bytes.Repeat([]byte("x"), int(SegmentMaxLength)*3+7)

	n, err := FromBlob(context.Background(), env, data)
	require.NoError(t, err)
	require.Equal(t, uint32(0), n.Depth)
	require.Equal(t, int64(len(data)), n.Size)
	require.Len(t, n.Parts, 4)
}

func TestFromBlobResolveSliceRecoversOriginalData(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("abcdefgh"), int(SegmentMaxLength)/4)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)

	got, err := n.resolveSliceAt(ctx, env, Range{0, n.Size}, 0)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestFromBlobResolveSlicePartialRange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("0123456789"), int(SegmentMaxLength)/2)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)

	r := Range{Start: 5, End: int64(SegmentMaxLength) + 50}
	got, err := n.resolveSliceAt(ctx, env, r, 0)
	require.NoError(t, err)
	require.Equal(t, data[r.Start:r.End], got)
}

func TestLongHkeyExpandedStoreAndDerefRoundTrip(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("roundtrip"), int(SegmentMaxLength)/3)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)

	ref, err := n.store(ctx, env)
	require.NoError(t, err)
	require.Equal(t, KindLongHkey, ref.Kind())

	got, err := Resolve(ctx, env, ref)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestFromBlobMultiLevelTree(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	size := int64(LevelMaxLength) + 1000
	data := bytes.Repeat([]byte("y"), int(size))

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n.Depth, uint32(1))

	got, err := n.resolveSliceAt(ctx, env, Range{0, n.Size}, 0)
	require.NoError(t, err)
	require.Equal(t, data, got)
}
