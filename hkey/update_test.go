package hkey

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencas/hkvault/hkerr"
)

func TestUpdateOverwriteWithinExistingSize(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("0123456789"), int(SegmentMaxLength)/5)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)

	patch := []byte("ZZZZZ")
	offset := int64(SegmentMaxLength) + 3
	updated, err := n.Update(ctx, env, offset, patch)
	require.NoError(t, err)
	require.Equal(t, n.Size, updated.Size)

	got, err := updated.resolveSliceAt(ctx, env, Range{0, updated.Size}, 0)
	require.NoError(t, err)

	want := append([]byte(nil), data...)
	copy(want[offset:], patch)
	require.Equal(t, want, got)
}

func TestUpdateAppendPastEndGrowsSize(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("a"), int(SegmentMaxLength)*2)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)

	tail := []byte("appended-tail")
	updated, err := n.Update(ctx, env, n.Size, tail)
	require.NoError(t, err)
	require.Equal(t, n.Size+int64(len(tail)), updated.Size)

	got, err := updated.resolveSliceAt(ctx, env, Range{0, updated.Size}, 0)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte(nil), data...), tail...), got)
}

func TestUpdateOffsetPastEndIsRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	n, err := FromBlob(ctx, env, []byte("short"))
	require.NoError(t, err)

	_, err = n.Update(ctx, env, n.Size+1, []byte("x"))
	require.Error(t, err)
	require.IsType(t, hkerr.RangeError{}, err)
}

func TestUpdateOnlyRestoresTouchedParts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("b"), int(SegmentMaxLength)*4)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)
	require.Len(t, n.Parts, 4)

	updated, err := n.Update(ctx, env, 0, []byte("patched"))
	require.NoError(t, err)
	require.Len(t, updated.Parts, 4)

	for i := 1; i < 4; i++ {
		require.True(t, Equal(n.Parts[i].Key, updated.Parts[i].Key), "untouched part %d must keep its original key", i)
	}
	require.False(t, Equal(n.Parts[0].Key, updated.Parts[0].Key))
}

func TestUpdateRepeatedSmallAppendsStayWithinFanOutBound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("e"), 10000)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)
	require.Equal(t, uint32(0), n.Depth)

	for i := 0; i < 60; i++ {
		n, err = n.Update(ctx, env, n.Size, []byte("0123456789"))
		require.NoError(t, err)
		require.LessOrEqual(t, len(n.Parts), PartCount, "depth-0 fan-out must stay bounded across repeated appends")
	}

	require.Less(t, n.Size, int64(LevelMaxLength))

	got, err := n.resolveSliceAt(ctx, env, Range{0, n.Size}, 0)
	require.NoError(t, err)

	want := append([]byte(nil), data...)
	for i := 0; i < 60; i++ {
		want = append(want, []byte("0123456789")...)
	}
	require.Equal(t, want, got)
}

func TestUpdateGrowsPastOneLevelRebuildsAtDeeperDepth(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	data := bytes.Repeat([]byte("c"), 100)

	n, err := FromBlob(ctx, env, data)
	require.NoError(t, err)
	require.Equal(t, uint32(0), n.Depth)

	bigTail := bytes.Repeat([]byte("d"), int(LevelMaxLength))
	updated, err := n.Update(ctx, env, n.Size, bigTail)
	require.NoError(t, err)
	require.Greater(t, updated.Depth, n.Depth)

	got, err := updated.resolveSliceAt(ctx, env, Range{0, updated.Size}, 0)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte(nil), data...), bigTail...), got)
}
