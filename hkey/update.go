package hkey

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opencas/hkvault/hkerr"
)

// Update returns a new tree with data written starting at offset, extending
// Size when the write runs past the current end (§4.3's update()). offset
// must not be past the current end: Update never creates a sparse gap of
// implicit zero bytes.
//
// At depth > 0 — whether the node was already that deep or the write needs
// a taller tree — every child is rebuilt through normalizeSegment, which
// re-aligns to PartCount-wide segment boundaries by either reusing an
// existing child that already sits exactly on one or rebuilding one from
// the node's current contents. At depth 0, updateFlat rebuilds the
// SegmentMaxLength-aligned leaves directly. Re-aligning on every write,
// rather than only ever growing a ragged tail of appended parts, is what
// keeps the fan-out bound in §8 property 9 intact across repeated small
// appends.
func (n *LongHkeyExpanded) Update(ctx context.Context, env *Env, offset int64, data []byte) (*LongHkeyExpanded, error) {
	if offset < 0 || offset > n.Size {
		return nil, hkerr.RangeError{Actual: n.Size}
	}

	editRange := Range{Start: offset, End: offset + int64(len(data))}
	size := n.Size
	if editRange.End > size {
		size = editRange.End
	}

	depth := CalculateDepth(n.Depth, size)
	if depth == 0 {
		return n.updateFlat(ctx, env, editRange, data, size)
	}

	segLen := CalculateSegmentLength(depth)
	count := ceilDivInt64(size, segLen)
	parts := make([]Part, count)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(PartCount)
	for i := int64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			start := i * segLen
			end := minInt64(start+segLen, size)
			segRange := Range{Start: start, End: end}
			oldRange := Range{Start: minInt64(start, n.Size), End: minInt64(end, n.Size)}

			segment, err := n.normalizeSegment(groupCtx, env, depth-1, oldRange)
			if err != nil {
				return err
			}

			if !segRange.intersects(editRange) {
				key, err := segment.store(groupCtx, env)
				if err != nil {
					return err
				}
				parts[i] = Part{Range: segRange, Key: key}
				return nil
			}

			overlap := segRange.intersect(editRange)
			localOffset := overlap.Start - start
			localData := data[overlap.Start-offset : overlap.End-offset]

			updated, err := segment.Update(groupCtx, env, localOffset, localData)
			if err != nil {
				return err
			}
			key, err := updated.store(groupCtx, env)
			if err != nil {
				return err
			}
			parts[i] = Part{Range: segRange, Key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LongHkeyExpanded{Depth: depth, Size: size, Parts: parts}, nil
}

// updateFlat rewrites a depth-0 node: only to be used when the node's
// (possibly grown) size still fits in a single level (§4.3's update_flat).
// It walks segment-aligned indices 0..ceil(size/SegmentMaxLength) rather
// than the node's existing parts, so the result is always realigned to
// segment boundaries instead of just growing a ragged tail of appended
// parts.
func (n *LongHkeyExpanded) updateFlat(ctx context.Context, env *Env, editRange Range, data []byte, size int64) (*LongHkeyExpanded, error) {
	count := ceilDivInt64(size, SegmentMaxLength)
	parts := make([]Part, count)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(PartCount)
	for i := int64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			segRange := Range{Start: i * SegmentMaxLength, End: minInt64((i+1)*SegmentMaxLength, size)}

			// A part already sitting exactly on this segment's boundary
			// and untouched by the edit needs no work at all.
			if int(i) < len(n.Parts) && n.Parts[i].Range == segRange && !segRange.intersects(editRange) {
				parts[i] = n.Parts[i]
				return nil
			}

			if editRange.Start <= segRange.Start && editRange.End >= segRange.End {
				// Entirely inside the write: no old bytes survive.
				key, err := Put(groupCtx, env, data[segRange.Start-editRange.Start:segRange.End-editRange.Start])
				if err != nil {
					return err
				}
				parts[i] = Part{Range: segRange, Key: key}
				return nil
			}

			oldRange := Range{Start: segRange.Start, End: minInt64(segRange.End, n.Size)}
			if oldRange.End < oldRange.Start {
				oldRange.End = oldRange.Start
			}
			old, err := n.resolveSliceAt(groupCtx, env, oldRange, 0)
			if err != nil {
				return err
			}

			if !segRange.intersects(editRange) {
				// Entirely outside the write: old bytes, unchanged.
				key, err := Put(groupCtx, env, old)
				if err != nil {
					return err
				}
				parts[i] = Part{Range: segRange, Key: key}
				return nil
			}

			overlap := segRange.intersect(editRange)
			merged := make([]byte, 0, segRange.Len())
			merged = append(merged, old[:overlap.Start-segRange.Start]...)
			merged = append(merged, data[overlap.Start-editRange.Start:overlap.End-editRange.Start]...)
			if tailStart := overlap.End - segRange.Start; tailStart < int64(len(old)) {
				merged = append(merged, old[tailStart:]...)
			}

			key, err := Put(groupCtx, env, merged)
			if err != nil {
				return err
			}
			parts[i] = Part{Range: segRange, Key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LongHkeyExpanded{Depth: 0, Size: size, Parts: parts}, nil
}

// normalizeSegment returns a node of at least the given depth covering
// exactly the bytes of n within r (n's own local coordinates), with its own
// parts re-expressed locally starting at 0 (§4.3's normalize_segment). A
// part of n whose range exactly matches r and is already a subtree
// (LongHkeyExpanded/LongHkey) is reused directly; otherwise the sub-range
// is resolved from n and rebuilt from scratch at the requested depth.
func (n *LongHkeyExpanded) normalizeSegment(ctx context.Context, env *Env, depth uint32, r Range) (*LongHkeyExpanded, error) {
	if r.Empty() {
		return &LongHkeyExpanded{}, nil
	}

	for _, p := range n.Parts {
		if p.Range != r {
			continue
		}
		switch p.Key.Kind() {
		case KindLongHkeyExpanded:
			node, _ := p.Key.Node()
			return node, nil
		case KindLongHkey:
			return derefLongHkey(ctx, env, p.Key, 0)
		}
	}

	length := r.Len()
	depth = CalculateDepth(depth, length)

	if depth == 0 {
		data, err := n.resolveSliceAt(ctx, env, r, 0)
		if err != nil {
			return nil, err
		}
		return buildNode(ctx, env, data, 0)
	}

	segLen := CalculateSegmentLength(depth)
	count := ceilDivInt64(length, segLen)
	parts := make([]Part, count)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(PartCount)
	for i := int64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			localStart := i * segLen
			localEnd := minInt64(localStart+segLen, length)
			child, err := n.normalizeSegment(groupCtx, env, depth-1, Range{Start: r.Start + localStart, End: r.Start + localEnd})
			if err != nil {
				return err
			}
			key, err := child.store(groupCtx, env)
			if err != nil {
				return err
			}
			parts[i] = Part{Range: Range{Start: localStart, End: localEnd}, Key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LongHkeyExpanded{Depth: depth, Size: length, Parts: parts}, nil
}

func ceilDivInt64(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
