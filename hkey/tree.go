package hkey

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opencas/hkvault/hkerr"
)

// FromBlob builds a LongHkeyExpanded tree over data at the shallowest depth
// that can hold it (§4.3's from_blob).
func FromBlob(ctx context.Context, env *Env, data []byte) (*LongHkeyExpanded, error) {
	depth := CalculateDepth(0, int64(len(data)))
	return buildNode(ctx, env, data, depth)
}

func buildNode(ctx context.Context, env *Env, data []byte, depth uint32) (*LongHkeyExpanded, error) {
	parts, err := buildParts(ctx, env, data, 0, depth)
	if err != nil {
		return nil, err
	}
	return &LongHkeyExpanded{Depth: depth, Size: int64(len(data)), Parts: parts}, nil
}

// buildParts chunks data (starting at the tree-absolute offset baseOffset)
// into segLen-wide pieces and, for each, either stores a leaf (depth 0) or
// recurses into a child tree one level shallower and stores a reference to
// it (depth > 0). Chunks are built concurrently, bounded by PartCount in
// flight, mirroring how a List's children resolve concurrently.
func buildParts(ctx context.Context, env *Env, data []byte, baseOffset int64, depth uint32) ([]Part, error) {
	if len(data) == 0 {
		return nil, nil
	}

	segLen := CalculateSegmentLength(depth)
	var ranges []Range
	for off := int64(0); off < int64(len(data)); {
		end := off + segLen
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		ranges = append(ranges, Range{Start: off, End: end})
		off = end
	}

	parts := make([]Part, len(ranges))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(PartCount)

	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			segment := data[r.Start:r.End]
			var key Hkey
			var err error
			if depth == 0 {
				key, err = Put(groupCtx, env, segment)
			} else {
				var child *LongHkeyExpanded
				child, err = buildNode(groupCtx, env, segment, depth-1)
				if err == nil {
					key, err = child.store(groupCtx, env)
				}
			}
			if err != nil {
				return err
			}
			parts[i] = Part{Range: Range{Start: baseOffset + r.Start, End: baseOffset + r.End}, Key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// store persists n's text form and wraps the result as a LongHkey
// reference (§4.3's "store()": the same encrypt-and-put as a List, just
// wrapped as LongHkey instead of ListRef).
func (n *LongHkeyExpanded) store(ctx context.Context, env *Env) (Hkey, error) {
	hash, key, err := storeViaEncryptedWrap(ctx, env, []byte(n.Format()))
	if err != nil {
		return Hkey{}, err
	}
	return LongHkeyRef(hash, key), nil
}

// resolveSliceAt fetches only the parts intersecting r, recursing into
// child trees and trimming each part's contribution to the overlap before
// concatenating (§4.3's resolve_slice for a tree node).
func (n *LongHkeyExpanded) resolveSliceAt(ctx context.Context, env *Env, r Range, depth int) ([]byte, error) {
	if r.Start < 0 || r.End < r.Start || r.End > n.Size {
		return nil, hkerr.RangeError{Actual: n.Size}
	}
	if r.Empty() {
		return []byte{}, nil
	}

	type chunk struct {
		r   Range
		key Hkey
	}
	var chunks []chunk
	for _, p := range n.Parts {
		if !p.Range.intersects(r) {
			continue
		}
		overlap := p.Range.intersect(r)
		local := Range{Start: overlap.Start - p.Range.Start, End: overlap.End - p.Range.Start}
		chunks = append(chunks, chunk{r: local, key: p.Key})
	}

	results := make([][]byte, len(chunks))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(PartCount)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			b, err := resolveSliceAt(groupCtx, env, c.key, c.r, depth)
			if err != nil {
				return err
			}
			results[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range results {
		total += len(b)
	}
	out := make([]byte, 0, total)
	for _, b := range results {
		out = append(out, b...)
	}
	return out, nil
}
