package hkey

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opencas/hkvault/hkerr"
	"github.com/opencas/hkvault/hkhash"
)

// maxIndirection bounds how many ListRef/LongHkey hops a single resolve may
// follow, guarding against a cyclic or pathologically deep reference chain
// (§9's "guard against cyclic or pathological input" recommendation).
const maxIndirection = 64

// Resolve fetches and decrypts h's full value.
func Resolve(ctx context.Context, env *Env, h Hkey) ([]byte, error) {
	return resolveAt(ctx, env, h, 0)
}

// ResolveSlice fetches and decrypts only the bytes of h within r,
// fetching only the parts of a LongHkeyExpanded/LongHkey tree that
// intersect r where the tree structure makes that possible (§4.2/§4.3).
func ResolveSlice(ctx context.Context, env *Env, h Hkey, r Range) ([]byte, error) {
	return resolveSliceAt(ctx, env, h, r, 0)
}

func resolveAt(ctx context.Context, env *Env, h Hkey, depth int) ([]byte, error) {
	switch h.kind {
	case KindRaw, KindBase64:
		return cloneBytes(h.payload), nil

	case KindDirect:
		ciphertext, err := env.Backend.Get(ctx, h.hash)
		if err != nil {
			return nil, err
		}
		return env.Cipher.Decrypt(ciphertext, hkhash.Zero)

	case KindEncrypted:
		ciphertext, err := env.Backend.Get(ctx, h.hash)
		if err != nil {
			return nil, err
		}
		return env.Cipher.Decrypt(ciphertext, h.key)

	case KindListRef:
		child, err := derefListRef(ctx, env, h, depth)
		if err != nil {
			return nil, err
		}
		return resolveAt(ctx, env, child, depth+1)

	case KindList:
		return resolveChildrenAt(ctx, env, h.children, depth)

	case KindLongHkey:
		node, err := derefLongHkey(ctx, env, h, depth)
		if err != nil {
			return nil, err
		}
		return node.resolveSliceAt(ctx, env, Range{0, node.Size}, depth+1)

	case KindLongHkeyExpanded:
		return h.expanded.resolveSliceAt(ctx, env, Range{0, h.expanded.Size}, depth)

	default:
		return nil, hkerr.UnreachableError{Reason: "Resolve: unknown kind " + h.kind.String()}
	}
}

func resolveSliceAt(ctx context.Context, env *Env, h Hkey, r Range, depth int) ([]byte, error) {
	switch h.kind {
	case KindLongHkey:
		node, err := derefLongHkey(ctx, env, h, depth)
		if err != nil {
			return nil, err
		}
		return node.resolveSliceAt(ctx, env, r, depth+1)

	case KindLongHkeyExpanded:
		return h.expanded.resolveSliceAt(ctx, env, r, depth)

	case KindListRef:
		child, err := derefListRef(ctx, env, h, depth)
		if err != nil {
			return nil, err
		}
		return resolveSliceAt(ctx, env, child, r, depth+1)

	default:
		full, err := resolveAt(ctx, env, h, depth)
		if err != nil {
			return nil, err
		}
		return sliceBounded(full, r)
	}
}

func sliceBounded(full []byte, r Range) ([]byte, error) {
	if r.Start < 0 || r.End < r.Start || r.End > int64(len(full)) {
		return nil, hkerr.RangeError{Actual: int64(len(full))}
	}
	out := make([]byte, r.Len())
	copy(out, full[r.Start:r.End])
	return out, nil
}

func derefListRef(ctx context.Context, env *Env, h Hkey, depth int) (Hkey, error) {
	if depth+1 > maxIndirection {
		return Hkey{}, hkerr.FormatError{Reason: "indirection depth exceeded"}
	}
	plaintext, err := fetchDecrypt(ctx, env, h.hash, h.key)
	if err != nil {
		return Hkey{}, err
	}
	return Parse(string(plaintext))
}

func derefLongHkey(ctx context.Context, env *Env, h Hkey, depth int) (*LongHkeyExpanded, error) {
	if depth+1 > maxIndirection {
		return nil, hkerr.FormatError{Reason: "indirection depth exceeded"}
	}
	plaintext, err := fetchDecrypt(ctx, env, h.hash, h.key)
	if err != nil {
		return nil, err
	}
	return ParseLongHkeyExpanded(string(plaintext))
}

func fetchDecrypt(ctx context.Context, env *Env, hash, key hkhash.Hash) ([]byte, error) {
	ciphertext, err := env.Backend.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	return env.Cipher.Decrypt(ciphertext, key)
}

// resolveChildrenAt resolves every child of a List concurrently, bounded by
// PartCount in flight at once, and reassembles them in order. Children are
// resolved in full rather than range-trimmed: unlike LongHkeyExpanded, a
// List carries no per-child size metadata, so there is nothing to bound a
// partial fetch against without first resolving the child anyway.
func resolveChildrenAt(ctx context.Context, env *Env, children []Hkey, depth int) ([]byte, error) {
	results := make([][]byte, len(children))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(PartCount)

	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			b, err := resolveAt(groupCtx, env, child, depth)
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
