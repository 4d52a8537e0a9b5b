package table

import (
	"context"

	"github.com/dusk-indust/belinda/internal/nodeset"
)

func evalSets(ctx context.Context, e Expr, f *Frame, opts Options) (*SetSeries, error) {
	s, err := e.Eval(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	sets, ok := s.(*SetSeries)
	if !ok {
		return nil, kindError(s, KindSet)
	}
	return sets, nil
}

// SetPopcount maps every set in e to its cardinality.
func SetPopcount(e Expr) Expr {
	return Func(e.Name(), func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		sets, err := evalSets(ctx, e, f, opts)
		if err != nil {
			return nil, err
		}
		out := make([]int64, sets.Len())
		err = ForChunks(ctx, sets.Len(), opts, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				out[i] = int64(sets.Values[i].Cardinality())
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return NewInt64(e.Name(), out), nil
	})
}

// SetLen is an alias of SetPopcount.
func SetLen(e Expr) Expr {
	return SetPopcount(e)
}

// SetUnion collapses every set in e into a single-row union. Chunks are
// unioned concurrently and the partial results combined with the same
// operator, so the outcome does not depend on scheduling.
func SetUnion(e Expr) Expr {
	return Func(e.Name(), func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		sets, err := evalSets(ctx, e, f, opts)
		if err != nil {
			return nil, err
		}
		partials := make([]*nodeset.Set, chunkCount(sets.Len(), opts))
		err = ForChunks(ctx, sets.Len(), opts, func(lo, hi int) error {
			partials[chunkIndex(lo, opts)] = nodeset.Union(sets.Values[lo:hi]...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return NewSet(e.Name(), []*nodeset.Set{nodeset.Union(partials...)}), nil
	})
}

// SetFlatten expands every set in e into its ascending member list,
// translated through lookup when it is non-nil.
func SetFlatten(e Expr, lookup nodeset.Lookup) Expr {
	return Func(e.Name(), func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		sets, err := evalSets(ctx, e, f, opts)
		if err != nil {
			return nil, err
		}
		out := make([][]string, sets.Len())
		err = ForChunks(ctx, sets.Len(), opts, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				out[i] = sets.Values[i].Flatten(lookup)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return NewStringList(e.Name(), out), nil
	})
}
