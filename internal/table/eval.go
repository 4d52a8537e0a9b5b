package table

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const defaultChunkSize = 4096

// Options tunes evaluation. The zero value uses GOMAXPROCS workers and
// 4096-row chunks.
type Options struct {
	Parallelism int
	ChunkSize   int
}

func (o Options) withDefaults() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	return o
}

// ForChunks splits [0, n) into ChunkSize pieces and runs fn on each,
// concurrently up to Parallelism. Chunks are disjoint, so fn may write into
// shared slices at its own indices without locking. The first error cancels
// the remaining chunks.
func ForChunks(ctx context.Context, n int, opts Options, fn func(lo, hi int) error) error {
	opts = opts.withDefaults()
	if n <= opts.ChunkSize || opts.Parallelism == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for lo := 0; lo < n; lo += opts.ChunkSize {
		hi := min(lo+opts.ChunkSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(lo, hi)
		})
	}
	return g.Wait()
}

// chunkCount returns how many chunks ForChunks will use for n rows.
func chunkCount(n int, opts Options) int {
	opts = opts.withDefaults()
	if n <= opts.ChunkSize || opts.Parallelism == 1 {
		return 1
	}
	return (n + opts.ChunkSize - 1) / opts.ChunkSize
}

// chunkIndex maps a chunk's first row to its position in [0, chunkCount).
func chunkIndex(lo int, opts Options) int {
	return lo / opts.withDefaults().ChunkSize
}

func evalAll(ctx context.Context, f *Frame, opts Options, exprs []Expr) ([]Series, error) {
	out := make([]Series, len(exprs))
	for i, e := range exprs {
		s, err := e.Eval(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Select evaluates exprs against f and returns them as a new frame.
// Single-row results are broadcast when any other result is row-wise; if
// every result has one row the frame has one row.
func Select(ctx context.Context, f *Frame, opts Options, exprs ...Expr) (*Frame, error) {
	cols, err := evalAll(ctx, f, opts, exprs)
	if err != nil {
		return nil, err
	}

	target := 1
	for _, c := range cols {
		if c.Len() == 1 {
			continue
		}
		if target != 1 && c.Len() != target {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.Name(), c.Len(), target)
		}
		target = c.Len()
	}
	for i, c := range cols {
		if c.Len() == 1 && target != 1 {
			cols[i] = c.repeat(target)
		}
	}
	return New(cols...)
}

// WithColumns evaluates exprs and appends them to f, broadcasting single-row
// results to f.Len(). Columns with an existing name are replaced.
func WithColumns(ctx context.Context, f *Frame, opts Options, exprs ...Expr) (*Frame, error) {
	cols, err := evalAll(ctx, f, opts, exprs)
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		switch {
		case c.Len() == f.Len():
		case c.Len() == 1:
			cols[i] = c.repeat(f.Len())
		default:
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.Name(), c.Len(), f.Len())
		}
	}
	return f.With(cols...)
}
