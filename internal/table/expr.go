package table

import (
	"context"
	"fmt"
)

// Expr is a lazily evaluated column computation. Eval must not modify f.
// Row-wise expressions return f.Len() rows; aggregations return one row.
type Expr interface {
	Name() string
	Eval(ctx context.Context, f *Frame, opts Options) (Series, error)
}

// EvalFunc is the signature of a custom expression body.
type EvalFunc func(ctx context.Context, f *Frame, opts Options) (Series, error)

type funcExpr struct {
	name string
	fn   EvalFunc
}

func (e funcExpr) Name() string { return e.name }

func (e funcExpr) Eval(ctx context.Context, f *Frame, opts Options) (Series, error) {
	s, err := e.fn(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	if s.Name() != e.name {
		s = s.Rename(e.name)
	}
	return s, nil
}

// Func wraps fn as an Expr producing a column called name.
func Func(name string, fn EvalFunc) Expr {
	return funcExpr{name: name, fn: fn}
}

type colExpr string

func (c colExpr) Name() string { return string(c) }

func (c colExpr) Eval(_ context.Context, f *Frame, _ Options) (Series, error) {
	return f.Column(string(c))
}

// Col references an existing column.
func Col(name string) Expr {
	return colExpr(name)
}

// Cols references several existing columns.
func Cols(names ...string) []Expr {
	out := make([]Expr, len(names))
	for i, n := range names {
		out[i] = Col(n)
	}
	return out
}

// Alias renames the result of e.
func Alias(e Expr, name string) Expr {
	return Func(name, e.Eval)
}

// Lit is a single-row float literal.
func Lit(name string, v float64) Expr {
	return Func(name, func(context.Context, *Frame, Options) (Series, error) {
		return NewFloat64(name, []float64{v}, nil), nil
	})
}

// LitInt is a single-row integer literal.
func LitInt(name string, v int64) Expr {
	return Func(name, func(context.Context, *Frame, Options) (Series, error) {
		return NewInt64(name, []int64{v}), nil
	})
}

// RowFunc maps the numeric values of one row to a result. ok=false yields
// a null; a non-nil error aborts evaluation.
type RowFunc func(row []float64) (v float64, ok bool, err error)

// RowFloat builds a row-wise Float64 expression over the named numeric
// columns. A null in any input makes the output null without calling fn.
func RowFloat(name string, inputs []string, fn RowFunc) Expr {
	return Func(name, func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		cols := make([][]float64, len(inputs))
		valid := make([][]bool, len(inputs))
		for i, in := range inputs {
			s, err := f.Column(in)
			if err != nil {
				return nil, fmt.Errorf("table: %s: %w", name, err)
			}
			if cols[i], valid[i], err = Floats(s); err != nil {
				return nil, fmt.Errorf("table: %s: %w", name, err)
			}
		}

		n := f.Len()
		out := make([]float64, n)
		outValid := make([]bool, n)
		err := ForChunks(ctx, n, opts, func(lo, hi int) error {
			row := make([]float64, len(inputs))
		rows:
			for r := lo; r < hi; r++ {
				for i := range inputs {
					if !valid[i][r] {
						continue rows
					}
					row[i] = cols[i][r]
				}
				v, ok, err := fn(row)
				if err != nil {
					return fmt.Errorf("table: %s: row %d: %w", name, r, err)
				}
				out[r], outValid[r] = v, ok
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return NewFloat64(name, out, outValid), nil
	})
}

// Count returns the number of rows of e as a single Int64 row.
func Count(e Expr) Expr {
	return Func(e.Name(), func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		s, err := e.Eval(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		return NewInt64(e.Name(), []int64{int64(s.Len())}), nil
	})
}

// Sum adds up a numeric expression, skipping nulls. Integer input stays
// integer.
func Sum(e Expr) Expr {
	return Func(e.Name(), func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		s, err := e.Eval(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		switch t := s.(type) {
		case *Int64Series:
			var total int64
			for _, v := range t.Values {
				total += v
			}
			return NewInt64(e.Name(), []int64{total}), nil
		case *Float64Series:
			var total float64
			for i, v := range t.Values {
				if !t.IsNull(i) {
					total += v
				}
			}
			return NewFloat64(e.Name(), []float64{total}, nil), nil
		default:
			return nil, kindError(s, KindInt64, KindFloat64)
		}
	})
}

// Quantiles collects the given quantiles of a numeric expression into a
// single list row, e.g. Quantiles(Col("n"), 0, 0.5, 1) for [min, median,
// max]. Nulls are skipped; an all-null input yields a null list.
func Quantiles(e Expr, qs ...float64) Expr {
	return Func(e.Name(), func(ctx context.Context, f *Frame, opts Options) (Series, error) {
		s, err := e.Eval(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		vals, valid, err := Floats(s)
		if err != nil {
			return nil, err
		}
		sorted := sortedValid(vals, valid)
		if len(sorted) == 0 {
			return NewFloatList(e.Name(), [][]float64{nil}), nil
		}
		out := make([]float64, len(qs))
		for i, q := range qs {
			out[i] = quantile(sorted, q)
		}
		return NewFloatList(e.Name(), [][]float64{out}), nil
	})
}
