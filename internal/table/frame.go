package table

import (
	"fmt"
	"strings"
)

// Frame is an immutable, ordered collection of equally long Series.
type Frame struct {
	cols  []Series
	index map[string]int
	rows  int
}

// New builds a frame from series of equal length with distinct names.
func New(cols ...Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.Name(), c.Len(), f.rows)
		}
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name())
		}
		f.index[c.Name()] = i
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// MustNew is New for fixtures; it panics on error.
func MustNew(cols ...Series) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Names returns column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name()
	}
	return out
}

// Columns returns the series in order. The slice is a copy; the series are
// shared.
func (f *Frame) Columns() []Series {
	out := make([]Series, len(f.cols))
	copy(out, f.cols)
	return out
}

// Has reports whether a column named name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the series named name.
func (f *Frame) Column(name string) (Series, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrColumnNotFound, name, strings.Join(f.Names(), ", "))
	}
	return f.cols[i], nil
}

// Int64Col returns the named column as an Int64Series.
func (f *Frame) Int64Col(name string) (*Int64Series, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	s, ok := c.(*Int64Series)
	if !ok {
		return nil, kindError(c, KindInt64)
	}
	return s, nil
}

// Float64Col returns the named column as a Float64Series.
func (f *Frame) Float64Col(name string) (*Float64Series, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	s, ok := c.(*Float64Series)
	if !ok {
		return nil, kindError(c, KindFloat64)
	}
	return s, nil
}

// StringCol returns the named column as a StringSeries.
func (f *Frame) StringCol(name string) (*StringSeries, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	s, ok := c.(*StringSeries)
	if !ok {
		return nil, kindError(c, KindString)
	}
	return s, nil
}

// SetCol returns the named column as a SetSeries.
func (f *Frame) SetCol(name string) (*SetSeries, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	s, ok := c.(*SetSeries)
	if !ok {
		return nil, kindError(c, KindSet)
	}
	return s, nil
}

// With returns a new frame with cols appended. A series whose name already
// exists replaces the old column in place.
func (f *Frame) With(cols ...Series) (*Frame, error) {
	merged := f.Columns()
	for _, c := range cols {
		if i, ok := f.index[c.Name()]; ok {
			merged[i] = c
			continue
		}
		merged = append(merged, c)
	}
	return New(merged...)
}

// Row returns row i as column name → JSON-friendly value.
func (f *Frame) Row(i int) map[string]any {
	out := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		out[c.Name()] = c.Value(i)
	}
	return out
}

func kindError(s Series, want ...Kind) error {
	names := make([]string, len(want))
	for i, k := range want {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: %q is %s, want %s", ErrKind, s.Name(), s.Kind(), strings.Join(names, " or "))
}
