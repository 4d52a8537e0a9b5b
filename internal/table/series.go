package table

import (
	"math"

	"github.com/dusk-indust/belinda/internal/nodeset"
)

// Kind classifies the element type of a Series.
type Kind int

const (
	KindInt64 Kind = iota
	KindFloat64
	KindString
	KindSet
	KindStringList
	KindFloatList
)

var kindNames = map[Kind]string{
	KindInt64:      "i64",
	KindFloat64:    "f64",
	KindString:     "str",
	KindSet:        "set",
	KindStringList: "list[str]",
	KindFloatList:  "list[f64]",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Series is one named column.
type Series interface {
	Name() string
	Len() int
	Kind() Kind
	// Rename returns a shallow copy under a new name.
	Rename(name string) Series
	// Value returns row i as a JSON-friendly value; nulls are nil.
	Value(i int) any
	// repeat broadcasts a single-row series to n rows.
	repeat(n int) Series
}

// Int64Series holds non-null integers (counts such as n, m, c).
type Int64Series struct {
	name   string
	Values []int64
}

// NewInt64 wraps values as a series. The slice is not copied.
func NewInt64(name string, values []int64) *Int64Series {
	return &Int64Series{name: name, Values: values}
}

func (s *Int64Series) Name() string           { return s.name }
func (s *Int64Series) Len() int               { return len(s.Values) }
func (s *Int64Series) Kind() Kind             { return KindInt64 }
func (s *Int64Series) Value(i int) any        { return s.Values[i] }
func (s *Int64Series) Rename(n string) Series { return &Int64Series{name: n, Values: s.Values} }

func (s *Int64Series) repeat(n int) Series {
	out := make([]int64, n)
	for i := range out {
		out[i] = s.Values[0]
	}
	return NewInt64(s.name, out)
}

// Float64Series holds nullable floats. A nil Valid slice means every row is
// valid.
type Float64Series struct {
	name   string
	Values []float64
	Valid  []bool
}

// NewFloat64 wraps values and an optional validity mask.
func NewFloat64(name string, values []float64, valid []bool) *Float64Series {
	return &Float64Series{name: name, Values: values, Valid: valid}
}

// NullFloat64 returns a single-row series that is null when ok is false.
func NullFloat64(name string, v float64, ok bool) *Float64Series {
	return NewFloat64(name, []float64{v}, []bool{ok})
}

func (s *Float64Series) Name() string { return s.name }
func (s *Float64Series) Len() int     { return len(s.Values) }
func (s *Float64Series) Kind() Kind   { return KindFloat64 }

func (s *Float64Series) Rename(n string) Series {
	return &Float64Series{name: n, Values: s.Values, Valid: s.Valid}
}

// IsNull reports whether row i is null. NaN and infinities count as null.
func (s *Float64Series) IsNull(i int) bool {
	if s.Valid != nil && !s.Valid[i] {
		return true
	}
	v := s.Values[i]
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// NullCount returns the number of null rows.
func (s *Float64Series) NullCount() int {
	nulls := 0
	for i := range s.Values {
		if s.IsNull(i) {
			nulls++
		}
	}
	return nulls
}

func (s *Float64Series) Value(i int) any {
	if s.IsNull(i) {
		return nil
	}
	return s.Values[i]
}

func (s *Float64Series) repeat(n int) Series {
	vals := make([]float64, n)
	valid := make([]bool, n)
	ok := !s.IsNull(0)
	for i := range vals {
		vals[i] = s.Values[0]
		valid[i] = ok
	}
	return NewFloat64(s.name, vals, valid)
}

// StringSeries holds labels and identifiers.
type StringSeries struct {
	name   string
	Values []string
}

// NewString wraps values as a series.
func NewString(name string, values []string) *StringSeries {
	return &StringSeries{name: name, Values: values}
}

func (s *StringSeries) Name() string           { return s.name }
func (s *StringSeries) Len() int               { return len(s.Values) }
func (s *StringSeries) Kind() Kind             { return KindString }
func (s *StringSeries) Value(i int) any        { return s.Values[i] }
func (s *StringSeries) Rename(n string) Series { return &StringSeries{name: n, Values: s.Values} }

func (s *StringSeries) repeat(n int) Series {
	out := make([]string, n)
	for i := range out {
		out[i] = s.Values[0]
	}
	return NewString(s.name, out)
}

// SetSeries holds one compact node set per row.
type SetSeries struct {
	name   string
	Values []*nodeset.Set
}

// NewSet wraps values as a series.
func NewSet(name string, values []*nodeset.Set) *SetSeries {
	return &SetSeries{name: name, Values: values}
}

func (s *SetSeries) Name() string           { return s.name }
func (s *SetSeries) Len() int               { return len(s.Values) }
func (s *SetSeries) Kind() Kind             { return KindSet }
func (s *SetSeries) Value(i int) any        { return s.Values[i].Members() }
func (s *SetSeries) Rename(n string) Series { return &SetSeries{name: n, Values: s.Values} }

func (s *SetSeries) repeat(n int) Series {
	out := make([]*nodeset.Set, n)
	for i := range out {
		out[i] = s.Values[0]
	}
	return NewSet(s.name, out)
}

// StringListSeries holds a list of strings per row, e.g. flattened node ids
// or a node's cluster labels.
type StringListSeries struct {
	name   string
	Values [][]string
}

// NewStringList wraps values as a series.
func NewStringList(name string, values [][]string) *StringListSeries {
	return &StringListSeries{name: name, Values: values}
}

func (s *StringListSeries) Name() string { return s.name }
func (s *StringListSeries) Len() int     { return len(s.Values) }
func (s *StringListSeries) Kind() Kind   { return KindStringList }

func (s *StringListSeries) Value(i int) any {
	if s.Values[i] == nil {
		return []string{}
	}
	return s.Values[i]
}

func (s *StringListSeries) Rename(n string) Series {
	return &StringListSeries{name: n, Values: s.Values}
}

func (s *StringListSeries) repeat(n int) Series {
	out := make([][]string, n)
	for i := range out {
		out[i] = s.Values[0]
	}
	return NewStringList(s.name, out)
}

// FloatListSeries holds a list of floats per row. A nil row is null.
type FloatListSeries struct {
	name   string
	Values [][]float64
}

// NewFloatList wraps values as a series.
func NewFloatList(name string, values [][]float64) *FloatListSeries {
	return &FloatListSeries{name: name, Values: values}
}

func (s *FloatListSeries) Name() string { return s.name }
func (s *FloatListSeries) Len() int     { return len(s.Values) }
func (s *FloatListSeries) Kind() Kind   { return KindFloatList }

func (s *FloatListSeries) Value(i int) any {
	if s.Values[i] == nil {
		return nil
	}
	return s.Values[i]
}

func (s *FloatListSeries) Rename(n string) Series {
	return &FloatListSeries{name: n, Values: s.Values}
}

func (s *FloatListSeries) repeat(n int) Series {
	out := make([][]float64, n)
	for i := range out {
		out[i] = s.Values[0]
	}
	return NewFloatList(s.name, out)
}

// Floats converts a numeric series into float values plus a validity mask.
// Int64 series are always valid.
func Floats(s Series) ([]float64, []bool, error) {
	switch t := s.(type) {
	case *Int64Series:
		vals := make([]float64, len(t.Values))
		valid := make([]bool, len(t.Values))
		for i, v := range t.Values {
			vals[i] = float64(v)
			valid[i] = true
		}
		return vals, valid, nil
	case *Float64Series:
		valid := make([]bool, len(t.Values))
		for i := range t.Values {
			valid[i] = !t.IsNull(i)
		}
		return t.Values, valid, nil
	default:
		return nil, nil, kindError(s, KindInt64, KindFloat64)
	}
}

// IsNumeric reports whether s holds Int64 or Float64 values.
func IsNumeric(s Series) bool {
	k := s.Kind()
	return k == KindInt64 || k == KindFloat64
}
