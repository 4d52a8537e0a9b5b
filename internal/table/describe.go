package table

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DescribeStatistics lists the rows produced by Describe, in order.
var DescribeStatistics = []string{
	"count", "null_count", "mean", "std", "min", "25%", "50%", "75%", "max",
}

// Describe summarizes every numeric column of f. The result has a
// "statistic" column followed by one Float64 column per numeric input.
// Nulls are excluded from every statistic except null_count; statistics that
// are undefined for the remaining values (mean of nothing, std of one value)
// are null. Non-numeric columns are skipped.
func Describe(f *Frame) (*Frame, error) {
	cols := []Series{NewString("statistic", append([]string(nil), DescribeStatistics...))}
	for _, c := range f.cols {
		if !IsNumeric(c) {
			continue
		}
		vals, valid, err := Floats(c)
		if err != nil {
			return nil, fmt.Errorf("table: describe: %w", err)
		}
		cols = append(cols, describeColumn(c.Name(), vals, valid))
	}
	return New(cols...)
}

func describeColumn(name string, vals []float64, valid []bool) *Float64Series {
	sorted := sortedValid(vals, valid)
	n := len(sorted)
	out := make([]float64, len(DescribeStatistics))
	ok := make([]bool, len(DescribeStatistics))

	out[0], ok[0] = float64(n), true
	out[1], ok[1] = float64(len(vals)-n), true
	if n > 0 {
		out[2], ok[2] = stat.Mean(sorted, nil), true
		out[4], ok[4] = sorted[0], true
		out[5], ok[5] = quantile(sorted, 0.25), true
		out[6], ok[6] = quantile(sorted, 0.5), true
		out[7], ok[7] = quantile(sorted, 0.75), true
		out[8], ok[8] = sorted[n-1], true
	}
	if n > 1 {
		out[3], ok[3] = stat.StdDev(sorted, nil), true
	}
	return NewFloat64(name, out, ok)
}

// sortedValid returns the valid values in ascending order.
func sortedValid(vals []float64, valid []bool) []float64 {
	out := make([]float64, 0, len(vals))
	for i, v := range vals {
		if valid[i] {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// quantile returns the q-quantile of a non-empty ascending slice,
// interpolating linearly between the two closest ranks. The median of an
// even-sized column is the mean of the middle pair.
func quantile(sorted []float64, q float64) float64 {
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}
	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
