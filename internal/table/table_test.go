package table

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dusk-indust/belinda/internal/nodeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusteringFrame builds a small clustering table over a 10-node universe.
func clusteringFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := New(
		NewString("label", []string{"a", "b", "c"}),
		NewSet("nodes", []*nodeset.Set{
			nodeset.MustNew(10, 0, 1, 2, 3),
			nodeset.MustNew(10, 3, 4, 5),
			nodeset.MustNew(10, 9),
		}),
		NewInt64("n", []int64{4, 3, 1}),
		NewInt64("m", []int64{5, 2, 0}),
		NewInt64("c", []int64{1, 2, 1}),
	)
	require.NoError(t, err)
	return f
}

func TestNew_RejectsMismatchAndDuplicates(t *testing.T) {
	_, err := New(NewInt64("a", []int64{1, 2}), NewInt64("b", []int64{1}))
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = New(NewInt64("a", []int64{1}), NewInt64("a", []int64{2}))
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
}

func TestFrame_ColumnAccess(t *testing.T) {
	f := clusteringFrame(t)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"label", "nodes", "n", "m", "c"}, f.Names())

	n, err := f.Int64Col("n")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 1}, n.Values)

	_, err = f.Column("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = f.SetCol("label")
	assert.ErrorIs(t, err, ErrKind)
}

func TestFrame_WithReplacesByName(t *testing.T) {
	f := clusteringFrame(t)
	g, err := f.With(NewInt64("n", []int64{7, 7, 7}), NewInt64("extra", []int64{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []string{"label", "nodes", "n", "m", "c", "extra"}, g.Names())

	n, err := g.Int64Col("n")
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 7, 7}, n.Values)

	orig, err := f.Int64Col("n")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 1}, orig.Values, "source frame is untouched")
}

func TestRowFloat_PropagatesNulls(t *testing.T) {
	f := MustNew(
		NewInt64("x", []int64{1, 2, 3}),
		NewFloat64("y", []float64{10, 0, 30}, []bool{true, false, true}),
	)
	sum := RowFloat("sum", []string{"x", "y"}, func(row []float64) (float64, bool, error) {
		return row[0] + row[1], true, nil
	})
	out, err := Select(context.Background(), f, Options{}, sum)
	require.NoError(t, err)

	s, err := out.Float64Col("sum")
	require.NoError(t, err)
	assert.Equal(t, 11.0, s.Values[0])
	assert.True(t, s.IsNull(1))
	assert.Equal(t, 33.0, s.Values[2])
}

func TestRowFloat_ErrorAborts(t *testing.T) {
	f := MustNew(NewInt64("x", []int64{1, 2, 3}))
	boom := errors.New("boom")
	e := RowFloat("bad", []string{"x"}, func(row []float64) (float64, bool, error) {
		if row[0] == 2 {
			return 0, false, boom
		}
		return row[0], true, nil
	})
	_, err := Select(context.Background(), f, Options{}, e)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "row 1")
}

func TestRowFloat_ParallelMatchesSequential(t *testing.T) {
	const rows = 10_000
	xs := make([]int64, rows)
	for i := range xs {
		xs[i] = int64(i)
	}
	f := MustNew(NewInt64("x", xs))
	sq := RowFloat("sq", []string{"x"}, func(row []float64) (float64, bool, error) {
		return row[0] * row[0], int(row[0])%7 != 0, nil
	})

	seq, err := Select(context.Background(), f, Options{Parallelism: 1}, sq)
	require.NoError(t, err)
	par, err := Select(context.Background(), f, Options{Parallelism: 8, ChunkSize: 97}, sq)
	require.NoError(t, err)

	a, _ := seq.Float64Col("sq")
	b, _ := par.Float64Col("sq")
	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.Valid, b.Valid)
}

func TestSelect_BroadcastsAggregates(t *testing.T) {
	f := clusteringFrame(t)
	out, err := Select(context.Background(), f, Options{},
		Alias(Sum(Col("n")), "total"),
		Col("m"),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	total, err := out.Int64Col("total")
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 8, 8}, total.Values)

	agg, err := Select(context.Background(), f, Options{}, Count(Col("nodes")), Alias(Sum(Col("m")), "sum_m"))
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, map[string]any{"nodes": int64(3), "sum_m": int64(7)}, agg.Row(0))
}

func TestSelect_EmptyFrame(t *testing.T) {
	f := MustNew(NewInt64("n", []int64{}))
	out, err := Select(context.Background(), f, Options{}, Col("n"), Alias(Count(Col("n")), "rows"))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestWithColumns_Appends(t *testing.T) {
	f := clusteringFrame(t)
	out, err := WithColumns(context.Background(), f, Options{}, Lit("r", 0.5), Alias(SetPopcount(Col("nodes")), "size"))
	require.NoError(t, err)
	assert.Equal(t, []string{"label", "nodes", "n", "m", "c", "r", "size"}, out.Names())
	size, err := out.Int64Col("size")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 1}, size.Values)
}

func TestSetOps(t *testing.T) {
	f := clusteringFrame(t)
	ctx := context.Background()

	out, err := Select(ctx, f, Options{}, SetLen(Col("nodes")))
	require.NoError(t, err)
	pop, _ := out.Int64Col("nodes")
	assert.Equal(t, []int64{4, 3, 1}, pop.Values)

	out, err = Select(ctx, f, Options{}, SetUnion(Col("nodes")))
	require.NoError(t, err)
	u, _ := out.SetCol("nodes")
	require.Equal(t, 1, u.Len())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 9}, u.Values[0].Members())

	out, err = Select(ctx, f, Options{}, SetFlatten(Col("nodes"), nodeset.IDTable{"n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8", "n9"}))
	require.NoError(t, err)
	flat := out.Columns()[0].(*StringListSeries)
	assert.Equal(t, [][]string{{"n0", "n1", "n2", "n3"}, {"n3", "n4", "n5"}, {"n9"}}, flat.Values)

	_, err = Select(ctx, f, Options{}, SetPopcount(Col("n")))
	assert.ErrorIs(t, err, ErrKind)
}

func TestSetUnion_ChunkedEqualsSingle(t *testing.T) {
	sets := make([]*nodeset.Set, 1_000)
	for i := range sets {
		sets[i] = nodeset.MustNew(5_000, uint32(i*3%5_000), uint32(i*7%5_000))
	}
	f := MustNew(NewSet("nodes", sets))
	ctx := context.Background()

	one, err := Select(ctx, f, Options{Parallelism: 1}, SetUnion(Col("nodes")))
	require.NoError(t, err)
	many, err := Select(ctx, f, Options{Parallelism: 4, ChunkSize: 13}, SetUnion(Col("nodes")))
	require.NoError(t, err)

	a, _ := one.SetCol("nodes")
	b, _ := many.SetCol("nodes")
	assert.True(t, a.Values[0].Equal(b.Values[0]))
}

func TestQuantiles_MinMedianMax(t *testing.T) {
	f := MustNew(NewFloat64("x", []float64{5, 1, 100, 3, 2}, []bool{true, true, false, true, true}))
	out, err := Select(context.Background(), f, Options{}, Quantiles(Col("x"), 0, 0.5, 1))
	require.NoError(t, err)
	q := out.Columns()[0].(*FloatListSeries)
	assert.Equal(t, []float64{1, 2.5, 5}, q.Values[0], "null 100 is excluded")

	empty := MustNew(NewFloat64("x", []float64{1}, []bool{false}))
	out, err = Select(context.Background(), empty, Options{}, Quantiles(Col("x"), 0, 0.5, 1))
	require.NoError(t, err)
	assert.Nil(t, out.Row(0)["x"])
}

func TestQuantiles_EvenCountInterpolates(t *testing.T) {
	f := MustNew(NewInt64("n", []int64{2, 3, 4, 1}))
	out, err := Select(context.Background(), f, Options{}, Quantiles(Col("n"), 0, 0.5, 1))
	require.NoError(t, err)
	q := out.Columns()[0].(*FloatListSeries)
	assert.Equal(t, []float64{1, 2.5, 4}, q.Values[0])

	out, err = Select(context.Background(), f, Options{}, Quantiles(Col("n"), 0.25, 0.75))
	require.NoError(t, err)
	q = out.Columns()[0].(*FloatListSeries)
	assert.InDeltaSlice(t, []float64{1.75, 3.25}, q.Values[0], 1e-12)
}

func TestDescribe(t *testing.T) {
	f := MustNew(
		NewString("label", []string{"a", "b", "c", "d", "e", "f"}),
		NewInt64("n", []int64{1, 2, 3, 4, 5, 6}),
		NewFloat64("score", []float64{1, 2, 3, 0, 0, 0}, []bool{true, true, true, false, false, false}),
	)
	d, err := Describe(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"statistic", "n", "score"}, d.Names())
	assert.Equal(t, len(DescribeStatistics), d.Len())

	n, _ := d.Float64Col("n")
	assert.Equal(t, 6.0, n.Values[0])
	assert.Equal(t, 0.0, n.Values[1])
	assert.InDelta(t, 3.5, n.Values[2], 1e-12)
	assert.InDelta(t, 1.8708286933869707, n.Values[3], 1e-12)
	assert.Equal(t, 1.0, n.Values[4])
	assert.InDelta(t, 2.25, n.Values[5], 1e-12)
	assert.InDelta(t, 3.5, n.Values[6], 1e-12, "even count: mean of the middle pair")
	assert.InDelta(t, 4.75, n.Values[7], 1e-12)
	assert.Equal(t, 6.0, n.Values[8])

	score, _ := d.Float64Col("score")
	assert.Equal(t, 3.0, score.Values[0], "nulls are excluded from count")
	assert.Equal(t, 3.0, score.Values[1])
	assert.InDelta(t, 2.0, score.Values[2], 1e-12)
	assert.Equal(t, 2.0, score.Values[6], "median")
}

func TestDescribe_SingleValueHasNullStd(t *testing.T) {
	d, err := Describe(MustNew(NewInt64("n", []int64{4})))
	require.NoError(t, err)
	n, _ := d.Float64Col("n")
	assert.True(t, n.IsNull(3))
	assert.Equal(t, 4.0, n.Values[6])
}

func TestWriteTSV(t *testing.T) {
	f := MustNew(
		NewString("label", []string{"a", "b"}),
		NewInt64("n", []int64{4, 1}),
		NewFloat64("conductance", []float64{0.25, 0}, []bool{true, false}),
		NewSet("nodes", []*nodeset.Set{nodeset.MustNew(5, 3, 1), nodeset.MustNew(5)}),
	)
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, f))
	assert.Equal(t, "label\tn\tconductance\tnodes\na\t4\t0.25\t[1,3]\nb\t1\t\t[]\n", buf.String())
}

func TestWriteNDJSON(t *testing.T) {
	f := MustNew(
		NewString("label", []string{"a", "b"}),
		NewFloat64("conductance", []float64{0.25, 0}, []bool{true, false}),
		NewStringList("nodes", [][]string{{"x", "y"}, nil}),
	)
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, f))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"label":"a","conductance":0.25,"nodes":["x","y"]}`, lines[0])
	assert.Equal(t, `{"label":"b","conductance":null,"nodes":[]}`, lines[1])

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "a", rec["label"])
}
