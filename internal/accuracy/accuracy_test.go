package accuracy

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/adapter.report/internal/adapter"
	"github.com/banshee-data/adapter.report/internal/testutil"
)

func sampleGroup() adapter.Group {
	return adapter.Group{
		"B": {
			{ChannelID: 10, ChannelAccuracy: 0.91, CallAccuracy: 0.88, IsReal: true, IsHit: true},
			{ChannelID: 11, ChannelAccuracy: 0.62, CallAccuracy: 0.0, IsReal: true, IsHit: false},
			{ChannelID: 12, ChannelAccuracy: 0.70, CallAccuracy: 0.45, IsReal: false, IsHit: true},
		},
		"A": {
			{ChannelID: 1, ChannelAccuracy: 0.85, CallAccuracy: 0.95, IsReal: true, IsHit: true},
			{ChannelID: 2, ChannelAccuracy: 0.80, CallAccuracy: -1, IsReal: false, IsHit: false},
			{ChannelID: 3, ChannelAccuracy: 0.55, CallAccuracy: 0.51, IsReal: false, IsHit: false},
		},
	}
}

func TestCallAccuracy(t *testing.T) {
	tbl := CallAccuracy(sampleGroup())

	assert.Equal(t, CallAccuracyName, tbl.Name)
	assert.Equal(t, "CallAccuracy", tbl.ValueColumn)
	assert.Equal(t, []Class{TruePos, FalsePos}, tbl.Classes)

	want := []Row{
		{"A", TruePos, 0.95},
		{"A", FalsePos, 0.51},
		{"B", TruePos, 0.88},
		{"B", FalsePos, 0.45},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("CallAccuracy rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCallAccuracy_ExcludesNonPositive(t *testing.T) {
	g := adapter.Group{"A": {
		{CallAccuracy: 0.0, IsReal: true},
		{CallAccuracy: 0.0, IsReal: false},
		{CallAccuracy: -0.2, IsReal: true},
	}}
	tbl := CallAccuracy(g)
	assert.Zero(t, tbl.Len())
	assert.Empty(t, tbl.Types())
}

func TestChannelAccuracy(t *testing.T) {
	tbl := ChannelAccuracy(sampleGroup())

	assert.Equal(t, ChannelAccuracyName, tbl.Name)
	assert.Equal(t, "ZmwAccuracy", tbl.ValueColumn)
	assert.Equal(t, []Class{TruePos, FalseNeg}, tbl.Classes)

	want := []Row{
		{"A", TruePos, 0.85},
		{"B", TruePos, 0.91},
		{"B", FalseNeg, 0.62},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("ChannelAccuracy rows mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelAccuracy_ExcludesNotReal(t *testing.T) {
	g := adapter.Group{"A": {
		{ChannelAccuracy: 0.9, IsReal: false, IsHit: true},
		{ChannelAccuracy: 0.8, IsReal: false, IsHit: false},
	}}
	assert.Zero(t, ChannelAccuracy(g).Len())
}

func TestDatasets_ThreeRowExample(t *testing.T) {
	in := testutil.DetectionCSV(testutil.DetectionHeader, testutil.ThreeRowExample()...)
	g, _, err := adapter.Parse(strings.NewReader(in))
	require.NoError(t, err)

	call := CallAccuracy(g)
	assert.Equal(t, []float64{0.8}, call.Values("X", TruePos))
	assert.Equal(t, []float64{0.3}, call.Values("X", FalsePos))

	channel := ChannelAccuracy(g)
	assert.Equal(t, []float64{0.9}, channel.Values("X", TruePos))
	assert.Empty(t, channel.Values("X", FalseNeg))
	assert.Equal(t, []string{"X"}, channel.Types())
}

func TestTableBuilder(t *testing.T) {
	b := NewTableBuilder("x", "V", TruePos, FalsePos)
	b.Grow(4).Add("Z", FalsePos, 0.1, 0.2).Add("Y", TruePos, 0.3)
	b.Add("Z", TruePos)

	tbl := b.Build()
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"Z", "Y"}, tbl.Types())
	assert.Equal(t, []float64{0.1, 0.2}, tbl.ClassValues(FalsePos))
	assert.Nil(t, tbl.Values("Z", TruePos))
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{0.9, 0.5, 0.7, 0.6, 0.8})

	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 0.7, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.025), s.StdDev, 1e-12)
	assert.Equal(t, 0.5, s.Min)
	assert.Equal(t, 0.9, s.Max)
	assert.InDelta(t, 0.6, s.Q1, 1e-12)
	assert.InDelta(t, 0.7, s.Median, 1e-12)
	assert.InDelta(t, 0.8, s.Q3, 1e-12)
}

func TestDescribe_EvenCountInterpolates(t *testing.T) {
	s := Describe([]float64{4, 1, 3, 2})

	assert.Equal(t, 4, s.N)
	assert.InDelta(t, 1.75, s.Q1, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 3.25, s.Q3, 1e-12)
	assert.Equal(t, []float64{1, 1.75, 2.5, 3.25, 4}, s.FiveNumber())
}

func TestQuantile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50, 60}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.1, 15},
		{0.25, 22.5},
		{0.5, 35},
		{0.9, 55},
		{1, 60},
	}
	for _, tt := range tests {
		if got := Quantile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.5))
}

func TestTable_Finite(t *testing.T) {
	tbl := NewTableBuilder("x", "V", TruePos, FalsePos).
		Add("A", TruePos, math.NaN(), 0.8, math.Inf(1)).
		Add("A", FalsePos, 0.5).
		Add("B", TruePos, math.Inf(-1)).
		Build()

	got, dropped := tbl.Finite()
	assert.Equal(t, 3, dropped)
	assert.Equal(t, []float64{0.8}, got.Values("A", TruePos))
	assert.Equal(t, []float64{0.5}, got.Values("A", FalsePos))
	assert.Equal(t, []string{"A"}, got.Types())
	assert.Equal(t, 5, tbl.Len(), "source table is not modified")

	clean := NewTableBuilder("x", "V", TruePos).Add("A", TruePos, 0.9).Build()
	same, dropped := clean.Finite()
	assert.Zero(t, dropped)
	assert.Same(t, clean, same)
}

func TestSummarize_SkipsNonFinite(t *testing.T) {
	tbl := NewTableBuilder(CallAccuracyName, "CallAccuracy", TruePos, FalsePos).
		Add("A", TruePos, 0.6, math.NaN(), 0.8).
		Add("B", FalsePos, math.Inf(1)).
		Build()

	got := Summarize(tbl)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].N)
	assert.InDelta(t, 0.7, got[0].Mean, 1e-12)
}

func TestDescribe_SingleAndEmpty(t *testing.T) {
	s := Describe([]float64{0.42})
	assert.Equal(t, 1, s.N)
	assert.Equal(t, 0.42, s.Mean)
	assert.Zero(t, s.StdDev)
	assert.Equal(t, []float64{0.42, 0.42, 0.42, 0.42, 0.42}, s.FiveNumber())

	assert.Equal(t, Summary{}, Describe(nil))
}

func TestSummarize(t *testing.T) {
	tbl := ChannelAccuracy(sampleGroup())
	got := Summarize(tbl)

	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].AdapterType)
	assert.Equal(t, TruePos, got[0].Class)
	assert.Equal(t, ChannelAccuracyName, got[0].Dataset)
	assert.Equal(t, "B", got[2].AdapterType)
	assert.Equal(t, FalseNeg, got[2].Class)
	assert.Equal(t, 1, got[2].N)
}
