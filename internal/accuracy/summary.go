package accuracy

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of one (adapter type, class) sample.
type Summary struct {
	Dataset     string
	AdapterType string
	Class       Class
	N           int
	Mean        float64
	StdDev      float64 // sample standard deviation, 0 when N < 2
	Min         float64
	Q1          float64
	Median      float64
	Q3          float64
	Max         float64
}

// Summarize returns one Summary per non-empty (adapter type, class) pair in
// table order: types by first appearance, classes in legend order. NaN and
// infinite values are left out.
func Summarize(t *Table) []Summary {
	t, _ = t.Finite()
	var out []Summary
	for _, typ := range t.Types() {
		for _, class := range t.Classes {
			vals := t.Values(typ, class)
			if len(vals) == 0 {
				continue
			}
			s := Describe(vals)
			s.Dataset = t.Name
			s.AdapterType = typ
			s.Class = class
			out = append(out, s)
		}
	}
	return out
}

// Describe computes count, moments and the five-number summary of values.
// It returns a zero Summary for an empty slice.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	return Summary{
		N:      len(sorted),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(sorted),
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Max:    floats.Max(sorted),
	}
}

// Quantile returns the p-quantile of sorted, interpolating linearly between
// the values either side of position (n-1)*p. This is the R type 7 and numpy
// "linear" definition. sorted must be ascending and non-empty.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	if i < 0 {
		return sorted[0]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// FiveNumber returns min, Q1, median, Q3 and max in box-plot order.
func (s Summary) FiveNumber() []float64 {
	return []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}
}
