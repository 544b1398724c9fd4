package render

import "gonum.org/v1/gonum/floats"

// Histogram bins span [0.400, 1.000] in steps of 0.025. Edges are computed
// as k/1000 so each one is the exact decimal value.
const (
	binLowMilli  = 400
	binHighMilli = 1000
	binStepMilli = 25

	// BinWidth is the width of every histogram bin.
	BinWidth = float64(binStepMilli) / 1000
)

// Box plot y-axis limits.
const (
	BoxYMin = 0.4
	BoxYMax = 1.05
)

// BinEdges returns the histogram bin edges, lowest first.
func BinEdges() []float64 {
	edges := make([]float64, 0, (binHighMilli-binLowMilli)/binStepMilli+1)
	for k := binLowMilli; k <= binHighMilli; k += binStepMilli {
		edges = append(edges, float64(k)/1000)
	}
	return edges
}

// BinCounts counts values into the bins described by edges. Bins are
// half-open except the last, which also includes the upper edge. Values
// outside the edges are not counted.
func BinCounts(edges, values []float64) []float64 {
	counts := make([]float64, len(edges)-1)
	last := edges[len(edges)-1]
	for _, v := range values {
		if v == last {
			counts[len(counts)-1]++
			continue
		}
		if i := floats.Within(edges, v); i >= 0 {
			counts[i]++
		}
	}
	return counts
}
