package render

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/adapter.report/internal/accuracy"
)

// kdeCut is how many bandwidths the density grid extends past the data.
const kdeCut = 3

// ScottBandwidth returns the Gaussian kernel bandwidth from Scott's rule,
// 1.059 * A * n^(-1/5), where A is the smaller of the sample standard
// deviation and IQR/1.349. A falls back to the standard deviation when the
// IQR is zero. Fewer than two values give a bandwidth of 0.
func ScottBandwidth(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	a := stat.StdDev(sorted, nil)
	iqr := accuracy.Quantile(sorted, 0.75) - accuracy.Quantile(sorted, 0.25)
	if s := iqr / 1.349; s > 0 && s < a {
		a = s
	}
	return 1.059 * a * math.Pow(float64(n), -0.2)
}

// Density evaluates a Gaussian kernel density estimate of values on an
// evenly spaced grid of points. It returns nil when the bandwidth is zero.
func Density(values []float64, points int) plotter.XYs {
	h := ScottBandwidth(values)
	if h <= 0 || points < 2 {
		return nil
	}

	lo := floats.Min(values) - kdeCut*h
	hi := floats.Max(values) + kdeCut*h
	grid := floats.Span(make([]float64, points), lo, hi)

	kernel := distuv.Normal{Mu: 0, Sigma: h}
	n := float64(len(values))
	xys := make(plotter.XYs, points)
	for i, x := range grid {
		var sum float64
		for _, v := range values {
			sum += kernel.Prob(x - v)
		}
		xys[i] = plotter.XY{X: x, Y: sum / n}
	}
	return xys
}
