package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/adapter.report/internal/accuracy"
)

// HTMLName returns the name of the interactive companion page for a dataset.
func HTMLName(prefix, dataset string) string {
	return fmt.Sprintf("%s_%s.html", prefix, dataset)
}

// BoxStats returns the lower whisker, first quartile, median, third quartile
// and upper whisker of values exactly as the PNG box plot draws them: Tukey
// hinges, with whiskers at the most extreme values within 1.5 IQR.
func BoxStats(values []float64) ([]float64, error) {
	b, err := plotter.NewBoxPlot(1, 0, plotter.Values(values))
	if err != nil {
		return nil, err
	}
	return []float64{b.AdjLow, b.Quartile1, b.Median, b.Quartile3, b.AdjHigh}, nil
}

// boxChart renders box statistics per adapter type and class.
func boxChart(t *accuracy.Table) (*charts.BoxPlot, error) {
	types := t.Types()
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: strings.ReplaceAll(suptitle(t), "\n", " "), Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: strings.ReplaceAll(suptitle(t), "\n", " "), Subtitle: fmt.Sprintf("rows=%d", t.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: BoxYMin, Max: BoxYMax, Name: t.ValueColumn}),
	)
	box.SetXAxis(types)
	for _, class := range t.Classes {
		data := make([]opts.BoxPlotData, 0, len(types))
		for _, typ := range types {
			var v interface{} = "-"
			if vals := t.Values(typ, class); len(vals) > 0 {
				stats, err := BoxStats(vals)
				if err != nil {
					return nil, fmt.Errorf("box %s/%s: %w", typ, class, err)
				}
				v = stats
			}
			data = append(data, opts.BoxPlotData{Name: typ, Value: v})
		}
		box.AddSeries(string(class), data)
	}
	return box, nil
}

// histogramChart renders fixed-bin counts of each class for one adapter type.
func histogramChart(t *accuracy.Table, typ string) *charts.Bar {
	edges := BinEdges()
	labels := make([]string, len(edges)-1)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.3f", edges[i])
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "AdapterType = " + typ, Subtitle: t.ValueColumn + " histogram"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	for _, class := range t.Classes {
		counts := BinCounts(edges, t.Values(typ, class))
		data := make([]opts.BarData, len(counts))
		for i, c := range counts {
			data[i] = opts.BarData{Value: c}
		}
		bar.AddSeries(string(class), data)
	}
	return bar
}

// HTMLPage renders the interactive companion page for t. NaN and infinite
// values are left out, as in the PNG figures.
func HTMLPage(t *accuracy.Table) ([]byte, error) {
	t, _ = t.Finite()
	box, err := boxChart(t)
	if err != nil {
		return nil, err
	}
	page := components.NewPage()
	page.PageTitle = strings.ReplaceAll(suptitle(t), "\n", " ")
	page.AddCharts(box)
	for _, typ := range t.Types() {
		page.AddCharts(histogramChart(t, typ))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s page: %w", t.Name, err)
	}
	return buf.Bytes(), nil
}

// RenderHTML writes the interactive companion page for t and returns its
// name. Companion pages are not part of the manifest.
func (r *Renderer) RenderHTML(prefix string, t *accuracy.Table) (string, error) {
	html, err := HTMLPage(t)
	if err != nil {
		return "", err
	}
	name := HTMLName(prefix, t.Name)
	w, err := r.create(name)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(html); err != nil {
		w.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	r.Log.Debug("wrote companion page", zap.String("page", name))
	return name, nil
}
