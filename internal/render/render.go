// Package render draws the adapter report figures. Each accuracy table
// yields a box plot, a per-adapter density plot and a per-adapter
// histogram, written as PNG files through an fsutil.FileSystem.
package render

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/adapter.report/internal/accuracy"
	"github.com/banshee-data/adapter.report/internal/config"
	"github.com/banshee-data/adapter.report/internal/fsutil"
)

// Kind names a figure type; it is the last component of the image name.
type Kind string

const (
	Box  Kind = "box"
	Dist Kind = "dist"
	Hist Kind = "hist"
)

// Kinds lists figure kinds in render and manifest order.
var Kinds = []Kind{Box, Dist, Hist}

// FileName returns the image name for a dataset and kind. The prefix is
// used as given; callers lower-case it once up front.
func FileName(prefix, dataset string, kind Kind) string {
	return fmt.Sprintf("%s_%s_%s.png", prefix, dataset, kind)
}

// suptitles are the figure titles per dataset.
var suptitles = map[string]string{
	accuracy.CallAccuracyName:    "Adapter Call Accuracy by Type and Classification",
	accuracy.ChannelAccuracyName: "ZMW Accuracy for Adapter Calls\nby Type and Classification",
}

func suptitle(t *accuracy.Table) string {
	if s, ok := suptitles[t.Name]; ok {
		return s
	}
	return t.ValueColumn + " by Type and Classification"
}

// Renderer writes report figures into Dir on FS.
type Renderer struct {
	FS     fsutil.FileSystem
	Dir    string
	Config *config.ReportConfig
	Log    *zap.Logger
}

// New returns a Renderer. A nil logger disables logging.
func New(fsys fsutil.FileSystem, dir string, cfg *config.ReportConfig, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.EmptyReportConfig()
	}
	return &Renderer{FS: fsys, Dir: dir, Config: cfg, Log: log}
}

// Render draws the box, density and histogram figures for t and returns
// the image names in Kinds order. Empty datasets still produce images. NaN
// and infinite values are left out of every figure.
func (r *Renderer) Render(prefix string, t *accuracy.Table) ([]string, error) {
	t, dropped := t.Finite()
	if dropped > 0 {
		r.Log.Warn("dropping non-finite values from figures",
			zap.String("dataset", t.Name),
			zap.Int("dropped", dropped))
	}
	if t.Len() == 0 {
		r.Log.Warn("dataset is empty; writing placeholder figures", zap.String("dataset", t.Name))
	}

	names := make([]string, 0, len(Kinds))
	for _, kind := range Kinds {
		name := FileName(prefix, t.Name, kind)
		var err error
		switch kind {
		case Box:
			err = r.writeBox(name, t)
		case Dist:
			err = r.writeFacets(name, t, r.densityPanel)
		case Hist:
			err = r.writeFacets(name, t, histogramPanel)
		}
		if err != nil {
			return names, fmt.Errorf("render %s: %w", name, err)
		}
		r.Log.Debug("wrote figure", zap.String("image", name), zap.Int("rows", t.Len()))
		names = append(names, name)
	}
	return names, nil
}

// create opens name under Dir. A prefix may carry subdirectories, so the
// file's own parent is created rather than just Dir.
func (r *Renderer) create(name string) (io.WriteCloser, error) {
	path := filepath.Join(r.Dir, name)
	if dir := filepath.Dir(path); dir != "." {
		if err := r.FS.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	return r.FS.Create(path)
}

// BoxPlot builds the box plot for t: adapter types along x, one box per
// class side by side, y clamped to [BoxYMin, BoxYMax].
func BoxPlot(t *accuracy.Table, boxWidth vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = suptitle(t)
	p.X.Label.Text = "AdapterType"
	p.Y.Label.Text = t.ValueColumn

	types := t.Types()
	nClass := len(t.Classes)
	for ci, class := range t.Classes {
		col := classColor(ci)
		offset := vg.Length(float64(ci)-float64(nClass-1)/2) * boxWidth
		for ti, typ := range types {
			vals := t.Values(typ, class)
			if len(vals) == 0 {
				continue
			}
			b, err := plotter.NewBoxPlot(boxWidth, float64(ti), plotter.Values(vals))
			if err != nil {
				return nil, fmt.Errorf("box %s/%s: %w", typ, class, err)
			}
			b.Offset = offset
			b.FillColor = col
			p.Add(b)
		}
		p.Legend.Add(string(class), swatch{c: col})
	}

	if len(types) > 0 {
		p.NominalX(types...)
	} else {
		p.Title.Text += "\n(no data)"
		p.X.Min, p.X.Max = -0.5, 0.5
	}
	p.Legend.Top = true
	p.Y.Min = BoxYMin
	p.Y.Max = BoxYMax
	return p, nil
}

func (r *Renderer) writeBox(name string, t *accuracy.Table) error {
	p, err := BoxPlot(t, vg.Points(r.Config.GetBoxWidthPoints()))
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Length(r.Config.GetImageWidthInches())*vg.Inch,
		vg.Length(r.Config.GetImageHeightInches())*vg.Inch, "png")
	if err != nil {
		return err
	}

	w, err := r.create(name)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("save box plot: %w", err)
	}
	return w.Close()
}

// PanelFunc fills one facet panel for adapter type typ.
type PanelFunc func(p *plot.Plot, t *accuracy.Table, typ string) error

// FacetPlots builds one panel per adapter type, stacked top to bottom.
// The first panel carries the figure title. An empty table yields a single
// placeholder panel.
func FacetPlots(t *accuracy.Table, fill PanelFunc) ([]*plot.Plot, error) {
	types := t.Types()
	if len(types) == 0 {
		p := plot.New()
		p.Title.Text = suptitle(t) + "\n(no data)"
		p.X.Label.Text = t.ValueColumn
		return []*plot.Plot{p}, nil
	}

	plots := make([]*plot.Plot, 0, len(types))
	for i, typ := range types {
		p := plot.New()
		p.Title.Text = "AdapterType = " + typ
		if i == 0 {
			p.Title.Text = suptitle(t) + "\n" + p.Title.Text
		}
		p.X.Label.Text = "value"
		if err := fill(p, t, typ); err != nil {
			return nil, fmt.Errorf("panel %s: %w", typ, err)
		}
		for ci, class := range t.Classes {
			p.Legend.Add(string(class), swatch{c: classColor(ci)})
		}
		p.Legend.Top = true
		plots = append(plots, p)
	}
	return plots, nil
}

func (r *Renderer) writeFacets(name string, t *accuracy.Table, fill PanelFunc) error {
	plots, err := FacetPlots(t, fill)
	if err != nil {
		return err
	}

	width := vg.Length(r.Config.GetImageWidthInches()) * vg.Inch
	height := vg.Length(r.Config.GetPanelHeightInches()*float64(len(plots))) * vg.Inch
	img := vgimg.New(width, height)
	dc := draw.New(img)

	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      2 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	w, err := r.create(name)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}
	return w.Close()
}

// densityPanel draws one shaded KDE curve per class.
func (r *Renderer) densityPanel(p *plot.Plot, t *accuracy.Table, typ string) error {
	for ci, class := range t.Classes {
		vals := t.Values(typ, class)
		xys := Density(vals, r.Config.GetDensityPoints())
		if xys == nil {
			if len(vals) > 0 {
				r.Log.Warn("skipping density curve: need two or more distinct values",
					zap.String("dataset", t.Name),
					zap.String("adapter_type", typ),
					zap.String("class", string(class)),
					zap.Int("n", len(vals)))
			}
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		col := classColor(ci)
		line.Color = col
		line.Width = vg.Points(1)
		line.FillColor = translucent(col)
		p.Add(line)
	}
	p.Y.Label.Text = "density"
	p.Y.Min = 0
	return nil
}

// histogramPanel draws the fixed-bin histogram of each class.
func histogramPanel(p *plot.Plot, t *accuracy.Table, typ string) error {
	edges := BinEdges()
	for ci, class := range t.Classes {
		counts := BinCounts(edges, t.Values(typ, class))
		bins := make([]plotter.HistogramBin, len(counts))
		for i, c := range counts {
			bins[i] = plotter.HistogramBin{Min: edges[i], Max: edges[i+1], Weight: c}
		}
		p.Add(&plotter.Histogram{
			Bins:      bins,
			Width:     BinWidth,
			FillColor: translucent(classColor(ci)),
			LineStyle: plotter.DefaultLineStyle,
		})
	}
	p.Y.Label.Text = "count"
	p.X.Min = edges[0]
	p.X.Max = edges[len(edges)-1]
	p.Y.Min = 0
	return nil
}
