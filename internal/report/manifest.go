// Package report writes the JSON manifest consumed by the QC reporting
// pipeline. The manifest always lists the same six figures in the same
// order; downstream tooling keys on their uids.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/adapter.report/internal/accuracy"
	"github.com/banshee-data/adapter.report/internal/fsutil"
	"github.com/banshee-data/adapter.report/internal/render"
)

// ManifestName is the manifest file name.
const ManifestName = "report.json"

// PlotDescriptor describes one figure in the manifest. Field order is the
// serialised key order.
type PlotDescriptor struct {
	Caption string   `json:"caption"`
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	UID     string   `json:"uid"`
}

// Manifest is the top-level report document.
type Manifest struct {
	Plots  []PlotDescriptor `json:"plots"`
	Tables []any            `json:"tables"`
}

// figure is a fixed manifest slot.
type figure struct {
	dataset string
	kind    render.Kind
	uid     string
	caption string
	label   string // id/title suffix after the prefix
}

// figures is the manifest layout. The uids are an external contract and
// must not be renumbered.
var figures = []figure{
	{accuracy.CallAccuracyName, render.Box, "0500001",
		"Adapter Call Accuracy Box Plots For Adapter Types", "Adapter Call Accuracy Box Plots"},
	{accuracy.CallAccuracyName, render.Dist, "0500002",
		"Adapter Call Accuracy Density Plot For Adapter Types", "Adapter Call Accuracy Density Plot"},
	{accuracy.CallAccuracyName, render.Hist, "0500003",
		"Adapter Call Accuracy Histogram For Adapter Types", "Adapter Call Accuracy Histogram"},
	{accuracy.ChannelAccuracyName, render.Box, "0500004",
		"ZMW Accuracy Box Plots For Adapter Types", "ZMW Accuracy Box Plots"},
	{accuracy.ChannelAccuracyName, render.Dist, "0500005",
		"ZMW Accuracy Density Plot For Adapter Types", "ZMW Accuracy Density Plot"},
	{accuracy.ChannelAccuracyName, render.Hist, "0500006",
		"ZMW Accuracy Histogram For Adapter Types", "ZMW Accuracy Histogram"},
}

// Datasets returns the dataset names in manifest order.
func Datasets() []string {
	return []string{accuracy.CallAccuracyName, accuracy.ChannelAccuracyName}
}

// NewManifest builds the six-figure manifest for a lower-cased prefix.
func NewManifest(prefix string) *Manifest {
	m := &Manifest{
		Plots:  make([]PlotDescriptor, 0, len(figures)),
		Tables: []any{},
	}
	for _, f := range figures {
		label := fmt.Sprintf("%s - %s", prefix, f.label)
		m.Plots = append(m.Plots, PlotDescriptor{
			Caption: f.caption,
			Image:   render.FileName(prefix, f.dataset, f.kind),
			Tags:    []string{},
			ID:      label,
			Title:   label,
			UID:     f.uid,
		})
	}
	return m
}

// Images returns the image names in manifest order.
func (m *Manifest) Images() []string {
	out := make([]string, len(m.Plots))
	for i, p := range m.Plots {
		out[i] = p.Image
	}
	return out
}

// Marshal encodes the manifest with a one-space indent.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", " ")
}

// Write stores the manifest as ManifestName in dir and returns its path.
func (m *Manifest) Write(fsys fsutil.FileSystem, dir string) (string, error) {
	data, err := m.Marshal()
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if dir != "" {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	path := filepath.Join(dir, ManifestName)
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Verify checks that images, as produced by the renderer, match the
// manifest's image list exactly.
func (m *Manifest) Verify(images []string) error {
	want := m.Images()
	if len(images) != len(want) {
		return fmt.Errorf("rendered %d images, manifest lists %d", len(images), len(want))
	}
	for i := range want {
		if images[i] != want[i] {
			return fmt.Errorf("image %d is %q, manifest expects %q", i, images[i], want[i])
		}
	}
	return nil
}
