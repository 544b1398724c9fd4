package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// maxFileSize bounds config files read by LoadReportConfig.
const maxFileSize = 1 * 1024 * 1024

// ReportConfig holds the rendering options for an adapter report.
// Every field is optional; the Get* methods supply defaults for fields the
// file leaves out. Histogram bin edges and box plot limits are fixed and are
// not configurable.
type ReportConfig struct {
	ImageWidthInches  *float64 `json:"image_width_in,omitempty" yaml:"image_width_in,omitempty" toml:"image_width_in,omitempty"`
	ImageHeightInches *float64 `json:"image_height_in,omitempty" yaml:"image_height_in,omitempty" toml:"image_height_in,omitempty"`
	PanelHeightInches *float64 `json:"panel_height_in,omitempty" yaml:"panel_height_in,omitempty" toml:"panel_height_in,omitempty"`
	DensityPoints     *int     `json:"density_points,omitempty" yaml:"density_points,omitempty" toml:"density_points,omitempty"`
	BoxWidthPoints    *float64 `json:"box_width_pt,omitempty" yaml:"box_width_pt,omitempty" toml:"box_width_pt,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyReportConfig returns a ReportConfig with all fields unset.
func EmptyReportConfig() *ReportConfig {
	return &ReportConfig{}
}

// DefaultReportConfig returns a ReportConfig with every field set to its
// default value.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		ImageWidthInches:  ptrFloat64(8),
		ImageHeightInches: ptrFloat64(6),
		PanelHeightInches: ptrFloat64(3),
		DensityPoints:     ptrInt(100),
		BoxWidthPoints:    ptrFloat64(20),
	}
}

// LoadReportConfig loads a ReportConfig from a .json, .yaml/.yml or .toml
// file. Unknown keys are rejected so typos do not silently fall back to
// defaults.
func LoadReportConfig(path string) (*ReportConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml", ".toml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml, .yml or .toml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseReportConfig(data, ext)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseReportConfig decodes data in the format named by ext and validates
// the result.
func ParseReportConfig(data []byte, ext string) (*ReportConfig, error) {
	cfg := EmptyReportConfig()
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty YAML document decodes to io.EOF; treat it as all defaults.
		if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *ReportConfig) Validate() error {
	for name, v := range map[string]*float64{
		"image_width_in":  c.ImageWidthInches,
		"image_height_in": c.ImageHeightInches,
		"panel_height_in": c.PanelHeightInches,
		"box_width_pt":    c.BoxWidthPoints,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, *v)
		}
	}
	if c.DensityPoints != nil && *c.DensityPoints < 10 {
		return fmt.Errorf("density_points must be at least 10, got %d", *c.DensityPoints)
	}
	return nil
}

// GetImageWidthInches returns the image width or the default of 8in.
func (c *ReportConfig) GetImageWidthInches() float64 {
	if c == nil || c.ImageWidthInches == nil {
		return 8
	}
	return *c.ImageWidthInches
}

// GetImageHeightInches returns the single-panel image height or the default of 6in.
func (c *ReportConfig) GetImageHeightInches() float64 {
	if c == nil || c.ImageHeightInches == nil {
		return 6
	}
	return *c.ImageHeightInches
}

// GetPanelHeightInches returns the per-adapter panel height for faceted plots.
func (c *ReportConfig) GetPanelHeightInches() float64 {
	if c == nil || c.PanelHeightInches == nil {
		return 3
	}
	return *c.PanelHeightInches
}

// GetDensityPoints returns the number of grid points per density curve.
func (c *ReportConfig) GetDensityPoints() int {
	if c == nil || c.DensityPoints == nil {
		return 100
	}
	return *c.DensityPoints
}

// GetBoxWidthPoints returns the width of a single box in points.
func (c *ReportConfig) GetBoxWidthPoints() float64 {
	if c == nil || c.BoxWidthPoints == nil {
		return 20
	}
	return *c.BoxWidthPoints
}
