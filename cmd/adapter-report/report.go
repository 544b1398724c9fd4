package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/banshee-data/adapter.report/internal/accuracy"
	"github.com/banshee-data/adapter.report/internal/adapter"
	"github.com/banshee-data/adapter.report/internal/config"
	"github.com/banshee-data/adapter.report/internal/db"
	"github.com/banshee-data/adapter.report/internal/fsutil"
	"github.com/banshee-data/adapter.report/internal/render"
	"github.com/banshee-data/adapter.report/internal/report"
	"github.com/banshee-data/adapter.report/internal/security"
	"github.com/banshee-data/adapter.report/internal/timeutil"
	"github.com/banshee-data/adapter.report/internal/version"
)

// options holds one invocation's arguments and flags.
type options struct {
	Prefix     string
	InputPath  string
	OutDir     string
	ConfigPath string
	DBPath     string
	HTML       bool
	Clock      timeutil.Clock
}

// result is what a successful run produced.
type result struct {
	Manifest string
	Images   []string
	Pages    []string
	Stats    adapter.LoadStats
	RunID    uuid.UUID
}

// runReport loads the detection CSV, renders every figure and writes the
// manifest. The manifest is written only after all images succeed.
func runReport(ctx context.Context, opts options, fsys fsutil.FileSystem, log *zap.Logger) (*result, error) {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	started := clock.Now()

	prefix := strings.ToLower(opts.Prefix)
	if err := security.ValidatePrefix(opts.OutDir, prefix); err != nil {
		return nil, err
	}

	cfg := config.DefaultReportConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.LoadReportConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Debug("loaded report config", zap.String("path", opts.ConfigPath))
	}

	group, stats, err := adapter.Load(fsys, opts.InputPath)
	if err != nil {
		return nil, err
	}
	log.Info("loaded detections",
		zap.String("input", opts.InputPath),
		zap.Int("rows", stats.Rows),
		zap.Int("kept", stats.Kept),
		zap.Strings("adapter_types", group.Types()))
	if stats.Dropped() > 0 {
		log.Warn("dropped rows without a single adapter type",
			zap.Int("untyped", stats.Untyped),
			zap.Int("conflicting", stats.Conflicting))
	}

	tables := map[string]*accuracy.Table{
		accuracy.CallAccuracyName:    accuracy.CallAccuracy(group),
		accuracy.ChannelAccuracyName: accuracy.ChannelAccuracy(group),
	}

	for _, name := range report.Datasets() {
		t := tables[name]
		fields := []zap.Field{zap.String("dataset", name), zap.Int("rows", t.Len())}
		for _, class := range t.Classes {
			fields = append(fields, zap.Int(string(class), len(t.ClassValues(class))))
		}
		log.Info("built dataset", fields...)
	}

	var summaries []accuracy.Summary
	for _, name := range report.Datasets() {
		for _, s := range accuracy.Summarize(tables[name]) {
			log.Debug("accuracy summary",
				zap.String("dataset", s.Dataset),
				zap.String("adapter_type", s.AdapterType),
				zap.String("class", string(s.Class)),
				zap.Int("n", s.N),
				zap.Float64("mean", s.Mean),
				zap.Float64("median", s.Median))
			summaries = append(summaries, s)
		}
	}

	res := &result{Stats: stats}
	r := render.New(fsys, opts.OutDir, cfg, log)
	for _, name := range report.Datasets() {
		images, err := r.Render(prefix, tables[name])
		if err != nil {
			return nil, err
		}
		res.Images = append(res.Images, images...)
	}

	manifest := report.NewManifest(prefix)
	if err := manifest.Verify(res.Images); err != nil {
		return nil, err
	}

	if opts.HTML {
		for _, name := range report.Datasets() {
			page, err := r.RenderHTML(prefix, tables[name])
			if err != nil {
				return nil, err
			}
			res.Pages = append(res.Pages, page)
		}
	}

	if res.Manifest, err = manifest.Write(fsys, opts.OutDir); err != nil {
		return nil, err
	}
	log.Info("wrote report",
		zap.String("manifest", res.Manifest),
		zap.Int("images", len(res.Images)),
		zap.Duration("elapsed", clock.Since(started)))

	if opts.DBPath != "" {
		if res.RunID, err = archive(ctx, opts.DBPath, db.Run{
			Prefix:    prefix,
			InputPath: opts.InputPath,
			Version:   version.Version,
			Stats:     stats,
			CreatedAt: started,
		}, summaries, log); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// archive records run under a fresh id in the SQLite archive at path.
func archive(ctx context.Context, path string, run db.Run, summaries []accuracy.Summary, log *zap.Logger) (uuid.UUID, error) {
	database, err := db.Open(path, log)
	if err != nil {
		return uuid.Nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer database.Close()

	run.ID = uuid.New()
	if err := database.RecordRun(ctx, run, summaries); err != nil {
		return uuid.Nil, err
	}
	return run.ID, nil
}
