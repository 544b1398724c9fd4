// Command adapter-report renders the adapter detection QC plots and the
// report.json manifest for one detections CSV.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/banshee-data/adapter.report/internal/fsutil"
	"github.com/banshee-data/adapter.report/internal/version"
)

// newLogger builds the process logger. Tests replace it.
var newLogger = func(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func newRootCmd() *cobra.Command {
	var (
		opts    options
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "adapter-report <outputPrefix> <inputCsvPath>",
		Short: "Render adapter detection QC plots and report.json",
		Long: `Reads an adapter detection CSV and writes six PNG figures
(box, density and histogram plots for call accuracy and ZMW accuracy)
plus the report.json manifest that lists them.

The output prefix is lower-cased before it is used in file names.`,
		Args:    cobra.ExactArgs(2),
		Version: version.String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			log, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			opts.Prefix, opts.InputPath = args[0], args[1]
			if _, err := runReport(cmd.Context(), opts, fsutil.OSFileSystem{}, log); err != nil {
				log.Error("report failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("adapter-report {{.Version}}\n")

	f := cmd.Flags()
	f.StringVar(&opts.OutDir, "out-dir", ".", "directory for images and report.json")
	f.StringVar(&opts.ConfigPath, "config", "", "report config file (.json, .yaml or .toml)")
	f.BoolVar(&opts.HTML, "html", false, "also write interactive HTML pages per dataset")
	f.StringVar(&opts.DBPath, "db", "", "SQLite archive to record this run in")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
