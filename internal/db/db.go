// Package db archives adapter report runs in SQLite so accuracy trends can
// be compared across runs. The schema is managed by golang-migrate from
// embedded migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/adapter.report/internal/accuracy"
	"github.com/banshee-data/adapter.report/internal/adapter"
)

// DB wraps a SQLite connection holding the run archive.
type DB struct {
	*sql.DB
	log *zap.Logger
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// OpenDB opens the archive at path and applies connection pragmas. It does
// not touch the schema; call MigrateUp or use Open.
func OpenDB(path string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps per-connection pragmas in effect for every query.
	sqlDB.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return &DB{DB: sqlDB, log: log}, nil
}

// Open opens the archive at path and migrates it to the latest schema.
func Open(path string, log *zap.Logger) (*DB, error) {
	database, err := OpenDB(path, log)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateUp(MigrationsFS()); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Run is one archived report run.
type Run struct {
	ID        uuid.UUID
	Prefix    string
	InputPath string
	Version   string
	Stats     adapter.LoadStats
	CreatedAt time.Time
}

// RecordRun stores run and its summaries in a single transaction.
func (db *DB) RecordRun(ctx context.Context, run Run, summaries []accuracy.Summary) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO report_runs (
			run_id, output_prefix, input_path, version,
			rows_read, rows_kept, rows_untyped, rows_conflicting, created_unix_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Prefix, run.InputPath, run.Version,
		run.Stats.Rows, run.Stats.Kept, run.Stats.Untyped, run.Stats.Conflicting,
		run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO accuracy_summaries (
			run_id, dataset, adapter_type, class, n,
			mean, stddev, min_value, q1, median, q3, max_value
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare summary insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range summaries {
		_, err := stmt.ExecContext(ctx,
			run.ID.String(), s.Dataset, s.AdapterType, string(s.Class), s.N,
			s.Mean, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max,
		)
		if err != nil {
			return fmt.Errorf("insert summary %s/%s/%s: %w", s.Dataset, s.AdapterType, s.Class, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}
	db.log.Info("archived report run",
		zap.String("run_id", run.ID.String()),
		zap.Int("summaries", len(summaries)))
	return nil
}

// Runs returns archived runs for prefix, newest first. An empty prefix
// returns every run.
func (db *DB) Runs(ctx context.Context, prefix string) ([]Run, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT run_id, output_prefix, input_path, version,
			rows_read, rows_kept, rows_untyped, rows_conflicting, created_unix_ns
		FROM report_runs
		WHERE ? = '' OR output_prefix = ?
		ORDER BY created_unix_ns DESC`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			id      string
			created int64
		)
		if err := rows.Scan(&id, &r.Prefix, &r.InputPath, &r.Version,
			&r.Stats.Rows, &r.Stats.Kept, &r.Stats.Untyped, &r.Stats.Conflicting, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run %q: %w", id, err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summaries returns the archived summaries of one run ordered by dataset,
// adapter type and class.
func (db *DB) Summaries(ctx context.Context, runID uuid.UUID) ([]accuracy.Summary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT dataset, adapter_type, class, n,
			mean, stddev, min_value, q1, median, q3, max_value
		FROM accuracy_summaries
		WHERE run_id = ?
		ORDER BY dataset, adapter_type, class`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []accuracy.Summary
	for rows.Next() {
		var (
			s     accuracy.Summary
			class string
		)
		if err := rows.Scan(&s.Dataset, &s.AdapterType, &class, &s.N,
			&s.Mean, &s.StdDev, &s.Min, &s.Q1, &s.Median, &s.Q3, &s.Max); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.Class = accuracy.Class(class)
		out = append(out, s)
	}
	return out, rows.Err()
}
