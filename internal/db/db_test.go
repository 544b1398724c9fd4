package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/banshee-data/adapter.report/internal/accuracy"
	"github.com/banshee-data/adapter.report/internal/adapter"
)

// setupTestDB opens a migrated archive in a temp dir.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "archive.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpenDB_Pragmas(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "p.db"), nil)
	require.NoError(t, err)
	defer database.Close()

	var mode string
	require.NoError(t, database.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, database.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	var fk int
	require.NoError(t, database.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_UpDownVersion(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "m.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer database.Close()

	v, dirty, err := database.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	require.NoError(t, database.MigrateUp(MigrationsFS()))
	// Second run is a no-op.
	require.NoError(t, database.MigrateUp(MigrationsFS()))

	v, dirty, err = database.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	require.NoError(t, database.MigrateDown(MigrationsFS()))
	var n int
	require.NoError(t, database.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='report_runs'").Scan(&n))
	assert.Zero(t, n)
}

func sampleSummaries() []accuracy.Summary {
	return []accuracy.Summary{
		{Dataset: accuracy.CallAccuracyName, AdapterType: "X", Class: accuracy.TruePos,
			N: 2, Mean: 0.85, StdDev: 0.0707, Min: 0.8, Q1: 0.825, Median: 0.85, Q3: 0.875, Max: 0.9},
		{Dataset: accuracy.CallAccuracyName, AdapterType: "Y", Class: accuracy.FalsePos,
			N: 1, Mean: 0.6, Min: 0.6, Q1: 0.6, Median: 0.6, Q3: 0.6, Max: 0.6},
		{Dataset: accuracy.ChannelAccuracyName, AdapterType: "X", Class: accuracy.FalseNeg,
			N: 1, Mean: 0.95, Min: 0.95, Q1: 0.95, Median: 0.95, Q3: 0.95, Max: 0.95},
	}
}

func TestRecordRun_RoundTrip(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	run := Run{
		ID:        uuid.New(),
		Prefix:    "movie7",
		InputPath: "/data/movie7.csv",
		Version:   "dev",
		Stats:     adapter.LoadStats{Rows: 5, Kept: 3, Untyped: 1, Conflicting: 1},
		CreatedAt: time.Unix(1700000000, 42),
	}
	require.NoError(t, database.RecordRun(ctx, run, sampleSummaries()))

	runs, err := database.Runs(ctx, "movie7")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].CreatedAt.Equal(run.CreatedAt))
	runs[0].CreatedAt = run.CreatedAt
	if diff := cmp.Diff(run, runs[0]); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}

	got, err := database.Summaries(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleSummaries(), got); diff != "" {
		t.Errorf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestRuns_FilterAndOrder(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i, prefix := range []string{"a", "b", "a"} {
		require.NoError(t, database.RecordRun(ctx, Run{
			ID:        uuid.New(),
			Prefix:    prefix,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}, nil))
	}

	all, err := database.Runs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := database.Runs(ctx, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.True(t, onlyA[0].CreatedAt.After(onlyA[1].CreatedAt), "newest first")

	none, err := database.Runs(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordRun_DuplicateRollsBack(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	run := Run{ID: uuid.New(), Prefix: "p", CreatedAt: time.Now()}
	require.NoError(t, database.RecordRun(ctx, run, nil))

	// Same summary key twice violates the primary key; nothing is kept.
	second := Run{ID: uuid.New(), Prefix: "p", CreatedAt: time.Now()}
	dup := sampleSummaries()[:1]
	dup = append(dup, dup[0])
	err := database.RecordRun(ctx, second, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert summary")

	runs, err := database.Runs(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	got, err := database.Summaries(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
