// Package testutil provides shared test fixtures for the report pipeline.
//
// Fixtures build detection CSV files in the instrument's column layout so
// loader, aggregation and end-to-end tests describe rows by field name
// instead of by position.
package testutil

import (
	"strings"
	"testing"

	"github.com/banshee-data/adapter.report/internal/fsutil"
)

// DetectionHeader is the column order fixtures are written in. The loader
// resolves columns by name, so tests may pass DetectionCSV any permutation.
var DetectionHeader = []string{
	"AdpType", "CallType", "Zmw", "ZmwAccuracy", "isReal", "isHit", "CallAccuracy",
}

// DetectionRow is one fixture row, kept as raw strings so tests can feed
// malformed values through the loader.
type DetectionRow struct {
	AdpType      string
	CallType     string
	Zmw          string
	ZmwAccuracy  string
	IsReal       string
	IsHit        string
	CallAccuracy string
}

func (r DetectionRow) fields() map[string]string {
	return map[string]string{
		"AdpType":      r.AdpType,
		"CallType":     r.CallType,
		"Zmw":          r.Zmw,
		"ZmwAccuracy":  r.ZmwAccuracy,
		"isReal":       r.IsReal,
		"isHit":        r.IsHit,
		"CallAccuracy": r.CallAccuracy,
	}
}

// DetectionCSV renders rows as CSV text using header for column order.
// Header names not present on DetectionRow are written as empty fields.
func DetectionCSV(header []string, rows ...DetectionRow) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, r := range rows {
		f := r.fields()
		vals := make([]string, len(header))
		for i, col := range header {
			vals[i] = f[col]
		}
		b.WriteString(strings.Join(vals, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteDetectionCSV writes rows in DetectionHeader order to path on fsys.
func WriteDetectionCSV(t testing.TB, fsys fsutil.FileSystem, path string, rows ...DetectionRow) {
	t.Helper()
	if err := fsys.WriteFile(path, []byte(DetectionCSV(DetectionHeader, rows...)), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

// ThreeRowExample is the reference input: two rows of adapter X, one real
// hit and one false call, plus a row whose types disagree.
func ThreeRowExample() []DetectionRow {
	return []DetectionRow{
		{AdpType: "X", CallType: "-1", Zmw: "m/1", ZmwAccuracy: "0.9", IsReal: "T", IsHit: "T", CallAccuracy: "0.8"},
		{AdpType: "X", CallType: "-1", Zmw: "m/2", ZmwAccuracy: "0.5", IsReal: "F", IsHit: "F", CallAccuracy: "0.3"},
		{AdpType: "Y", CallType: "Z", Zmw: "m/3", ZmwAccuracy: "0.7", IsReal: "T", IsHit: "F", CallAccuracy: "0.6"},
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
