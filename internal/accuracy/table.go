// Package accuracy derives the long-format accuracy tables plotted in the
// adapter report: call accuracy split into true and false positives, and
// channel accuracy of real adapters split into hits and misses.
package accuracy

import "math"

// Class labels a detection against ground truth.
type Class string

const (
	TruePos  Class = "TruePos"
	FalsePos Class = "FalsePos"
	FalseNeg Class = "FalseNeg"
)

// Row is one observation in a long-format table.
type Row struct {
	AdapterType string
	Class       Class
	Value       float64
}

// Table is a long-format dataset with columns (AdapterType, AdapterClass,
// ValueColumn).
type Table struct {
	Name        string  // file-name stem, e.g. "call_accuracy"
	ValueColumn string  // name of the value column, e.g. "CallAccuracy"
	Classes     []Class // legend order
	Rows        []Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Types returns adapter types in order of first appearance. Types whose
// records were all filtered out do not appear.
func (t *Table) Types() []string {
	var types []string
	seen := make(map[string]bool)
	for _, r := range t.Rows {
		if !seen[r.AdapterType] {
			seen[r.AdapterType] = true
			types = append(types, r.AdapterType)
		}
	}
	return types
}

// Values returns the values for one adapter type and class, in row order.
func (t *Table) Values(adapterType string, class Class) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if r.AdapterType == adapterType && r.Class == class {
			out = append(out, r.Value)
		}
	}
	return out
}

// ClassValues returns all values of one class across adapter types.
func (t *Table) ClassValues(class Class) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if r.Class == class {
			out = append(out, r.Value)
		}
	}
	return out
}

// Finite returns t without its NaN and infinite values, and how many rows
// were removed. t itself is returned when every value is finite.
func (t *Table) Finite() (*Table, int) {
	var rows []Row
	for i, r := range t.Rows {
		if !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0) {
			if rows != nil {
				rows = append(rows, r)
			}
			continue
		}
		if rows == nil {
			rows = append(make([]Row, 0, len(t.Rows)), t.Rows[:i]...)
		}
	}
	if rows == nil {
		return t, 0
	}
	out := *t
	out.Rows = rows
	return &out, len(t.Rows) - len(rows)
}

// TableBuilder accumulates rows into a single table.
type TableBuilder struct {
	t Table
}

// NewTableBuilder starts a table with the given name, value column and
// class legend order.
func NewTableBuilder(name, valueColumn string, classes ...Class) *TableBuilder {
	return &TableBuilder{t: Table{Name: name, ValueColumn: valueColumn, Classes: classes}}
}

// Add appends one row per value.
func (b *TableBuilder) Add(adapterType string, class Class, values ...float64) *TableBuilder {
	for _, v := range values {
		b.t.Rows = append(b.t.Rows, Row{AdapterType: adapterType, Class: class, Value: v})
	}
	return b
}

// Grow reserves space for n more rows.
func (b *TableBuilder) Grow(n int) *TableBuilder {
	if cap(b.t.Rows)-len(b.t.Rows) < n {
		rows := make([]Row, len(b.t.Rows), len(b.t.Rows)+n)
		copy(rows, b.t.Rows)
		b.t.Rows = rows
	}
	return b
}

// Build returns the accumulated table. The builder must not be used
// afterwards.
func (b *TableBuilder) Build() *Table {
	t := b.t
	b.t = Table{}
	return &t
}
