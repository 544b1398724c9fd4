// Package adapter loads adapter detection tables exported by the instrument
// and groups the detections by adapter type.
package adapter

import "sort"

// Column names required in the detection CSV header. Order in the file is
// arbitrary; extra columns are ignored.
const (
	ColAdapterType  = "AdpType"
	ColCallType     = "CallType"
	ColChannel      = "Zmw"
	ColChannelAcc   = "ZmwAccuracy"
	ColIsReal       = "isReal"
	ColIsHit        = "isHit"
	ColCallAccuracy = "CallAccuracy"
)

// RequiredColumns lists every column the loader resolves, in the order
// missing columns are reported.
var RequiredColumns = []string{
	ColAdapterType,
	ColCallType,
	ColChannel,
	ColChannelAcc,
	ColIsReal,
	ColIsHit,
	ColCallAccuracy,
}

// NoType marks an unset adapter type in either type column.
const NoType = "-1"

// Record is a single adapter detection on one device channel.
type Record struct {
	ChannelID       int
	ChannelAccuracy float64
	CallAccuracy    float64
	IsReal          bool // ground truth: a real adapter is present
	IsHit           bool // the detection was accepted as a hit
}

// Group maps an adapter type to its detections in file order.
type Group map[string][]Record

// Types returns the adapter types in lexical order.
func (g Group) Types() []string {
	types := make([]string, 0, len(g))
	for t := range g {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the total number of records across all types.
func (g Group) Len() int {
	n := 0
	for _, recs := range g {
		n += len(recs)
	}
	return n
}

// LoadStats counts what happened to each data row during a load.
type LoadStats struct {
	Rows        int // data rows read, excluding the header and blank lines
	Kept        int
	Untyped     int // both type columns were NoType
	Conflicting int // type columns named two different adapters
}

// Dropped returns the number of rows excluded for an ambiguous type.
func (s LoadStats) Dropped() int {
	return s.Untyped + s.Conflicting
}

// Resolution describes how a row's adapter type was decided.
type Resolution int

const (
	Resolved Resolution = iota
	Untyped
	Conflicting
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case Untyped:
		return "untyped"
	case Conflicting:
		return "conflicting"
	default:
		return "unknown"
	}
}

// ResolveType returns the single adapter type named by the two type
// columns, ignoring NoType. A row is typed only when exactly one distinct
// value remains.
func ResolveType(adapterType, callType string) (string, Resolution) {
	a := adapterType != NoType
	c := callType != NoType
	switch {
	case a && c && adapterType != callType:
		return "", Conflicting
	case a:
		return adapterType, Resolved
	case c:
		return callType, Resolved
	default:
		return "", Untyped
	}
}
