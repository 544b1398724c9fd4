package adapter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/adapter.report/internal/fsutil"
)

// maxLineBytes bounds a single CSV line.
const maxLineBytes = 1 << 20

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("detection csv has no header row")

// ColumnError reports a required column missing from the header.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in header", e.Column)
}

// RowError reports a data row that could not be parsed.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// columnIndex holds the resolved position of each required column.
type columnIndex struct {
	adapterType, callType, channel, channelAcc, isReal, isHit, callAcc int
	width                                                             int
}

func resolveColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := pos[col]; !ok {
			return columnIndex{}, &ColumnError{Column: col}
		}
	}
	idx := columnIndex{
		adapterType: pos[ColAdapterType],
		callType:    pos[ColCallType],
		channel:     pos[ColChannel],
		channelAcc:  pos[ColChannelAcc],
		isReal:      pos[ColIsReal],
		isHit:       pos[ColIsHit],
		callAcc:     pos[ColCallAccuracy],
	}
	for _, col := range RequiredColumns {
		if pos[col]+1 > idx.width {
			idx.width = pos[col] + 1
		}
	}
	return idx, nil
}

// Load reads the detection CSV at path and groups its records by adapter
// type.
func Load(fsys fsutil.FileSystem, path string) (Group, LoadStats, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open detection csv: %w", err)
	}
	defer f.Close()

	g, stats, err := Parse(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return g, stats, nil
}

// Parse reads a detection table from r. Lines are split on commas with no
// quoting support. Rows whose adapter type is ambiguous are dropped and
// counted in the returned LoadStats; any parse failure aborts the load.
func Parse(r io.Reader) (Group, LoadStats, error) {
	var stats LoadStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, stats, fmt.Errorf("read header: %w", err)
		}
		return nil, stats, ErrEmptyInput
	}
	idx, err := resolveColumns(strings.Split(strings.TrimSpace(sc.Text()), ","))
	if err != nil {
		return nil, stats, err
	}

	g := make(Group)
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		stats.Rows++

		row := strings.Split(text, ",")
		if len(row) < idx.width {
			return nil, stats, &RowError{
				Line: line,
				Err:  fmt.Errorf("expected at least %d fields, got %d", idx.width, len(row)),
			}
		}

		rec, err := parseRecord(row, idx, line)
		if err != nil {
			return nil, stats, err
		}

		typ, res := ResolveType(row[idx.adapterType], row[idx.callType])
		switch res {
		case Untyped:
			stats.Untyped++
			continue
		case Conflicting:
			stats.Conflicting++
			continue
		}
		g[typ] = append(g[typ], rec)
		stats.Kept++
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read line %d: %w", line+1, err)
	}
	return g, stats, nil
}

func parseRecord(row []string, idx columnIndex, line int) (Record, error) {
	channel, err := ParseChannelID(row[idx.channel])
	if err != nil {
		return Record{}, &RowError{Line: line, Column: ColChannel, Err: err}
	}
	chanAcc, err := parseFloat(row[idx.channelAcc])
	if err != nil {
		return Record{}, &RowError{Line: line, Column: ColChannelAcc, Err: err}
	}
	callAcc, err := parseFloat(row[idx.callAcc])
	if err != nil {
		return Record{}, &RowError{Line: line, Column: ColCallAccuracy, Err: err}
	}
	return Record{
		ChannelID:       channel,
		ChannelAccuracy: chanAcc,
		CallAccuracy:    callAcc,
		IsReal:          ParseFlag(row[idx.isReal]),
		IsHit:           ParseFlag(row[idx.isHit]),
	}, nil
}

// ParseChannelID extracts the channel number from a compound identifier
// such as "movie1/12345". The whole field is used when it has no slash.
func ParseChannelID(zmw string) (int, error) {
	tok := zmw
	if i := strings.LastIndexByte(zmw, '/'); i >= 0 {
		tok = zmw[i+1:]
	}
	v, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return 0, fmt.Errorf("invalid channel id %q: %w", zmw, err)
	}
	return v, nil
}

// ParseFlag reports whether s is the single-letter true marker "t" in
// either case. Any other value, including "true", is false.
func ParseFlag(s string) bool {
	return strings.EqualFold(s, "t")
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}
