// Package cal implements the line-oriented calibration-file reader
// (spec §4.6): a monotonically-timestamped ASCII resource with
// cached-cursor lookup, plus the two loaders built on it (offsets and
// angles, abc2uvw).
package cal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Row is one cal-file record: a timestamp and up to 9 float columns.
type Row struct {
	Time   time.Time
	Values []float64
}

// File is a parsed, time-ordered cal-file with a cached lookup cursor.
// It is single-writer: concurrent readers over the same File are not
// supported (spec §5's shared-resource note on the cal-file cache).
type File struct {
	rows   []Row
	cursor int
}

// Load reads and parses a cal-file from path. Blank lines and lines
// starting with "#" are ignored. Rows must be in non-decreasing
// timestamp order; Load returns an error otherwise.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cal: open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f, path)
}

func parse(r io.Reader, name string) (*File, error) {
	cf := &File{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("cal: %s:%d: %w", name, lineNo, err)
		}
		if len(cf.rows) > 0 && row.Time.Before(cf.rows[len(cf.rows)-1].Time) {
			return nil, fmt.Errorf("cal: %s:%d: timestamp %s is out of order", name, lineNo, row.Time)
		}
		cf.rows = append(cf.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cal: %s: %w", name, err)
	}
	return cf, nil
}

func parseRow(line string) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Row{}, fmt.Errorf("row has %d fields, want a timestamp plus at least one value", len(fields))
	}

	t, consumed, err := parseTimestamp(fields)
	if err != nil {
		return Row{}, err
	}

	valueFields := fields[consumed:]
	if len(valueFields) > 9 {
		return Row{}, fmt.Errorf("row has %d value columns, want at most 9", len(valueFields))
	}
	values := make([]float64, len(valueFields))
	for i, s := range valueFields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Row{}, fmt.Errorf("column %d: %w", i, err)
		}
		values[i] = v
	}
	return Row{Time: t, Values: values}, nil
}

// ValueAt returns the latest row whose timestamp is <= t, advancing (or
// rewinding) the cached cursor to it. Lookup is O(1) amortized for
// monotonically non-decreasing t, the streaming access pattern both the
// sonic pipeline and the A/D engine use. ok is false if t is before the
// first row.
func (f *File) ValueAt(t time.Time) (Row, bool) {
	if len(f.rows) == 0 {
		return Row{}, false
	}

	// Walk forward while the next row is still <= t.
	for f.cursor+1 < len(f.rows) && !f.rows[f.cursor+1].Time.After(t) {
		f.cursor++
	}
	// Walk backward if t moved before the cached row (out-of-order
	// callers, or a cursor reset); amortized O(1) assumes this doesn't
	// happen on the hot path.
	for f.cursor > 0 && f.rows[f.cursor].Time.After(t) {
		f.cursor--
	}

	if f.rows[f.cursor].Time.After(t) {
		return Row{}, false
	}
	return f.rows[f.cursor], true
}
