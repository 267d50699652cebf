package krypton

import (
	"time"

	"github.com/ncar-nidas/daq-core/internal/cal"
)

// CalFileConverter wraps a Converter whose coefficients are refreshed
// from a cal-file row at each lookup (spec §4.6's streaming
// cursor-cached access, applied to the krypton's four coefficients:
// Kw, V0, PathLength, Bias, in that column order).
type CalFileConverter struct {
	f   *cal.File
	cur Converter
}

// NewCalFileConverter builds a CalFileConverter falling back to fallback
// until the cal-file's first row becomes active.
func NewCalFileConverter(f *cal.File, fallback Converter) *CalFileConverter {
	return &CalFileConverter{f: f, cur: fallback}
}

// Convert refreshes coefficients from the cal-file for t, then converts
// volts the same as Converter.Convert.
func (c *CalFileConverter) Convert(t time.Time, volts float64) float64 {
	if row, ok := c.f.ValueAt(t); ok && len(row.Values) >= 2 {
		kw, v0 := row.Values[0], row.Values[1]
		pathLength := c.cur.pathLength
		bias := c.cur.bias
		if len(row.Values) > 2 {
			pathLength = row.Values[2]
		}
		if len(row.Values) > 3 {
			bias = row.Values[3]
		}
		c.cur = NewConverter(kw, v0, pathLength, bias)
	}
	return c.cur.Convert(volts)
}
