package cal

import (
	"fmt"
	"strings"
	"time"
)

// calTimestampLayout is the cal-file's native column format: four
// whitespace-separated fields (YYYY, mm, dd, HH:MM:SS.ffffff).
const calTimestampLayout = "2006 01 02 15:04:05.999999"

// parseTimestamp consumes the leading fields of a cal-file row as a
// timestamp, trying the native 4-field form first and falling back to
// a single ISO-8601-with-offset field (spec §6's two documented
// formats). It returns the parsed time and how many fields it consumed.
func parseTimestamp(fields []string) (time.Time, int, error) {
	if len(fields) >= 4 {
		joined := strings.Join(fields[:4], " ")
		if t, err := time.Parse(calTimestampLayout, joined); err == nil {
			return t, 4, nil
		}
	}
	if len(fields) >= 1 {
		if t, err := time.Parse(time.RFC3339Nano, fields[0]); err == nil {
			return t, 1, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("timestamp %q does not match either cal-file format", strings.Join(fields[:min(4, len(fields))], " "))
}
