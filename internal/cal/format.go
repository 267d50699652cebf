package cal

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

// logTimestampPattern matches the cal-file's own column format, for
// status/log output that echoes which cal-file row is currently active.
const logTimestampPattern = "%Y %m %d %H:%M:%S.%f"

// FormatLogTimestamp renders t the way the cal-file's own timestamps
// are written, so operator-facing logs can quote a cal-file cursor
// position in the same format the file itself uses.
func FormatLogTimestamp(t time.Time) string {
	s, err := strftime.Format(logTimestampPattern, t)
	if err != nil {
		return t.Format("2006 01 02 15:04:05.000000")
	}
	return s
}
