package probe

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QueryResult is the decoded response to a "??\r" status query (spec
// §4.5): sample rate, oversample flag, RS-232 driver and record
// separator settings, serial number, and firmware revision.
type QueryResult struct {
	AcqRateHz    int
	Oversample   byte // 'g', 'h', '0', or ' ' if unreported
	RtsIndep     int  // -1 unknown, else the reported RI= value
	RecSeparator int  // -1 unknown, else the reported RS= value
	SerialNumber string
	Revision     string
}

// serialNumberPrefixes lists the field prefixes a probe may use for its
// serial number across firmware revisions.
var serialNumberPrefixes = []string{"SN", "Sn", "PR"}

const queryBudget = 5 * time.Second

// query sends "??\r" and parses the freeform status response. A failed
// or malformed response returns a zero-valued QueryResult and an error;
// the caller decides whether that is fatal (spec §4.5's "data succeeds
// / query fails" outcome tolerates a query failure).
func (s *Session) query() (QueryResult, error) {
	if _, err := s.port.Write([]byte("??\r")); err != nil {
		return QueryResult{}, fmt.Errorf("probe: write ??: %w", err)
	}

	deadline := s.now().Add(queryBudget)
	raw, err := s.readUntil(deadline, func(acc []byte) bool {
		return bytes.Contains(acc, []byte("\n>"))
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("probe: query: %w", err)
	}

	return parseQueryResponse(string(raw)), nil
}

func parseQueryResponse(result string) QueryResult {
	q := QueryResult{Oversample: ' ', RtsIndep: -1, RecSeparator: -1, Revision: "unknown"}

	if idx := strings.Index(result, "AQ="); idx >= 0 {
		q.AcqRateHz = atoiPrefix(result[idx+3:])
	}
	if idx := strings.Index(result, "os="); idx >= 0 && idx+3 < len(result) {
		q.Oversample = result[idx+3]
	}
	if idx := strings.Index(result, "rev"); idx >= 0 && idx+4 < len(result) {
		rest := result[idx+4:]
		if sp := strings.IndexAny(rest, " \t\r\n"); sp >= 0 {
			q.Revision = rest[:sp]
		} else {
			q.Revision = rest
		}
	}
	if idx := strings.Index(result, "RI="); idx >= 0 {
		q.RtsIndep = atoiPrefix(result[idx+3:])
	}
	if idx := strings.Index(result, "RS="); idx >= 0 {
		q.RecSeparator = atoiPrefix(result[idx+3:])
	}
	q.SerialNumber = findSerialNumber(result)
	return q
}

// atoiPrefix parses the leading integer of s, stopping at the first
// non-digit byte (mirrors C's atoi, which the original parser relies on).
func atoiPrefix(s string) int {
	end := 0
	for end < len(s) && (s[end] == '-' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	v, _ := strconv.Atoi(s[:end])
	return v
}

func findSerialNumber(s string) string {
	for _, prefix := range serialNumberPrefixes {
		idx := strings.Index(s, prefix)
		if idx < 0 {
			continue
		}
		rest := s[idx:]
		if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			return rest[:sp]
		}
		return rest
	}
	return ""
}
