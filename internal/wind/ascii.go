package wind

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AsciiSonicParser decodes a character-framed ASCII scan from a 2-D
// anemometer, whose measured pair is (spd, dir) rather than (u, v)
// (spec §4.4 step 8's explicitly acknowledged "2-D anemometer" case).
// Fields are comma- or whitespace-separated: speed (m/s), direction
// (degrees, meteorological convention), sonic temperature (°C).
type AsciiSonicParser struct {
	maxFrameLength int
}

// NewAsciiSonicParser returns a parser that rejects lines longer than
// maxFrameLength bytes; FrameLength reports that limit.
func NewAsciiSonicParser(maxFrameLength int) *AsciiSonicParser {
	return &AsciiSonicParser{maxFrameLength: maxFrameLength}
}

func (p *AsciiSonicParser) FrameLength() int { return p.maxFrameLength }

// Parse splits one ASCII scan line into (spd, dir, Tc) and converts the
// measured (spd, dir) pair to (u, v) immediately, per spec §4.4 step 8:
// the 2-D case must be in (u, v) form before orientation runs, with
// (spd, dir) re-derived after calibration.
func (p *AsciiSonicParser) Parse(raw []byte) (Record, error) {
	if len(raw) > p.maxFrameLength {
		return Record{}, fmt.Errorf("wind: ascii sonic frame is %d bytes, want at most %d", len(raw), p.maxFrameLength)
	}
	fields := strings.FieldsFunc(string(raw), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if len(fields) < 2 {
		return Record{}, fmt.Errorf("wind: ascii sonic frame has %d fields, want at least 2 (spd, dir)", len(fields))
	}

	spd, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, fmt.Errorf("wind: ascii sonic speed field: %w", err)
	}
	dir, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Record{}, fmt.Errorf("wind: ascii sonic direction field: %w", err)
	}

	rec := Record{CounterOK: true}
	rec.U, rec.V = spdDirToUV(spd, dir)
	rec.W = 0

	if len(fields) >= 3 {
		tc, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Record{}, fmt.Errorf("wind: ascii sonic temperature field: %w", err)
		}
		rec.Tc = tc
	} else {
		rec.Tc = nan()
	}

	return rec, nil
}

// spdDirToUV inverts the spec §4.4 step 8 derivation
// (spd = sqrt(u²+v²), dir = (atan2(-u,-v)·180/π + 360) mod 360).
func spdDirToUV(spd, dirDeg float64) (u, v float64) {
	dirRad := dirDeg * math.Pi / 180
	u = -spd * math.Sin(dirRad)
	v = -spd * math.Cos(dirRad)
	return u, v
}

// uvToSpdDir derives (spd, dir) from (u, v) per spec §4.4 step 8.
func uvToSpdDir(u, v float64) (spd, dirDeg float64) {
	spd = math.Hypot(u, v)
	dirDeg = math.Mod(math.Atan2(-u, -v)*180/math.Pi+360, 360)
	return spd, dirDeg
}
