package wind

import (
	"encoding/binary"
	"errors"
	"math"
)

// csat3Gamma is the speed-of-sound divisor in the CSAT3 temperature
// formula. It deviates from the textbook constant 401.856; preserve the
// manufacturer's 402.684 rather than "correcting" it (spec §9 open
// question — this discrepancy is intentional and documented, not a bug).
const csat3Gamma = 402.684

// csat3FrameLength is the fixed CSAT3 binary frame length: five
// little-endian 16-bit words (u, v, w, Tc, diag) followed by the two
// sentinel bytes 0x55 0xAA.
const csat3FrameLength = 12

var errCSAT3NoSentinel = errors.New("wind: csat3 frame missing 0x55 0xAA terminator")

// csat3InvalidDiag lists the diag words that mark every axis invalid
// regardless of the per-axis range codes (spec §4.4).
var csat3InvalidDiag = map[uint16]bool{
	0xF03F: true,
	0xF000: true,
}

// csat3CounterGapBit is the bit the output diag sets when a frame's
// mod-64 counter skipped a value relative to the previous frame (spec
// §4.4 "Failure semantics": "a frame with bad counter sets bit 4 in the
// output diag but does not invalidate u,v,w,Tc"), matching the original
// driver's `diag += 16` counter-gap bump.
const csat3CounterGapBit = 0x10

// CSAT3Parser decodes the binary CSAT3 frame (spec §4.4) and tracks the
// frame's mod-64 counter across calls to detect dropped frames.
type CSAT3Parser struct {
	hasPrev   bool
	prevCount uint16

	// nanIfDiag, when true, NaNs u,v,w,Tc whenever the diag error-state
	// nibble (bits 12-15) is nonzero, not just on the two special
	// all-invalid encodings (spec §4.4: "sets u,v,w,Tc to NaN when the
	// configuration requests it").
	nanIfDiag bool
}

// NewCSAT3Parser returns a parser with no prior frame counter state and
// nanIfDiag enabled, the original driver's default.
func NewCSAT3Parser() *CSAT3Parser {
	return &CSAT3Parser{nanIfDiag: true}
}

// NewCSAT3ParserConfig returns a parser with nanIfDiag explicitly set.
func NewCSAT3ParserConfig(nanIfDiag bool) *CSAT3Parser {
	return &CSAT3Parser{nanIfDiag: nanIfDiag}
}

func (p *CSAT3Parser) FrameLength() int { return csat3FrameLength }

// Parse decodes one CSAT3 frame. A missing sentinel is a drop (an
// error, per spec §4.4 step 1) rather than a NaN record.
func (p *CSAT3Parser) Parse(raw []byte) (Record, error) {
	if len(raw) != csat3FrameLength {
		return Record{}, errCSAT3NoSentinel
	}
	if raw[10] != 0x55 || raw[11] != 0xAA {
		return Record{}, errCSAT3NoSentinel
	}

	uRaw := int16(binary.LittleEndian.Uint16(raw[0:2]))
	vRaw := int16(binary.LittleEndian.Uint16(raw[2:4]))
	wRaw := int16(binary.LittleEndian.Uint16(raw[4:6]))
	tcRaw := int16(binary.LittleEndian.Uint16(raw[6:8]))
	diag := binary.LittleEndian.Uint16(raw[8:10])

	var rec Record

	counter := diag & 0x3F
	rec.CounterOK = !p.hasPrev || counter == (p.prevCount+1)&0x3F
	p.prevCount = counter
	p.hasPrev = true

	// The error-state nibble (bits 12-15) is the small diagnostic value
	// the spec's Record.Diag carries; a counter gap folds in as bit 4
	// on top of it, same as the original driver's reduced diag word.
	errState := (diag & 0xF000) >> 12
	outDiag := errState
	if !rec.CounterOK {
		outDiag |= csat3CounterGapBit
	}
	rec.Diag = outDiag

	if csat3InvalidDiag[diag] {
		rec.U, rec.V, rec.W, rec.Tc = nan(), nan(), nan(), nan()
		return rec, nil
	}

	if errState != 0 && p.nanIfDiag {
		rec.U, rec.V, rec.W, rec.Tc = nan(), nan(), nan(), nan()
		return rec, nil
	}

	uRange := (diag >> 10) & 0x3
	vRange := (diag >> 8) & 0x3
	wRange := (diag >> 6) & 0x3

	rec.U = float64(uRaw) * math.Exp2(-(9 + float64(uRange)))
	rec.V = float64(vRaw) * math.Exp2(-(9 + float64(vRange)))
	rec.W = float64(wRaw) * math.Exp2(-(9 + float64(wRange)))

	c := float64(tcRaw)*1e-3 + 340
	rec.Tc = c*c/csat3Gamma - 273.15

	return rec, nil
}
