// Package wind implements the sonic anemometer wind-processing pipeline
// (spec §4.4): parsing a raw sonic record from either a binary CSAT3
// frame or a character-framed ASCII scan, then running it through the
// fixed eight-step correction pipeline into geographic coordinates.
package wind

import "math"

// Record is one sonic sample, as a Parser fills it from a raw frame and
// as Pipeline.Process returns it corrected: the three wind components,
// sonic temperature, and a diagnostic word (for CSAT3 frames, the
// error-state nibble in bits 0-3, with bit 4 set on a frame-counter gap).
type Record struct {
	U, V, W float64
	Tc      float64
	Diag    uint16

	// Spd, Dir are populated by Pipeline.Process after the full
	// correction sequence runs (spec §4.4 step 8); zero on a freshly
	// parsed Record.
	Spd, Dir float64

	// Timestamp is microseconds since epoch, matching the A/D engine's
	// timestamp convention.
	Timestamp int64

	// CounterOK is false when Parser detected a gap in the frame's
	// mod-64 counter since the previous record; CSAT3Parser also folds
	// this into bit 4 of Diag (spec §4.4's "bad counter sets bit 4 in
	// the output diag but does not invalidate u,v,w,Tc").
	CounterOK bool
}

// Parser turns a raw framed record into a Record.
type Parser interface {
	Parse(raw []byte) (Record, error)
	// FrameLength is the expected (for ASCII, the maximum) raw record
	// length.
	FrameLength() int
}

// nan is shorthand for the sentinel invalid value the pipeline
// propagates through arithmetic per spec §4.4's failure semantics.
func nan() float64 { return math.NaN() }

// isInvalid reports whether v is NaN.
func isInvalid(v float64) bool { return math.IsNaN(v) }
