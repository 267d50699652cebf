// Package filter implements the per-output-stream decimating filters that
// turn raw A/D scans into output samples (spec §4.2).
//
// A Filter is a pure data transform: it is built once when a sample stream
// is configured and never blocks. A push that completes an output
// allocates that Output's Values slice; a push that does not complete one
// allocates nothing.
package filter

import "fmt"

// Kind selects the filter variant for a sample stream.
type Kind int

const (
	// Pickoff emits every D-th scan unchanged.
	Pickoff Kind = iota
	// Boxcar emits the arithmetic mean of every D consecutive scans.
	Boxcar
)

func (k Kind) String() string {
	switch k {
	case Pickoff:
		return "pickoff"
	case Boxcar:
		return "boxcar"
	default:
		return fmt.Sprintf("filter.Kind(%d)", int(k))
	}
}

// Output is one emitted output sample: a timestamp (microseconds since
// epoch, matching the IRIG-derived timestamps used throughout the
// acquisition engine) and one value per configured channel.
type Output struct {
	Timestamp int64
	Values    []int16
}

// Filter maps a stream of per-scan channel vectors into zero or one output
// sample per scan pushed.
type Filter interface {
	// Push feeds one full scan (one set of simultaneous per-channel
	// counts, indexed by the board's absolute channel numbers) at
	// timestamp t. The filter picks out its own configured channels.
	// It returns an output sample when the decimation window completes,
	// or ok=false otherwise.
	Push(t int64, scan []int16) (out Output, ok bool)

	// Reset clears all accumulator state. Decimation counters restart.
	Reset()

	// Decimation returns the configured decimation factor D.
	Decimation() int
}

// New builds a Filter of the given kind. channels lists the input channel
// indices this filter reads from each scan, in output order. decimation
// must be >= 1; a blob may carry filter-kind-specific configuration data
// (unused by Pickoff/Boxcar, reserved for future filter kinds per the
// factory contract in spec §4.2).
func New(kind Kind, streamID uint16, decimation int, channels []int, _ []byte) (Filter, error) {
	if decimation < 1 {
		return nil, fmt.Errorf("filter: decimation must be >= 1, got %d", decimation)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("filter: at least one channel required")
	}
	chans := append([]int(nil), channels...)

	switch kind {
	case Pickoff:
		return &pickoff{streamID: streamID, decimation: decimation, channels: chans}, nil
	case Boxcar:
		return &boxcar{
			streamID:   streamID,
			decimation: decimation,
			channels:   chans,
			sums:       make([]int32, len(chans)),
		}, nil
	default:
		return nil, fmt.Errorf("filter: unknown filter kind %v", kind)
	}
}
