package ad

import "errors"

// Sentinel errors surfaced to callers (spec §7's error-kind table).
var (
	// ErrConfiguration is returned synchronously from a configure-time
	// operation: unknown filter kind, a rate that does not divide the
	// scan rate, a channel out of range, or a coefficient block of the
	// wrong length.
	ErrConfiguration = errors.New("ad: configuration error")

	// ErrPollErr is returned from Read while the engine is in the
	// resetting state, mirroring POLLERR.
	ErrPollErr = errors.New("ad: engine resetting (POLLERR)")

	// ErrEIO is the latched failure after 5 consecutive reset failures;
	// the engine has stopped and will not resume on its own.
	ErrEIO = errors.New("ad: latched I/O error, engine stopped")

	// ErrInvalid is the error for a caller buffer that cannot hold even
	// one complete output sample. Engine.Read hands out whole
	// filter.Output values and does not return it.
	ErrInvalid = errors.New("ad: buffer too small for one output sample")

	// ErrInterrupted is the error for a blocking wait cut short by
	// cancellation. Engine.Read takes no context and does not return it.
	ErrInterrupted = errors.New("ad: interrupted")

	// ErrAgain is returned from a non-blocking Read on an empty ring.
	ErrAgain = errors.New("ad: no data available")

	// ErrHup is returned from an in-flight Read that observed Stop.
	ErrHup = errors.New("ad: engine stopped (POLLHUP)")

	// errNoPPS is the internal startup failure for a PPS wait that ended
	// without an edge. The wait is bounded only by the context passed to
	// Start; there is no platform-specific deadline of its own.
	errNoPPS = errors.New("ad: no PPS edge observed within startup deadline")

	// errChipProtocol is the internal failure for an AD7725 instruction
	// whose echoed status never matched after the chip-specific retry
	// bound.
	errChipProtocol = errors.New("ad: AD7725 instruction echo mismatch after retry budget exhausted")

	// errConfigHandshake is the internal failure for a coefficient
	// handshake whose final status was not CFGEND=1,CRCERR=0,IDERR=0.
	errConfigHandshake = errors.New("ad: AD7725 coefficient handshake failed final status check")
)
