// Package ad implements the NCAR A/D acquisition engine (spec §4.1): an
// ISA-bus 8-channel sigma-delta A/D card poller that synchronizes to a 1
// PPS edge, times every scan against an IRIG clock, programs AD7725
// sigma-delta chips through a coefficient handshake, and filters/frames
// the result for user-space reads.
package ad

// Card I/O map (spec §6, grounded on original_source ncar_a2d_priv.h).
const (
	// HWFIFODepth is the number of 16-bit words the card's hardware FIFO
	// holds.
	HWFIFODepth = 1024

	// IOWidth is the width of the card's ISA I/O window in bytes.
	IOWidth = 0x10

	// FIFOSampleRingSize is the FIFO ring's slot count (spec §4.3); must
	// be a power of two.
	FIFOSampleRingSize = 128

	// SampleRingSize is the per-sample ring's slot count (spec §4.3);
	// must be a power of two.
	SampleRingSize = 2048
)

// I/O target selector values written to base+cmdRegOffset before a base+offset
// access, selecting what the 16-bit data word addresses.
const (
	ioFIFO       = 0x0 // FIFO data (read) / FIFO control (write)
	ioA2DStat    = 0x1 // AD7725 instruction register
	ioA2DData    = 0x2 // AD7725 coefficient data
	ioDAC0       = 0x3
	ioDAC1       = 0x4
	ioDAC2       = 0x5
	ioSysCtl     = 0x6 // read A/D interrupt lines; write cal/offset latch
	ioFIFOStat   = 0x7 // read board status; set master A/D
	ioReadOffset = 0x8 // add to ioA2DStat/ioA2DData to turn a write target into a read
)

// AD7725 chip instruction words.
const (
	instrReadData = 0x8d21
	instrWrConfig = 0x1800
	instrAbort    = 0x0000
)

// AD7725 status register bits.
const (
	statInstrMask = 0x7ffe
	statCfgEnd    = 0x0001
	statCrcErr    = 0x0800
	statIDErr     = 0x1000
)

// FIFO control word bits.
const (
	fifoClr     = 0x01
	a2dAuto     = 0x02
	a2dSync     = 0x04
	a2dSyncCk   = 0x08
	a2d1PPSEbl  = 0x10
	a2dStatEbl  = 0x40
)

// FIFO status bits.
const (
	fifoHalfFull     = 0x01
	fifoAlmostFullEmpty = 0x02
	fifoNotEmpty     = 0x04
	fifoNotFull      = 0x08
	invertedPPS      = 0x10
)

// Retry bounds for the AD7725 instruction echo protocol (spec §4.1,
// grounded on original_source A2DStopRead/A2DStart/A2DConfig).
const (
	abortRetries      = 10
	readDataRetries   = 20
	wrConfigRetries   = 10
	channelIRQMaxIter = 100 // busy-poll bound while waiting for the per-channel coefficient interrupt bit
)

// NumCoefficients is the number of words written to each AD7725 chip
// during the per-channel configuration handshake (spec §4.1).
const NumCoefficients = 517

// CoefficientBlockLength is the size of the coefficient array in the "set
// coefficient block" wire payload (ioctlCoefficientBlock). The Go API,
// Engine.SetCoefficientBlock, stages one block per channel and accepts
// any block of at least NumCoefficients words; that channel's handshake
// writes the first NumCoefficients words of it.
const CoefficientBlockLength = 2048
