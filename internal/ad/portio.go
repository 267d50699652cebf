package ad

// PortIO is the capability set the engine needs from the card's ISA I/O
// window (Design Note 1: recast inheritance as a small interface/function
// table rather than a deep class hierarchy). Offset is relative to the
// card's configured base address.
type PortIO interface {
	// ReadByte reads one byte at base+offset (used for the 8-bit command
	// register and status reads).
	ReadByte(offset int) (byte, error)
	// WriteByte writes one byte at base+offset.
	WriteByte(offset int, v byte) error
	// ReadWord reads one little-endian 16-bit word at base+offset (used
	// for AD7725 instruction/data and FIFO reads).
	ReadWord(offset int) (uint16, error)
	// WriteWord writes one little-endian 16-bit word at base+offset.
	WriteWord(offset int, v uint16) error
	// Close releases any OS resources backing the port window.
	Close() error
}

// simAD7725 models one AD7725 chip's instruction/status handshake state
// well enough to drive every engine state transition without real
// hardware.
type simAD7725 struct {
	lastInstr    uint16
	configuring  bool
	configStep   int
	irqPending   bool
	coefficients int
}

// simPortIO is an in-memory PortIO used by tests and the simulation
// backend: it models the card command register, the per-chip AD7725
// instruction/status protocol, the system control latch, the FIFO, and
// the inverted-PPS status bit.
type simPortIO struct {
	cmdTarget int // last value written to the command register

	chips [8]simAD7725

	fifo       []uint16
	fifoCtl    byte
	sysCtl     uint16
	ppsEdge    bool // set by the test harness to simulate a PPS falling edge
	fifoLevel  int  // 0..5 simulated FIFO fullness bucket, test-controlled

	temperatureTenthsC int16

	closed bool
}

// newSimPortIO returns a simulation backend with an empty FIFO.
func newSimPortIO() *simPortIO {
	return &simPortIO{temperatureTenthsC: 250}
}

// NewSimPortIO returns a PortIO backed entirely by in-process simulation,
// for callers (cmd/nidas-a2d-statusctl, integration tests) that need a
// working engine without real ISA hardware.
func NewSimPortIO() PortIO {
	return newSimPortIO()
}

// Temperature returns the board's simulated temperature reading in
// tenths of a degree C. Only simPortIO implements this; real hardware's
// PortIO does not, since this driver has no board-temperature wiring
// (spec §6's GET_TEMP; Engine.GetTemperature type-asserts for it).
func (s *simPortIO) Temperature() (int16, error) {
	return s.temperatureTenthsC, nil
}

func (s *simPortIO) Close() error {
	s.closed = true
	return nil
}

func (s *simPortIO) WriteByte(offset int, v byte) error {
	switch offset {
	case cmdRegOffset:
		s.cmdTarget = int(v)
	case ioFIFO:
		s.fifoCtl = v
		if v&fifoClr != 0 {
			s.fifo = s.fifo[:0]
		}
	}
	return nil
}

func (s *simPortIO) ReadByte(offset int) (byte, error) {
	switch s.cmdTarget {
	case ioFIFOStat + ioReadOffset, ioFIFOStat:
		return s.fifoStatusByte(), nil
	case ioSysCtl + ioReadOffset, ioSysCtl:
		b := s.irqStatus()
		if s.ppsEdge {
			b |= invertedPPS
		}
		return b, nil
	}
	return 0, nil
}

// fifoStatusByte encodes s.fifoLevel (0..5) back into the raw status bits
// classifyFIFOStatus decodes, the inverse of getA2DFIFOLevel's mapping.
func (s *simPortIO) fifoStatusByte() byte {
	switch s.fifoLevel {
	case 0:
		return fifoNotFull
	case 1:
		return fifoNotFull | fifoNotEmpty | fifoAlmostFullEmpty
	case 2:
		return fifoNotFull | fifoNotEmpty
	case 3:
		return fifoNotFull | fifoNotEmpty | fifoHalfFull
	case 4:
		return fifoNotFull | fifoNotEmpty | fifoHalfFull | fifoAlmostFullEmpty
	default:
		return fifoNotEmpty | fifoHalfFull
	}
}

func (s *simPortIO) WriteWord(offset int, v uint16) error {
	channel := offset
	if channel < 0 || channel >= len(s.chips) {
		return nil
	}
	chip := &s.chips[channel]

	switch s.cmdTarget {
	case ioA2DStat:
		chip.lastInstr = v
		switch v {
		case instrAbort:
			chip.configuring = false
			chip.configStep = 0
		case instrWrConfig:
			chip.configuring = true
			chip.configStep = 0
			chip.coefficients = 0
		}
	case ioA2DData:
		if chip.configuring {
			chip.coefficients++
			chip.configStep++
			chip.irqPending = true
		}
	}
	return nil
}

// ReadWord dispatches on the command register target, not on offset: the
// FIFO data port is a single shared register (no per-channel address),
// while the AD7725 status/data ports are per-channel. Keeping the
// dispatch on cmdTarget first avoids offset 0 (ioFIFO) colliding with
// channel 0's per-chip address.
func (s *simPortIO) ReadWord(offset int) (uint16, error) {
	switch s.cmdTarget {
	case ioFIFO:
		if len(s.fifo) == 0 {
			return 0, nil
		}
		v := s.fifo[0]
		s.fifo = s.fifo[1:]
		return v, nil
	case ioA2DStat + ioReadOffset:
		if offset < 0 || offset >= len(s.chips) {
			return 0, nil
		}
		return s.chipStatus(&s.chips[offset]), nil
	}
	return 0, nil
}

func (s *simPortIO) chipStatus(chip *simAD7725) uint16 {
	status := chip.lastInstr & statInstrMask

	if chip.configuring {
		if chip.coefficients >= NumCoefficients {
			status |= statCfgEnd
		}
	} else if chip.coefficients >= NumCoefficients {
		// Soft-reset after a completed configuration retains CFGEND.
		status |= statCfgEnd
	}
	return status
}

// irqStatus returns the per-channel coefficient-interrupt bitmask polled
// by the configuration handshake's busy-wait loop.
func (s *simPortIO) irqStatus() byte {
	var b byte
	for i := range s.chips {
		if s.chips[i].irqPending {
			b |= 1 << uint(i)
			s.chips[i].irqPending = false
		}
	}
	return b
}

// Test-harness controls: a real card has no equivalent of these, they
// exist only so internal/ad's tests can drive the simulation without a
// card attached.

func (s *simPortIO) pushFIFOWords(words []uint16) {
	s.fifo = append(s.fifo, words...)
}

func (s *simPortIO) setFIFOLevel(level int) {
	s.fifoLevel = level
}

func (s *simPortIO) setPPSEdge(high bool) {
	s.ppsEdge = high
}

func (s *simPortIO) pendingFIFOWords() int {
	return len(s.fifo)
}
