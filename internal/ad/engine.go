package ad

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ncar-nidas/daq-core/internal/ad/filter"
	"github.com/ncar-nidas/daq-core/internal/ring"
)

// engineState is the engine's control-plane state machine (spec §4.1):
//
//	new -> configured -> running <-> resetting -> stopped
//
// with a latched eio state reached from resetting after five
// consecutive FIFO-reset failures, from which only Stop recovers.
type engineState int

const (
	stateNew engineState = iota
	stateConfigured
	stateRunning
	stateResetting
	stateStopped
	stateEIO
)

func (s engineState) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateConfigured:
		return "configured"
	case stateRunning:
		return "running"
	case stateResetting:
		return "resetting"
	case stateStopped:
		return "stopped"
	case stateEIO:
		return "eio"
	default:
		return "unknown"
	}
}

// maxConsecutiveResetFailures is the number of back-to-back FIFO
// overrun resets the engine tolerates before latching ErrEIO (spec
// §4.1, §7).
const maxConsecutiveResetFailures = 5

// GlobalConfig is the payload of the "set global config" operation
// (spec §4.1): the scan rate and the active channel count. The poll
// rate is derived, not supplied, by choosePollRate.
type GlobalConfig struct {
	ScanRateHz  int
	NumChannels int
}

// sampleStream pairs a configured filter with the output ring readers
// drain (spec §4.1 "add sample stream").
type sampleStream struct {
	streamID uint16
	filt     filter.Filter
	channels []int
	out      *ring.Ring[filter.Output]
}

// fifoSample is one poll tick's worth of raw FIFO words: K scans of
// NumChannels int16 values each, timetagged at the first scan.
type fifoSample struct {
	timestamp int64 // microseconds, IRIG-epoch
	scanCount int
	values    []int16 // scanCount*numChannels, scan-major
}

// Engine is one A/D card: it owns the card's PortIO window and PPS
// source, runs the poll and bottom-half goroutines once started, and
// answers the control operations from spec §4.1's operations table.
type Engine struct {
	mu    sync.Mutex
	state engineState

	io  PortIO
	pps PPSSource
	now func() time.Time

	cfg         GlobalConfig
	pollRateHz  int
	chips       []chip
	streams     map[uint16]*sampleStream
	coeffByChan map[int][]uint16

	counters statusCounters

	fifoRing *ring.Ring[fifoSample]

	cancel context.CancelFunc
	wg     sync.WaitGroup

	consecutiveResetFailures int

	log *log.Logger
}

// NewEngine constructs an unconfigured engine bound to io and pps. The
// caller owns io/pps lifetime up to Engine.Stop/Close.
func NewEngine(io PortIO, pps PPSSource, serialNumber int) *Engine {
	e := &Engine{
		io:          io,
		pps:         pps,
		now:         time.Now,
		state:       stateNew,
		streams:     make(map[uint16]*sampleStream),
		coeffByChan: make(map[int][]uint16),
		fifoRing:    ring.New[fifoSample](FIFOSampleRingSize),
		log:         log.NewWithOptions(os.Stderr, log.Options{Prefix: "ad"}),
	}
	e.counters.SerialNumber = serialNumber
	return e
}

// SetGlobalConfig is the "set global config" operation: legal only from
// the new state (spec §4.1).
func (e *Engine) SetGlobalConfig(cfg GlobalConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateNew {
		return fmt.Errorf("ad: set global config: %w: engine is %s, want new", ErrConfiguration, e.state)
	}
	if cfg.NumChannels <= 0 || cfg.NumChannels > NumChips {
		return fmt.Errorf("ad: set global config: %w: channel count %d out of range [1,%d]", ErrConfiguration, cfg.NumChannels, NumChips)
	}
	pollRateHz, err := choosePollRate(cfg.ScanRateHz, cfg.NumChannels)
	if err != nil {
		return fmt.Errorf("ad: set global config: %w: %v", ErrConfiguration, err)
	}

	chips := make([]chip, cfg.NumChannels)
	for i := range chips {
		chips[i] = chip{io: e.io, channel: i}
	}

	e.cfg = cfg
	e.pollRateHz = pollRateHz
	e.chips = chips
	e.state = stateConfigured
	return nil
}

// AddSampleStream is the "add sample stream" operation (spec §4.1):
// legal only before Start.
func (e *Engine) AddSampleStream(streamID uint16, kind filter.Kind, outputRateHz int, channels []int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateConfigured {
		return fmt.Errorf("ad: add sample stream: %w: engine is %s, want configured", ErrConfiguration, e.state)
	}
	if _, exists := e.streams[streamID]; exists {
		return fmt.Errorf("ad: add sample stream: %w: stream %d already exists", ErrConfiguration, streamID)
	}
	for _, ch := range channels {
		if ch < 0 || ch >= e.cfg.NumChannels {
			return fmt.Errorf("ad: add sample stream: %w: channel %d out of range [0,%d)", ErrConfiguration, ch, e.cfg.NumChannels)
		}
	}
	decimation, err := decimationFor(e.cfg.ScanRateHz, outputRateHz)
	if err != nil {
		return fmt.Errorf("ad: add sample stream: %w: %v", ErrConfiguration, err)
	}
	filt, err := filter.New(kind, streamID, decimation, channels, nil)
	if err != nil {
		return fmt.Errorf("ad: add sample stream: %w: %v", ErrConfiguration, err)
	}

	e.streams[streamID] = &sampleStream{
		streamID: streamID,
		filt:     filt,
		channels: channels,
		out:      ring.New[filter.Output](SampleRingSize),
	}
	return nil
}

// SetCoefficientBlock is the "set coefficient block" operation (spec
// §4.1): stages the coefficients for one channel's AD7725 handshake,
// run lazily at Start.
func (e *Engine) SetCoefficientBlock(channel int, block []uint16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateConfigured {
		return fmt.Errorf("ad: set coefficient block: %w: engine is %s, want configured", ErrConfiguration, e.state)
	}
	if channel < 0 || channel >= e.cfg.NumChannels {
		return fmt.Errorf("ad: set coefficient block: %w: channel %d out of range [0,%d)", ErrConfiguration, channel, e.cfg.NumChannels)
	}
	if len(block) < NumCoefficients {
		return fmt.Errorf("ad: set coefficient block: %w: need at least %d words, got %d", ErrConfiguration, NumCoefficients, len(block))
	}
	cp := make([]uint16, len(block))
	copy(cp, block)
	e.coeffByChan[channel] = cp
	return nil
}

// Start is the "start" operation (spec §4.1): aborts then configures
// every chip with its staged coefficients, starts free-running
// conversion, waits for a PPS edge, then launches the poll and
// bottom-half goroutines.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != stateConfigured {
		e.mu.Unlock()
		return fmt.Errorf("ad: start: %w: engine is %s, want configured", ErrConfiguration, e.state)
	}
	chips := e.chips
	coeffs := e.coeffByChan
	e.mu.Unlock()

	for i := range chips {
		if err := chips[i].abort(); err != nil {
			return err
		}
		block, ok := coeffs[i]
		if !ok {
			return fmt.Errorf("ad: start: %w: channel %d has no staged coefficients", ErrConfiguration, i)
		}
		if err := chips[i].configure(block); err != nil {
			return err
		}
	}
	for i := range chips {
		if err := chips[i].start(); err != nil {
			return err
		}
	}

	if err := e.pps.WaitEdge(ctx); err != nil {
		return fmt.Errorf("ad: start: %w: %v", errNoPPS, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.cancel = cancel
	e.state = stateRunning
	e.consecutiveResetFailures = 0
	e.mu.Unlock()

	e.wg.Add(2)
	go e.pollLoop(runCtx)
	go e.bottomHalf(runCtx)

	return nil
}

// Stop is the "stop" operation (spec §4.1): legal from any state
// except new, and always succeeds, cancelling the poll/bottom-half
// goroutines and aborting every chip.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state == stateNew {
		e.mu.Unlock()
		return fmt.Errorf("ad: stop: %w: engine was never configured", ErrConfiguration)
	}
	cancel := e.cancel
	chips := e.chips
	e.cancel = nil
	e.state = stateStopped
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		e.wg.Wait()
	}
	for i := range chips {
		_ = chips[i].abort()
	}
	return nil
}

// GetStatus is the "get status" operation (spec §4.1).
func (e *Engine) GetStatus() Status {
	return e.counters.snapshot(e.now())
}

// State reports the current control-plane state, for tests and
// cmd/nidas-a2d-statusctl.
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.String()
}

// temperatureSource is implemented by PortIO backends that can report a
// board temperature reading (spec §6's GET_TEMP ioctl); simPortIO is the
// only one today since the real hardware path has no driver for it.
type temperatureSource interface {
	Temperature() (int16, error)
}

// GetTemperature is the "get temperature" operation (spec §6). It
// returns ErrConfiguration when the underlying PortIO has no
// temperature sensor wired up.
func (e *Engine) GetTemperature() (int16, error) {
	ts, ok := e.io.(temperatureSource)
	if !ok {
		return 0, fmt.Errorf("ad: get temperature: %w: not supported by this port", ErrConfiguration)
	}
	return ts.Temperature()
}

// readPollInterval bounds how long an indefinite Read blocks on an empty
// ring before re-checking whether the engine has since moved to
// resetting/eio/stopped, so Stop is never left unobserved forever (spec
// §7: "an in-flight Read that observed Stop" gets EHUP).
const readPollInterval = 200 * time.Millisecond

// Read drains one filtered output sample from streamID's ring,
// matching spec §7's non-blocking/blocking/deadline Read semantics.
// A zero deadline blocks indefinitely; deadline in the past is
// non-blocking.
func (e *Engine) Read(streamID uint16, deadline time.Time) (filter.Output, error) {
	e.mu.Lock()
	st, ok := e.streams[streamID]
	e.mu.Unlock()
	if !ok {
		return filter.Output{}, fmt.Errorf("ad: read: %w: unknown stream %d", ErrConfiguration, streamID)
	}

	if deadline.IsZero() {
		for {
			if err := e.blockingReadError(); err != nil {
				return filter.Output{}, err
			}
			if out, ok := st.out.PopWait(e.now().Add(readPollInterval)); ok {
				return out, nil
			}
		}
	}

	if err := e.blockingReadError(); err != nil {
		return filter.Output{}, err
	}
	if !deadline.After(e.now()) {
		out, ok := st.out.Pop()
		if !ok {
			return filter.Output{}, ErrAgain
		}
		return out, nil
	}
	out, ok := st.out.PopWait(deadline)
	if !ok {
		return filter.Output{}, ErrAgain
	}
	return out, nil
}

// blockingReadError reports the error a Read in progress should
// surface given the engine's current control-plane state, or nil if
// the caller should keep waiting/proceed.
func (e *Engine) blockingReadError() error {
	e.mu.Lock()
	state := e.state
	e.mu.Unlock()
	switch state {
	case stateResetting:
		return ErrPollErr
	case stateEIO:
		return ErrEIO
	case stateStopped:
		return ErrHup
	default:
		return nil
	}
}

func (e *Engine) transitionResetting() {
	e.mu.Lock()
	if e.state == stateRunning {
		e.state = stateResetting
	}
	e.mu.Unlock()
}

func (e *Engine) transitionRunningAfterReset() {
	e.mu.Lock()
	if e.state == stateResetting {
		e.state = stateRunning
	}
	e.consecutiveResetFailures = 0
	e.mu.Unlock()
}

// latchEIO transitions to the terminal error state after too many
// consecutive reset failures (spec §7 "5 consecutive reset failures").
func (e *Engine) latchEIO() {
	e.mu.Lock()
	e.state = stateEIO
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	e.counters.setErrorState(true)
	if cancel != nil {
		cancel()
	}
}
