package ad

import (
	"context"
	"time"
)

// pollLoop is the engine's top half (spec §4.1, §4.3): on every poll
// tick it checks the hardware FIFO's fullness, reads out one poll
// window's worth of scans when the FIFO isn't in overrun, timetags the
// window against the IRIG clock corrected by DelayScans, and hands it
// to the fifo ring for the bottom half to drain.
func (e *Engine) pollLoop(ctx context.Context) {
	defer e.wg.Done()

	e.mu.Lock()
	scanRateHz := e.cfg.ScanRateHz
	pollRateHz := e.pollRateHz
	numChannels := e.cfg.NumChannels
	e.mu.Unlock()

	period, err := scanPeriod(scanRateHz)
	if err != nil {
		e.log.Error("poll: invalid scan rate", "err", err)
		return
	}
	scansPerPoll, err := pollScanCount(scanRateHz, pollRateHz)
	if err != nil {
		e.log.Error("poll: invalid poll rate", "err", err)
		return
	}
	delay := time.Duration(DelayScans) * period

	ticker := time.NewTicker(time.Second / time.Duration(pollRateHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := e.now()
		bucket, err := e.readFIFOLevel()
		if err != nil {
			e.log.Error("poll: read fifo status", "err", err)
			continue
		}
		e.counters.observeFIFOLevel(bucket, now)

		if bucket == 0 || bucket >= 4 {
			e.handleOverrun()
			continue
		}

		values, err := e.readFIFOWindow(scansPerPoll * numChannels)
		if err != nil {
			e.log.Error("poll: read fifo window", "err", err)
			continue
		}

		ts := e.now().UnixMicro() - delay.Microseconds()
		sample := fifoSample{timestamp: ts, scanCount: scansPerPoll, values: values}
		if !e.fifoRing.TryPush(sample) {
			e.counters.addSkipped(uint64(scansPerPoll))
		}
	}
}

// readFIFOLevel selects the FIFO status target and classifies its
// fullness into the six-level scheme spec §4.1/§3 uses to decide whether
// an overrun reset is needed.
func (e *Engine) readFIFOLevel() (int, error) {
	if err := e.io.WriteByte(cmdRegOffset, byte(ioFIFOStat+ioReadOffset)); err != nil {
		return 0, err
	}
	b, err := e.io.ReadByte(ioFIFOStat + ioReadOffset)
	if err != nil {
		return 0, err
	}
	return classifyFIFOStatus(b), nil
}

// classifyFIFOStatus buckets the raw FIFO status byte into getA2DFIFOLevel's
// six levels: 0 empty, 1 <=1/4 full, 2 <=1/2, 3 <=3/4, 4 almost full (at or
// above 3/4 but not totally full), 5 full. notFull==0 means full outright
// and notEmpty==0 means empty outright; otherwise the halfFull/AFAE bits
// together pick one of the four intermediate quarters (AFAE, "almost full
// almost empty", is set for both the top and bottom quarter — halfFull
// disambiguates which).
func classifyFIFOStatus(b byte) int {
	notEmpty := b&fifoNotEmpty != 0
	notFull := b&fifoNotFull != 0
	halfFull := b&fifoHalfFull != 0
	almostFullEmpty := b&fifoAlmostFullEmpty != 0

	switch {
	case !notFull:
		return 5
	case !notEmpty:
		return 0
	case halfFull && almostFullEmpty:
		return 4
	case !halfFull && almostFullEmpty:
		return 1
	case halfFull:
		return 3
	default:
		return 2
	}
}

// readFIFOWindow selects the FIFO data target and reads n words,
// decoding each from the wire's negated form.
func (e *Engine) readFIFOWindow(n int) ([]int16, error) {
	if err := e.io.WriteByte(cmdRegOffset, byte(ioFIFO)); err != nil {
		return nil, err
	}
	values := make([]int16, n)
	for i := range values {
		raw, err := e.io.ReadWord(ioFIFO)
		if err != nil {
			return nil, err
		}
		values[i] = decodeSample(raw)
	}
	return values, nil
}

// decodeSample converts one raw FIFO word into a signed 16-bit sample.
// The AD7725's bipolar output is carried negated (two's complement) on
// the wire (grounded on original_source's GET_A2D_SAMPLE macro).
func decodeSample(raw uint16) int16 {
	return -int16(raw)
}

// handleOverrun runs the FIFO-reset recovery path (spec §4.1, §7): the
// engine visits the resetting state, clears the FIFO, and either
// resumes running or, after maxConsecutiveResetFailures in a row,
// latches the terminal EIO state.
func (e *Engine) handleOverrun() {
	e.transitionResetting()
	ok := e.resetFIFO()
	e.counters.addFIFOReset()

	if ok {
		e.transitionRunningAfterReset()
		return
	}

	e.mu.Lock()
	e.consecutiveResetFailures++
	failures := e.consecutiveResetFailures
	e.mu.Unlock()

	if failures >= maxConsecutiveResetFailures {
		e.latchEIO()
	}
}

func (e *Engine) resetFIFO() bool {
	return e.io.WriteByte(ioFIFO, fifoClr) == nil
}
