package ad

import (
	"context"
	"time"
)

// bottomHalfPollInterval bounds how long bottomHalf blocks on an empty
// fifo ring before re-checking ctx, so Stop's cancellation is never
// delayed by more than this.
const bottomHalfPollInterval = 100 * time.Millisecond

// bottomHalf is the engine's second half (spec §4.1, §4.3): it drains
// one fifo sample at a time, splits it back into individual scans, and
// pushes each scan through every configured stream's filter, forwarding
// whatever the filter emits to that stream's output ring.
func (e *Engine) bottomHalf(ctx context.Context) {
	defer e.wg.Done()

	e.mu.Lock()
	scanRateHz := e.cfg.ScanRateHz
	numChannels := e.cfg.NumChannels
	e.mu.Unlock()

	period, err := scanPeriod(scanRateHz)
	if err != nil {
		e.log.Error("bottom half: invalid scan rate", "err", err)
		return
	}
	scanPeriodUs := period.Microseconds()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sample, ok := e.fifoRing.PopWait(e.now().Add(bottomHalfPollInterval))
		if !ok {
			continue
		}
		e.processFIFOSample(sample, numChannels, scanPeriodUs)
	}
}

// processFIFOSample fans one poll window's scans out to every
// configured stream's filter.
func (e *Engine) processFIFOSample(sample fifoSample, numChannels int, scanPeriodUs int64) {
	e.mu.Lock()
	streams := make([]*sampleStream, 0, len(e.streams))
	for _, st := range e.streams {
		streams = append(streams, st)
	}
	e.mu.Unlock()

	for scanIdx := 0; scanIdx < sample.scanCount; scanIdx++ {
		start := scanIdx * numChannels
		end := start + numChannels
		if end > len(sample.values) {
			break
		}
		scan := sample.values[start:end]
		scanTime := sample.timestamp + int64(scanIdx)*scanPeriodUs

		for _, st := range streams {
			out, emitted := st.filt.Push(scanTime, scan)
			if !emitted {
				continue
			}
			if !st.out.TryPush(out) {
				e.counters.addSkipped(1)
			}
		}
	}
}
