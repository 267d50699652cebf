package ad

import (
	"fmt"
	"time"
)

// DelayScans is the hardware scan-offset correction applied when
// timetagging scans embedded in a FIFO sample (spec §4.1's "per-scan
// timetag correction" and §9 open question): the card buffers scans
// internally before the FIFO, so a FIFO sample read at IRIG time T holds
// scans acquired at T-(delay+K-1)*scanPeriod .. T-delay*scanPeriod.
//
// This was derived from a single empirical PPS test against a 500 Hz
// scan rate AD7725 card and is deliberately a named constant rather than
// a computed value; do not attempt to derive it from scan rate.
const DelayScans = 3

// scanPeriod returns Δt_s = 1e6/scanRateHz microseconds per scan. scanRate
// must evenly divide 1,000,000 (spec §3).
func scanPeriod(scanRateHz int) (time.Duration, error) {
	if scanRateHz <= 0 || 1_000_000%scanRateHz != 0 {
		return 0, fmt.Errorf("ad: scan rate %d does not evenly divide 1,000,000 microseconds", scanRateHz)
	}
	return time.Duration(1_000_000/scanRateHz) * time.Microsecond, nil
}

// decimationFor returns the decimation factor D = scanRate/outputRate,
// erroring if outputRate does not evenly divide scanRate (spec §4.1 "add
// sample stream" failure: "R_s % R_o != 0").
func decimationFor(scanRateHz, outputRateHz int) (int, error) {
	if outputRateHz <= 0 || scanRateHz%outputRateHz != 0 {
		return 0, fmt.Errorf("ad: output rate %d does not evenly divide scan rate %d", outputRateHz, scanRateHz)
	}
	return scanRateHz / outputRateHz, nil
}

// pollScanCount returns K, the number of scans accumulated between two
// poll events, given the scan rate and poll rate (spec §3: K = R_s/R_p).
func pollScanCount(scanRateHz, pollRateHz int) (int, error) {
	if pollRateHz <= 0 || scanRateHz%pollRateHz != 0 {
		return 0, fmt.Errorf("ad: poll rate %d does not evenly divide scan rate %d", pollRateHz, scanRateHz)
	}
	return scanRateHz / pollRateHz, nil
}

// choosePollRate picks R_p so that ¼·H <= K·N <= ½·H where H is the
// hardware FIFO depth and N is the channel count (spec §3). It searches
// divisors of scanRateHz from fastest to slowest and returns the first
// that satisfies the band.
func choosePollRate(scanRateHz, numChannels int) (int, error) {
	low := HWFIFODepth / 4
	high := HWFIFODepth / 2
	for pollRateHz := scanRateHz; pollRateHz >= 1; pollRateHz-- {
		if scanRateHz%pollRateHz != 0 {
			continue
		}
		k := scanRateHz / pollRateHz
		span := k * numChannels
		if span >= low && span <= high {
			return pollRateHz, nil
		}
	}
	return 0, fmt.Errorf("ad: no poll rate divides scan rate %d into the required FIFO band", scanRateHz)
}
