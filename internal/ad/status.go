package ad

import (
	"sync"
	"time"
)

// fifoHistogramWindowSeconds is the width of the rolling FIFO-level
// histogram window (spec §4.1's "get status" operation calls for a
// "FIFO-level histogram for last 10 s", not a lifetime count).
const fifoHistogramWindowSeconds = 10

// fifoHistogramSlot holds one whole second's worth of level
// observations; second is the Unix second it was last reset for, so a
// slot reused after the window wraps starts from zero instead of
// accumulating across unrelated seconds.
type fifoHistogramSlot struct {
	second int64
	counts [6]uint64
}

// Status is a snapshot of the engine's running counters (spec §4.1 "get
// status" operation). SkippedScans, FIFOResets and ChecksumErrors are
// cumulative since the engine was last started; FIFOLevelHistogram is a
// rolling count over roughly the last 10 seconds.
type Status struct {
	SerialNumber   int
	SkippedScans   uint64
	FIFOResets     uint64
	ChecksumErrors uint64
	ErrorState     bool

	// FIFOLevelHistogram buckets poll-time FIFO fullness observed over
	// the last 10 seconds, indexed by the six-level scheme getA2DFIFOLevel
	// uses: 0 empty, 1 <=1/4, 2 <=1/2, 3 <=3/4, 4 almost full, 5 full.
	FIFOLevelHistogram [6]uint64
}

// statusCounters is the engine's live, mutex-protected counter set;
// snapshot copies it out as an immutable Status.
type statusCounters struct {
	mu sync.Mutex
	Status
	fifoWindow [fifoHistogramWindowSeconds]fifoHistogramSlot
}

// snapshot returns the counters as of now: the cumulative fields as-is,
// and the FIFO-level histogram summed over whichever window slots still
// fall within the last fifoHistogramWindowSeconds of now.
func (s *statusCounters) snapshot(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.Status
	st.FIFOLevelHistogram = [6]uint64{}
	oldest := now.Unix() - fifoHistogramWindowSeconds + 1
	for i := range s.fifoWindow {
		slot := &s.fifoWindow[i]
		if slot.second < oldest || slot.second > now.Unix() {
			continue
		}
		for level, n := range slot.counts {
			st.FIFOLevelHistogram[level] += n
		}
	}
	return st
}

func (s *statusCounters) addSkipped(n uint64) {
	s.mu.Lock()
	s.SkippedScans += n
	s.mu.Unlock()
}

func (s *statusCounters) addFIFOReset() {
	s.mu.Lock()
	s.FIFOResets++
	s.mu.Unlock()
}

func (s *statusCounters) addChecksumError() {
	s.mu.Lock()
	s.ChecksumErrors++
	s.mu.Unlock()
}

func (s *statusCounters) setErrorState(v bool) {
	s.mu.Lock()
	s.ErrorState = v
	s.mu.Unlock()
}

// observeFIFOLevel records one poll-time level observation at t into
// the rolling window, clamping an out-of-range bucket rather than
// panicking on a classifier bug.
func (s *statusCounters) observeFIFOLevel(bucket int, t time.Time) {
	if bucket < 0 {
		bucket = 0
	}
	if bucket > 5 {
		bucket = 5
	}
	sec := t.Unix()
	idx := sec % fifoHistogramWindowSeconds
	if idx < 0 {
		idx += fifoHistogramWindowSeconds
	}

	s.mu.Lock()
	slot := &s.fifoWindow[idx]
	if slot.second != sec {
		*slot = fifoHistogramSlot{second: sec}
	}
	slot.counts[bucket]++
	s.mu.Unlock()
}
