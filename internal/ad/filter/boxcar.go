package filter

// boxcar accumulates a per-channel sum over D consecutive scans and emits
// the mean, timestamped at the middle scan of the window (spec §4.2).
// Accumulators are 32-bit even though inputs/outputs are 16-bit, so a
// full window of max-magnitude 16-bit samples cannot overflow.
type boxcar struct {
	streamID   uint16
	decimation int
	channels   []int

	sums    []int32
	count   int
	midTime int64
}

func (b *boxcar) Decimation() int { return b.decimation }

func (b *boxcar) Reset() {
	for i := range b.sums {
		b.sums[i] = 0
	}
	b.count = 0
	b.midTime = 0
}

func (b *boxcar) mid() int {
	return (b.decimation - 1) / 2
}

func (b *boxcar) Push(t int64, scan []int16) (Output, bool) {
	if b.count == b.mid() {
		b.midTime = t
	}
	for i, ch := range b.channels {
		b.sums[i] += int32(scan[ch])
	}
	b.count++

	if b.count < b.decimation {
		return Output{}, false
	}

	values := make([]int16, len(b.channels))
	for i, sum := range b.sums {
		values[i] = int16(sum / int32(b.decimation))
	}
	out := Output{Timestamp: b.midTime, Values: values}
	b.Reset()
	return out, true
}
