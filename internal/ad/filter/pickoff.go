package filter

// pickoff emits the scan unchanged every D-th scan. It holds no state
// beyond the scan counter and channel selection (spec §4.2).
type pickoff struct {
	streamID   uint16
	decimation int
	channels   []int
	count      int
}

func (p *pickoff) Decimation() int { return p.decimation }

func (p *pickoff) Reset() {
	p.count = 0
}

func (p *pickoff) Push(t int64, scan []int16) (Output, bool) {
	emit := p.count%p.decimation == 0
	p.count++

	if !emit {
		return Output{}, false
	}

	values := make([]int16, len(p.channels))
	for i, ch := range p.channels {
		values[i] = scan[ch]
	}
	return Output{Timestamp: t, Values: values}, true
}
