package wind

import (
	"math"
	"sort"
)

// despikeWindow is the running-distribution sample count the adaptive
// median detector keeps per channel.
const despikeWindow = 64

// despikeGapMicros is the per-channel gap (spec §4.4 step 2: "60 s")
// after which a channel's running distribution resets rather than
// treating the jump as a spike.
const despikeGapMicros = 60_000_000

// despikeChannel keeps a small ring of recent accepted values to derive
// a running median and standard deviation.
type despikeChannel struct {
	buf  [despikeWindow]float64
	n    int
	next int
}

func (c *despikeChannel) reset() {
	c.n = 0
	c.next = 0
}

func (c *despikeChannel) push(v float64) {
	c.buf[c.next] = v
	c.next = (c.next + 1) % despikeWindow
	if c.n < despikeWindow {
		c.n++
	}
}

func (c *despikeChannel) medianSigma() (median, sigma float64) {
	if c.n == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), c.buf[:c.n]...)
	sort.Float64s(sorted)
	median = sorted[c.n/2]

	var sumSq float64
	for _, v := range sorted {
		d := v - median
		sumSq += d * d
	}
	sigma = math.Sqrt(sumSq / float64(c.n))
	return median, sigma
}

// Despiker implements the per-channel adaptive median spike detector
// (spec §4.4 step 2) over (u, v, w, Tc).
type Despiker struct {
	threshold     float64
	channels      [4]despikeChannel
	lastTimestamp int64
	hasPrev       bool
}

// NewDespiker builds a despiker with the given (x−median)/σ threshold.
func NewDespiker(threshold float64) *Despiker {
	return &Despiker{threshold: threshold}
}

// Apply runs the detector over rec's four channels in place, replacing
// any spike with the channel's running median, and resets every
// channel's distribution if the gap since the previous call exceeds
// despikeGapMicros.
func (d *Despiker) Apply(rec *Record) {
	if d.hasPrev && rec.Timestamp-d.lastTimestamp > despikeGapMicros {
		for i := range d.channels {
			d.channels[i].reset()
		}
	}
	d.lastTimestamp = rec.Timestamp
	d.hasPrev = true

	values := [4]*float64{&rec.U, &rec.V, &rec.W, &rec.Tc}
	for i, vp := range values {
		ch := &d.channels[i]
		if !math.IsNaN(*vp) {
			median, sigma := ch.medianSigma()
			if sigma > 0 && math.Abs((*vp-median)/sigma) > d.threshold {
				*vp = median
			}
		}
		ch.push(*vp)
	}
}
