package ad

import (
	"context"
	"time"
)

// PPSSource supplies the 1-pulse-per-second edge the engine synchronizes
// scan timing against (spec §4.1 "start" transition: the engine does not
// leave the configured→running transition until a PPS edge is observed).
type PPSSource interface {
	// WaitEdge blocks until the next PPS edge or ctx cancellation.
	WaitEdge(ctx context.Context) error
	Close() error
}

// irigPPS is the default PPSSource: the card's own IRIG daughtercard
// latches the system control register's inverted-PPS bit, and this
// source polls it through the same PortIO the engine otherwise drives.
// It is the non-ARM, non-GPIO fallback (spec §6).
type irigPPS struct {
	io       PortIO
	pollRate time.Duration
}

func newIRIGPPS(io PortIO) *irigPPS {
	return &irigPPS{io: io, pollRate: time.Millisecond}
}

func (p *irigPPS) WaitEdge(ctx context.Context) error {
	ticker := time.NewTicker(p.pollRate)
	defer ticker.Stop()

	if err := p.io.WriteByte(cmdRegOffset, byte(ioSysCtl+ioReadOffset)); err != nil {
		return err
	}

	seenLow := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		b, err := p.io.ReadByte(ioSysCtl + ioReadOffset)
		if err != nil {
			return err
		}
		high := b&invertedPPS != 0
		// Inverted PPS: the falling edge of the hardware signal reads as
		// a 0->1 transition of this bit.
		if high && seenLow {
			return nil
		}
		if !high {
			seenLow = true
		}
	}
}

func (p *irigPPS) Close() error { return nil }
