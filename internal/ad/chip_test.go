package ad

import "testing"

func TestChipAbortSucceeds(t *testing.T) {
	io := newSimPortIO()
	c := chip{io: io, channel: 0}
	if err := c.abort(); err != nil {
		t.Fatalf("abort: %v", err)
	}
}

func TestChipStartSucceeds(t *testing.T) {
	io := newSimPortIO()
	c := chip{io: io, channel: 0}
	if err := c.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestChipConfigureCompletesHandshake(t *testing.T) {
	io := newSimPortIO()
	c := chip{io: io, channel: 3}
	block := make([]uint16, NumCoefficients)
	for i := range block {
		block[i] = uint16(i * 7)
	}
	if err := c.configure(block); err != nil {
		t.Fatalf("configure: %v", err)
	}
}

func TestChipConfigureRejectsShortBlock(t *testing.T) {
	io := newSimPortIO()
	c := chip{io: io, channel: 0}
	if err := c.configure(make([]uint16, NumCoefficients-1)); err == nil {
		t.Fatal("expected error configuring with a too-short coefficient block")
	}
}

func TestChipConfigureEachChannelIndependently(t *testing.T) {
	io := newSimPortIO()
	block := make([]uint16, NumCoefficients)

	for ch := 0; ch < 4; ch++ {
		c := chip{io: io, channel: ch}
		if err := c.configure(block); err != nil {
			t.Fatalf("channel %d configure: %v", ch, err)
		}
		if err := c.start(); err != nil {
			t.Fatalf("channel %d start: %v", ch, err)
		}
	}
}
