package ad

import (
	"context"
	"testing"
	"time"

	"github.com/ncar-nidas/daq-core/internal/ad/filter"
)

// fakePPS delivers a PPS edge whenever the test pushes one onto ch.
type fakePPS struct {
	ch chan struct{}
}

func newFakePPS() *fakePPS {
	return &fakePPS{ch: make(chan struct{}, 1)}
}

func (f *fakePPS) WaitEdge(ctx context.Context) error {
	select {
	case <-f.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakePPS) Close() error { return nil }

func (f *fakePPS) fire() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

func coefficientBlock() []uint16 {
	block := make([]uint16, NumCoefficients)
	for i := range block {
		block[i] = uint16(i)
	}
	return block
}

func TestEngineRejectsOperationsOutOfOrder(t *testing.T) {
	e := NewEngine(newSimPortIO(), newFakePPS(), 1001)

	if err := e.AddSampleStream(1, filter.Pickoff, 100, []int{0}); err == nil {
		t.Fatal("expected AddSampleStream to fail before SetGlobalConfig")
	}
	if err := e.SetCoefficientBlock(0, coefficientBlock()); err == nil {
		t.Fatal("expected SetCoefficientBlock to fail before SetGlobalConfig")
	}
	if err := e.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail before SetGlobalConfig")
	}

	if err := e.SetGlobalConfig(GlobalConfig{ScanRateHz: 2560, NumChannels: 1}); err != nil {
		t.Fatalf("SetGlobalConfig: %v", err)
	}
	if err := e.SetGlobalConfig(GlobalConfig{ScanRateHz: 2560, NumChannels: 1}); err == nil {
		t.Fatal("expected second SetGlobalConfig to fail once configured")
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop from configured: %v", err)
	}
}

func TestEngineStopFromNewIsAnError(t *testing.T) {
	e := NewEngine(newSimPortIO(), newFakePPS(), 1001)
	if err := e.Stop(); err == nil {
		t.Fatal("expected Stop to fail from new state")
	}
}

func setUpRunningEngine(t *testing.T) (*Engine, *simPortIO, *fakePPS, uint16) {
	t.Helper()
	pio := newSimPortIO()
	pps := newFakePPS()
	e := NewEngine(pio, pps, 2002)

	if err := e.SetGlobalConfig(GlobalConfig{ScanRateHz: 2560, NumChannels: 1}); err != nil {
		t.Fatalf("SetGlobalConfig: %v", err)
	}
	const streamID = uint16(7)
	if err := e.AddSampleStream(streamID, filter.Pickoff, 2560, []int{0}); err != nil {
		t.Fatalf("AddSampleStream: %v", err)
	}
	if err := e.SetCoefficientBlock(0, coefficientBlock()); err != nil {
		t.Fatalf("SetCoefficientBlock: %v", err)
	}

	pps.fire()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := e.State(); got != "running" {
		t.Fatalf("state after Start = %q, want running", got)
	}
	return e, pio, pps, streamID
}

func TestEngineProducesOutputAfterStart(t *testing.T) {
	e, pio, _, streamID := setUpRunningEngine(t)
	defer e.Stop()

	pio.setFIFOLevel(2)
	pio.pushFIFOWords(make([]uint16, 256))

	deadline := time.Now().Add(2 * time.Second)
	out, err := e.Read(streamID, deadline)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out.Values) != 1 {
		t.Fatalf("output values = %v, want length 1", out.Values)
	}
}

func TestEngineFIFOOverrunResetsAndResumes(t *testing.T) {
	e, pio, _, streamID := setUpRunningEngine(t)
	defer e.Stop()

	before := e.GetStatus().FIFOResets

	pio.setFIFOLevel(4)
	time.Sleep(250 * time.Millisecond)

	pio.setFIFOLevel(2)
	pio.pushFIFOWords(make([]uint16, 512))

	deadline := time.Now().Add(2 * time.Second)
	first, err := e.Read(streamID, deadline)
	if err != nil {
		t.Fatalf("Read after reset: %v", err)
	}

	pio.pushFIFOWords(make([]uint16, 512))
	second, err := e.Read(streamID, deadline)
	if err != nil {
		t.Fatalf("second Read after reset: %v", err)
	}

	if second.Timestamp <= first.Timestamp {
		t.Fatalf("timestamps not strictly increasing after reset: %d then %d", first.Timestamp, second.Timestamp)
	}

	after := e.GetStatus().FIFOResets
	if after <= before {
		t.Fatalf("FIFOResets did not increase: before=%d after=%d", before, after)
	}
}

// TestEngineEmptyFIFOAlsoTriggersReset covers the tolerant-band lower
// edge: an empty FIFO at poll time is just as much a fault as an
// almost-full one (spec §4.1's acceptable band excludes both empty and
// full), so it must also drive a reset rather than being read as "no
// data yet."
func TestEngineEmptyFIFOAlsoTriggersReset(t *testing.T) {
	e, pio, _, _ := setUpRunningEngine(t)
	defer e.Stop()

	before := e.GetStatus().FIFOResets

	pio.setFIFOLevel(0)
	time.Sleep(250 * time.Millisecond)

	after := e.GetStatus().FIFOResets
	if after <= before {
		t.Fatalf("FIFOResets did not increase on empty FIFO: before=%d after=%d", before, after)
	}
	if got := e.State(); got != "running" {
		t.Fatalf("state after reset recovery = %q, want running", got)
	}
}

func TestEngineReadUnknownStreamIsConfigurationError(t *testing.T) {
	e, _, _, _ := setUpRunningEngine(t)
	defer e.Stop()

	if _, err := e.Read(99, time.Now()); err == nil {
		t.Fatal("expected error reading an unknown stream id")
	}
}

func TestEngineReadNonBlockingOnEmptyRingReturnsAgain(t *testing.T) {
	e, _, _, streamID := setUpRunningEngine(t)
	defer e.Stop()

	_, err := e.Read(streamID, time.Now())
	if err != ErrAgain {
		t.Fatalf("Read with past deadline on empty ring = %v, want ErrAgain", err)
	}
}
