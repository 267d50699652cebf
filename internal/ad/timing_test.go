package ad

import "testing"

func TestScanPeriodRejectsNonDivisor(t *testing.T) {
	if _, err := scanPeriod(300); err == nil {
		t.Fatal("expected error: 300 does not evenly divide 1,000,000")
	}
	d, err := scanPeriod(500)
	if err != nil {
		t.Fatalf("scanPeriod(500): %v", err)
	}
	if d.Microseconds() != 2000 {
		t.Fatalf("scanPeriod(500) = %v, want 2ms", d)
	}
}

func TestDecimationForRejectsNonDivisor(t *testing.T) {
	if _, err := decimationFor(500, 300); err == nil {
		t.Fatal("expected error: output rate does not evenly divide scan rate")
	}
	d, err := decimationFor(500, 250)
	if err != nil {
		t.Fatalf("decimationFor(500,250): %v", err)
	}
	if d != 2 {
		t.Fatalf("decimationFor(500,250) = %d, want 2", d)
	}
}

func TestPollScanCountRejectsNonDivisor(t *testing.T) {
	if _, err := pollScanCount(500, 300); err == nil {
		t.Fatal("expected error")
	}
	k, err := pollScanCount(2560, 10)
	if err != nil {
		t.Fatalf("pollScanCount: %v", err)
	}
	if k != 256 {
		t.Fatalf("pollScanCount(2560,10) = %d, want 256", k)
	}
}

func TestChoosePollRateStaysWithinFIFOBand(t *testing.T) {
	pollRateHz, err := choosePollRate(2560, 1)
	if err != nil {
		t.Fatalf("choosePollRate: %v", err)
	}
	k, err := pollScanCount(2560, pollRateHz)
	if err != nil {
		t.Fatalf("pollScanCount: %v", err)
	}
	span := k * 1
	if span < HWFIFODepth/4 || span > HWFIFODepth/2 {
		t.Fatalf("span %d outside [%d,%d] band", span, HWFIFODepth/4, HWFIFODepth/2)
	}
}

func TestChoosePollRateErrorsWhenNoDivisorFits(t *testing.T) {
	// A small prime scan rate only allows K=1 or K=7, so K·N for 8
	// channels (8 or 56) stays below the FIFO band's lower edge.
	if _, err := choosePollRate(7, 8); err == nil {
		t.Fatal("expected error: no poll rate fits the FIFO band for this configuration")
	}
}
