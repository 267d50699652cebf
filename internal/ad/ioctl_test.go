package ad

import "testing"

func TestIoctlRequestCodesAreDistinct(t *testing.T) {
	reqs := []uintptr{
		ReqSetGlobalConfig,
		ReqAddSampleStream,
		ReqSetCoefficients,
		ReqStart,
		ReqStop,
		ReqGetStatus,
		ReqGetTemperature,
	}
	seen := make(map[uintptr]bool, len(reqs))
	for _, r := range reqs {
		if seen[r] {
			t.Fatalf("duplicate ioctl request code %#x", r)
		}
		seen[r] = true
	}
}

func TestStatusToWireRoundTripsFields(t *testing.T) {
	s := Status{
		SerialNumber:   42,
		SkippedScans:   7,
		FIFOResets:     2,
		ChecksumErrors: 1,
		ErrorState:     true,
	}
	s.FIFOLevelHistogram[3] = 9

	w := statusToWire(s)
	if w.SerialNumber != 42 || w.SkippedScans != 7 || w.FIFOResets != 2 || w.ChecksumErrors != 1 {
		t.Fatalf("unexpected wire status: %+v", w)
	}
	if w.ErrorState != 1 {
		t.Fatalf("expected ErrorState=1, got %d", w.ErrorState)
	}
	if w.FIFOLevelHistogram[3] != 9 {
		t.Fatalf("histogram bucket 3 = %d, want 9", w.FIFOLevelHistogram[3])
	}
}

func TestCoefficientBlockHoldsOneChannelsHandshake(t *testing.T) {
	var block ioctlCoefficientBlock
	if len(block.Coefficients) < NumCoefficients {
		t.Fatalf("coefficient block length %d smaller than handshake length %d", len(block.Coefficients), NumCoefficients)
	}
}
