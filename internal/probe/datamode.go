package probe

import (
	"fmt"
)

// enterDataMode sends "D" and confirms at least one frame of the
// configured length arrives within dataModeConfirmBudget.
func (s *Session) enterDataMode() error {
	if _, err := s.port.Write([]byte("D")); err != nil {
		return fmt.Errorf("probe: write D: %w", err)
	}

	deadline := s.now().Add(dataModeConfirmBudget)
	acc, err := s.readUntil(deadline, func(buf []byte) bool {
		return len(buf) >= s.frameLength
	})
	if err != nil {
		return fmt.Errorf("probe: data mode: %w", err)
	}
	if len(acc) < s.frameLength {
		return fmt.Errorf("probe: data mode: frame too short: got %d bytes, want %d", len(acc), s.frameLength)
	}
	return nil
}
