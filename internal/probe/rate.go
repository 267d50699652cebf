package probe

import (
	"fmt"
	"time"
)

// rateKey identifies one (rate, oversample) reporting configuration.
type rateKey struct {
	rateHz     int
	oversample bool
}

// rateCommands maps a desired (rate, oversample) configuration to its
// two-character acquisition-signal command.
var rateCommands = map[rateKey]string{
	{1, false}:  "A2",
	{2, false}:  "A5",
	{3, false}:  "A6",
	{5, false}:  "A7",
	{6, false}:  "A8",
	{10, false}: "A9",
	{12, false}: "Aa",
	{15, false}: "Ab",
	{20, false}: "Ac",
	{30, false}: "Ad",
	{60, false}: "Ae",
	{10, true}:  "Ag",
	{20, true}:  "Ah",
}

// rateCommandFor returns the two-character rate command for (rate,
// oversample), or ok=false if that combination isn't supported.
func rateCommandFor(rateHz int, oversample bool) (string, bool) {
	cmd, ok := rateCommands[rateKey{rateHz, oversample}]
	return cmd, ok
}

// rateIsAcceptable reports whether q already reflects the session's
// desired (rate, oversample) configuration, using the same special
// cases the probe's oversample codes encode (spec §4.5, querySonic's
// os= field: 'g' is 10 Hz 6x, 'h' is 20 Hz 3x, ' '/'0' is no
// oversampling).
func (s *Session) rateIsAcceptable(q QueryResult) bool {
	if s.desiredRate == 0 {
		return true
	}
	if !s.desiredOversample {
		return q.AcqRateHz == s.desiredRate && (q.Oversample == ' ' || q.Oversample == '0')
	}
	if q.AcqRateHz != 60 {
		return false
	}
	switch {
	case s.desiredRate == 10 && q.Oversample == 'g':
		return true
	case s.desiredRate == 20 && q.Oversample == 'h':
		return true
	}
	return false
}

// sendRateCommand writes cmd and drains the probe's echoed acknowledgment
// banner (up to 10 reads, 4s per-read deadline), discarding it.
func (s *Session) sendRateCommand(cmd string) error {
	if _, err := s.port.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("probe: write rate command %q: %w", cmd, err)
	}
	const reads = 10
	const perReadDeadline = 4 * time.Second
	for i := 0; i < reads; i++ {
		if err := s.port.SetReadDeadline(s.now().Add(perReadDeadline)); err != nil {
			return err
		}
		buf := make([]byte, 256)
		n, err := s.port.Read(buf)
		if err != nil && n == 0 {
			break
		}
	}
	return nil
}

// changeRateIfNeeded queries the probe, and if its reported rate
// doesn't match the desired configuration, sends the rate-change
// command, waits rateChangeSettleDelay, and re-queries.
func (s *Session) changeRateIfNeeded() (QueryResult, error) {
	q, err := s.query()
	if err != nil {
		return QueryResult{}, err
	}
	if s.rateIsAcceptable(q) {
		return q, nil
	}

	cmd, ok := rateCommandFor(s.desiredRate, s.desiredOversample)
	if !ok {
		return QueryResult{}, fmt.Errorf("probe: rate=%d oversample=%v not supported", s.desiredRate, s.desiredOversample)
	}
	if err := s.sendRateCommand(cmd); err != nil {
		return QueryResult{}, err
	}
	s.sleep(rateChangeSettleDelay)

	return s.query()
}
