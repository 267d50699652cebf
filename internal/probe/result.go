package probe

import (
	"context"
	"errors"
)

// Outcome classifies how an autoconfig attempt concluded (spec §4.5).
type Outcome int

const (
	// OutcomeBothSucceeded: the query and data-mode confirmation both
	// succeeded.
	OutcomeBothSucceeded Outcome = iota
	// OutcomeDataOnlySucceeded: data is flowing but the serial number
	// and rate could not be confirmed (query failed repeatedly).
	OutcomeDataOnlySucceeded
	// OutcomeQueryOnlySucceeded: the query succeeded but data-mode
	// confirmation never observed a frame; the outer driver's own read
	// timeout will reopen the port.
	OutcomeQueryOnlySucceeded
	// OutcomeBothFailed: terminal mode could not be entered, or neither
	// the query nor the data-mode confirmation succeeded within their
	// budgets; the outer driver should reschedule the open.
	OutcomeBothFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBothSucceeded:
		return "both-succeeded"
	case OutcomeDataOnlySucceeded:
		return "data-only"
	case OutcomeQueryOnlySucceeded:
		return "query-only"
	case OutcomeBothFailed:
		return "both-failed"
	default:
		return "unknown"
	}
}

// Result is the final outcome of one Run.
type Result struct {
	Outcome      Outcome
	SerialNumber string
	Revision     string
	AcqRateHz    int
}

const maxAttempts = 5

// Run executes the full autoconfig sequence: enter terminal mode, query
// and correct the rate if needed, enter data mode, and confirm. It
// retries the query and the data-mode confirmation independently up to
// maxAttempts times each before declaring the corresponding half
// failed (spec §4.5's outcome table).
func (s *Session) Run(ctx context.Context) (Result, error) {
	if err := s.enterTerminalMode(ctx); err != nil {
		return Result{Outcome: OutcomeBothFailed}, err
	}

	var lastQuery QueryResult
	queryOK := false
	for attempt := 0; attempt < maxAttempts && !queryOK; attempt++ {
		q, err := s.changeRateIfNeeded()
		if err == nil {
			lastQuery = q
			queryOK = true
			break
		}
		s.log.Warn("probe: query attempt failed", "attempt", attempt+1, "err", err)
	}

	dataOK := false
	for attempt := 0; attempt < maxAttempts && !dataOK; attempt++ {
		if err := s.enterDataMode(); err == nil {
			dataOK = true
			break
		} else {
			s.log.Warn("probe: data mode attempt failed", "attempt", attempt+1, "err", err)
		}
	}

	switch {
	case queryOK && dataOK:
		s.log.Info("probe: autoconfig complete", "serial", lastQuery.SerialNumber, "rev", lastQuery.Revision, "rate", lastQuery.AcqRateHz)
		return Result{Outcome: OutcomeBothSucceeded, SerialNumber: lastQuery.SerialNumber, Revision: lastQuery.Revision, AcqRateHz: lastQuery.AcqRateHz}, nil
	case dataOK:
		s.log.Warn("probe: data flowing but serial number/rate unconfirmed")
		return Result{Outcome: OutcomeDataOnlySucceeded}, nil
	case queryOK:
		return Result{Outcome: OutcomeQueryOnlySucceeded, SerialNumber: lastQuery.SerialNumber, Revision: lastQuery.Revision, AcqRateHz: lastQuery.AcqRateHz}, nil
	default:
		return Result{Outcome: OutcomeBothFailed}, errAutoconfigFailed
	}
}

var errAutoconfigFailed = errors.New("probe: autoconfig failed: neither query nor data mode succeeded")
