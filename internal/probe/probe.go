// Package probe implements the sonic probe session: the autoconfig
// exchange that puts a serial-attached sonic anemometer into terminal
// mode, confirms (or corrects) its reporting rate, and switches it
// into data mode (spec §4.5).
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Port is the serial line the session drives. *os.File (an opened
// serial device, or a pty master in tests) satisfies it.
type Port interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
}

// terminalModeBudget bounds the whole terminal-mode entry sequence.
const terminalModeBudget = 5 * time.Second

// terminalModeReadDeadline is the per-read deadline within one attempt.
const terminalModeReadDeadline = 1 * time.Second

// terminalModeReadsPerAttempt caps reads within one attempt before
// giving up and starting the next.
const terminalModeReadsPerAttempt = 20

// rateChangeSettleDelay is how long the session waits after sending a
// rate-change command before re-querying.
const rateChangeSettleDelay = 3 * time.Second

// dataModeConfirmBudget bounds how long the session waits to observe
// one frame of the configured length after entering data mode.
const dataModeConfirmBudget = 5 * time.Second

// Session drives one sonic probe's autoconfig sequence over a Port.
type Session struct {
	port Port
	log  *log.Logger

	desiredRate       int
	desiredOversample bool
	frameLength       int

	now   func() time.Time
	sleep func(time.Duration)
}

// Config collects the desired reporting configuration for one sonic.
type Config struct {
	Port              Port
	DesiredRate       int
	DesiredOversample bool
	FrameLength       int
	Logger            *log.Logger
}

// NewSession builds a Session from cfg.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		port:              cfg.Port,
		log:               logger,
		desiredRate:       cfg.DesiredRate,
		desiredOversample: cfg.DesiredOversample,
		frameLength:       cfg.FrameLength,
		now:               time.Now,
		sleep:             time.Sleep,
	}
}

// enterTerminalMode sends "T\r" (or "PT\r" once the third attempt is
// reached) repeatedly within terminalModeBudget until the probe answers
// with a trailing '>' prompt.
func (s *Session) enterTerminalMode(ctx context.Context) error {
	deadline := s.now().Add(terminalModeBudget)
	attempt := 0

	for s.now().Before(deadline) {
		attempt++
		cmd := "T\r"
		if attempt > 2 {
			cmd = "PT\r"
		}
		s.log.Debug("probe: entering terminal mode", "attempt", attempt, "cmd", strings.TrimRight(cmd, "\r"))
		if _, err := io.WriteString(s.port, cmd); err != nil {
			return fmt.Errorf("probe: write %q: %w", cmd, err)
		}

		if s.readForPrompt(ctx, deadline) {
			return nil
		}
	}
	return fmt.Errorf("probe: no '>' prompt within %s", terminalModeBudget)
}

// readForPrompt performs up to terminalModeReadsPerAttempt reads, each
// bounded by terminalModeReadDeadline (and never past the outer
// deadline), returning true as soon as a read chunk ends in '>'. A read
// that times out with no bytes at all ends the attempt immediately —
// the read-count cap exists for a response that trickles in over
// several chunks, not to retry total silence, which would otherwise
// burn the whole terminal-mode budget on one unanswered attempt.
func (s *Session) readForPrompt(ctx context.Context, deadline time.Time) bool {
	buf := make([]byte, 256)
	for i := 0; i < terminalModeReadsPerAttempt; i++ {
		if ctx.Err() != nil || !s.now().Before(deadline) {
			return false
		}
		readDeadline := s.now().Add(terminalModeReadDeadline)
		if readDeadline.After(deadline) {
			readDeadline = deadline
		}
		if err := s.port.SetReadDeadline(readDeadline); err != nil {
			return false
		}
		n, err := s.port.Read(buf)
		if n > 0 && buf[n-1] == '>' {
			return true
		}
		if n == 0 {
			return false
		}
	}
	return false
}

// readUntil accumulates reads until pred matches the accumulated
// buffer, a read error occurs, or deadline passes.
func (s *Session) readUntil(deadline time.Time, pred func([]byte) bool) ([]byte, error) {
	var acc bytes.Buffer
	buf := make([]byte, 256)
	for s.now().Before(deadline) {
		readDeadline := s.now().Add(terminalModeReadDeadline)
		if readDeadline.After(deadline) {
			readDeadline = deadline
		}
		if err := s.port.SetReadDeadline(readDeadline); err != nil {
			return acc.Bytes(), err
		}
		n, err := s.port.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			if pred(acc.Bytes()) {
				return acc.Bytes(), nil
			}
		}
		if err != nil && n == 0 {
			continue
		}
	}
	return acc.Bytes(), fmt.Errorf("probe: timed out waiting for response")
}
