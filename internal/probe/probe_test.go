package probe

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// fakeProbe drives the slave end of a pty pair, playing the part of a
// simulated sonic: it reads whatever the session writes byte by byte,
// matches against a small command table, and writes back the
// configured response. onT is called once per "T\r" command observed,
// letting a test script the exact sequence of autoconfig scenario 7
// (respond only to the second T).
type fakeProbe struct {
	slave       *os.File
	frameLength int
	onT         func(count int) string // returns the response, "" for no response
}

func runFakeProbe(t *testing.T, fp *fakeProbe) {
	t.Helper()
	go func() {
		var cmdBuf []byte
		tCount := 0
		buf := make([]byte, 1)
		for {
			n, err := fp.slave.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			cmdBuf = append(cmdBuf, buf[0])

			switch {
			case endsWith(cmdBuf, "T\r") && !endsWith(cmdBuf, "PT\r"):
				tCount++
				resp := ">"
				if fp.onT != nil {
					resp = fp.onT(tCount)
				}
				if resp != "" {
					fp.slave.Write([]byte(resp))
				}
				cmdBuf = nil
			case endsWith(cmdBuf, "PT\r"):
				fp.slave.Write([]byte(">"))
				cmdBuf = nil
			case endsWith(cmdBuf, "??\r"):
				fp.slave.Write([]byte("ET=.... AQ=20 os=0 RI=1 RS=1 SN1234 rev 4.0\n>"))
				cmdBuf = nil
			case endsWith(cmdBuf, "D"):
				frame := make([]byte, fp.frameLength)
				frame[len(frame)-2] = 0x55
				frame[len(frame)-1] = 0xAA
				fp.slave.Write(frame)
				cmdBuf = nil
			}
		}
	}()
}

func endsWith(buf []byte, suffix string) bool {
	if len(buf) < len(suffix) {
		return false
	}
	return string(buf[len(buf)-len(suffix):]) == suffix
}

func TestSessionAutoconfigRetryOnSecondT(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	defer slave.Close()

	fp := &fakeProbe{
		slave:       slave,
		frameLength: 12,
		onT: func(count int) string {
			if count == 1 {
				return "" // scenario 7: no response to the first T
			}
			return ">"
		},
	}
	runFakeProbe(t, fp)

	sess := NewSession(Config{
		Port:        master,
		DesiredRate: 0,
		FrameLength: 12,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := sess.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, OutcomeBothSucceeded, result.Outcome)
	require.Equal(t, "SN1234", result.SerialNumber)
}

// stepClock is a fake clock that advances by step on every call to now,
// letting a test drive a Session past a read budget without an actual
// wall-clock wait: the pty's read deadline still lands in the real past
// once the fake time has run ahead of it, so the underlying Read returns
// an immediate timeout instead of blocking for real seconds.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	ret := c.t
	c.t = c.t.Add(c.step)
	return ret
}

func TestQueryTimesOutWithoutResponse(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	defer slave.Close()

	sess := NewSession(Config{Port: master, FrameLength: 12})
	sess.now = (&stepClock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), step: 2 * time.Second}).now

	_, err = sess.query()
	require.Error(t, err)
}

func TestEnterDataModeTimesOutWithoutFrame(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	defer slave.Close()

	sess := NewSession(Config{Port: master, FrameLength: 12})
	sess.now = (&stepClock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), step: 2 * time.Second}).now

	err = sess.enterDataMode()
	require.Error(t, err)
}

func TestSessionFullHappyPath(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	defer slave.Close()

	fp := &fakeProbe{slave: slave, frameLength: 12}
	runFakeProbe(t, fp)

	sess := NewSession(Config{
		Port:        master,
		DesiredRate: 0,
		FrameLength: 12,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := sess.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, OutcomeBothSucceeded, result.Outcome)
	require.Equal(t, 20, result.AcqRateHz)
}
