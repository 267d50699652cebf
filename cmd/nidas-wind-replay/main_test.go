package main

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncar-nidas/daq-core/internal/wind"
)

func csat3Frame(uRaw, vRaw, wRaw int16) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(uRaw))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(vRaw))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(wRaw))
	binary.LittleEndian.PutUint16(buf[6:8], 0)
	binary.LittleEndian.PutUint16(buf[8:10], 0) // diag 0: range code 0, counter 0
	buf[10], buf[11] = 0x55, 0xAA
	return buf
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(bytes.NewBuffer(nil), log.Options{})
}

func TestReplayTextOutputOneFramePerLine(t *testing.T) {
	pipeline, err := buildPipeline(replayConfig{SonicType: "csat3"}, time.Now())
	require.NoError(t, err)

	input := bytes.NewBuffer(nil)
	input.Write(csat3Frame(0x1000, 0, 0))
	input.Write(csat3Frame(0, 0x1000, 0))

	var out bytes.Buffer
	n, err := replay(pipeline, input, &out, 1, false, 100_000, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	lines := bytes.Split(bytes.TrimRight(out.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "u=8.0000")
}

func TestReplayArchiveOutputRoundTrips(t *testing.T) {
	pipeline, err := buildPipeline(replayConfig{SonicType: "csat3"}, time.Now())
	require.NoError(t, err)

	input := bytes.NewBuffer(csat3Frame(0x1000, 0, 0))

	var out bytes.Buffer
	n, err := replay(pipeline, input, &out, 7, true, 100_000, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := wind.DecodeArchive(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(7), rec.StreamID)
	assert.InDelta(t, 8.0, rec.U, 1e-6)
}

func TestReplayStopsAtShortTrailingFrame(t *testing.T) {
	pipeline, err := buildPipeline(replayConfig{SonicType: "csat3"}, time.Now())
	require.NoError(t, err)

	input := bytes.NewBuffer(csat3Frame(0x1000, 0, 0))
	input.Write([]byte{0x01, 0x02, 0x03}) // short trailing garbage

	var out bytes.Buffer
	n, err := replay(pipeline, input, &out, 1, false, 100_000, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReplaySkipsInvalidFrameAndContinues(t *testing.T) {
	pipeline, err := buildPipeline(replayConfig{SonicType: "csat3"}, time.Now())
	require.NoError(t, err)

	input := bytes.NewBuffer(nil)
	bad := csat3Frame(1, 2, 3)
	bad[10], bad[11] = 0x00, 0x00 // corrupt sentinel -> parse error
	input.Write(bad)
	input.Write(csat3Frame(0x1000, 0, 0))

	var out bytes.Buffer
	n, err := replay(pipeline, input, &out, 1, false, 100_000, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBuildPipelineRejectsUnknownSonicType(t *testing.T) {
	_, err := buildPipeline(replayConfig{SonicType: "not-a-sonic"}, time.Now())
	assert.Error(t, err)
}
