package wind

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSAT3ParseDecodesScaledComponents(t *testing.T) {
	// u = 0x1000 raw at range code 0 -> 0x1000 * 2^-9 = 8.0
	raw := []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x55, 0xAA}
	p := NewCSAT3Parser()
	rec, err := p.Parse(raw)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, rec.U, 1e-9)
	assert.InDelta(t, 0.0, rec.V, 1e-9)
	assert.InDelta(t, 0.0, rec.W, 1e-9)
	assert.InDelta(t, 13.92, rec.Tc, 0.01)
	assert.True(t, rec.CounterOK)
}

func TestCSAT3ParseRejectsMissingSentinel(t *testing.T) {
	raw := make([]byte, csat3FrameLength)
	raw[10], raw[11] = 0x00, 0x00
	_, err := NewCSAT3Parser().Parse(raw)
	assert.ErrorIs(t, err, errCSAT3NoSentinel)
}

func TestCSAT3ParseRejectsWrongLength(t *testing.T) {
	_, err := NewCSAT3Parser().Parse(make([]byte, 10))
	assert.Error(t, err)
}

func TestCSAT3ParseFlagsInvalidDiagAsNaN(t *testing.T) {
	raw := make([]byte, csat3FrameLength)
	raw[8], raw[9] = 0x3F, 0xF0 // little-endian 0xF03F
	raw[10], raw[11] = 0x55, 0xAA
	p := NewCSAT3Parser()
	rec, err := p.Parse(raw)
	require.NoError(t, err)
	assert.True(t, isInvalid(rec.U))
	assert.True(t, isInvalid(rec.V))
	assert.True(t, isInvalid(rec.W))
	assert.True(t, isInvalid(rec.Tc))
}

func TestCSAT3ParseAssignsRangeCodesToCorrectAxis(t *testing.T) {
	// diag bits 10-11 = u's range code, bits 6-7 = w's range code
	// (original_source/CSAT3_Sonic.cc:646-649). Set u's raw word to
	// 0x1000 with range 1 (scale 2^-10) and w's raw word to 0x1000 with
	// range 0 (scale 2^-9): if u and w's shifts were swapped, u would
	// come out at 4.0 and w at 8.0 instead of the reverse.
	raw := make([]byte, csat3FrameLength)
	binary.LittleEndian.PutUint16(raw[0:2], 0x1000) // u raw
	binary.LittleEndian.PutUint16(raw[4:6], 0x1000) // w raw
	diag := uint16(1) << 10 // u range = 1
	binary.LittleEndian.PutUint16(raw[8:10], diag)
	raw[10], raw[11] = 0x55, 0xAA

	rec, err := NewCSAT3Parser().Parse(raw)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rec.U, 1e-9)
	assert.InDelta(t, 8.0, rec.W, 1e-9)
}

func TestCSAT3ParseFoldsCounterGapIntoOutputDiagBit4(t *testing.T) {
	p := NewCSAT3Parser()
	frame := func(counter uint16) []byte {
		raw := make([]byte, csat3FrameLength)
		raw[8] = byte(counter & 0x3F)
		raw[10], raw[11] = 0x55, 0xAA
		return raw
	}
	rec, err := p.Parse(frame(0))
	require.NoError(t, err)
	assert.Equal(t, uint16(0), rec.Diag&0x10)

	rec, err = p.Parse(frame(5))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x10), rec.Diag&0x10)
	assert.False(t, isInvalid(rec.U), "counter gap must not invalidate u,v,w,Tc")
}

func TestCSAT3ParseNanIfDiagGatesGenericErrorState(t *testing.T) {
	raw := make([]byte, csat3FrameLength)
	// error-state nibble = 1 (not one of the two special all-NaN
	// encodings), range codes all zero.
	binary.LittleEndian.PutUint16(raw[8:10], 0x1000)
	raw[10], raw[11] = 0x55, 0xAA

	recNaN, err := NewCSAT3ParserConfig(true).Parse(raw)
	require.NoError(t, err)
	assert.True(t, isInvalid(recNaN.U))

	recPassthrough, err := NewCSAT3ParserConfig(false).Parse(raw)
	require.NoError(t, err)
	assert.False(t, isInvalid(recPassthrough.U))
	assert.Equal(t, uint16(1), recPassthrough.Diag&0xF)
}

func TestCSAT3ParseDetectsCounterGap(t *testing.T) {
	p := NewCSAT3Parser()
	frame := func(counter uint16) []byte {
		raw := make([]byte, csat3FrameLength)
		raw[8] = byte(counter & 0x3F)
		raw[10], raw[11] = 0x55, 0xAA
		return raw
	}
	rec, err := p.Parse(frame(0))
	require.NoError(t, err)
	assert.True(t, rec.CounterOK)

	rec, err = p.Parse(frame(5))
	require.NoError(t, err)
	assert.False(t, rec.CounterOK)
}

func TestAsciiSonicParserConvertsSpdDirToUV(t *testing.T) {
	p := NewAsciiSonicParser(64)
	rec, err := p.Parse([]byte("5.0,90.0,20.0"))
	require.NoError(t, err)
	assert.InDelta(t, -5.0, rec.U, 1e-9)
	assert.InDelta(t, 0.0, rec.V, 1e-9)
	assert.InDelta(t, 20.0, rec.Tc, 1e-9)
}

func TestAsciiSonicParserTemperatureOptional(t *testing.T) {
	p := NewAsciiSonicParser(64)
	rec, err := p.Parse([]byte("1.0 0.0"))
	require.NoError(t, err)
	assert.True(t, isInvalid(rec.Tc))
}

func TestAsciiSonicParserRejectsTooFewFields(t *testing.T) {
	_, err := NewAsciiSonicParser(64).Parse([]byte("1.0"))
	assert.Error(t, err)
}

func TestSpdDirUVRoundTrip(t *testing.T) {
	spd, dir := 3.2, 217.5
	u, v := spdDirToUV(spd, dir)
	gotSpd, gotDir := uvToSpdDir(u, v)
	assert.InDelta(t, spd, gotSpd, 1e-9)
	assert.InDelta(t, dir, gotDir, 1e-9)
}
