package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryResponseExtractsFields(t *testing.T) {
	resp := "ET=.... AQ=20 os=h RI=1 RS=1 SN1234 rev 4.0\n>"
	q := parseQueryResponse(resp)
	assert.Equal(t, 20, q.AcqRateHz)
	assert.Equal(t, byte('h'), q.Oversample)
	assert.Equal(t, 1, q.RtsIndep)
	assert.Equal(t, 1, q.RecSeparator)
	assert.Equal(t, "SN1234", q.SerialNumber)
	assert.Equal(t, "4.0", q.Revision)
}

func TestParseQueryResponseHandlesMissingFields(t *testing.T) {
	q := parseQueryResponse("garbage\n>")
	assert.Equal(t, 0, q.AcqRateHz)
	assert.Equal(t, byte(' '), q.Oversample)
	assert.Equal(t, -1, q.RtsIndep)
	assert.Equal(t, -1, q.RecSeparator)
	assert.Equal(t, "", q.SerialNumber)
}

func TestFindSerialNumberTriesAllPrefixes(t *testing.T) {
	assert.Equal(t, "Sn9876", findSerialNumber("rev 5 Sn9876 more"))
	assert.Equal(t, "PR0001", findSerialNumber("PR0001 test unit"))
}

func TestAtoiPrefixStopsAtNonDigit(t *testing.T) {
	assert.Equal(t, 20, atoiPrefix("20 os=h"))
	assert.Equal(t, 0, atoiPrefix("garbage"))
}
