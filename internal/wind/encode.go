package wind

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// wireSampleLength is the little-endian float32 wire record: u, v, w,
// Tc, spd, dir (spec §4.4's six derived quantities), 24 bytes.
const wireSampleLength = 6 * 4

// EncodeWire packs rec's six derived float values into the fixed-width
// little-endian wire format used between the pipeline and any
// downstream consumer that doesn't need the full Record (diag,
// timestamp, counter state).
func EncodeWire(rec Record) []byte {
	buf := make([]byte, wireSampleLength)
	putFloat32(buf[0:4], rec.U)
	putFloat32(buf[4:8], rec.V)
	putFloat32(buf[8:12], rec.W)
	putFloat32(buf[12:16], rec.Tc)
	putFloat32(buf[16:20], rec.Spd)
	putFloat32(buf[20:24], rec.Dir)
	return buf
}

// DecodeWire is EncodeWire's inverse.
func DecodeWire(buf []byte) (Record, error) {
	if len(buf) != wireSampleLength {
		return Record{}, fmt.Errorf("wind: wire sample is %d bytes, want %d", len(buf), wireSampleLength)
	}
	return Record{
		U:   getFloat32(buf[0:4]),
		V:   getFloat32(buf[4:8]),
		W:   getFloat32(buf[8:12]),
		Tc:  getFloat32(buf[12:16]),
		Spd: getFloat32(buf[16:20]),
		Dir: getFloat32(buf[20:24]),
	}, nil
}

func putFloat32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

func getFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// ArchiveRecord is the CBOR envelope written by cmd/nidas-wind-replay's
// archival sink: the full Record plus the stream it came from, keyed
// by small integer field names to keep the archive compact.
type ArchiveRecord struct {
	StreamID  uint16  `cbor:"0,keyasint"`
	Timestamp int64   `cbor:"1,keyasint"`
	U         float64 `cbor:"2,keyasint"`
	V         float64 `cbor:"3,keyasint"`
	W         float64 `cbor:"4,keyasint"`
	Tc        float64 `cbor:"5,keyasint"`
	Spd       float64 `cbor:"6,keyasint"`
	Dir       float64 `cbor:"7,keyasint"`
	Diag      uint16  `cbor:"8,keyasint"`
	CounterOK bool    `cbor:"9,keyasint"`
}

// EncodeArchive marshals one stream's Record to CBOR for the replay
// archive.
func EncodeArchive(streamID uint16, rec Record) ([]byte, error) {
	a := ArchiveRecord{
		StreamID:  streamID,
		Timestamp: rec.Timestamp,
		U:         rec.U,
		V:         rec.V,
		W:         rec.W,
		Tc:        rec.Tc,
		Spd:       rec.Spd,
		Dir:       rec.Dir,
		Diag:      rec.Diag,
		CounterOK: rec.CounterOK,
	}
	return cbor.Marshal(a)
}

// DecodeArchive unmarshals one CBOR-encoded archive entry.
func DecodeArchive(buf []byte) (ArchiveRecord, error) {
	var a ArchiveRecord
	if err := cbor.Unmarshal(buf, &a); err != nil {
		return ArchiveRecord{}, fmt.Errorf("wind: decode archive record: %w", err)
	}
	return a, nil
}
