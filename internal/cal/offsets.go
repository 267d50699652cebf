package cal

import (
	"fmt"
	"math"
	"time"
)

// OffsetsAndAngles is one row of the offsets-and-angles cal-file (spec
// §4.6): `u_off v_off w_off lean lean_az azimuth tc_off tc_slope`, all
// angles in degrees as stored.
type OffsetsAndAngles struct {
	UOffset, VOffset, WOffset float64
	LeanDeg, LeanAzimuthDeg   float64
	AzimuthDeg                float64
	TcOffset, TcSlope         float64
}

const offsetsAndAnglesColumns = 8

// LeanRad, LeanAzimuthRad, AzimuthRad convert the stored degree columns
// to radians for internal/wind's Tilter/Rotate, which work in radians.
func (o OffsetsAndAngles) LeanRad() float64        { return o.LeanDeg * math.Pi / 180 }
func (o OffsetsAndAngles) LeanAzimuthRad() float64 { return o.LeanAzimuthDeg * math.Pi / 180 }
func (o OffsetsAndAngles) AzimuthRad() float64     { return o.AzimuthDeg * math.Pi / 180 }

// decodeOffsetsAndAngles validates and converts a cal-file row's raw
// columns into an OffsetsAndAngles value.
func decodeOffsetsAndAngles(row Row) (OffsetsAndAngles, error) {
	if len(row.Values) != offsetsAndAnglesColumns {
		return OffsetsAndAngles{}, fmt.Errorf("cal: offsets-and-angles row has %d columns, want %d", len(row.Values), offsetsAndAnglesColumns)
	}
	return OffsetsAndAngles{
		UOffset:        row.Values[0],
		VOffset:        row.Values[1],
		WOffset:        row.Values[2],
		LeanDeg:        row.Values[3],
		LeanAzimuthDeg: row.Values[4],
		AzimuthDeg:     row.Values[5],
		TcOffset:       row.Values[6],
		TcSlope:        row.Values[7],
	}, nil
}

// OffsetsAndAnglesFile wraps a File whose rows are offsets-and-angles
// records.
type OffsetsAndAnglesFile struct {
	f *File
}

// LoadOffsetsAndAngles reads and parses an offsets-and-angles cal-file.
func LoadOffsetsAndAngles(path string) (*OffsetsAndAnglesFile, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &OffsetsAndAnglesFile{f: f}, nil
}

// ValueAt returns the offsets-and-angles row active at t.
func (o *OffsetsAndAnglesFile) ValueAt(t time.Time) (OffsetsAndAngles, bool, error) {
	row, ok := o.f.ValueAt(t)
	if !ok {
		return OffsetsAndAngles{}, false, nil
	}
	oa, err := decodeOffsetsAndAngles(row)
	if err != nil {
		return OffsetsAndAngles{}, false, err
	}
	return oa, true, nil
}
