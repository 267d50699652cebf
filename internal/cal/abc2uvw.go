package cal

import (
	"fmt"
	"time"

	"github.com/ncar-nidas/daq-core/internal/wind"
)

const abc2uvwColumns = 9

// decodeAbc2uvw validates and converts a cal-file row's 9 raw columns
// (row-major) into a wind.Mat3.
func decodeAbc2uvw(row Row) (wind.Mat3, error) {
	if len(row.Values) != abc2uvwColumns {
		return wind.Mat3{}, fmt.Errorf("cal: abc2uvw row has %d columns, want %d", len(row.Values), abc2uvwColumns)
	}
	var m wind.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = row.Values[i*3+j]
		}
	}
	return m, nil
}

// Abc2uvwFile wraps a File whose rows are abc2uvw matrix records.
type Abc2uvwFile struct {
	f *File
}

// LoadAbc2uvw reads and parses an abc2uvw cal-file.
func LoadAbc2uvw(path string) (*Abc2uvwFile, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Abc2uvwFile{f: f}, nil
}

// ValueAt returns the abc2uvw matrix active at t.
func (a *Abc2uvwFile) ValueAt(t time.Time) (wind.Mat3, bool, error) {
	row, ok := a.f.ValueAt(t)
	if !ok {
		return wind.Mat3{}, false, nil
	}
	m, err := decodeAbc2uvw(row)
	if err != nil {
		return wind.Mat3{}, false, err
	}
	return m, true, nil
}
