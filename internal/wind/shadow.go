package wind

import "math"

// ShadowCorrector undoes transducer-shadow attenuation (spec §4.4 step
// 3): it needs the abc2uvw calibration matrix A (the same matrix
// loaded from a cal-file's abc2uvw entry, spec §4.6) and a shadow
// factor f.
type ShadowCorrector struct {
	abc2uvw Mat3
	uvw2abc Mat3
	factor  float64
}

// NewShadowCorrector precomputes abc2uvw's inverse once, since it is
// fixed for the lifetime of one cal-file row.
func NewShadowCorrector(abc2uvw Mat3, factor float64) (*ShadowCorrector, error) {
	inv, err := abc2uvw.Inverse()
	if err != nil {
		return nil, err
	}
	return &ShadowCorrector{abc2uvw: abc2uvw, uvw2abc: inv, factor: factor}, nil
}

// Apply returns the corrected (u, v, w). If the correction produces a NaN
// in any axis, the whole vector becomes NaN (spec §4.4 step 3).
func (s *ShadowCorrector) Apply(u, v, w float64) (float64, float64, float64) {
	uvw := [3]float64{u, v, w}
	normSq := u*u + v*v + w*w

	abc := s.uvw2abc.MulVec(uvw)

	for i, a := range abc {
		sinTheta := math.Sqrt(1 - a*a/normSq)
		abc[i] = a / (1 - s.factor + s.factor*sinTheta)
	}

	out := s.abc2uvw.MulVec(abc)
	if math.IsNaN(out[0]) || math.IsNaN(out[1]) || math.IsNaN(out[2]) {
		return nan(), nan(), nan()
	}
	return out[0], out[1], out[2]
}
