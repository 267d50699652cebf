package wind

import "math"

// Tilter subtracts a per-axis bias and rotates (u, v, w) by a 3x3
// matrix parameterized by lean and lean-azimuth (spec §4.4 step 5).
// Lean of exactly zero is the identity case (spec §8 scenario 5).
type Tilter struct {
	bias [3]float64
	mat  Mat3
	identity bool
}

// NewTilter builds the tilt matrix for (lean, leanAzimuth), both in
// radians. When upIsSonicW is true the U-row is derived from the sonic
// V axis crossed with the flow W axis; otherwise (the default) it is
// derived from (Wf × Us) × Wf.
func NewTilter(bias [3]float64, lean, leanAzimuth float64, upIsSonicW bool) Tilter {
	t := Tilter{bias: bias}
	t.identity = math.Abs(lean) < 1e-5
	if t.identity {
		t.mat = IdentityMat3
		return t
	}

	sinLean, cosLean := math.Sin(lean), math.Cos(lean)
	sinAz, cosAz := math.Sin(leanAzimuth), math.Cos(leanAzimuth)

	// Wf, the flow W axis in sonic UVW coordinates.
	t.mat[2][0] = sinLean * cosAz
	t.mat[2][1] = sinLean * sinAz
	t.mat[2][2] = cosLean

	if upIsSonicW {
		mag := math.Sqrt(cosLean*cosLean + sinLean*sinLean*cosAz*cosAz)
		t.mat[0][0] = cosLean / mag
		t.mat[0][1] = 0
		t.mat[0][2] = -sinLean * cosAz / mag
	} else {
		wfXUs := [3]float64{0, cosLean, -sinLean * sinAz}
		uf := cross(wfXUs, [3]float64{t.mat[2][0], t.mat[2][1], t.mat[2][2]})
		uf = normalize3(uf)
		t.mat[0][0], t.mat[0][1], t.mat[0][2] = uf[0], uf[1], uf[2]
	}

	vf := cross([3]float64{t.mat[2][0], t.mat[2][1], t.mat[2][2]}, [3]float64{t.mat[0][0], t.mat[0][1], t.mat[0][2]})
	t.mat[1][0], t.mat[1][1], t.mat[1][2] = vf[0], vf[1], vf[2]

	return t
}

// Apply subtracts bias then rotates by the tilt matrix.
func (t Tilter) Apply(u, v, w float64) (float64, float64, float64) {
	u -= t.bias[0]
	v -= t.bias[1]
	w -= t.bias[2]
	if t.identity {
		return u, v, w
	}
	out := t.mat.MulVec([3]float64{u, v, w})
	return out[0], out[1], out[2]
}
