package wind

import "math"

// Rotate applies the sonic azimuth correction to the horizontal wind
// (spec §4.4 step 7): u ← u·cosA + v·sinA, v ← −u·sinA + v·cosA, using
// the pre-rotation u in both expressions.
func Rotate(u, v, azimuthRad float64) (float64, float64) {
	sinA, cosA := math.Sin(azimuthRad), math.Cos(azimuthRad)
	return u*cosA + v*sinA, -u*sinA + v*cosA
}

// SpdDir derives (spd, dir) from (u, v) (spec §4.4 step 8).
func SpdDir(u, v float64) (spd, dirDeg float64) {
	return uvToSpdDir(u, v)
}
