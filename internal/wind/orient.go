package wind

import "fmt"

// Orientation is one of the canonical sonic mounting remaps (spec §4.4
// step 4). Each is a fixed index permutation with per-axis sign flip:
// out[i] = sign[i] * in[axis[i]].
type Orientation struct {
	axis [3]int
	sign [3]float64
}

// NormalOrientation is the identity remap, the default.
var NormalOrientation = Orientation{axis: [3]int{0, 1, 2}, sign: [3]float64{1, 1, 1}}

// DownOrientation: the sonic mounted pointing down — new u is raw w,
// new v is raw −v, new w is raw u.
var DownOrientation = Orientation{axis: [3]int{2, 1, 0}, sign: [3]float64{1, -1, 1}}

// LeftHandedOrientation negates v to convert a counterclockwise
// direction convention to clockwise.
var LeftHandedOrientation = Orientation{axis: [3]int{0, 1, 2}, sign: [3]float64{1, -1, 1}}

// FlippedOrientation: sonic flipped over, a 180° rotation about u —
// negates v and w.
var FlippedOrientation = Orientation{axis: [3]int{0, 1, 2}, sign: [3]float64{1, -1, -1}}

// HorizontalOrientation: sonic on its side — new w is raw v, new v is
// raw −w.
var HorizontalOrientation = Orientation{axis: [3]int{0, 2, 1}, sign: [3]float64{1, -1, 1}}

// OrientationByName resolves the configured orientation string (spec
// §4.6 offsets-and-angles cal-file/config value) to its Orientation.
func OrientationByName(name string) (Orientation, error) {
	switch name {
	case "", "normal":
		return NormalOrientation, nil
	case "down":
		return DownOrientation, nil
	case "lefthanded":
		return LeftHandedOrientation, nil
	case "flipped":
		return FlippedOrientation, nil
	case "horizontal":
		return HorizontalOrientation, nil
	default:
		return Orientation{}, fmt.Errorf("wind: unknown orientation %q: must be one of normal, down, lefthanded, flipped, horizontal", name)
	}
}

// Apply remaps (u, v, w).
func (o Orientation) Apply(u, v, w float64) (float64, float64, float64) {
	in := [3]float64{u, v, w}
	out := [3]float64{
		o.sign[0] * in[o.axis[0]],
		o.sign[1] * in[o.axis[1]],
		o.sign[2] * in[o.axis[2]],
	}
	return out[0], out[1], out[2]
}
