// Package krypton implements the Campbell Scientific krypton
// hygrometer's voltage-to-water-vapor-density conversion, a
// supplemental companion channel alongside the sonic wind pipeline.
package krypton

import "math"

// minVoltageMillivolts floors the converter's input to avoid log(0)
// on a dead or disconnected sensor.
const minVoltageMillivolts = 0.1

// Converter holds one krypton's calibration coefficients: an
// extinction coefficient Kw, a clean-window reference voltage V0 (in
// millivolts), a pathlength in cm, and a bias offset applied after the
// log conversion.
type Converter struct {
	kw           float64
	pathLength   float64
	bias         float64
	logV0        float64
	pathLengthKw float64
}

// NewConverter builds a Converter from its four calibration values.
func NewConverter(kw, v0, pathLength, bias float64) Converter {
	return Converter{
		kw:           kw,
		pathLength:   pathLength,
		bias:         bias,
		logV0:        math.Log(v0),
		pathLengthKw: pathLength * kw,
	}
}

// Convert returns water vapor density in g/m^3 for one raw output
// voltage in volts. The result is never negative: a reading below the
// calibrated baseline floors to zero rather than going negative.
func (c Converter) Convert(volts float64) float64 {
	mv := volts * 1000.0
	if mv < minVoltageMillivolts {
		mv = minVoltageMillivolts
	}
	h2o := (math.Log(mv)-c.logV0)/c.pathLengthKw - c.bias
	if h2o < 0 {
		h2o = 0
	}
	return h2o
}
