package main

import (
	"fmt"
	"time"

	"github.com/ncar-nidas/daq-core/internal/cal"
	"github.com/ncar-nidas/daq-core/internal/wind"
)

// buildPipeline wires a wind.Pipeline from cfg, resolving the
// orientation/bias/tilt/shadow parameters from cal files at reference
// time t, matching how a live deployment reads them once at sonic open
// and again at every cal-file row boundary (spec §4.6).
func buildPipeline(cfg replayConfig, t time.Time) (*wind.Pipeline, error) {
	var parser wind.Parser
	measured2D := false
	switch cfg.SonicType {
	case "csat3":
		parser = wind.NewCSAT3Parser()
	case "ascii2d":
		parser = wind.NewAsciiSonicParser(64)
		measured2D = true
	default:
		return nil, fmt.Errorf("wind-replay: unknown sonic_type %q", cfg.SonicType)
	}

	orient := wind.Orientation{}
	if cfg.Orientation != "" {
		o, err := wind.OrientationByName(cfg.Orientation)
		if err != nil {
			return nil, fmt.Errorf("wind-replay: %w", err)
		}
		orient = o
	} else {
		o, _ := wind.OrientationByName("normal")
		orient = o
	}

	var despike *wind.Despiker
	if cfg.DespikeThreshold > 0 {
		despike = wind.NewDespiker(cfg.DespikeThreshold)
	}

	// Tilter's zero value is not the identity (its rotation matrix would
	// be all zeros); build it explicitly with lean 0 so Apply is a no-op
	// until an offsets-and-angles file overrides it below.
	tilt := wind.NewTilter([3]float64{}, 0, 0, false)
	azimuthRad := 0.0
	tcSlope, tcOffset := 1.0, 0.0
	if cfg.OffsetsAndAnglesFile != "" {
		f, err := cal.LoadOffsetsAndAngles(cfg.OffsetsAndAnglesFile)
		if err != nil {
			return nil, fmt.Errorf("wind-replay: load offsets-and-angles: %w", err)
		}
		oa, ok, err := f.ValueAt(t)
		if err != nil {
			return nil, fmt.Errorf("wind-replay: offsets-and-angles lookup: %w", err)
		}
		if ok {
			bias := [3]float64{oa.UOffset, oa.VOffset, oa.WOffset}
			tilt = wind.NewTilter(bias, oa.LeanRad(), oa.LeanAzimuthRad(), false)
			azimuthRad = oa.AzimuthRad()
			tcSlope, tcOffset = oa.TcSlope, oa.TcOffset
			if tcSlope == 0 {
				tcSlope = 1
			}
		}
	}

	var shadow *wind.ShadowCorrector
	if cfg.Abc2uvwFile != "" && cfg.ShadowFactor > 0 {
		f, err := cal.LoadAbc2uvw(cfg.Abc2uvwFile)
		if err != nil {
			return nil, fmt.Errorf("wind-replay: load abc2uvw: %w", err)
		}
		m, ok, err := f.ValueAt(t)
		if err != nil {
			return nil, fmt.Errorf("wind-replay: abc2uvw lookup: %w", err)
		}
		if ok {
			shadow, err = wind.NewShadowCorrector(m, cfg.ShadowFactor)
			if err != nil {
				return nil, fmt.Errorf("wind-replay: build shadow corrector: %w", err)
			}
		}
	}

	return wind.NewPipeline(wind.PipelineConfig{
		Parser:     parser,
		Despike:    despike,
		Shadow:     shadow,
		Orient:     orient,
		Tilt:       tilt,
		TcSlope:    tcSlope,
		TcOffset:   tcOffset,
		AzimuthRad: azimuthRad,
		Measured2D: measured2D,
	}), nil
}
