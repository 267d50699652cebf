package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// replayConfig describes one sonic's wind-pipeline wiring (spec §4.4,
// §4.6), loaded the way the teacher's deviceid.go loads tocalls.yaml.
type replayConfig struct {
	// SonicType selects the frame parser: "csat3" for the binary CSAT3
	// frame, "ascii2d" for the character-framed 2-D sonic.
	SonicType string `yaml:"sonic_type"`

	Orientation string `yaml:"orientation"`

	DespikeThreshold float64 `yaml:"despike_threshold"`
	ShadowFactor     float64 `yaml:"shadow_factor"`

	OffsetsAndAnglesFile string `yaml:"offsets_and_angles_file"`
	Abc2uvwFile          string `yaml:"abc2uvw_file"`

	// SampleIntervalMicros spaces successive frames when the input file
	// carries no per-record timestamp of its own.
	SampleIntervalMicros int64 `yaml:"sample_interval_micros"`
}

func loadReplayConfig(path string) (replayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return replayConfig{}, fmt.Errorf("wind-replay: read config: %w", err)
	}
	var cfg replayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return replayConfig{}, fmt.Errorf("wind-replay: parse config: %w", err)
	}
	if cfg.SampleIntervalMicros == 0 {
		cfg.SampleIntervalMicros = 100_000
	}
	return cfg, nil
}
