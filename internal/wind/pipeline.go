package wind

// Pipeline wires the fixed eight-step wind correction sequence (spec
// §4.4) around one configured sonic: parse, despike, transducer-shadow
// correction, orientation remap, bias/tilt, temperature correction,
// horizontal rotation, and spd/dir derivation.
type Pipeline struct {
	parser Parser

	// despike and shadow are both optional: a 2-D anemometer has no
	// vertical axis to shadow-correct, and a deployment may disable
	// despiking entirely (threshold <= 0 at construction).
	despike *Despiker
	shadow  *ShadowCorrector

	orient Orientation
	tilt   Tilter

	tcSlope, tcOffset float64
	azimuthRad        float64

	// measured2D is true when the sonic's native measurement is
	// (spd, dir) rather than (u, v) — spec §4.4 step 8's 2-D case,
	// where the re-derivation after calibration is the authoritative
	// spd/dir rather than a convenience echo of (u, v).
	measured2D bool
}

// PipelineConfig collects one sonic's cal-file-derived parameters.
type PipelineConfig struct {
	Parser     Parser
	Despike    *Despiker
	Shadow     *ShadowCorrector
	Orient     Orientation
	Tilt       Tilter
	TcSlope    float64
	TcOffset   float64
	AzimuthRad float64
	Measured2D bool
}

// NewPipeline builds a Pipeline from cfg. TcSlope defaults to 1 when
// left at its zero value, matching an unconfigured (pass-through)
// temperature correction.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	slope := cfg.TcSlope
	if slope == 0 {
		slope = 1
	}
	return &Pipeline{
		parser:     cfg.Parser,
		despike:    cfg.Despike,
		shadow:     cfg.Shadow,
		orient:     cfg.Orient,
		tilt:       cfg.Tilt,
		tcSlope:    slope,
		tcOffset:   cfg.TcOffset,
		azimuthRad: cfg.AzimuthRad,
		measured2D: cfg.Measured2D,
	}
}

// FrameLength reports the underlying parser's expected raw frame size.
func (p *Pipeline) FrameLength() int { return p.parser.FrameLength() }

// Process runs one raw frame through parse and all eight correction
// steps, returning the fully-corrected Record.
func (p *Pipeline) Process(raw []byte, timestamp int64) (Record, error) {
	rec, err := p.parser.Parse(raw)
	if err != nil {
		return Record{}, err
	}
	rec.Timestamp = timestamp

	if p.despike != nil {
		p.despike.Apply(&rec)
	}

	if p.shadow != nil {
		rec.U, rec.V, rec.W = p.shadow.Apply(rec.U, rec.V, rec.W)
	}

	rec.U, rec.V, rec.W = p.orient.Apply(rec.U, rec.V, rec.W)
	rec.U, rec.V, rec.W = p.tilt.Apply(rec.U, rec.V, rec.W)

	if !isInvalid(rec.Tc) {
		rec.Tc = rec.Tc*p.tcSlope + p.tcOffset
	}

	rec.U, rec.V = Rotate(rec.U, rec.V, p.azimuthRad)

	// The measured-pair-is-(u,v) case derives spd/dir from the fully
	// corrected horizontal wind. The measured-pair-is-(spd,dir) case
	// (2-D anemometer) re-derives spd/dir the same way, which is the
	// whole point of carrying it through orientation and tilt as
	// (u, v) rather than as a raw polar pair.
	rec.Spd, rec.Dir = SpdDir(rec.U, rec.V)
	if p.measured2D {
		// 2-D sonics have no w; leave it exactly as parsed (0).
		rec.W = 0
	}

	return rec, nil
}
