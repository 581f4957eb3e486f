package engine

// Config holds the comparison options. All three parameters affect the
// computation; none is silently defaulted during a comparison, so a
// zero-valued Config is rejected rather than patched up.
type Config struct {
	// Sensitivity controls how steeply the score decays with RMSE.
	Sensitivity float64

	// Radius is the Sakoe-Chiba band half-width for the aligner. The
	// effective radius is widened automatically when the two recordings
	// differ in length by more than this.
	Radius int

	// ShapeLimit is the maximum allowed global RMSE in meters before
	// the shape grade fails to 0.
	ShapeLimit float64
}

// DefaultConfig returns the standard clinical configuration.
func DefaultConfig() Config {
	return Config{
		Sensitivity: 3.0,
		Radius:      10,
		ShapeLimit:  0.20,
	}
}

// validate rejects non-positive options.
func (c Config) validate() error {
	if c.Sensitivity <= 0 {
		return &ConfigurationError{Option: "sensitivity", Value: c.Sensitivity}
	}
	if c.Radius <= 0 {
		return &ConfigurationError{Option: "radius", Value: float64(c.Radius)}
	}
	if c.ShapeLimit <= 0 {
		return &ConfigurationError{Option: "shape_limit", Value: c.ShapeLimit}
	}
	return nil
}

// Compare runs one full comparison of a patient trajectory against an
// expert reference and returns the assembled result.
//
// The computation is pure and synchronous: it allocates its own working
// buffers, touches no shared state, and is safe to call concurrently
// from independent requests. Neither input slice is mutated.
func Compare(reference, patient Trajectory, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := reference.Validate("reference"); err != nil {
		return nil, err
	}
	if err := patient.Validate("patient"); err != nil {
		return nil, err
	}

	// Alignment and shape error work on mean-centered copies; ROM works
	// on the raw trajectories since range ignores translation.
	refCentered := reference.Center()
	patCentered := patient.Center()

	path, distance := alignDTW(refCentered, patCentered, cfg.Radius)
	shape := computeShapeMetrics(refCentered, patCentered, path, distance)
	rom := computeROMMetrics(reference, patient)
	score := scoreFromRMSE(shape.GlobalRMSE, cfg.Sensitivity)

	return assembleResult(shape, rom, score, cfg.ShapeLimit), nil
}

// Align exposes the banded alignment on already-centered trajectories.
// It exists for callers that need the raw path, such as the comparison
// chart renderer; Compare is the normal entry point.
func Align(reference, query Trajectory, radius int) ([]PathPair, float64, error) {
	if radius < 1 {
		return nil, 0, &ConfigurationError{Option: "radius", Value: float64(radius)}
	}
	if err := reference.Validate("reference"); err != nil {
		return nil, 0, err
	}
	if err := query.Validate("query"); err != nil {
		return nil, 0, err
	}
	path, distance := alignDTW(reference, query, radius)
	return path, distance, nil
}
