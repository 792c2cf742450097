package ordination

import (
	"decorana/domain/core"
)

// AnalysisType selects between detrended correspondence analysis and
// plain reciprocal averaging (correspondence analysis).
type AnalysisType string

const (
	AnalysisDetrended AnalysisType = "detrended"
	AnalysisBasicRA   AnalysisType = "basic_reciprocal_averaging"
)

// Default iteration parameters, matching the classical DECORANA budget.
const (
	DefaultMaxIterations = 999
	DefaultTolerance     = 1e-6
	DefaultSegments      = 26
	DefaultAxes          = 4

	// MinSegments and MaxSegments bound the detrending/rescaling segment
	// count. Fewer than 10 segments no longer removes the arch; more than
	// 46 leaves segments too sparse to carry a stable local mean.
	MinSegments = 10
	MaxSegments = 46

	// MaxAxes is the number of ordination axes the engine will extract.
	MaxAxes = 4
)

// Config holds the parameters of one ordination run. Zero values are
// filled in by Normalize; Validate rejects out-of-range settings before
// any computation starts.
type Config struct {
	// Analysis selects detrended or basic reciprocal averaging.
	Analysis AnalysisType `json:"analysis"`

	// DownweightRare reduces the influence of species whose total
	// abundance is below a fifth of the commonest species.
	DownweightRare bool `json:"downweight_rare"`

	// RescalingCycles is the number of nonlinear rescaling passes per
	// axis. Zero disables rescaling. Only meaningful for detrended runs.
	RescalingCycles int `json:"rescaling_cycles"`

	// Segments is the segment count used by detrending and rescaling.
	// Only meaningful when detrending runs; zero selects DefaultSegments.
	Segments int `json:"segments"`

	// ShortestGradient exempts axes shorter than this many sd units from
	// rescaling, so noise on short gradients is not amplified.
	ShortestGradient float64 `json:"shortest_gradient"`

	// Axes is the number of axes to extract, at most MaxAxes.
	// Zero selects DefaultAxes.
	Axes int `json:"axes"`

	// Tolerance is the convergence threshold on the maximum score
	// displacement between iterations. Zero selects DefaultTolerance.
	Tolerance float64 `json:"tolerance"`

	// MaxIterations is the per-axis iteration budget.
	// Zero selects DefaultMaxIterations.
	MaxIterations int `json:"max_iterations"`
}

// DefaultConfig returns the standard detrended analysis configuration.
func DefaultConfig() Config {
	return Config{
		Analysis:      AnalysisDetrended,
		Segments:      DefaultSegments,
		Axes:          DefaultAxes,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// Normalize fills zero-valued fields with their defaults and returns the
// completed configuration. It does not validate.
func (c Config) Normalize() Config {
	if c.Analysis == "" {
		c.Analysis = AnalysisDetrended
	}
	if c.Segments == 0 {
		c.Segments = DefaultSegments
	}
	if c.Axes == 0 {
		c.Axes = DefaultAxes
	}
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return c
}

// Validate checks the normalized configuration and reports the first
// violation as an ErrInvalidConfig.
func (c Config) Validate() error {
	switch c.Analysis {
	case AnalysisDetrended, AnalysisBasicRA:
	default:
		return core.NewConfigError("analysis", "must be detrended or basic_reciprocal_averaging")
	}
	if c.Axes < 1 || c.Axes > MaxAxes {
		return core.NewConfigError("axes", "must be between 1 and 4")
	}
	if c.Tolerance < 0 {
		return core.NewConfigError("tolerance", "must not be negative")
	}
	if c.MaxIterations <= 0 {
		return core.NewConfigError("max_iterations", "must be positive")
	}
	if c.RescalingCycles < 0 {
		return core.NewConfigError("rescaling_cycles", "must not be negative")
	}
	if c.ShortestGradient < 0 {
		return core.NewConfigError("shortest_gradient", "must not be negative")
	}
	if c.Analysis == AnalysisDetrended {
		if c.Segments < MinSegments || c.Segments > MaxSegments {
			return core.NewConfigError("segments", "must be between 10 and 46")
		}
	}
	return nil
}
