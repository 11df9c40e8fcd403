package pitch

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// Config holds the named search constants. Every value may be overridden.
type Config struct {
	// SampleRate in samples per second, used only for phase -> frequency
	SampleRate int `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate"`

	// PhaseMin and PhaseMax bound the candidate range [PhaseMin, PhaseMax).
	// Their difference is also the comparison window width.
	PhaseMin Phase `json:"phase_min" yaml:"phase_min" mapstructure:"phase_min"`
	PhaseMax Phase `json:"phase_max" yaml:"phase_max" mapstructure:"phase_max"`

	// ErrorMax seeds the first window evaluation as "no limit"
	ErrorMax Error `json:"error_max" yaml:"error_max" mapstructure:"error_max"`

	Metric MetricType `json:"metric" yaml:"metric" mapstructure:"metric"`

	// Pruning passes the best error so far as the evaluation limit
	Pruning bool `json:"pruning" yaml:"pruning" mapstructure:"pruning"`

	// LegacySentinel seeds the best phase with 0 instead of the first
	// candidate, reproducing the reference program bit for bit
	LegacySentinel bool `json:"legacy_sentinel" yaml:"legacy_sentinel" mapstructure:"legacy_sentinel"`

	// Concurrency limits how many offsets are scanned at once (<=1 is sequential)
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// DefaultConfig returns the reference constants: 32768 Hz, phases
// [512, 1041) which is roughly C2 down to 31 Hz.
func DefaultConfig() Config {
	return Config{
		SampleRate:  32768,
		PhaseMin:    512,
		PhaseMax:    1041,
		ErrorMax:    MaxError,
		Metric:      MetricAbsolute,
		Pruning:     true,
		Concurrency: 1,
	}
}

// LowStringsConfig covers 55-110 Hz at 44100 Hz (cello and guitar open
// strings) with the squared metric.
func LowStringsConfig() Config {
	return Config{
		SampleRate:  44100,
		PhaseMin:    401,
		PhaseMax:    802,
		ErrorMax:    MaxError,
		Metric:      MetricSquared,
		Pruning:     true,
		Concurrency: 1,
	}
}

// PresetConfig returns a named preset
func PresetConfig(name string) (Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "low-strings":
		return LowStringsConfig(), nil
	default:
		return Config{}, NewPitchError(ErrCodeInvalidConfig,
			fmt.Sprintf("unknown preset: %s", name), nil)
	}
}

// Window returns the comparison window width
func (c Config) Window() int {
	return int(c.PhaseMax) - int(c.PhaseMin)
}

// Span returns how many samples one full scan needs from its offset:
// the largest candidate plus the window.
func (c Config) Span() int {
	return int(c.PhaseMax) - 1 + c.Window()
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return newPitchErrorWithFields(ErrCodeInvalidConfig, "sample rate must be positive", nil,
			logging.Fields{"sample_rate": c.SampleRate})
	}

	if c.PhaseMin == 0 {
		return NewPitchError(ErrCodeInvalidConfig, "phase min must be positive", nil)
	}

	if c.PhaseMin >= c.PhaseMax {
		return newPitchErrorWithFields(ErrCodeInvalidConfig, "phase min must be below phase max", nil,
			logging.Fields{"phase_min": c.PhaseMin, "phase_max": c.PhaseMax})
	}

	if _, err := MetricFor(c.Metric); err != nil {
		return err
	}

	// The seed evaluation must never be cut short, otherwise min_error is not exact
	if worst := Error(c.Window()) * maxSampleError(c.Metric); c.ErrorMax < worst {
		return newPitchErrorWithFields(ErrCodeInvalidConfig, "error max is below the worst-case window error", nil,
			logging.Fields{"error_max": c.ErrorMax, "worst_case": worst})
	}

	if c.Concurrency < 0 {
		return NewPitchError(ErrCodeInvalidConfig, "concurrency cannot be negative", nil)
	}

	return nil
}
