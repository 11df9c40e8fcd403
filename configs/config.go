package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	LogFile      string `mapstructure:"log_file"`
	OutputFormat string `mapstructure:"output_format"`
	ConfigDir    string `mapstructure:"config_dir"`
	DataDir      string `mapstructure:"data_dir"`

	// Phase search constants
	Pitch PitchConfig `mapstructure:"pitch"`

	// How buffers are sampled and checked
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Generated and headerless sources
	Source SourceConfig `mapstructure:"source"`

	Output OutputConfig `mapstructure:"output"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

// PitchConfig overrides the constants of a named preset. Zero values keep
// the preset's value.
type PitchConfig struct {
	Preset     string `mapstructure:"preset"`
	SampleRate int    `mapstructure:"sample_rate"`
	PhaseMin   uint32 `mapstructure:"phase_min"`
	PhaseMax   uint32 `mapstructure:"phase_max"`

	// MinFrequency and MaxFrequency, when both set, replace the phase
	// bounds with the band they cover
	MinFrequency float64 `mapstructure:"min_frequency"`
	MaxFrequency float64 `mapstructure:"max_frequency"`

	ErrorMax       uint64 `mapstructure:"error_max"`
	Metric         string `mapstructure:"metric"`
	Pruning        bool   `mapstructure:"pruning"`
	LegacySentinel bool   `mapstructure:"legacy_sentinel"`
	Concurrency    int    `mapstructure:"concurrency"`
}

// AnalysisConfig contains offset selection and cross-check settings
type AnalysisConfig struct {
	// Offsets are used as given unless OffsetCount is positive, in which
	// case that many offsets are spread over the buffer
	Offsets     []int `mapstructure:"offsets"`
	OffsetCount int   `mapstructure:"offset_count"`

	CrossCheck bool `mapstructure:"cross_check"`

	// CrossCheckTolerance is the largest disagreement, in cents, still
	// counted as agreement
	CrossCheckTolerance float64 `mapstructure:"cross_check_tolerance"`

	Timeout           time.Duration `mapstructure:"timeout"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
}

// SourceConfig contains settings for generated sources
type SourceConfig struct {
	Length   int   `mapstructure:"length"`
	TileSeed int64 `mapstructure:"tile_seed"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision        int  `mapstructure:"precision"`
	IncludeEstimates bool `mapstructure:"include_estimates"`
	Timestamps       bool `mapstructure:"timestamps"`
	Colors           bool `mapstructure:"colors"`
}

// MetricsConfig controls result metric emission
type MetricsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Prefix  string   `mapstructure:"prefix"`
	Tags    []string `mapstructure:"tags"`
}

// LoadConfig loads configuration from viper, filling unset keys with defaults
func LoadConfig() (*Config, error) {
	v := viper.GetViper()
	setDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ApplyDefaults sets every unset key of v to its default
func ApplyDefaults(v *viper.Viper) {
	setDefaults(v)
}

// ToPitchConfig resolves the preset and applies the overrides
func (c PitchConfig) ToPitchConfig() (pitch.Config, error) {
	cfg, err := pitch.PresetConfig(c.Preset)
	if err != nil {
		return pitch.Config{}, err
	}

	if c.SampleRate > 0 {
		cfg.SampleRate = c.SampleRate
	}
	if c.PhaseMin > 0 {
		cfg.PhaseMin = pitch.Phase(c.PhaseMin)
	}
	if c.PhaseMax > 0 {
		cfg.PhaseMax = pitch.Phase(c.PhaseMax)
	}
	if c.MinFrequency > 0 && c.MaxFrequency > 0 {
		lo, hi, err := pitch.PhaseRange(c.MinFrequency, c.MaxFrequency, cfg.SampleRate)
		if err != nil {
			return pitch.Config{}, fmt.Errorf("invalid frequency band: %w", err)
		}
		cfg.PhaseMin, cfg.PhaseMax = lo, hi
	}
	if c.ErrorMax > 0 {
		cfg.ErrorMax = pitch.Error(c.ErrorMax)
	}
	if c.Metric != "" {
		cfg.Metric = pitch.MetricType(c.Metric)
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	cfg.Pruning = c.Pruning
	cfg.LegacySentinel = c.LegacySentinel

	return cfg, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	cfg, err := config.Pitch.ToPitchConfig()
	if err != nil {
		return fmt.Errorf("invalid pitch configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid pitch configuration: %w", err)
	}

	if config.Analysis.OffsetCount < 0 {
		return fmt.Errorf("offset count cannot be negative")
	}

	if config.Analysis.OffsetCount == 0 && len(config.Analysis.Offsets) == 0 {
		return fmt.Errorf("either offsets or a positive offset count is required")
	}

	for _, offset := range config.Analysis.Offsets {
		if offset < 0 {
			return fmt.Errorf("offsets cannot be negative: %d", offset)
		}
	}

	if config.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis timeout must be positive")
	}

	if config.Analysis.CrossCheckTolerance < 0 {
		return fmt.Errorf("cross-check tolerance cannot be negative")
	}

	if config.Analysis.MaxConcurrentJobs < 1 {
		return fmt.Errorf("max concurrent jobs must be at least 1")
	}

	if config.Source.Length < 0 {
		return fmt.Errorf("source length cannot be negative")
	}

	switch config.OutputFormat {
	case "json", "yaml", "csv", "table":
	default:
		return fmt.Errorf("unsupported output format: %s", config.OutputFormat)
	}

	return nil
}
