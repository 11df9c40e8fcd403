package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ReferenceOffsets are the buffer offsets the reference recordings were
// analysed at
var ReferenceOffsets = []int{0, 1015, 2320, 7060}

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	// Application defaults
	if !v.IsSet("verbose") {
		v.SetDefault("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.SetDefault("log_level", "info")
	}
	if !v.IsSet("log_file") {
		v.SetDefault("log_file", "")
	}
	if !v.IsSet("output_format") {
		v.SetDefault("output_format", "table")
	}
	if !v.IsSet("config_dir") {
		v.SetDefault("config_dir", filepath.Join(home, ".config", "phase-pitch"))
	}
	if !v.IsSet("data_dir") {
		v.SetDefault("data_dir", filepath.Join(home, ".local", "share", "phase-pitch"))
	}

	// Phase search defaults; zero values defer to the preset
	if !v.IsSet("pitch.preset") {
		v.SetDefault("pitch.preset", "default")
	}
	if !v.IsSet("pitch.metric") {
		v.SetDefault("pitch.metric", "")
	}
	if !v.IsSet("pitch.pruning") {
		v.SetDefault("pitch.pruning", true)
	}
	if !v.IsSet("pitch.legacy_sentinel") {
		v.SetDefault("pitch.legacy_sentinel", false)
	}
	if !v.IsSet("pitch.concurrency") {
		v.SetDefault("pitch.concurrency", 1)
	}

	// Analysis defaults
	if !v.IsSet("analysis.offsets") {
		v.SetDefault("analysis.offsets", ReferenceOffsets)
	}
	if !v.IsSet("analysis.offset_count") {
		v.SetDefault("analysis.offset_count", 0)
	}
	if !v.IsSet("analysis.cross_check") {
		v.SetDefault("analysis.cross_check", false)
	}
	if !v.IsSet("analysis.cross_check_tolerance") {
		v.SetDefault("analysis.cross_check_tolerance", 50.0)
	}
	if !v.IsSet("analysis.timeout") {
		v.SetDefault("analysis.timeout", 30*time.Second)
	}
	if !v.IsSet("analysis.max_concurrent_jobs") {
		v.SetDefault("analysis.max_concurrent_jobs", 4)
	}

	// Source defaults
	if !v.IsSet("source.length") {
		v.SetDefault("source.length", 16384)
	}
	if !v.IsSet("source.tile_seed") {
		v.SetDefault("source.tile_seed", 1)
	}

	// Output defaults
	if !v.IsSet("output.precision") {
		v.SetDefault("output.precision", 3)
	}
	if !v.IsSet("output.include_estimates") {
		v.SetDefault("output.include_estimates", true)
	}
	if !v.IsSet("output.timestamps") {
		v.SetDefault("output.timestamps", true)
	}
	if !v.IsSet("output.colors") {
		v.SetDefault("output.colors", true)
	}

	// Metrics defaults
	if !v.IsSet("metrics.enabled") {
		v.SetDefault("metrics.enabled", false)
	}
	if !v.IsSet("metrics.prefix") {
		v.SetDefault("metrics.prefix", "pitch.estimation")
	}
	if !v.IsSet("metrics.tags") {
		v.SetDefault("metrics.tags", []string{})
	}
}

// GetDefaultConfig returns a configuration with default values
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		ConfigDir:    filepath.Join(home, ".config", "phase-pitch"),
		DataDir:      filepath.Join(home, ".local", "share", "phase-pitch"),

		Pitch:    GetDefaultPitchConfig(),
		Analysis: GetDefaultAnalysisConfig(),
		Source:   GetDefaultSourceConfig(),
		Output:   GetDefaultOutputConfig(),
		Metrics:  GetDefaultMetricsConfig(),
	}
}

// GetDefaultPitchConfig returns the reference preset without overrides
func GetDefaultPitchConfig() PitchConfig {
	return PitchConfig{
		Preset:      "default",
		Pruning:     true,
		Concurrency: 1,
	}
}

// GetDefaultAnalysisConfig returns the default analysis settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Offsets:             append([]int(nil), ReferenceOffsets...),
		CrossCheck:          false,
		CrossCheckTolerance: 50,
		Timeout:             30 * time.Second,
		MaxConcurrentJobs:   4,
	}
}

// GetDefaultSourceConfig returns the default generated-source settings
func GetDefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Length:   16384,
		TileSeed: 1,
	}
}

// GetDefaultOutputConfig returns the default output settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Precision:        3,
		IncludeEstimates: true,
		Timestamps:       true,
		Colors:           true,
	}
}

// GetDefaultMetricsConfig returns metrics disabled with the default prefix
func GetDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: false,
		Prefix:  "pitch.estimation",
		Tags:    []string{},
	}
}

// GetDefaultOutputConfigForFormat returns output settings suited to format.
// Machine-readable formats drop colours.
func GetDefaultOutputConfigForFormat(format string) OutputConfig {
	cfg := GetDefaultOutputConfig()
	switch format {
	case "json", "yaml", "csv":
		cfg.Colors = false
	}
	return cfg
}
