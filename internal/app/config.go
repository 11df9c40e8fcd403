package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/internal/estimation"
)

type JobsConfig = estimation.JobsConfig

// LoadJobsConfigFromFile loads a jobs file, YAML or JSON by extension
func LoadJobsConfigFromFile(filePath string) (*JobsConfig, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("jobs configuration file does not exist: %s", filePath)
	}

	ext := filepath.Ext(filePath)
	switch ext {
	case ".yaml", ".yml":
		return loadJobsConfigFromYAML(filePath)
	case ".json":
		return loadJobsConfigFromJSON(filePath)
	default:
		// Try YAML first, then JSON
		if cfg, err := loadJobsConfigFromYAML(filePath); err == nil {
			return cfg, nil
		}
		return loadJobsConfigFromJSON(filePath)
	}
}

// loadJobsConfigFromYAML loads jobs config from YAML file
func loadJobsConfigFromYAML(filePath string) (*JobsConfig, error) {
	data, err := readConfigFile(filePath, "YAML")
	if err != nil {
		return nil, err
	}

	var config JobsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML jobs config: %w", err)
	}

	config.ApplyInheritance()

	return &config, nil
}

// loadJobsConfigFromJSON loads jobs config from JSON file
func loadJobsConfigFromJSON(filePath string) (*JobsConfig, error) {
	data, err := readConfigFile(filePath, "JSON")
	if err != nil {
		return nil, err
	}

	var config JobsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON jobs config: %w", err)
	}

	config.ApplyInheritance()

	return &config, nil
}

func readConfigFile(filePath, format string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s jobs config file: %w", format, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s jobs config file: %w", format, err)
	}

	return data, nil
}

// ExampleJobsConfig returns a jobs file covering every kind of location
func ExampleJobsConfig() *JobsConfig {
	return &JobsConfig{
		Version:     "1.0",
		Description: "Example pitch estimation jobs",
		Defaults: JobDefaults{
			Preset:  "default",
			Offsets: append([]int(nil), configs.ReferenceOffsets...),
		},
		Jobs: map[string]*estimation.Job{
			"bass": {
				Name:         "Bass guitar low E",
				Location:     "fixture:bass",
				ExpectedNote: "E1",
				Enabled:      true,
			},
			"voice": {
				Name:         "Sung A",
				Location:     "fixture:voice",
				ExpectedNote: "A1",
				Enabled:      true,
			},
			"b1_tone": {
				Name:         "Harmonic B1",
				Location:     "harmonic:61.735",
				OffsetCount:  6,
				ExpectedNote: "B1",
				Enabled:      true,
			},
			"cello_g": {
				Name:         "Cello G string",
				Location:     "harmonic:98",
				Preset:       "low-strings",
				ExpectedNote: "G2",
				Enabled:      true,
			},
			"recording": {
				Name:     "Recorded sample",
				Location: "samples/recording.wav",
				Enabled:  false,
			},
		},
	}
}

type JobDefaults = estimation.JobDefaults

// GenerateExampleJobsConfig writes ExampleJobsConfig to outputFile as YAML
func GenerateExampleJobsConfig(outputFile string) error {
	data, err := yaml.Marshal(ExampleJobsConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example jobs config: %w", err)
	}

	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write jobs config file: %w", err)
	}

	return nil
}

// ValidateJobsConfig loads and validates a jobs file
func ValidateJobsConfig(configFile string) (*JobsConfig, error) {
	config, err := LoadJobsConfigFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("jobs configuration validation failed: %w", err)
	}

	return config, nil
}
