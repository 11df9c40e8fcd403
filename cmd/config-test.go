package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/internal/app"
)

var configTestJobs string

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration, resolves the search constants of the
selected preset and optionally validates a jobs file.

Examples:
  # Test with default config file
  phase-pitch config-test

  # Test with specific config file and a jobs file
  phase-pitch --config /path/to/config.yaml config-test --jobs jobs.yaml`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)

	configTestCmd.Flags().StringVar(&configTestJobs, "jobs", "", "jobs file to validate")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	applyColorSetting()

	fmt.Println("PHASE PITCH CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Log File", config.LogFile)
	printKeyValue("Output Format", config.OutputFormat)
	printKeyValue("Config Directory", config.ConfigDir)
	printKeyValue("Data Directory", config.DataDir)

	printSection("PITCH CONFIGURATION")
	printKeyValue("Preset", config.Pitch.Preset)
	printKeyValue("Metric Override", config.Pitch.Metric)
	printKeyValue("Pruning", fmt.Sprintf("%t", config.Pitch.Pruning))
	printKeyValue("Legacy Sentinel", fmt.Sprintf("%t", config.Pitch.LegacySentinel))
	printKeyValue("Concurrency", fmt.Sprintf("%d", config.Pitch.Concurrency))

	cfg, err := config.Pitch.ToPitchConfig()
	if err != nil {
		return fmt.Errorf("invalid pitch configuration: %w", err)
	}
	printSubsection("Resolved")
	printKeyValue("  Sample Rate", fmt.Sprintf("%d Hz", cfg.SampleRate))
	printKeyValue("  Phase Range", fmt.Sprintf("[%d, %d)", cfg.PhaseMin, cfg.PhaseMax))
	printKeyValue("  Frequency Band", fmt.Sprintf("(%.3f, %.3f] Hz",
		float64(cfg.SampleRate)/float64(cfg.PhaseMax), float64(cfg.SampleRate)/float64(cfg.PhaseMin)))
	printKeyValue("  Window", fmt.Sprintf("%d samples", cfg.Window()))
	printKeyValue("  Span", fmt.Sprintf("%d samples", cfg.Span()))
	printKeyValue("  Error Max", fmt.Sprintf("%d", cfg.ErrorMax))
	printKeyValue("  Metric", string(cfg.Metric))

	printSection("ANALYSIS CONFIGURATION")
	printKeyValue("Offsets", fmt.Sprintf("(%d) %v", len(config.Analysis.Offsets), config.Analysis.Offsets))
	printKeyValue("Offset Count", fmt.Sprintf("%d", config.Analysis.OffsetCount))
	printKeyValue("Cross Check", fmt.Sprintf("%t", config.Analysis.CrossCheck))
	printKeyValue("Cross Check Tolerance", fmt.Sprintf("%.1f cents", config.Analysis.CrossCheckTolerance))
	printKeyValue("Timeout", config.Analysis.Timeout.String())
	printKeyValue("Max Concurrent Jobs", fmt.Sprintf("%d", config.Analysis.MaxConcurrentJobs))

	printSection("SOURCE CONFIGURATION")
	printKeyValue("Length", fmt.Sprintf("%d samples", config.Source.Length))
	printKeyValue("Tile Seed", fmt.Sprintf("%d", config.Source.TileSeed))

	printSection("OUTPUT CONFIGURATION")
	printKeyValue("Precision", fmt.Sprintf("%d", config.Output.Precision))
	printKeyValue("Include Estimates", fmt.Sprintf("%t", config.Output.IncludeEstimates))
	printKeyValue("Timestamps", fmt.Sprintf("%t", config.Output.Timestamps))
	printKeyValue("Colors", fmt.Sprintf("%t", config.Output.Colors))

	printSection("METRICS CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Prefix", config.Metrics.Prefix)
	printKeyValue("Tags", fmt.Sprintf("(%d) %v", len(config.Metrics.Tags), config.Metrics.Tags))

	if configTestJobs != "" {
		jobs, err := app.ValidateJobsConfig(configTestJobs)
		if err != nil {
			return err
		}

		printSection("JOBS")
		printKeyValue("Version", jobs.Version)
		printKeyValue("Description", jobs.Description)
		for _, name := range sortedKeys(jobs.Jobs) {
			job := jobs.Jobs[name]
			printSubsection(strings.ToUpper(name))
			printKeyValue("  Name", job.Name)
			printKeyValue("  Location", job.Location)
			printKeyValue("  Preset", job.Preset)
			printKeyValue("  Offsets", fmt.Sprintf("(%d) %v", len(job.Offsets), job.Offsets))
			printKeyValue("  Offset Count", fmt.Sprintf("%d", job.OffsetCount))
			printKeyValue("  Expected Note", job.ExpectedNote)
			printKeyValue("  Enabled", fmt.Sprintf("%t", job.Enabled))
		}
	}

	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Println()
	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", getConfigFilePath())
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}
