package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/internal/app"
	"github.com/RyanBlaney/phase-pitch/internal/estimation"
	"github.com/RyanBlaney/phase-pitch/pkg/audio/source"
)

var (
	generateLength      int
	generateExampleJobs string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [flags] [<location> <output>]",
	Short: "Render a fixture or synthetic source to a file",
	Long: `Render any location to an 8-bit mono WAV file, or to headerless signed
8-bit samples when the output ends in .raw or .s8. Use --example-jobs to
write a jobs file covering every kind of location.

Examples:
  phase-pitch generate fixture:bass bass.wav
  phase-pitch generate --length 65536 harmonic:82.41 e2.wav
  phase-pitch generate tile:600 tile.s8
  phase-pitch generate --example-jobs jobs.yaml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if generateExampleJobs != "" && len(args) == 0 {
			return nil
		}
		if len(args) != 2 {
			return fmt.Errorf("requires a location and an output file")
		}
		return nil
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.IntVar(&generateLength, "length", 0, "samples to generate (default source.length)")
	flags.StringVar(&generateExampleJobs, "example-jobs", "", "write an example jobs file here")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyColorSetting()

	if generateExampleJobs != "" {
		if err := app.GenerateExampleJobsConfig(generateExampleJobs); err != nil {
			return err
		}
		printSuccess("Wrote example jobs to %s", generateExampleJobs)
	}

	if len(args) == 0 {
		return nil
	}
	location, outputFile := args[0], args[1]

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg, err := config.Pitch.ToPitchConfig()
	if err != nil {
		return err
	}

	length := config.Source.Length
	if generateLength > 0 {
		length = generateLength
	}

	engine, err := estimation.NewEngine(&estimation.EngineConfig{
		Pitch:        cfg,
		SourceLength: length,
		TileSeed:     config.Source.TileSeed,
		Logger:       logging.WithFields(logging.Fields{"command": "generate"}),
	})
	if err != nil {
		return err
	}

	loaded, err := engine.Load(context.Background(), location)
	if err != nil {
		return err
	}

	rate := loaded.Metadata.SampleRate
	if rate <= 0 {
		rate = cfg.SampleRate
	}

	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".raw", ".s8":
		err = source.WriteRawFile(outputFile, loaded.Buffer)
	default:
		err = source.WriteWAVFile(outputFile, loaded.Buffer, rate)
	}
	if err != nil {
		return err
	}

	printSuccess("Wrote %d samples of %s at %d Hz to %s", loaded.Buffer.Len(), location, rate, outputFile)
	return nil
}
