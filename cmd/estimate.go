package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-pitch/internal/app"
)

var (
	estimateJobsFile    string
	estimateOffsets     []int
	estimateOffsetCount int
	estimateCrossCheck  bool
	estimateOutputFile  string
	estimateQuiet       bool
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [flags] [locations...]",
	Short: "Estimate the pitch of one or more sources",
	Long: `Estimate the fundamental frequency of each source by averaging the best
phase found at every offset.

Locations:
  path/to/file.wav        PCM WAV, mixed down to 8-bit mono
  path/to/file.raw|.s8    headerless signed 8-bit samples at the configured rate
  fixture:<name>          built-in recording (bass, voice)
  sine:<hz>               generated sine tone
  harmonic:<hz>           generated tone with overtones
  tile:<period>           random block repeated every <period> samples

Examples:
  # Estimate a built-in fixture at the reference offsets
  phase-pitch estimate fixture:bass

  # Spread eight offsets over a recording and cross-check with YIN
  phase-pitch estimate --offset-count 8 --cross-check recording.wav

  # Run a jobs file with the cello preset and JSON output
  phase-pitch estimate --jobs jobs.yaml --preset low-strings -o json

  # Prove pruning changes nothing on a tiled buffer
  phase-pitch estimate --no-pruning tile:700`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && estimateJobsFile == "" {
			return fmt.Errorf("requires at least one location or --jobs flag")
		}
		return nil
	},
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	flags := estimateCmd.Flags()
	flags.StringVar(&estimateJobsFile, "jobs", "", "jobs file (YAML or JSON)")
	flags.IntSliceVar(&estimateOffsets, "offsets", nil, "sample offsets to search from (default 0,1015,2320,7060)")
	flags.IntVar(&estimateOffsetCount, "offset-count", 0, "spread this many offsets over each source instead")
	flags.BoolVar(&estimateCrossCheck, "cross-check", false, "compare every estimate with a YIN detector")
	flags.StringVar(&estimateOutputFile, "output-file", "", "write results to this file instead of stdout")
	flags.BoolVarP(&estimateQuiet, "quiet", "q", false, "suppress result output on stdout")

	viper.BindPFlag("analysis.offsets", flags.Lookup("offsets"))
	viper.BindPFlag("analysis.offset_count", flags.Lookup("offset-count"))
	viper.BindPFlag("analysis.cross_check", flags.Lookup("cross-check"))
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pitchApp, err := app.NewPitchApp(&app.Context{
		JobsFile:     estimateJobsFile,
		Locations:    args,
		OutputFile:   estimateOutputFile,
		OutputFormat: viper.GetString("output_format"),
		Verbose:      viper.GetBool("verbose"),
		Quiet:        estimateQuiet,
	})
	if err != nil {
		return err
	}

	return pitchApp.Run(ctx)
}
