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
	"github.com/RyanBlaney/phase-pitch/internal/benchmark"
)

var (
	benchmarkIterations int
	benchmarkOutputFile string
	benchmarkOffsets    []int
	benchmarkCount      int
)

// benchmarkCmd represents the benchmark command
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark [flags] [location]",
	Short: "Compare pruned and exhaustive phase searches",
	Long: `Search the same source twice, once with early-exit pruning and once
evaluating every candidate over the full window, then report how many
metric evaluations pruning saved and whether both runs agree.

The location defaults to fixture:bass.

Examples:
  # Benchmark the bass fixture
  phase-pitch benchmark

  # Best of ten runs over a generated tone, as JSON
  phase-pitch benchmark --iterations 10 -o json harmonic:55

  # Benchmark a recording at twelve spread offsets
  phase-pitch benchmark --offset-count 12 recording.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	flags := benchmarkCmd.Flags()
	flags.IntVarP(&benchmarkIterations, "iterations", "n", 3, "runs per configuration, the fastest is reported")
	flags.StringVar(&benchmarkOutputFile, "output-file", "", "write results to this file instead of stdout")
	flags.IntSliceVar(&benchmarkOffsets, "offsets", nil, "sample offsets to search from")
	flags.IntVar(&benchmarkCount, "offset-count", 0, "spread this many offsets over the source instead")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	applyColorSetting()

	location := "fixture:bass"
	if len(args) == 1 {
		location = args[0]
	}

	if cmd.Flags().Changed("offsets") {
		viper.Set("analysis.offsets", benchmarkOffsets)
	}
	if cmd.Flags().Changed("offset-count") {
		viper.Set("analysis.offset_count", benchmarkCount)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format := viper.GetString("output_format")
	table := format == "table" && benchmarkOutputFile == ""

	timer := NewPerformanceTimer()
	timer.StartEvent("setup")

	pitchApp, err := app.NewPitchApp(&app.Context{
		OutputFile:   benchmarkOutputFile,
		OutputFormat: format,
		Verbose:      viper.GetBool("verbose"),
		Quiet:        table,
	})
	if err != nil {
		return err
	}
	timer.EndEvent("setup")

	if table {
		printHeader("Pruning Benchmark", location)
	}

	timer.StartEvent("pruning_comparison")
	comparison, err := pitchApp.RunPruningBenchmark(ctx, location, benchmarkIterations)
	if err != nil {
		return err
	}
	timer.EndEvent("pruning_comparison")

	if table {
		printComparison(comparison)
		fmt.Println()
		displayPerformanceSummary(timer)
	}

	if !comparison.Identical {
		return fmt.Errorf("pruned and exhaustive searches disagree on %s", location)
	}

	return nil
}

func printComparison(c *benchmark.PruningComparison) {
	printSectionHeader("Search")
	printInfo("Offsets: %v", c.Offsets)
	printInfo("Iterations: %d", c.Iterations)

	for _, run := range []*benchmark.ScanRun{c.Pruned, c.Exhaustive} {
		name := "Exhaustive"
		if run.Pruning {
			name = "Pruned"
		}
		printSectionHeader(name)
		printInfo("Phase: %d (mean %.3f)", run.Phase, run.MeanPhase)
		printInfo("Frequency: %.3f Hz", run.Frequency)
		printInfo("Evaluations: %d", run.Evaluations)
		printInfo("Fastest run: %v", run.Elapsed)
	}

	printSectionHeader("Result")
	printResult("Identical", c.Identical)
	if c.Efficiency > 0 {
		printSuccess("Pruning skipped %d evaluations (%.1f%%)", c.EvaluationsSaved, 100*c.Efficiency)
	} else {
		printWarning("Pruning skipped no evaluations")
	}
	printInfo("Speedup: %.2fx", c.Speedup)
}
