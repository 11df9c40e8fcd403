package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/phase-pitch/internal/estimation"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// ScanRun is one configuration of the pruning comparison
type ScanRun struct {
	Pruning     bool             `json:"pruning" yaml:"pruning"`
	Phase       pitch.Phase      `json:"phase" yaml:"phase"`
	MeanPhase   float64          `json:"mean_phase" yaml:"mean_phase"`
	Frequency   float64          `json:"frequency" yaml:"frequency"`
	Estimates   []pitch.Estimate `json:"estimates" yaml:"estimates"`
	Evaluations int64            `json:"evaluations" yaml:"evaluations"`

	// Elapsed is the fastest of all iterations
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// PruningComparison reports what early exit saves on one source
type PruningComparison struct {
	Location   string   `json:"location" yaml:"location"`
	Offsets    []int    `json:"offsets" yaml:"offsets"`
	Iterations int      `json:"iterations" yaml:"iterations"`
	Pruned     *ScanRun `json:"pruned" yaml:"pruned"`
	Exhaustive *ScanRun `json:"exhaustive" yaml:"exhaustive"`

	// Identical is true when both runs chose the same phase and error at every offset
	Identical        bool    `json:"identical" yaml:"identical"`
	EvaluationsSaved int64   `json:"evaluations_saved" yaml:"evaluations_saved"`
	Efficiency       float64 `json:"efficiency" yaml:"efficiency"`
	Speedup          float64 `json:"speedup" yaml:"speedup"`
}

// ComparePruning scans location with and without early exit
func (o *Orchestrator) ComparePruning(ctx context.Context, location string, iterations int) (*PruningComparison, error) {
	if iterations < 1 {
		iterations = 1
	}

	logger := o.logger.WithFields(logging.Fields{
		"function": "ComparePruning",
		"location": location,
	})

	loaded, err := o.engine.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", location, err)
	}

	cfg := o.engine.PitchConfig()
	if rate := loaded.Metadata.SampleRate; rate > 0 {
		cfg.SampleRate = rate
	}

	offsets, err := o.engine.ResolveOffsets(estimation.NewJob(location), loaded.Buffer.Len(), cfg)
	if err != nil {
		return nil, err
	}

	comparison := &PruningComparison{
		Location:   location,
		Offsets:    offsets,
		Iterations: iterations,
	}

	for _, pruning := range []bool{true, false} {
		run, err := o.scan(ctx, loaded.Buffer, cfg, offsets, pruning, iterations)
		if err != nil {
			return nil, err
		}
		if pruning {
			comparison.Pruned = run
		} else {
			comparison.Exhaustive = run
		}
	}

	comparison.Identical = sameEstimates(comparison.Pruned.Estimates, comparison.Exhaustive.Estimates)
	comparison.EvaluationsSaved = comparison.Exhaustive.Evaluations - comparison.Pruned.Evaluations
	if comparison.Exhaustive.Evaluations > 0 {
		comparison.Efficiency = float64(comparison.EvaluationsSaved) / float64(comparison.Exhaustive.Evaluations)
	}
	if comparison.Pruned.Elapsed > 0 {
		comparison.Speedup = float64(comparison.Exhaustive.Elapsed) / float64(comparison.Pruned.Elapsed)
	}

	if !comparison.Identical {
		logger.Warn("Pruned and exhaustive scans disagree", logging.Fields{
			"pruned_phase":     comparison.Pruned.Phase,
			"exhaustive_phase": comparison.Exhaustive.Phase,
		})
	}

	logger.Info("Pruning comparison completed", logging.Fields{
		"pruned_evaluations":     comparison.Pruned.Evaluations,
		"exhaustive_evaluations": comparison.Exhaustive.Evaluations,
		"efficiency":             comparison.Efficiency,
		"speedup":                comparison.Speedup,
	})

	return comparison, nil
}

func (o *Orchestrator) scan(ctx context.Context, buf pitch.Buffer, cfg pitch.Config, offsets []int, pruning bool, iterations int) (*ScanRun, error) {
	cfg.Pruning = pruning

	counter := &pitch.Counter{}
	detector, err := pitch.NewDetector(cfg, pitch.WithLogger(o.logger), pitch.WithCounter(counter))
	if err != nil {
		return nil, err
	}

	var run *ScanRun
	for i := 0; i < iterations; i++ {
		result, err := detector.Detect(ctx, buf, offsets)
		if err != nil {
			return nil, fmt.Errorf("scan with pruning=%t failed: %w", pruning, err)
		}

		if run == nil {
			run = &ScanRun{
				Pruning:     pruning,
				Phase:       result.Phase,
				MeanPhase:   result.MeanPhase,
				Frequency:   result.Frequency,
				Estimates:   result.Estimates,
				Evaluations: result.Evaluations,
				Elapsed:     result.Elapsed,
			}
			continue
		}
		if result.Elapsed < run.Elapsed {
			run.Elapsed = result.Elapsed
		}
	}

	return run, nil
}

func sameEstimates(a, b []pitch.Estimate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
