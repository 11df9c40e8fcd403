package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/internal/estimation"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// Orchestrator runs estimation jobs and summarizes them
type Orchestrator struct {
	config        *configs.Config
	jobsConfig    *estimation.JobsConfig
	engine        *estimation.Engine
	logger        logging.Logger
	metrics       *MetricsCalculator
	maxConcurrent int
	timeout       time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg *configs.Config, jobsCfg *estimation.JobsConfig, logger logging.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	pitchCfg, err := cfg.Pitch.ToPitchConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pitch configuration: %w", err)
	}

	var reporter pitch.Reporter = pitch.NopReporter{}
	if cfg.Verbose {
		reporter = pitch.NewLogReporter(logger)
	}

	engine, err := estimation.NewEngine(&estimation.EngineConfig{
		Pitch:               pitchCfg,
		Offsets:             cfg.Analysis.Offsets,
		OffsetCount:         cfg.Analysis.OffsetCount,
		SourceLength:        cfg.Source.Length,
		TileSeed:            cfg.Source.TileSeed,
		CrossCheck:          cfg.Analysis.CrossCheck,
		CrossCheckTolerance: cfg.Analysis.CrossCheckTolerance,
		OperationTimeout:    cfg.Analysis.Timeout,
		Logger:              logger,
		Reporter:            reporter,
	})
	if err != nil {
		return nil, err
	}

	maxConcurrent := cfg.Analysis.MaxConcurrentJobs
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Orchestrator{
		config:        cfg,
		jobsConfig:    jobsCfg,
		engine:        engine,
		logger:        logger,
		metrics:       NewMetricsCalculator(logger),
		maxConcurrent: maxConcurrent,
		timeout:       cfg.Analysis.Timeout,
	}, nil
}

// Engine returns the measurement engine
func (o *Orchestrator) Engine() *estimation.Engine {
	return o.engine
}

// RunJobs measures every enabled job, at most maxConcurrent at a time
func (o *Orchestrator) RunJobs(ctx context.Context) (*estimation.Summary, error) {
	return o.runJobs(ctx, o.jobsConfig)
}

func (o *Orchestrator) runJobs(ctx context.Context, jobsConfig *estimation.JobsConfig) (*estimation.Summary, error) {
	if err := jobsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid jobs configuration: %w", err)
	}

	startTime := time.Now()
	names := jobsConfig.JobNames()
	jobs := jobsConfig.GetEnabledJobs()

	o.logger.Debug("Starting estimation run", logging.Fields{
		"enabled_jobs":   len(names),
		"max_concurrent": o.maxConcurrent,
		"timeout":        o.timeout.Seconds(),
	})

	runCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	before := o.engine.Counter().Load()

	// each goroutine owns one slot
	measurements := make([]*estimation.Measurement, len(names))
	p := pool.New().WithMaxGoroutines(o.maxConcurrent)
	for i, name := range names {
		job := jobs[name]
		p.Go(func() {
			measurements[i] = o.engine.MeasureJob(runCtx, job)
		})
	}
	p.Wait()

	endTime := time.Now()
	summary := &estimation.Summary{
		RunID:         uuid.NewString(),
		Measurements:  make(map[string]*estimation.Measurement, len(names)),
		StartTime:     startTime,
		EndTime:       endTime,
		TotalDuration: endTime.Sub(startTime),
		Evaluations:   o.engine.Counter().Load() - before,
	}
	for i, name := range names {
		summary.Measurements[name] = measurements[i]
	}

	o.calculateSummaryMetrics(summary)

	o.logger.Info("Estimation run completed", logging.Fields{
		"run_id":      summary.RunID,
		"successful":  summary.Successful,
		"failed":      summary.Failed,
		"evaluations": summary.Evaluations,
		"duration_ms": summary.TotalDuration.Milliseconds(),
	})

	return summary, nil
}

// RunLocations measures ad hoc locations as enabled jobs named after themselves
func (o *Orchestrator) RunLocations(ctx context.Context, locations []string) (*estimation.Summary, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("at least one location is required")
	}

	jobs := &estimation.JobsConfig{Jobs: make(map[string]*estimation.Job, len(locations))}
	for _, location := range locations {
		jobs.Jobs[location] = estimation.NewJob(location)
	}

	return o.runJobs(ctx, jobs)
}

func (o *Orchestrator) calculateSummaryMetrics(summary *estimation.Summary) {
	for _, m := range summary.Measurements {
		if m.Failed() {
			summary.Failed++
			continue
		}
		summary.Successful++
	}

	summary.Statistics = o.metrics.CalculateStatistics(summary)
}
