package estimation

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/phase-pitch/pkg/audio/note"
	"github.com/RyanBlaney/phase-pitch/pkg/audio/source"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// Engine measures single jobs: load, detect, name the note and optionally
// cross-check and validate the result
type Engine struct {
	logger           logging.Logger
	pitchConfig      pitch.Config
	offsets          []int
	offsetCount      int
	sourceLength     int
	operationTimeout time.Duration
	reporter         pitch.Reporter
	counter          *pitch.Counter
	factory          *source.Factory
	crossChecker     *CrossChecker
}

// EngineConfig contains configuration for the engine
type EngineConfig struct {
	Pitch pitch.Config

	// Offsets and OffsetCount apply to jobs that set neither
	Offsets     []int
	OffsetCount int

	SourceLength int
	TileSeed     int64

	CrossCheck          bool
	CrossCheckTolerance float64

	OperationTimeout time.Duration

	Logger   logging.Logger
	Reporter pitch.Reporter

	// Counter receives the evaluations of every measurement
	Counter *pitch.Counter
}

// NewEngine creates a new engine
func NewEngine(config *EngineConfig) (*Engine, error) {
	if err := config.Pitch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pitch configuration: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	reporter := config.Reporter
	if reporter == nil {
		reporter = pitch.NopReporter{}
	}

	counter := config.Counter
	if counter == nil {
		counter = &pitch.Counter{}
	}

	factory := source.NewFactory()
	if config.TileSeed != 0 {
		seed := config.TileSeed
		factory.RegisterLoaderFactory(source.SourceTypeSynthetic, func() source.Loader {
			return &source.SyntheticLoader{Seed: seed}
		})
	}

	e := &Engine{
		logger:           logger,
		pitchConfig:      config.Pitch,
		offsets:          append([]int(nil), config.Offsets...),
		offsetCount:      config.OffsetCount,
		sourceLength:     config.SourceLength,
		operationTimeout: config.OperationTimeout,
		reporter:         reporter,
		counter:          counter,
		factory:          factory,
	}

	if config.CrossCheck {
		e.crossChecker = NewCrossChecker(config.CrossCheckTolerance, logger)
	}

	return e, nil
}

// PitchConfig returns the base search constants
func (e *Engine) PitchConfig() pitch.Config {
	return e.pitchConfig
}

// Counter returns the counter shared by all measurements
func (e *Engine) Counter() *pitch.Counter {
	return e.counter
}

// Load reads a location at the base sample rate
func (e *Engine) Load(ctx context.Context, location string) (*source.Loaded, error) {
	return e.factory.DetectAndLoad(ctx, location, source.LoadOptions{
		SampleRate: e.pitchConfig.SampleRate,
		Length:     e.sourceLength,
	})
}

// MeasureJob measures a single job. Failures are recorded on the
// measurement rather than returned.
func (e *Engine) MeasureJob(ctx context.Context, job *Job) *Measurement {
	startTime := time.Now()
	measurement := &Measurement{
		Job:       job,
		Timestamp: startTime,
	}
	defer func() {
		measurement.TotalTime = time.Since(startTime)
	}()

	logger := e.logger.WithFields(logging.Fields{
		"job":      job.Name,
		"location": job.Location,
	})

	logger.Debug("Starting job measurement")

	if e.operationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.operationTimeout)
		defer cancel()
	}

	cfg, err := e.configFor(job)
	if err != nil {
		logger.Error(err, "Invalid job configuration")
		return measurement.fail(err)
	}

	loadStart := time.Now()
	loaded, err := e.factory.DetectAndLoad(ctx, job.Location, source.LoadOptions{
		SampleRate: cfg.SampleRate,
		Length:     e.sourceLength,
	})
	measurement.LoadTime = time.Since(loadStart)
	if err != nil {
		logger.Error(err, "Failed to load source")
		return measurement.fail(fmt.Errorf("failed to load %s: %w", job.Location, err))
	}
	measurement.Source = loaded.Metadata

	if rate := loaded.Metadata.SampleRate; rate > 0 && rate != cfg.SampleRate {
		logger.Warn("Source sample rate differs from configuration", logging.Fields{
			"source_rate": rate,
			"config_rate": cfg.SampleRate,
		})
		cfg.SampleRate = rate
	}
	measurement.Config = &cfg

	offsets, err := e.ResolveOffsets(job, loaded.Buffer.Len(), cfg)
	if err != nil {
		logger.Error(err, "Failed to resolve offsets")
		return measurement.fail(err)
	}
	measurement.Offsets = offsets

	// a private counter keeps each result's evaluation count its own
	// when jobs run concurrently
	counter := &pitch.Counter{}
	detector, err := pitch.NewDetector(cfg,
		pitch.WithLogger(logger),
		pitch.WithReporter(e.reporter),
		pitch.WithCounter(counter),
	)
	if err != nil {
		return measurement.fail(err)
	}

	detectStart := time.Now()
	result, err := detector.Detect(ctx, loaded.Buffer, offsets)
	measurement.DetectTime = time.Since(detectStart)
	e.counter.Add(counter.Load())
	if err != nil {
		return measurement.fail(fmt.Errorf("detection failed: %w", err))
	}
	measurement.Result = result

	n, err := note.FromFrequency(result.Frequency)
	if err != nil {
		return measurement.fail(fmt.Errorf("failed to name note: %w", err))
	}
	measurement.Note = &n

	if e.crossChecker != nil {
		check, err := e.crossChecker.Check(loaded.Buffer, cfg, offsets, result.Frequency)
		if err != nil {
			logger.Warn("Cross-check skipped", logging.Fields{"error": err.Error()})
		} else {
			measurement.CrossCheck = check
		}
	}

	if job.ExpectedNote != "" {
		validation, err := Validate(job.ExpectedNote, result.Frequency)
		if err != nil {
			return measurement.fail(err)
		}
		measurement.Validation = validation
	}

	logger.Info("Job measured", logging.Fields{
		"phase":       result.Phase,
		"frequency":   result.Frequency,
		"note":        n.Name,
		"cents":       n.Cents,
		"evaluations": result.Evaluations,
	})

	return measurement
}

// ResolveOffsets picks the offsets for job: its own count or list first,
// then the engine's
func (e *Engine) ResolveOffsets(job *Job, bufferLen int, cfg pitch.Config) ([]int, error) {
	switch {
	case job.OffsetCount > 0:
		return pitch.SpreadOffsets(bufferLen, cfg, job.OffsetCount)
	case len(job.Offsets) > 0:
		return append([]int(nil), job.Offsets...), nil
	case e.offsetCount > 0:
		return pitch.SpreadOffsets(bufferLen, cfg, e.offsetCount)
	case len(e.offsets) > 0:
		return append([]int(nil), e.offsets...), nil
	default:
		return nil, pitch.ErrEmptyInput
	}
}

// configFor swaps in the job's preset, keeping the base search switches
func (e *Engine) configFor(job *Job) (pitch.Config, error) {
	if job.Preset == "" {
		return e.pitchConfig, nil
	}

	cfg, err := pitch.PresetConfig(job.Preset)
	if err != nil {
		return pitch.Config{}, err
	}
	cfg.Pruning = e.pitchConfig.Pruning
	cfg.LegacySentinel = e.pitchConfig.LegacySentinel
	cfg.Concurrency = e.pitchConfig.Concurrency

	return cfg, nil
}

// Validate compares the note a frequency resolves to with an expected note name
func Validate(expected string, frequency float64) (*Validation, error) {
	want, err := note.Parse(expected)
	if err != nil {
		return nil, err
	}

	got, err := note.FromFrequency(frequency)
	if err != nil {
		return nil, err
	}

	return &Validation{
		ExpectedNote: want.String(),
		DetectedNote: got.Name,
		Matches:      got.Pitch == want,
		Cents:        Cents(frequency, want.Frequency()),
	}, nil
}
