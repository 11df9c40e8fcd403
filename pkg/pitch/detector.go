package pitch

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// Result is the outcome of one detection over a buffer
type Result struct {
	// Phase is the truncated average phase
	Phase Phase `json:"phase" yaml:"phase"`

	// MeanPhase keeps the fractional part of the average
	MeanPhase float64 `json:"mean_phase" yaml:"mean_phase"`

	// Frequency is SampleRate / MeanPhase
	Frequency float64 `json:"frequency" yaml:"frequency"`

	SampleRate  int           `json:"sample_rate" yaml:"sample_rate"`
	Estimates   []Estimate    `json:"estimates" yaml:"estimates"`
	Evaluations int64         `json:"evaluations" yaml:"evaluations"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Detector wires the estimator, averager and frequency conversion together
type Detector struct {
	cfg      Config
	logger   logging.Logger
	reporter Reporter
	counter  *Counter
	averager *MultiOffsetAverager
}

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the logger used for lifecycle logs
func WithLogger(logger logging.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithReporter sets the diagnostic reporter
func WithReporter(reporter Reporter) Option {
	return func(d *Detector) {
		d.reporter = reporter
	}
}

// WithCounter shares an evaluation counter with the caller. Without it
// the detector keeps a private one.
func WithCounter(counter *Counter) Option {
	return func(d *Detector) {
		d.counter = counter
	}
}

// NewDetector validates cfg and builds a detector
func NewDetector(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	if d.logger == nil {
		d.logger = logging.NewDefaultLogger()
	}
	if d.reporter == nil {
		d.reporter = NopReporter{}
	}
	if d.counter == nil {
		d.counter = &Counter{}
	}

	estimator, err := NewPhaseEstimator(cfg, d.counter)
	if err != nil {
		return nil, err
	}
	d.averager = NewMultiOffsetAverager(cfg, estimator, d.reporter)

	return d, nil
}

// Config returns the detector configuration
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect averages the phase over offsets and converts it to a frequency.
// With no offsets it fails with EmptyInput.
func (d *Detector) Detect(ctx context.Context, src SampleSource, offsets []int) (*Result, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function":   "Detect",
		"buffer_len": src.Len(),
		"offsets":    len(offsets),
	})

	startTime := time.Now()
	before := d.counter.Load()

	avg, err := d.averager.AveragePhase(ctx, src, offsets)
	if err != nil {
		logger.Error(err, "Phase averaging failed")
		return nil, err
	}

	frequency, err := ToFrequencyFloat(avg.Mean, d.cfg.SampleRate)
	if err != nil {
		logger.Error(err, "Frequency conversion failed", logging.Fields{"mean_phase": avg.Mean})
		return nil, fmt.Errorf("failed to convert phase to frequency: %w", err)
	}

	evaluations := d.counter.Load() - before
	d.reporter.ReportEvaluations(evaluations)

	result := &Result{
		Phase:       avg.Phase,
		MeanPhase:   avg.Mean,
		Frequency:   frequency,
		SampleRate:  d.cfg.SampleRate,
		Estimates:   avg.Estimates,
		Evaluations: evaluations,
		Elapsed:     time.Since(startTime),
	}

	logger.Debug("Detection completed", logging.Fields{
		"phase":       result.Phase,
		"mean_phase":  result.MeanPhase,
		"frequency":   result.Frequency,
		"evaluations": result.Evaluations,
		"elapsed_ms":  result.Elapsed.Milliseconds(),
	})

	return result, nil
}
