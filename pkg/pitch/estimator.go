package pitch

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// PhaseEstimator scans a candidate phase range and returns the phase with
// the smallest window error.
type PhaseEstimator struct {
	evaluator      *WindowErrorEvaluator
	errorMax       Error
	pruning        bool
	legacySentinel bool
}

// NewPhaseEstimator builds an estimator from cfg. counter may be nil.
func NewPhaseEstimator(cfg Config, counter *Counter) (*PhaseEstimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metric, err := MetricFor(cfg.Metric)
	if err != nil {
		return nil, err
	}

	evaluator, err := NewWindowErrorEvaluator(cfg.Window(), metric, counter)
	if err != nil {
		return nil, err
	}

	return &PhaseEstimator{
		evaluator:      evaluator,
		errorMax:       cfg.ErrorMax,
		pruning:        cfg.Pruning,
		legacySentinel: cfg.LegacySentinel,
	}, nil
}

// Estimate scans candidates [start, end) at offset.
//
// The first candidate is evaluated without a limit and seeds the best
// error. Each later candidate is evaluated with the best error so far as its
// limit, so the bound tightens as the scan proceeds. Ties keep the earliest
// candidate.
func (p *PhaseEstimator) Estimate(src SampleSource, offset int, start, end Phase) (Estimate, error) {
	if start >= end {
		return Estimate{}, newPitchErrorWithFields(ErrCodeInvalidRange,
			fmt.Sprintf("empty candidate range [%d, %d)", start, end), nil,
			logging.Fields{"start": start, "end": end})
	}

	// Fail before touching any sample if the largest candidate does not fit
	need := int(end) - 1 + p.evaluator.Window()
	if offset < 0 || offset > src.Len()-need {
		return Estimate{}, newPitchErrorWithFields(ErrCodeOutOfRange,
			fmt.Sprintf("scan at offset %d needs %d samples, buffer has %d", offset, need, src.Len()), nil,
			logging.Fields{"offset": offset, "required": need, "buffer_len": src.Len(), "phase_end": end})
	}

	minError, err := p.evaluator.Evaluate(src, offset, start, p.errorMax)
	if err != nil {
		return Estimate{}, err
	}

	minIndex := start
	if p.legacySentinel {
		minIndex = 0
	}

	for i := start + 1; i < end; i++ {
		limit := minError
		if !p.pruning {
			limit = p.errorMax
		}

		current, err := p.evaluator.Evaluate(src, offset, i, limit)
		if err != nil {
			return Estimate{}, err
		}

		if current < minError {
			minError = current
			minIndex = i
		}
	}

	return Estimate{
		Offset:   offset,
		Phase:    minIndex,
		MinError: minError,
	}, nil
}
