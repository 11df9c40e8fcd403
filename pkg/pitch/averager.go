package pitch

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/sync/errgroup"
)

// MultiOffsetAverager runs a PhaseEstimator at several buffer offsets and
// averages the resulting phases.
//
// Offsets are independent, so with concurrency > 1 they are scanned on
// separate goroutines. Each goroutine keeps its own pruning bound; the
// bound is never shared across offsets, so results match the sequential
// path exactly.
type MultiOffsetAverager struct {
	estimator   *PhaseEstimator
	start       Phase
	end         Phase
	span        int
	concurrency int
	reporter    Reporter
}

// NewMultiOffsetAverager scans [cfg.PhaseMin, cfg.PhaseMax) at every offset
func NewMultiOffsetAverager(cfg Config, estimator *PhaseEstimator, reporter Reporter) *MultiOffsetAverager {
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &MultiOffsetAverager{
		estimator:   estimator,
		start:       cfg.PhaseMin,
		end:         cfg.PhaseMax,
		span:        cfg.Span(),
		concurrency: cfg.Concurrency,
		reporter:    reporter,
	}
}

// AveragePhase estimates the phase at every offset and returns the mean.
// Average.Phase uses truncating integer division over a 64-bit sum.
func (a *MultiOffsetAverager) AveragePhase(ctx context.Context, src SampleSource, offsets []int) (*Average, error) {
	if len(offsets) == 0 {
		return nil, NewPitchError(ErrCodeEmptyInput, "at least one offset is required", nil)
	}

	for _, offset := range offsets {
		if offset < 0 || offset > src.Len()-a.span {
			return nil, newPitchErrorWithFields(ErrCodeOutOfRange,
				fmt.Sprintf("offset %d leaves fewer than %d samples", offset, a.span), nil,
				logging.Fields{"offset": offset, "required": a.span, "buffer_len": src.Len()})
		}
	}

	estimates := make([]Estimate, len(offsets))
	var err error
	if a.concurrency > 1 && len(offsets) > 1 {
		err = a.estimateConcurrent(ctx, src, offsets, estimates)
	} else {
		err = a.estimateSequential(ctx, src, offsets, estimates)
	}
	if err != nil {
		return nil, err
	}

	var sum uint64
	for _, est := range estimates {
		sum += uint64(est.Phase)
		a.reporter.ReportEstimate(est, sum)
	}

	count := uint64(len(estimates))
	return &Average{
		Phase:     Phase(sum / count),
		Mean:      float64(sum) / float64(count),
		Sum:       sum,
		Estimates: estimates,
	}, nil
}

func (a *MultiOffsetAverager) estimateSequential(ctx context.Context, src SampleSource, offsets []int, out []Estimate) error {
	for i, offset := range offsets {
		if err := ctx.Err(); err != nil {
			return err
		}

		est, err := a.estimator.Estimate(src, offset, a.start, a.end)
		if err != nil {
			return fmt.Errorf("phase estimate at offset %d: %w", offset, err)
		}
		out[i] = est
	}
	return nil
}

func (a *MultiOffsetAverager) estimateConcurrent(ctx context.Context, src SampleSource, offsets []int, out []Estimate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, offset := range offsets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			est, err := a.estimator.Estimate(src, offset, a.start, a.end)
			if err != nil {
				return fmt.Errorf("phase estimate at offset %d: %w", offset, err)
			}
			out[i] = est
			return nil
		})
	}

	return g.Wait()
}
