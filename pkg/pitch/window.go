package pitch

import (
	"fmt"
)

// WindowErrorEvaluator sums an ErrorMetric over a fixed-width window,
// comparing a segment with itself shifted by a candidate phase.
type WindowErrorEvaluator struct {
	window  int
	metric  ErrorMetric
	counter *Counter
}

// NewWindowErrorEvaluator creates an evaluator. metric defaults to
// AbsoluteDifference and counter may be nil.
func NewWindowErrorEvaluator(window int, metric ErrorMetric, counter *Counter) (*WindowErrorEvaluator, error) {
	if window <= 0 {
		return nil, NewPitchError(ErrCodeInvalidConfig,
			fmt.Sprintf("window must be positive: %d", window), nil)
	}
	if metric == nil {
		metric = AbsoluteDifference
	}

	return &WindowErrorEvaluator{
		window:  window,
		metric:  metric,
		counter: counter,
	}, nil
}

// Window returns the window width
func (w *WindowErrorEvaluator) Window() int {
	return w.window
}

// Evaluate returns sum(metric(src[offset+i], src[offset+i+phase])) for i in
// [0, window), stopping as soon as the running sum reaches limit.
//
// The result is exact only when it is below limit. Otherwise it is some
// value >= limit and is only good for comparison.
func (w *WindowErrorEvaluator) Evaluate(src SampleSource, offset int, phase Phase, limit Error) (Error, error) {
	data, err := src.Slice(offset, int(phase)+w.window)
	if err != nil {
		return 0, err
	}

	p := int(phase)
	var sum Error
	var n int64
	for i := 0; i < w.window; i++ {
		sum += w.metric(data[i], data[i+p])
		n++
		if sum >= limit {
			break
		}
	}

	w.counter.Add(n)
	return sum, nil
}
