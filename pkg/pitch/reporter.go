package pitch

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// Reporter receives optional diagnostics. Results never depend on it.
type Reporter interface {
	// ReportEstimate is called once per offset, in offset order, with the
	// running phase sum after that offset is included
	ReportEstimate(estimate Estimate, runningSum uint64)

	// ReportEvaluations is called once per detection with the number of
	// metric evaluations it performed
	ReportEvaluations(count int64)
}

// NopReporter discards all diagnostics
type NopReporter struct{}

func (NopReporter) ReportEstimate(Estimate, uint64) {}
func (NopReporter) ReportEvaluations(int64)         {}

// LogReporter writes diagnostics as structured debug logs
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter creates a reporter backed by logger
func NewLogReporter(logger logging.Logger) *LogReporter {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) ReportEstimate(estimate Estimate, runningSum uint64) {
	r.logger.Debug("Offset phase estimated", logging.Fields{
		"offset":    estimate.Offset,
		"phase":     estimate.Phase,
		"min_error": estimate.MinError,
		"sum":       runningSum,
	})
}

func (r *LogReporter) ReportEvaluations(count int64) {
	r.logger.Debug("Window error loops", logging.Fields{
		"evaluations": count,
	})
}

// multiReporter fans diagnostics out to several reporters
type multiReporter []Reporter

// MultiReporter combines reporters; nil entries are skipped
func MultiReporter(reporters ...Reporter) Reporter {
	var out multiReporter
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiReporter) ReportEstimate(estimate Estimate, runningSum uint64) {
	for _, r := range m {
		r.ReportEstimate(estimate, runningSum)
	}
}

func (m multiReporter) ReportEvaluations(count int64) {
	for _, r := range m {
		r.ReportEvaluations(count)
	}
}
