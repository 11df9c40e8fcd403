package benchmark

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/phase-pitch/internal/estimation"
	"github.com/RyanBlaney/phase-pitch/pkg/audio/source"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// MetricsCalculator summarizes the measurements of a run
type MetricsCalculator struct {
	logger logging.Logger
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator(logger logging.Logger) *MetricsCalculator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &MetricsCalculator{
		logger: logger,
	}
}

// CalculateStatistics computes run-wide statistics over successful measurements
func (mc *MetricsCalculator) CalculateStatistics(summary *estimation.Summary) *estimation.Statistics {
	var phases, frequencies, offsetPhases, evaluations, detectTimes []float64
	statistics := &estimation.Statistics{
		ErrorDistribution: make(map[string]int),
	}

	for _, m := range summary.Measurements {
		if m.Failed() {
			statistics.ErrorDistribution[mc.categorizeError(m.Error)]++
			continue
		}
		if m.Result == nil {
			continue
		}

		phases = append(phases, m.Result.MeanPhase)
		frequencies = append(frequencies, m.Result.Frequency)
		evaluations = append(evaluations, float64(m.Result.Evaluations))
		detectTimes = append(detectTimes, float64(m.DetectTime.Microseconds())/1000)
		for _, estimate := range m.Result.Estimates {
			offsetPhases = append(offsetPhases, float64(estimate.Phase))
		}

		if m.CrossCheck != nil {
			statistics.CrossCheckTotal++
			if m.CrossCheck.Agrees {
				statistics.CrossCheckAgreed++
			}
		}
		if m.Validation != nil {
			statistics.NotesExpected++
			if m.Validation.Matches {
				statistics.NotesMatched++
			}
		}
	}

	statistics.Phase = mc.calculateStats(phases)
	statistics.Frequency = mc.calculateStats(frequencies)
	statistics.OffsetPhase = mc.calculateStats(offsetPhases)
	statistics.Evaluations = mc.calculateStats(evaluations)
	statistics.DetectTimeMs = mc.calculateStats(detectTimes)

	if total := len(summary.Measurements); total > 0 {
		statistics.SuccessRate = float64(len(phases)) / float64(total)
	}

	mc.logger.Debug("Calculated run statistics", logging.Fields{
		"measurements": len(summary.Measurements),
		"successful":   len(phases),
		"offsets":      len(offsetPhases),
	})

	return statistics
}

// calculateStats calculates statistical measures for a dataset
func (mc *MetricsCalculator) calculateStats(data []float64) *estimation.Stats {
	if len(data) == 0 {
		return &estimation.Stats{Count: 0}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	stats := &estimation.Stats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		stats.StdDev = stat.StdDev(sorted, nil)
	}

	return mc.sanitizeStats(stats)
}

// sanitizeStats removes infinite and NaN values to prevent JSON serialization errors
func (mc *MetricsCalculator) sanitizeStats(stats *estimation.Stats) *estimation.Stats {
	for _, v := range []*float64{&stats.Min, &stats.Max, &stats.Mean, &stats.Median, &stats.StdDev, &stats.P90} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// categorizeError categorizes errors into meaningful categories
func (mc *MetricsCalculator) categorizeError(err error) string {
	if err == nil {
		return "none"
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}

	var sourceErr *source.SourceError
	if errors.As(err, &sourceErr) {
		return "source"
	}

	switch {
	case errors.Is(err, pitch.ErrOutOfRange), errors.Is(err, pitch.ErrEmptyInput):
		return "offsets"
	case errors.Is(err, pitch.ErrInvalidConfig), errors.Is(err, pitch.ErrInvalidRange):
		return "configuration"
	case errors.Is(err, pitch.ErrDivideByZero):
		return "processing"
	}

	if strings.Contains(err.Error(), "note") {
		return "validation"
	}

	return "other"
}
