package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/internal/estimation"
	"github.com/RyanBlaney/phase-pitch/pkg/audio/source"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

func testLogger() logging.Logger {
	return logging.WithFields(logging.Fields{"component": "benchmark_test"})
}

func newTestOrchestrator(t *testing.T, jobs *estimation.JobsConfig, mutate func(*configs.Config)) *Orchestrator {
	t.Helper()

	cfg := configs.GetDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	o, err := NewOrchestrator(cfg, jobs, testLogger())
	require.NoError(t, err)
	return o
}

func TestRunJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	jobs := &estimation.JobsConfig{Jobs: map[string]*estimation.Job{}}
	for _, period := range []int{512, 600, 700, 800, 900, 1000} {
		name := fmt.Sprintf("tile-%d", period)
		jobs.Jobs[name] = &estimation.Job{
			Name:     name,
			Location: fmt.Sprintf("tile:%d", period),
			Enabled:  true,
		}
	}
	jobs.Jobs["skipped"] = &estimation.Job{Name: "skipped", Location: "tile:512"}

	o := newTestOrchestrator(t, jobs, func(c *configs.Config) { c.Analysis.MaxConcurrentJobs = 3 })
	summary, err := o.RunJobs(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)

	assert.Len(t, summary.Measurements, 6)
	assert.NotContains(t, summary.Measurements, "skipped")
	assert.Equal(t, 6, summary.Successful)
	assert.Zero(t, summary.Failed)

	var evaluations int64
	for _, period := range []int{512, 600, 700, 800, 900, 1000} {
		m := summary.Measurements[fmt.Sprintf("tile-%d", period)]
		require.NotNil(t, m)
		require.NoError(t, m.Error)
		assert.Equal(t, pitch.Phase(period), m.Result.Phase)
		evaluations += m.Result.Evaluations
	}
	assert.Equal(t, evaluations, summary.Evaluations)

	require.NotNil(t, summary.Statistics)
	assert.Equal(t, 6, summary.Statistics.Phase.Count)
	assert.Equal(t, 512.0, summary.Statistics.Phase.Min)
	assert.Equal(t, 1000.0, summary.Statistics.Phase.Max)
	assert.Equal(t, 24, summary.Statistics.OffsetPhase.Count)
	assert.Equal(t, 1.0, summary.Statistics.SuccessRate)
	assert.Empty(t, summary.Statistics.ErrorDistribution)
	assert.False(t, summary.EndTime.Before(summary.StartTime))
}

func TestRunJobsRecordsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	jobs := &estimation.JobsConfig{Jobs: map[string]*estimation.Job{
		"good":    {Name: "good", Location: "tile:512", Enabled: true},
		"missing": {Name: "missing", Location: "/nonexistent/file.wav", Enabled: true},
		"far":     {Name: "far", Location: "tile:512", Offsets: []int{50000}, Enabled: true},
	}}

	o := newTestOrchestrator(t, jobs, nil)
	summary, err := o.RunJobs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 2, summary.Failed)
	assert.True(t, summary.Measurements["missing"].Failed())
	assert.Equal(t, 1, summary.Statistics.ErrorDistribution["source"])
	assert.Equal(t, 1, summary.Statistics.ErrorDistribution["offsets"])
	assert.InDelta(t, 1.0/3, summary.Statistics.SuccessRate, 1e-12)
}

func TestRunJobsRejectsInvalidJobs(t *testing.T) {
	o := newTestOrchestrator(t, &estimation.JobsConfig{}, nil)
	_, err := o.RunJobs(context.Background())
	assert.Error(t, err)
}

func TestRunLocations(t *testing.T) {
	defer goleak.VerifyNone(t)

	o := newTestOrchestrator(t, nil, func(c *configs.Config) {
		c.Analysis.Offsets = nil
		c.Analysis.OffsetCount = 5
	})

	summary, err := o.RunLocations(context.Background(), []string{"tile:512", "fixture:bass"})
	require.NoError(t, err)
	require.Len(t, summary.Measurements, 2)

	tile := summary.Measurements["tile:512"]
	require.NoError(t, tile.Error)
	assert.Len(t, tile.Offsets, 5)
	assert.Equal(t, pitch.Phase(512), tile.Result.Phase)

	bass := summary.Measurements["fixture:bass"]
	require.NoError(t, bass.Error)
	assert.Equal(t, source.SourceTypeFixture, bass.Source.Type)

	_, err = o.RunLocations(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunLocationsKeepsConfiguredJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	jobs := &estimation.JobsConfig{Jobs: map[string]*estimation.Job{
		"configured": {Name: "configured", Location: "tile:512", Enabled: true},
	}}
	o := newTestOrchestrator(t, jobs, nil)

	// concurrent ad hoc runs must not see each other's locations
	locations := []string{"tile:600", "tile:700", "tile:800"}
	summaries := make([]*estimation.Summary, len(locations))
	errs := make([]error, len(locations))
	var wg sync.WaitGroup
	for i, location := range locations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summaries[i], errs[i] = o.RunLocations(context.Background(), []string{location})
		}()
	}
	wg.Wait()

	for i, location := range locations {
		require.NoError(t, errs[i])
		require.Len(t, summaries[i].Measurements, 1)
		assert.Contains(t, summaries[i].Measurements, location)
	}

	summary, err := o.RunJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Measurements, 1)
	assert.Equal(t, pitch.Phase(512), summary.Measurements["configured"].Result.Phase)
}

func TestRunJobsWithoutJobsConfig(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	_, err := o.RunJobs(context.Background())
	assert.Error(t, err)
}

func TestNewOrchestratorRejectsBadPreset(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	cfg.Pitch.Preset = "tuba"

	_, err := NewOrchestrator(cfg, nil, nil)
	assert.ErrorIs(t, err, pitch.ErrInvalidConfig)
}

func TestComparePruning(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)

	for _, location := range []string{"tile:700", "fixture:bass", "harmonic:55"} {
		t.Run(location, func(t *testing.T) {
			comparison, err := o.ComparePruning(context.Background(), location, 2)
			require.NoError(t, err)

			assert.True(t, comparison.Identical)
			assert.Equal(t, comparison.Exhaustive.Phase, comparison.Pruned.Phase)
			assert.True(t, comparison.Pruned.Pruning)
			assert.False(t, comparison.Exhaustive.Pruning)
			assert.Len(t, comparison.Offsets, 4)

			// every candidate evaluates the full window without pruning
			cfg := pitch.DefaultConfig()
			full := int64(cfg.Window()) * int64(cfg.PhaseMax-cfg.PhaseMin) * int64(len(comparison.Offsets))
			assert.Equal(t, full, comparison.Exhaustive.Evaluations)

			assert.Less(t, comparison.Pruned.Evaluations, comparison.Exhaustive.Evaluations)
			assert.Positive(t, comparison.EvaluationsSaved)
			assert.Greater(t, comparison.Efficiency, 0.0)
			assert.Less(t, comparison.Efficiency, 1.0)
		})
	}

	_, err := o.ComparePruning(context.Background(), "sine:-3", 1)
	assert.Error(t, err)
}

func TestCategorizeError(t *testing.T) {
	mc := NewMetricsCalculator(nil)

	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("wrapped: %w", context.Canceled), "timeout"},
		{source.NewSourceError(source.SourceTypeWAV, "x.wav", source.ErrCodeReadFailed, "nope", nil), "source"},
		{fmt.Errorf("detection failed: %w", pitch.ErrOutOfRange), "offsets"},
		{pitch.ErrInvalidConfig, "configuration"},
		{pitch.ErrDivideByZero, "processing"},
		{errors.New("invalid note name"), "validation"},
		{errors.New("something else"), "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mc.categorizeError(tt.err), "error %v", tt.err)
	}
}

func TestCalculateStats(t *testing.T) {
	mc := NewMetricsCalculator(nil)

	stats := mc.calculateStats(nil)
	assert.Zero(t, stats.Count)

	stats = mc.calculateStats([]float64{4})
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 4.0, stats.Median)
	assert.Zero(t, stats.StdDev)

	stats = mc.calculateStats([]float64{5, 1, 3, 2, 4})
	assert.Equal(t, 5, stats.Count)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 5.0, stats.Max)
	assert.Equal(t, 3.0, stats.Mean)
	assert.Equal(t, 3.0, stats.Median)
	assert.InDelta(t, 1.5811, stats.StdDev, 1e-4)
	assert.Equal(t, 5.0, stats.P90)
}
