package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEstimator(t *testing.T, cfg Config, counter *Counter) *PhaseEstimator {
	t.Helper()
	estimator, err := NewPhaseEstimator(cfg, counter)
	require.NoError(t, err)
	return estimator
}

func TestEstimateFindsTiledPeriod(t *testing.T) {
	cfg := DefaultConfig()
	buf := tiledBuffer(700, int(cfg.PhaseMax)+cfg.Window(), 42)

	est, err := newTestEstimator(t, cfg, nil).Estimate(buf, 0, cfg.PhaseMin, cfg.PhaseMax)
	require.NoError(t, err)
	assert.Equal(t, Phase(700), est.Phase)
	assert.Equal(t, Error(0), est.MinError)
	assert.Equal(t, 0, est.Offset)
}

func TestEstimatePruningNeverChangesResult(t *testing.T) {
	pruned := DefaultConfig()
	exhaustive := DefaultConfig()
	exhaustive.Pruning = false

	for _, seed := range []int64{1, 2, 3, 4, 5} {
		buf := randomBuffer(pruned.Span()+200, seed)

		prunedCounter := &Counter{}
		exhaustiveCounter := &Counter{}

		got, err := newTestEstimator(t, pruned, prunedCounter).Estimate(buf, 100, pruned.PhaseMin, pruned.PhaseMax)
		require.NoError(t, err)
		want, err := newTestEstimator(t, exhaustive, exhaustiveCounter).Estimate(buf, 100, pruned.PhaseMin, pruned.PhaseMax)
		require.NoError(t, err)

		assert.Equal(t, want, got, "seed %d", seed)
		assert.Less(t, prunedCounter.Load(), exhaustiveCounter.Load(), "seed %d", seed)

		candidates := int64(pruned.PhaseMax - pruned.PhaseMin)
		assert.Equal(t, candidates*int64(pruned.Window()), exhaustiveCounter.Load())
	}
}

func TestEstimateMinErrorIsExact(t *testing.T) {
	cfg := DefaultConfig()
	buf := randomBuffer(cfg.Span()+50, 99)

	est, err := newTestEstimator(t, cfg, nil).Estimate(buf, 50, cfg.PhaseMin, cfg.PhaseMax)
	require.NoError(t, err)

	exact := exactWindowError(buf, 50, est.Phase, cfg.Window(), AbsoluteDifference)
	assert.Equal(t, exact, est.MinError)

	for p := cfg.PhaseMin; p < cfg.PhaseMax; p++ {
		e := exactWindowError(buf, 50, p, cfg.Window(), AbsoluteDifference)
		require.GreaterOrEqual(t, e, est.MinError, "phase %d beats the estimate", p)
		if p < est.Phase {
			require.Greater(t, e, est.MinError, "earlier phase %d ties the estimate", p)
		}
	}
}

func TestEstimateTieKeepsEarliest(t *testing.T) {
	cfg := DefaultConfig()
	// Period 520 also matches perfectly at 1040, still inside the range
	buf := tiledBuffer(520, cfg.Span(), 8)

	est, err := newTestEstimator(t, cfg, nil).Estimate(buf, 0, cfg.PhaseMin, cfg.PhaseMax)
	require.NoError(t, err)
	assert.Equal(t, Phase(520), est.Phase)
	assert.Equal(t, Error(0), est.MinError)
}

func TestEstimateSingleCandidate(t *testing.T) {
	cfg := DefaultConfig()
	buf := randomBuffer(cfg.Span(), 4)
	counter := &Counter{}

	est, err := newTestEstimator(t, cfg, counter).Estimate(buf, 0, 900, 901)
	require.NoError(t, err)
	assert.Equal(t, Phase(900), est.Phase)
	assert.Equal(t, exactWindowError(buf, 0, 900, cfg.Window(), AbsoluteDifference), est.MinError)

	// Only the seed window is evaluated
	assert.Equal(t, int64(cfg.Window()), counter.Load())
}

func TestEstimateLegacySentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegacySentinel = true

	t.Run("start is best", func(t *testing.T) {
		buf := tiledBuffer(512, cfg.Span(), 6)
		est, err := newTestEstimator(t, cfg, nil).Estimate(buf, 0, cfg.PhaseMin, cfg.PhaseMax)
		require.NoError(t, err)
		assert.Equal(t, Phase(0), est.Phase)
		assert.Equal(t, Error(0), est.MinError)
	})

	t.Run("later candidate wins", func(t *testing.T) {
		buf := tiledBuffer(700, cfg.Span(), 6)
		est, err := newTestEstimator(t, cfg, nil).Estimate(buf, 0, cfg.PhaseMin, cfg.PhaseMax)
		require.NoError(t, err)
		assert.Equal(t, Phase(700), est.Phase)
	})

	t.Run("fixed seed returns start", func(t *testing.T) {
		fixed := DefaultConfig()
		buf := tiledBuffer(512, fixed.Span(), 6)
		est, err := newTestEstimator(t, fixed, nil).Estimate(buf, 0, fixed.PhaseMin, fixed.PhaseMax)
		require.NoError(t, err)
		assert.Equal(t, Phase(512), est.Phase)
	})
}

func TestEstimateInvalidRange(t *testing.T) {
	cfg := DefaultConfig()
	buf := randomBuffer(cfg.Span(), 1)
	estimator := newTestEstimator(t, cfg, nil)

	for _, r := range [][2]Phase{{600, 600}, {700, 600}} {
		_, err := estimator.Estimate(buf, 0, r[0], r[1])
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRange)
	}
}

func TestEstimateOutOfRangeTouchesNothing(t *testing.T) {
	cfg := DefaultConfig()
	buf := randomBuffer(cfg.Span(), 1)
	counter := &Counter{}
	estimator := newTestEstimator(t, cfg, counter)

	_, err := estimator.Estimate(buf, 1, cfg.PhaseMin, cfg.PhaseMax)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Zero(t, counter.Load())

	var pitchErr *PitchError
	require.ErrorAs(t, err, &pitchErr)
	assert.Equal(t, cfg.Span(), pitchErr.Fields["required"])

	_, err = estimator.Estimate(buf, -5, cfg.PhaseMin, cfg.PhaseMax)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// The last valid offset works
	_, err = estimator.Estimate(buf, 0, cfg.PhaseMin, cfg.PhaseMax)
	assert.NoError(t, err)
}

func TestEstimateSquaredMetric(t *testing.T) {
	cfg := LowStringsConfig()
	buf := tiledBuffer(600, cfg.Span()+10, 77)

	est, err := newTestEstimator(t, cfg, nil).Estimate(buf, 10, cfg.PhaseMin, cfg.PhaseMax)
	require.NoError(t, err)
	assert.Equal(t, Phase(600), est.Phase)
	assert.Equal(t, Error(0), est.MinError)
}
