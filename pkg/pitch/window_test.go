package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindowErrorEvaluatorRejectsEmptyWindow(t *testing.T) {
	_, err := NewWindowErrorEvaluator(0, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEvaluateUnlimitedIsExact(t *testing.T) {
	buf := randomBuffer(4096, 7)
	window := 529

	eval, err := NewWindowErrorEvaluator(window, AbsoluteDifference, nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		offset int
		phase  Phase
	}{
		{0, 512}, {0, 700}, {100, 1040}, {2000, 600},
	} {
		got, err := eval.Evaluate(buf, tc.offset, tc.phase, MaxError)
		require.NoError(t, err)
		assert.Equal(t, exactWindowError(buf, tc.offset, tc.phase, window, AbsoluteDifference), got,
			"offset=%d phase=%d", tc.offset, tc.phase)
	}
}

func TestEvaluateLimitStopsOnPrefix(t *testing.T) {
	buf := randomBuffer(2048, 11)
	window := 529
	phase := Phase(600)

	eval, err := NewWindowErrorEvaluator(window, AbsoluteDifference, nil)
	require.NoError(t, err)

	full, err := eval.Evaluate(buf, 0, phase, MaxError)
	require.NoError(t, err)
	require.Greater(t, full, Error(10))

	limit := full / 3
	got, err := eval.Evaluate(buf, 0, phase, limit)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, limit)
	assert.Less(t, got, full)

	// The early result must equal the first prefix sum that reached limit
	var prefix Error
	for i := 0; i < window; i++ {
		prefix += AbsoluteDifference(buf[i], buf[i+int(phase)])
		if prefix >= limit {
			break
		}
	}
	assert.Equal(t, prefix, got)
}

func TestEvaluateLimitAboveExactReturnsExact(t *testing.T) {
	buf := randomBuffer(2048, 3)
	eval, err := NewWindowErrorEvaluator(300, SquaredDifference, nil)
	require.NoError(t, err)

	exact := exactWindowError(buf, 10, 450, 300, SquaredDifference)
	got, err := eval.Evaluate(buf, 10, 450, exact+1)
	require.NoError(t, err)
	assert.Equal(t, exact, got)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	buf := randomBuffer(2048, 5)
	eval, err := NewWindowErrorEvaluator(529, AbsoluteDifference, nil)
	require.NoError(t, err)

	first, err := eval.Evaluate(buf, 0, 777, 5000)
	require.NoError(t, err)
	for range 5 {
		again, err := eval.Evaluate(buf, 0, 777, 5000)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	buf := randomBuffer(1000, 1)
	eval, err := NewWindowErrorEvaluator(529, AbsoluteDifference, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset int
		phase  Phase
	}{
		{"phase past end", 0, 512},
		{"negative offset", -1, 10},
		{"offset past end", 990, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval.Evaluate(buf, tt.offset, tt.phase, MaxError)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}

	// Exactly fitting is fine
	_, err = eval.Evaluate(buf, 0, Phase(1000-529), MaxError)
	assert.NoError(t, err)
}

func TestEvaluateCountsEvaluations(t *testing.T) {
	buf := randomBuffer(2048, 9)
	counter := &Counter{}
	eval, err := NewWindowErrorEvaluator(100, AbsoluteDifference, counter)
	require.NoError(t, err)

	_, err = eval.Evaluate(buf, 0, 500, MaxError)
	require.NoError(t, err)
	assert.Equal(t, int64(100), counter.Load())

	// A limit of one stops after the first non-zero term
	_, err = eval.Evaluate(buf, 0, 500, 1)
	require.NoError(t, err)
	assert.Less(t, counter.Load(), int64(200))
	assert.Greater(t, counter.Load(), int64(100))
}
