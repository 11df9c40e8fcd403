package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsoluteDifferenceAllPairs(t *testing.T) {
	for a := math.MinInt8; a <= math.MaxInt8; a++ {
		for b := math.MinInt8; b <= math.MaxInt8; b++ {
			sa, sb := Sample(a), Sample(b)
			want := Error(math.Abs(float64(a - b)))

			got := AbsoluteDifference(sa, sb)
			if got != want {
				t.Fatalf("AbsoluteDifference(%d, %d) = %d, want %d", a, b, got, want)
			}
			if rev := AbsoluteDifference(sb, sa); rev != got {
				t.Fatalf("AbsoluteDifference not symmetric for (%d, %d): %d vs %d", a, b, got, rev)
			}
		}
		if AbsoluteDifference(Sample(a), Sample(a)) != 0 {
			t.Fatalf("AbsoluteDifference(%d, %d) must be 0", a, a)
		}
	}
}

func TestAbsoluteDifferenceExtremes(t *testing.T) {
	assert.Equal(t, Error(255), AbsoluteDifference(-128, 127))
	assert.Equal(t, Error(255), AbsoluteDifference(127, -128))
	assert.Equal(t, Error(200), AbsoluteDifference(-100, 100))
}

func TestSquaredDifference(t *testing.T) {
	assert.Equal(t, Error(0), SquaredDifference(42, 42))
	assert.Equal(t, Error(255*255), SquaredDifference(-128, 127))
	assert.Equal(t, SquaredDifference(3, -4), SquaredDifference(-4, 3))
	assert.Equal(t, Error(49), SquaredDifference(3, -4))
}

func TestMetricFor(t *testing.T) {
	tests := []struct {
		name      string
		metric    MetricType
		a, b      Sample
		want      Error
		expectErr bool
	}{
		{"default is absolute", "", 10, -10, 20, false},
		{"absolute", MetricAbsolute, 10, -10, 20, false},
		{"squared", MetricSquared, 10, -10, 400, false},
		{"unknown", MetricType("cubic"), 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metric, err := MetricFor(tt.metric)
			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, metric(tt.a, tt.b))
		})
	}
}
