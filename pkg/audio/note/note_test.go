package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Pitch
	}{
		{"A4", 0},
		{"A", 0},
		{"C4", -9},
		{"C", -9},
		{"B3", -10},
		{"C5", 3},
		{"A0", -48},
		{"E1", -41},
		{"C#3", -20},
		{"C♯3", -20},
		{"D♭3", -20},
		{"Db3", -20},
		{"E♮", -5},
		{"G#", -1},
		{"a4", 0},
		{" A5 ", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, name := range []string{"", "H4", "4", "A10", "C#x", "A4b", "♯A"} {
		_, err := Parse(name)
		assert.ErrorIs(t, err, ErrInvalidNote, "name %q", name)
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	for p := Pitch(-48); p < 59; p++ {
		got, err := Parse(p.String())
		require.NoError(t, err, "pitch %d printed as %q", p, p.String())
		assert.Equal(t, p, got)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "A4", Pitch(0).String())
	assert.Equal(t, "C4", Pitch(-9).String())
	assert.Equal(t, "B3", Pitch(-10).String())
	assert.Equal(t, "A♯4", Pitch(1).String())
	assert.Equal(t, "C0", Pitch(-57).String())
	assert.Equal(t, "B-1", Pitch(-58).String())
}

func TestFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, Pitch(0).Frequency(), 1e-9)
	assert.InDelta(t, 880.0, MustParse("A5").Frequency(), 1e-9)
	assert.InDelta(t, 55.0, MustParse("A1").Frequency(), 1e-9)
	assert.InDelta(t, 261.6256, MustParse("C4").Frequency(), 1e-4)
}

func TestFromFrequency(t *testing.T) {
	n, err := FromFrequency(440)
	require.NoError(t, err)
	assert.Equal(t, "A4", n.Name)
	assert.Equal(t, 4, n.Octave)
	assert.InDelta(t, 0, n.Cents, 1e-9)

	// 64 Hz is the reference program's highest phase frequency
	n, err = FromFrequency(64)
	require.NoError(t, err)
	assert.Equal(t, "C2", n.Name)
	assert.InDelta(t, 65.406, n.Frequency, 1e-3)
	assert.Less(t, n.Cents, 0.0)
	assert.GreaterOrEqual(t, n.Cents, -50.0)

	n, err = FromFrequency(41.2)
	require.NoError(t, err)
	assert.Equal(t, "E1", n.Name)

	for _, bad := range []float64{0, -5} {
		_, err := FromFrequency(bad)
		assert.Error(t, err)
	}
}

func TestOctaveChangesAtC(t *testing.T) {
	// counting octaves from A would put C4 three half steps above A4
	assert.Equal(t, MustParse("A4")+3, MustParse("C5"))
	assert.Equal(t, MustParse("A4")-9, MustParse("C4"))
	assert.Equal(t, MustParse("B4")+1, MustParse("C5"))
	assert.Equal(t, 4, MustParse("B4").Octave())
	assert.Equal(t, 5, MustParse("C5").Octave())
}
