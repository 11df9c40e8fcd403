package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

func TestConvertNote(t *testing.T) {
	cfg := pitch.DefaultConfig()

	tests := []struct {
		name    string
		input   string
		asPhase bool
		note    string
		phase   uint32
		inRange bool
	}{
		{"frequency", "64", false, "C2", 512, true},
		{"phase", "512", true, "C2", 512, true},
		{"note name", "A1", false, "A1", 596, true},
		{"flat", "Bb1", false, "A♯1", 562, true},
		{"above the band", "A4", false, "A4", 74, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := convertNote(tt.input, tt.asPhase, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.note, c.Note)
			assert.Equal(t, tt.phase, c.Phase)
			assert.Equal(t, tt.inRange, c.InRange)
			assert.Equal(t, cfg.SampleRate, c.SampleRate)
		})
	}
}

func TestConvertNoteRejects(t *testing.T) {
	cfg := pitch.DefaultConfig()

	for _, tt := range []struct {
		input   string
		asPhase bool
	}{
		{"H2", false},
		{"-5", false},
		{"0", true},
		{"C2", true},
	} {
		_, err := convertNote(tt.input, tt.asPhase, cfg)
		assert.Error(t, err, tt.input)
	}
}

func TestPerformanceTimer(t *testing.T) {
	timer := NewPerformanceTimer()

	timer.EndEvent("never_started")
	assert.Empty(t, timer.Events())

	timer.StartEvent("load_source")
	time.Sleep(time.Millisecond)
	timer.EndEvent("load_source")
	timer.StartEvent("phase_search")
	timer.EndEvent("phase_search")

	assert.Equal(t, []string{"load_source", "phase_search"}, timer.Events())
	assert.GreaterOrEqual(t, timer.GetDuration("load_source"), time.Millisecond)
	assert.Zero(t, timer.GetDuration("missing"))
	assert.GreaterOrEqual(t, timer.GetTotalDuration(), timer.GetDuration("load_source"))
}

func TestEventTitle(t *testing.T) {
	assert.Equal(t, "Pruning Comparison", eventTitle("pruning_comparison"))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]int{"c": 3, "a": 1, "b": 2}))
}

func TestGenerateWritesWAV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tile.wav")

	generateLength = 8192
	defer func() { generateLength = 0 }()

	require.NoError(t, runGenerate(generateCmd, []string{"tile:600", out}))
	assert.FileExists(t, out)
}
