package estimation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyInheritance(t *testing.T) {
	cfg := &JobsConfig{
		Defaults: JobDefaults{
			Preset:  "low-strings",
			Offsets: []int{0, 500},
		},
		Jobs: map[string]*Job{
			"cello": {Location: "fixture:bass", Enabled: true},
			"tuned": {Name: "Tuned", Location: "sine:64", Preset: "default", OffsetCount: 3, Enabled: true},
			"empty": nil,
		},
	}

	cfg.ApplyInheritance()

	cello := cfg.Jobs["cello"]
	assert.Equal(t, "cello", cello.Name)
	assert.Equal(t, "low-strings", cello.Preset)
	assert.Equal(t, []int{0, 500}, cello.Offsets)

	// Inherited slices are copies
	cello.Offsets[0] = 7
	assert.Equal(t, 0, cfg.Defaults.Offsets[0])

	tuned := cfg.Jobs["tuned"]
	assert.Equal(t, "Tuned", tuned.Name)
	assert.Equal(t, "default", tuned.Preset)
	assert.Empty(t, tuned.Offsets)
	assert.Equal(t, 3, tuned.OffsetCount)
}

func TestJobsConfigValidate(t *testing.T) {
	valid := func() *JobsConfig {
		return &JobsConfig{Jobs: map[string]*Job{
			"a": {Name: "a", Location: "tile:512", Offsets: []int{0}, Enabled: true},
			"b": {Name: "b", Location: "sine:64", ExpectedNote: "C2"},
		}}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*JobsConfig)
	}{
		{"no jobs", func(c *JobsConfig) { c.Jobs = nil }},
		{"nil job", func(c *JobsConfig) { c.Jobs["c"] = nil }},
		{"no location", func(c *JobsConfig) { c.Jobs["a"].Location = "" }},
		{"negative count", func(c *JobsConfig) { c.Jobs["a"].OffsetCount = -1 }},
		{"negative offset", func(c *JobsConfig) { c.Jobs["a"].Offsets = []int{0, -4} }},
		{"unknown preset", func(c *JobsConfig) { c.Jobs["a"].Preset = "tuba" }},
		{"bad note", func(c *JobsConfig) { c.Jobs["b"].ExpectedNote = "H2" }},
		{"none enabled", func(c *JobsConfig) { c.Jobs["a"].Enabled = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnabledJobs(t *testing.T) {
	cfg := &JobsConfig{Jobs: map[string]*Job{
		"z": {Location: "tile:600", Enabled: true},
		"a": {Location: "tile:512", Enabled: true},
		"m": {Location: "tile:700"},
	}}

	assert.Len(t, cfg.GetEnabledJobs(), 2)
	assert.Equal(t, []string{"a", "z"}, cfg.JobNames())
}

func TestNewJob(t *testing.T) {
	job := NewJob("fixture:bass")
	assert.Equal(t, "fixture:bass", job.Name)
	assert.Equal(t, "fixture:bass", job.Location)
	assert.True(t, job.Enabled)
}

func TestSummaryNames(t *testing.T) {
	s := &Summary{Measurements: map[string]*Measurement{"b": {}, "a": {}, "c": {}}}
	assert.Equal(t, []string{"a", "b", "c"}, s.MeasurementNames())
}
