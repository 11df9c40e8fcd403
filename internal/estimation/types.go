package estimation

import (
	"fmt"
	"sort"
	"time"

	"github.com/RyanBlaney/phase-pitch/pkg/audio/note"
	"github.com/RyanBlaney/phase-pitch/pkg/audio/source"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// JobsConfig contains the named estimation jobs (separate file)
type JobsConfig struct {
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`

	// Defaults fill any job field left empty
	Defaults JobDefaults `json:"defaults" yaml:"defaults"`

	Jobs map[string]*Job `json:"jobs" yaml:"jobs"`
}

// JobDefaults are inherited by every job that does not set its own value
type JobDefaults struct {
	Preset      string `json:"preset,omitempty" yaml:"preset,omitempty"`
	Offsets     []int  `json:"offsets,omitempty" yaml:"offsets,omitempty"`
	OffsetCount int    `json:"offset_count,omitempty" yaml:"offset_count,omitempty"`
}

// Job is one source to estimate
type Job struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`

	// Preset selects a different set of search constants for this job
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`

	// Offsets are used as given unless OffsetCount is positive
	Offsets     []int `json:"offsets,omitempty" yaml:"offsets,omitempty"`
	OffsetCount int   `json:"offset_count,omitempty" yaml:"offset_count,omitempty"`

	// ExpectedNote, when set, is compared with the detected note
	ExpectedNote string `json:"expected_note,omitempty" yaml:"expected_note,omitempty"`

	Enabled bool `json:"enabled" yaml:"enabled"`
}

// NewJob creates an enabled job named after its location
func NewJob(location string) *Job {
	return &Job{
		Name:     location,
		Location: location,
		Enabled:  true,
	}
}

// ApplyInheritance copies defaults into jobs and names unnamed jobs after their key
func (c *JobsConfig) ApplyInheritance() {
	for key, job := range c.Jobs {
		if job == nil {
			continue
		}
		if job.Name == "" {
			job.Name = key
		}
		if job.Preset == "" {
			job.Preset = c.Defaults.Preset
		}
		if len(job.Offsets) == 0 && job.OffsetCount == 0 {
			job.Offsets = append([]int(nil), c.Defaults.Offsets...)
			job.OffsetCount = c.Defaults.OffsetCount
		}
	}
}

// Validate validates the jobs configuration
func (c *JobsConfig) Validate() error {
	if c == nil || len(c.Jobs) == 0 {
		return fmt.Errorf("at least one job is required")
	}

	for name, job := range c.Jobs {
		if err := validateJob(job); err != nil {
			return fmt.Errorf("invalid job %s: %w", name, err)
		}
	}

	if len(c.GetEnabledJobs()) == 0 {
		return fmt.Errorf("no job is enabled")
	}

	return nil
}

func validateJob(job *Job) error {
	if job == nil {
		return fmt.Errorf("job is empty")
	}

	if job.Location == "" {
		return fmt.Errorf("job location is required")
	}

	if job.OffsetCount < 0 {
		return fmt.Errorf("offset count cannot be negative")
	}

	for _, offset := range job.Offsets {
		if offset < 0 {
			return fmt.Errorf("offsets cannot be negative: %d", offset)
		}
	}

	if job.Preset != "" {
		if _, err := pitch.PresetConfig(job.Preset); err != nil {
			return err
		}
	}

	if job.ExpectedNote != "" {
		if _, err := note.Parse(job.ExpectedNote); err != nil {
			return err
		}
	}

	return nil
}

// GetEnabledJobs returns the enabled jobs keyed by name
func (c *JobsConfig) GetEnabledJobs() map[string]*Job {
	enabled := make(map[string]*Job)
	for name, job := range c.Jobs {
		if job != nil && job.Enabled {
			enabled[name] = job
		}
	}
	return enabled
}

// JobNames returns the enabled job keys in sorted order
func (c *JobsConfig) JobNames() []string {
	names := make([]string, 0, len(c.Jobs))
	for name := range c.GetEnabledJobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CrossCheck compares the phase search against an independent YIN estimate
type CrossCheck struct {
	// Frequency is the median of the voiced YIN frames
	Frequency float64 `json:"frequency" yaml:"frequency"`

	// Cents is the signed distance from the YIN frequency to the detected one
	Cents      float64 `json:"cents" yaml:"cents"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance"`
	Agrees     bool    `json:"agrees" yaml:"agrees"`
	Frames     int     `json:"frames" yaml:"frames"`
	Voiced     int     `json:"voiced" yaml:"voiced"`
	WindowSize int     `json:"window_size" yaml:"window_size"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Validation compares the detected note with the one a job expects
type Validation struct {
	ExpectedNote string  `json:"expected_note" yaml:"expected_note"`
	DetectedNote string  `json:"detected_note" yaml:"detected_note"`
	Matches      bool    `json:"matches" yaml:"matches"`
	Cents        float64 `json:"cents" yaml:"cents"`
}

// Measurement is the outcome of one job
type Measurement struct {
	Job        *Job             `json:"job" yaml:"job"`
	Source     *source.Metadata `json:"source,omitempty" yaml:"source,omitempty"`
	Config     *pitch.Config    `json:"config,omitempty" yaml:"config,omitempty"`
	Offsets    []int            `json:"offsets,omitempty" yaml:"offsets,omitempty"`
	Result     *pitch.Result    `json:"result,omitempty" yaml:"result,omitempty"`
	Note       *note.Note       `json:"note,omitempty" yaml:"note,omitempty"`
	CrossCheck *CrossCheck      `json:"cross_check,omitempty" yaml:"cross_check,omitempty"`
	Validation *Validation      `json:"validation,omitempty" yaml:"validation,omitempty"`

	LoadTime   time.Duration `json:"load_time" yaml:"load_time"`
	DetectTime time.Duration `json:"detect_time" yaml:"detect_time"`
	TotalTime  time.Duration `json:"total_time" yaml:"total_time"`

	Error        error     `json:"-" yaml:"-"`
	ErrorMessage string    `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
}

// Failed reports whether the measurement ended in an error
func (m *Measurement) Failed() bool {
	return m.Error != nil
}

func (m *Measurement) fail(err error) *Measurement {
	m.Error = err
	m.ErrorMessage = err.Error()
	return m
}

// Statistics describes the spread of results across a run
type Statistics struct {
	Phase            *Stats  `json:"phase,omitempty" yaml:"phase,omitempty"`
	Frequency        *Stats  `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	OffsetPhase      *Stats  `json:"offset_phase,omitempty" yaml:"offset_phase,omitempty"`
	Evaluations      *Stats  `json:"evaluations,omitempty" yaml:"evaluations,omitempty"`
	DetectTimeMs     *Stats  `json:"detect_time_ms,omitempty" yaml:"detect_time_ms,omitempty"`
	CrossCheckAgreed int     `json:"cross_check_agreed" yaml:"cross_check_agreed"`
	CrossCheckTotal  int     `json:"cross_check_total" yaml:"cross_check_total"`
	NotesMatched     int     `json:"notes_matched" yaml:"notes_matched"`
	NotesExpected    int     `json:"notes_expected" yaml:"notes_expected"`
	SuccessRate      float64 `json:"success_rate" yaml:"success_rate"`

	// ErrorDistribution counts failed measurements by error category
	ErrorDistribution map[string]int `json:"error_distribution,omitempty" yaml:"error_distribution,omitempty"`
}

// Stats summarizes one series of values
type Stats struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	P90    float64 `json:"p90" yaml:"p90"`
}

// Summary represents a run over several jobs
type Summary struct {
	RunID         string                  `json:"run_id" yaml:"run_id"`
	Measurements  map[string]*Measurement `json:"measurements" yaml:"measurements"`
	StartTime     time.Time               `json:"start_time" yaml:"start_time"`
	EndTime       time.Time               `json:"end_time" yaml:"end_time"`
	TotalDuration time.Duration           `json:"total_duration" yaml:"total_duration"`
	Successful    int                     `json:"successful" yaml:"successful"`
	Failed        int                     `json:"failed" yaml:"failed"`
	Evaluations   int64                   `json:"evaluations" yaml:"evaluations"`
	Statistics    *Statistics             `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// MeasurementNames returns the measurement keys in sorted order
func (s *Summary) MeasurementNames() []string {
	names := make([]string, 0, len(s.Measurements))
	for name := range s.Measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
