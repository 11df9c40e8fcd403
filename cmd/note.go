package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-pitch/configs"
	"github.com/RyanBlaney/phase-pitch/pkg/audio/note"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

var notePhase bool

// noteCmd represents the note command
var noteCmd = &cobra.Command{
	Use:   "note [flags] <frequency|phase|note>",
	Short: "Convert between frequencies, phases and note names",
	Long: `Convert a frequency in Hz, a phase in samples or a note name.

A number is read as a frequency unless --phase is given. Anything else is
read as a note name: a letter, an optional #, b, ♯, ♭ or ♮ and an optional
octave digit (octave 4 when absent). Phases use the configured sample rate.

Examples:
  phase-pitch note 41.2
  phase-pitch note --phase 512
  phase-pitch note C#2
  phase-pitch note --preset low-strings G2`,
	Args: cobra.ExactArgs(1),
	RunE: runNote,
}

func init() {
	rootCmd.AddCommand(noteCmd)

	noteCmd.Flags().BoolVar(&notePhase, "phase", false, "read a number as a phase in samples")
}

// noteConversion is printed by the note command
type noteConversion struct {
	Input      string  `json:"input" yaml:"input"`
	Note       string  `json:"note" yaml:"note"`
	Octave     int     `json:"octave" yaml:"octave"`
	Cents      float64 `json:"cents" yaml:"cents"`
	Frequency  float64 `json:"frequency" yaml:"frequency"`
	NoteHz     float64 `json:"note_frequency" yaml:"note_frequency"`
	Phase      uint32  `json:"phase" yaml:"phase"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	InRange    bool    `json:"in_range" yaml:"in_range"`
}

func runNote(cmd *cobra.Command, args []string) error {
	applyColorSetting()

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg, err := config.Pitch.ToPitchConfig()
	if err != nil {
		return err
	}

	conversion, err := convertNote(args[0], notePhase, cfg)
	if err != nil {
		return err
	}

	format := viper.GetString("output_format")
	if format == "table" {
		printNoteConversion(conversion, cfg)
		return nil
	}

	var formatter output.Formatter
	switch format {
	case "yaml":
		formatter = &output.YAMLFormatter{}
	case "csv":
		formatter = &output.CSVFormatter{}
	default:
		formatter = &output.JSONFormatter{}
	}

	data, err := formatter.Format(conversion, true)
	if err != nil {
		return fmt.Errorf("failed to format conversion: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// convertNote resolves input to a frequency, then names it and finds its phase
func convertNote(input string, asPhase bool, cfg pitch.Config) (*noteConversion, error) {
	var hz float64

	if value, err := strconv.ParseFloat(input, 64); err == nil {
		if asPhase {
			hz, err = pitch.ToFrequencyFloat(value, cfg.SampleRate)
			if err != nil {
				return nil, err
			}
		} else {
			hz = value
		}
	} else {
		if asPhase {
			return nil, fmt.Errorf("phase must be a number: %q", input)
		}
		p, err := note.Parse(input)
		if err != nil {
			return nil, err
		}
		hz = p.Frequency()
	}

	named, err := note.FromFrequency(hz)
	if err != nil {
		return nil, err
	}

	phase, err := pitch.ToPhase(hz, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	return &noteConversion{
		Input:      input,
		Note:       named.Name,
		Octave:     named.Octave,
		Cents:      named.Cents,
		Frequency:  hz,
		NoteHz:     named.Frequency,
		Phase:      uint32(phase),
		SampleRate: cfg.SampleRate,
		InRange:    phase >= cfg.PhaseMin && phase < cfg.PhaseMax,
	}, nil
}

func printNoteConversion(c *noteConversion, cfg pitch.Config) {
	printHeader("Note", c.Input)
	printKeyValue("Note", c.Note)
	printKeyValue("Cents", fmt.Sprintf("%+.1f", c.Cents))
	printKeyValue("Frequency", fmt.Sprintf("%.3f Hz", c.Frequency))
	printKeyValue("Note Frequency", fmt.Sprintf("%.3f Hz", c.NoteHz))
	printKeyValue("Phase", fmt.Sprintf("%d samples at %d Hz", c.Phase, c.SampleRate))

	if c.InRange {
		printSuccess("Within the search range [%d, %d)", cfg.PhaseMin, cfg.PhaseMax)
	} else {
		printWarning("Outside the search range [%d, %d)", cfg.PhaseMin, cfg.PhaseMax)
	}
}
