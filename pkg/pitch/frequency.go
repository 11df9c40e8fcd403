package pitch

import (
	"fmt"
	"math"
)

// ToFrequency converts an integer phase to Hz as sampleRate / phase
func ToFrequency(phase Phase, sampleRate int) (float64, error) {
	return ToFrequencyFloat(float64(phase), sampleRate)
}

// ToFrequencyFloat converts a fractional phase, such as a mean over several
// offsets, to Hz. It evaluates the same expression as ToFrequency.
func ToFrequencyFloat(phase float64, sampleRate int) (float64, error) {
	if phase == 0 {
		return 0, NewPitchError(ErrCodeDivideByZero, "cannot convert zero phase to frequency", nil)
	}
	return float64(sampleRate) / phase, nil
}

// ToPhase converts a frequency to the nearest whole phase
func ToPhase(frequency float64, sampleRate int) (Phase, error) {
	if frequency <= 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return 0, NewPitchError(ErrCodeDivideByZero,
			fmt.Sprintf("frequency must be positive and finite: %g", frequency), nil)
	}
	return Phase(math.Round(float64(sampleRate) / frequency)), nil
}

// PhaseRange derives [PhaseMin, PhaseMax) from a frequency band. The
// highest frequency gives the shortest phase.
func PhaseRange(minHz, maxHz float64, sampleRate int) (Phase, Phase, error) {
	if minHz >= maxHz {
		return 0, 0, NewPitchError(ErrCodeInvalidRange,
			fmt.Sprintf("frequency band [%g, %g] is empty", minHz, maxHz), nil)
	}

	lo, err := ToPhase(maxHz, sampleRate)
	if err != nil {
		return 0, 0, err
	}
	hi, err := ToPhase(minHz, sampleRate)
	if err != nil {
		return 0, 0, err
	}
	if lo == 0 || lo >= hi {
		return 0, 0, NewPitchError(ErrCodeInvalidRange,
			fmt.Sprintf("frequency band [%g, %g] collapses to phases [%d, %d)", minHz, maxHz, lo, hi), nil)
	}

	return lo, hi, nil
}
