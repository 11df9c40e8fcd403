package estimation

import (
	"fmt"
	"math"
	"sort"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/tonal"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

const (
	yinThreshold     = 0.15
	yinMinConfidence = 0.3

	// the YIN band is one semitone wider than the phase band on each side
	semitone = 1.0594630943592953
)

// CrossChecker estimates pitch with YIN at the same offsets as the phase
// search and reports whether both agree within a tolerance in cents
type CrossChecker struct {
	tolerance float64
	logger    logging.Logger
}

// NewCrossChecker creates a cross checker
func NewCrossChecker(tolerance float64, logger logging.Logger) *CrossChecker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &CrossChecker{
		tolerance: tolerance,
		logger:    logger,
	}
}

// CrossCheckWindow returns the YIN frame size for cfg: the smallest power
// of two holding two periods of the longest candidate phase
func CrossCheckWindow(cfg pitch.Config) int {
	size := 1
	for size < 2*int(cfg.PhaseMax) {
		size <<= 1
	}
	return size
}

// Check runs YIN over one frame per offset. Offsets whose frame would run
// past the buffer are skipped; it fails only when no frame fits.
func (c *CrossChecker) Check(buf pitch.Buffer, cfg pitch.Config, offsets []int, frequency float64) (*CrossCheck, error) {
	window := CrossCheckWindow(cfg)

	detector := tonal.NewPitchDetectorWithParams(tonal.PitchDetectionParams{
		Method:            tonal.AutocorrelationYin,
		SampleRate:        cfg.SampleRate,
		WindowSize:        window,
		HopSize:           window,
		MinFreq:           float64(cfg.SampleRate) / float64(cfg.PhaseMax) / semitone,
		MaxFreq:           float64(cfg.SampleRate) / float64(cfg.PhaseMin) * semitone,
		YinThreshold:      yinThreshold,
		MinConfidence:     yinMinConfidence,
		PreEmphasis:       false,
		WindowFunction:    "rectangular",
		ZeroPadding:       1,
		OctaveCorrection:  false,
		TemporalSmoothing: false,
	})

	check := &CrossCheck{
		Tolerance:  c.tolerance,
		WindowSize: window,
	}

	var pitches, confidences []float64
	frame := make([]float64, window)
	for _, offset := range offsets {
		samples, err := buf.Slice(offset, window)
		if err != nil {
			c.logger.Debug("Skipping cross-check frame", logging.Fields{
				"offset":      offset,
				"window_size": window,
				"buffer_len":  buf.Len(),
			})
			continue
		}
		check.Frames++

		for i, s := range samples {
			frame[i] = float64(s) / 128
		}

		result, err := detector.DetectPitch(frame)
		if err != nil {
			return nil, fmt.Errorf("YIN detection failed at offset %d: %w", offset, err)
		}
		if result.Pitch > 0 {
			pitches = append(pitches, result.Pitch)
			confidences = append(confidences, result.Confidence)
		}
	}

	if check.Frames == 0 {
		return nil, fmt.Errorf("no cross-check frame of %d samples fits a buffer of %d samples", window, buf.Len())
	}

	check.Voiced = len(pitches)
	if check.Voiced == 0 {
		c.logger.Warn("Cross-check found no voiced frame", logging.Fields{
			"frames":      check.Frames,
			"window_size": window,
		})
		return check, nil
	}

	sort.Float64s(pitches)
	check.Frequency = stat.Quantile(0.5, stat.Empirical, pitches, nil)
	check.Confidence = stat.Mean(confidences, nil)
	check.Cents = Cents(frequency, check.Frequency)
	check.Agrees = math.Abs(check.Cents) <= c.tolerance

	c.logger.Debug("Cross-check completed", logging.Fields{
		"yin_frequency": check.Frequency,
		"frequency":     frequency,
		"cents":         check.Cents,
		"agrees":        check.Agrees,
		"voiced":        check.Voiced,
	})

	return check, nil
}

// Cents returns the signed distance from reference to hz in cents
func Cents(hz, reference float64) float64 {
	if hz <= 0 || reference <= 0 {
		return 0
	}
	return 1200 * math.Log2(hz/reference)
}
