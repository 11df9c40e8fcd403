package pitch

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// MaxOffset returns the largest offset at which a full scan fits in a
// buffer of bufferLen samples.
func MaxOffset(bufferLen int, cfg Config) (int, error) {
	max := bufferLen - cfg.Span()
	if max < 0 {
		return 0, newPitchErrorWithFields(ErrCodeOutOfRange,
			fmt.Sprintf("buffer of %d samples is shorter than one scan (%d)", bufferLen, cfg.Span()), nil,
			logging.Fields{"buffer_len": bufferLen, "required": cfg.Span()})
	}
	return max, nil
}

// SpreadOffsets returns n offsets evenly spaced over the valid range,
// starting at 0. Offsets are distinct, so n is clamped to the number of
// valid offsets when the buffer is too short to hold n of them.
func SpreadOffsets(bufferLen int, cfg Config, n int) ([]int, error) {
	if n <= 0 {
		return nil, NewPitchError(ErrCodeEmptyInput,
			fmt.Sprintf("offset count must be positive: %d", n), nil)
	}

	max, err := MaxOffset(bufferLen, cfg)
	if err != nil {
		return nil, err
	}

	if n > max+1 {
		n = max + 1
	}

	offsets := make([]int, n)
	if n == 1 {
		return offsets, nil
	}

	step := max / (n - 1)
	for i := range offsets {
		offsets[i] = i * step
	}
	return offsets, nil
}
