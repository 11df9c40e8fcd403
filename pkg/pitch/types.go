package pitch

import (
	"fmt"
	"math"
)

// Sample is a single signed 8-bit amplitude value
type Sample int8

// Phase is a candidate period length measured in samples
type Phase uint32

// Error is the accumulated dissimilarity of one candidate phase. Lower is better.
type Error uint64

// MaxError is the largest representable Error, used as the "no limit yet" bound
const MaxError Error = math.MaxUint64

// SampleSource exposes a fixed-length, read-only sequence of samples
type SampleSource interface {
	// Len returns the number of samples in the source
	Len() int

	// Slice borrows read access to samples [offset, offset+length).
	// Implementations must return an OutOfRange error instead of a short slice.
	Slice(offset, length int) ([]Sample, error)
}

// Buffer is an in-memory SampleSource
type Buffer []Sample

// Len returns the buffer length
func (b Buffer) Len() int {
	return len(b)
}

// Slice returns a capacity-limited view of b[offset:offset+length]
func (b Buffer) Slice(offset, length int) ([]Sample, error) {
	if offset < 0 || length < 0 || offset > len(b)-length {
		return nil, newPitchErrorWithFields(ErrCodeOutOfRange,
			fmt.Sprintf("range [%d, %d) exceeds buffer of %d samples", offset, offset+length, len(b)),
			nil, map[string]any{
				"offset":     offset,
				"length":     length,
				"buffer_len": len(b),
			})
	}
	end := offset + length
	return b[offset:end:end], nil
}

// BufferFromInt8 copies raw signed bytes into a Buffer
func BufferFromInt8(data []int8) Buffer {
	buf := make(Buffer, len(data))
	for i, v := range data {
		buf[i] = Sample(v)
	}
	return buf
}

// Estimate is the outcome of one phase scan at a single buffer offset
type Estimate struct {
	Offset   int   `json:"offset" yaml:"offset"`
	Phase    Phase `json:"phase" yaml:"phase"`
	MinError Error `json:"min_error" yaml:"min_error"`
}

// Average is the aggregated result of a multi-offset scan
type Average struct {
	// Phase is Sum / len(Estimates) using truncating integer division
	Phase Phase `json:"phase" yaml:"phase"`

	// Mean is the same quotient evaluated in floating point
	Mean float64 `json:"mean" yaml:"mean"`

	Sum       uint64     `json:"sum" yaml:"sum"`
	Estimates []Estimate `json:"estimates" yaml:"estimates"`
}
