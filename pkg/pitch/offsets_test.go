package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxOffset(t *testing.T) {
	cfg := DefaultConfig()

	max, err := MaxOffset(cfg.Span(), cfg)
	require.NoError(t, err)
	assert.Zero(t, max)

	max, err = MaxOffset(16384, cfg)
	require.NoError(t, err)
	assert.Equal(t, 16384-1569, max)

	_, err = MaxOffset(cfg.Span()-1, cfg)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSpreadOffsets(t *testing.T) {
	cfg := DefaultConfig()

	offsets, err := SpreadOffsets(cfg.Span()+900, cfg, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 300, 600, 900}, offsets)

	offsets, err = SpreadOffsets(cfg.Span()+900, cfg, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, offsets)

	// Every spread offset must be accepted by the estimator
	buf := randomBuffer(cfg.Span()+1001, 5)
	offsets, err = SpreadOffsets(buf.Len(), cfg, 7)
	require.NoError(t, err)
	for _, offset := range offsets {
		assert.LessOrEqual(t, offset, 1001)
	}

	// one spare sample leaves room for offsets 0 and 1 only
	offsets, err = SpreadOffsets(cfg.Span()+1, cfg, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, offsets)

	offsets, err = SpreadOffsets(cfg.Span(), cfg, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, offsets)

	_, err = SpreadOffsets(cfg.Span(), cfg, 0)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = SpreadOffsets(10, cfg, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBufferSlice(t *testing.T) {
	buf := BufferFromInt8([]int8{1, 2, 3, 4, 5})
	assert.Equal(t, 5, buf.Len())

	s, err := buf.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []Sample{2, 3, 4}, s)
	assert.Equal(t, 3, cap(s), "slice must not expose the tail")

	s, err = buf.Slice(5, 0)
	require.NoError(t, err)
	assert.Empty(t, s)

	for _, tc := range [][2]int{{-1, 1}, {0, -1}, {3, 3}, {6, 0}} {
		_, err := buf.Slice(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrOutOfRange, "offset=%d length=%d", tc[0], tc[1])
	}
}

func TestPitchErrorMatchesByCode(t *testing.T) {
	cause := assert.AnError
	err := NewPitchError(ErrCodeOutOfRange, "boom", cause)

	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.NotErrorIs(t, err, ErrInvalidRange)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom: "+cause.Error(), err.Error())
}
