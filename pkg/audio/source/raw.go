package source

import (
	"context"
	"os"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// RawLoader reads headerless signed 8-bit mono PCM, one byte per sample
type RawLoader struct{}

func NewRawLoader() *RawLoader {
	return &RawLoader{}
}

func (l *RawLoader) Type() SourceType {
	return SourceTypeRaw
}

// Load reads the file at location. Raw files carry no rate, so
// opts.SampleRate is recorded as-is.
func (l *RawLoader) Load(ctx context.Context, location string, opts LoadOptions) (*Loaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, NewSourceError(SourceTypeRaw, location, ErrCodeReadFailed, "failed to read raw sample file", err)
	}

	buf := make(pitch.Buffer, len(data))
	for i, b := range data {
		buf[i] = pitch.Sample(int8(b))
	}

	return &Loaded{
		Buffer:   buf,
		Metadata: newMetadata(location, SourceTypeRaw, opts.SampleRate, 8, 1, len(buf)),
	}, nil
}

// WriteRawFile writes buf as signed 8-bit bytes
func WriteRawFile(path string, buf pitch.Buffer) error {
	data := make([]byte, len(buf))
	for i, s := range buf {
		data[i] = byte(s)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return NewSourceError(SourceTypeRaw, path, ErrCodeWriteFailed, "failed to write raw sample file", err)
	}
	return nil
}
