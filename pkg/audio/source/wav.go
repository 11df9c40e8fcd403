package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM format tag
const wavFormatPCM = 1

// WAVLoader decodes integer PCM WAV files. Multi-channel audio is mixed
// down to mono and every bit depth is reduced to 8 bits.
type WAVLoader struct {
	logger logging.Logger
}

func NewWAVLoader() *WAVLoader {
	return &WAVLoader{
		logger: logging.WithFields(logging.Fields{
			"component": "wav_loader",
		}),
	}
}

func (l *WAVLoader) Type() SourceType {
	return SourceTypeWAV
}

// Load reads the whole file at location
func (l *WAVLoader) Load(ctx context.Context, location string, opts LoadOptions) (*Loaded, error) {
	logger := l.logger.WithFields(logging.Fields{
		"function": "Load",
		"location": location,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, NewSourceError(SourceTypeWAV, location, ErrCodeReadFailed, "failed to open WAV file", err)
	}
	defer f.Close()

	buf, md, err := DecodeWAV(f)
	if err != nil {
		logger.Error(err, "Failed to decode WAV file")
		if se, ok := err.(*SourceError); ok {
			se.Location = location
		}
		return nil, err
	}
	md.Location = location

	logger.Debug("WAV file decoded", logging.Fields{
		"sample_rate": md.SampleRate,
		"bit_depth":   md.BitDepth,
		"channels":    md.Channels,
		"samples":     md.Samples,
	})

	return &Loaded{Buffer: buf, Metadata: md}, nil
}

// DecodeWAV decodes an integer PCM WAV stream into 8-bit mono samples
func DecodeWAV(r io.ReadSeeker) (pitch.Buffer, *Metadata, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return nil, nil, NewSourceError(SourceTypeWAV, "", ErrCodeInvalidFormat, "invalid WAV file format", nil)
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, nil, NewSourceError(SourceTypeWAV, "", ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported WAV audio format: %d", decoder.WavAudioFormat), nil)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, nil, NewSourceError(SourceTypeWAV, "", ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported bit depth: %d", bitDepth), nil)
	}

	channels := int(decoder.NumChans)
	if channels < 1 {
		return nil, nil, NewSourceError(SourceTypeWAV, "", ErrCodeInvalidFormat, "WAV file has no channels", nil)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, NewSourceError(SourceTypeWAV, "", ErrCodeReadFailed, "failed to read PCM data", err)
	}

	frames := len(pcm.Data) / channels
	buf := make(pitch.Buffer, frames)
	for i := range buf {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += pcm.Data[i*channels+c]
		}
		buf[i] = toSample(sum/channels, bitDepth)
	}

	md := newMetadata("", SourceTypeWAV, int(decoder.SampleRate), bitDepth, channels, frames)
	return buf, md, nil
}

// toSample reduces a PCM value of the given depth to a signed 8-bit sample.
// 8-bit WAV data is unsigned.
func toSample(v, bitDepth int) pitch.Sample {
	if bitDepth == 8 {
		return pitch.Sample(clamp8(v - 128))
	}
	return pitch.Sample(clamp8(v >> (bitDepth - 8)))
}

func clamp8(v int) int {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return v
}

// WriteWAV encodes buf as a 16-bit mono WAV stream
func WriteWAV(w io.WriteSeeker, buf pitch.Buffer, sampleRate int) error {
	if sampleRate <= 0 {
		return NewSourceError(SourceTypeWAV, "", ErrCodeInvalidFormat,
			fmt.Sprintf("sample rate must be positive: %d", sampleRate), nil)
	}

	data := make([]int, len(buf))
	for i, s := range buf {
		data[i] = int(s) << 8
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, wavFormatPCM)
	if err := enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}); err != nil {
		return fmt.Errorf("failed to write WAV samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// WriteWAVFile writes buf to path as a 16-bit mono WAV file
func WriteWAVFile(path string, buf pitch.Buffer, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return NewSourceError(SourceTypeWAV, path, ErrCodeWriteFailed, "failed to create WAV file", err)
	}

	if err := WriteWAV(f, buf, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
