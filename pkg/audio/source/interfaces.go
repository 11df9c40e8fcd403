package source

import (
	"context"
	"time"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// SourceType identifies how a location is turned into samples
type SourceType string

const (
	SourceTypeWAV         SourceType = "wav"
	SourceTypeRaw         SourceType = "raw"
	SourceTypeFixture     SourceType = "fixture"
	SourceTypeSynthetic   SourceType = "synthetic"
	SourceTypeUnsupported SourceType = "unsupported"
)

// DefaultLength is the number of samples generated for fixtures and
// synthetic sources, the size of the reference recordings
const DefaultLength = 16384

// Metadata describes a loaded source
type Metadata struct {
	Location   string        `json:"location" yaml:"location"`
	Type       SourceType    `json:"type" yaml:"type"`
	SampleRate int           `json:"sample_rate" yaml:"sample_rate"`
	Channels   int           `json:"channels" yaml:"channels"`
	BitDepth   int           `json:"bit_depth" yaml:"bit_depth"`
	Samples    int           `json:"samples" yaml:"samples"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Loaded is a source decoded into 8-bit mono samples
type Loaded struct {
	Buffer   pitch.Buffer
	Metadata *Metadata
}

// LoadOptions tune how a location is read
type LoadOptions struct {
	// SampleRate is used by headerless and generated sources. WAV files
	// report their own rate.
	SampleRate int

	// Length overrides DefaultLength for generated sources
	Length int
}

// Loader turns a location into samples
type Loader interface {
	Load(ctx context.Context, location string, opts LoadOptions) (*Loaded, error)
	Type() SourceType
}

func newMetadata(location string, sourceType SourceType, sampleRate, bitDepth, channels, samples int) *Metadata {
	md := &Metadata{
		Location:   location,
		Type:       sourceType,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Samples:    samples,
	}
	if sampleRate > 0 {
		md.Duration = time.Duration(samples) * time.Second / time.Duration(sampleRate)
	}
	return md
}
