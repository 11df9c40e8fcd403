package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// SyntheticLoader generates test signals from locations of the form
// "sine:<hz>", "harmonic:<hz>" and "tile:<period>"
type SyntheticLoader struct {
	// Seed drives the tile pattern
	Seed int64
}

func NewSyntheticLoader() *SyntheticLoader {
	return &SyntheticLoader{Seed: 1}
}

func (l *SyntheticLoader) Type() SourceType {
	return SourceTypeSynthetic
}

func (l *SyntheticLoader) Load(ctx context.Context, location string, opts LoadOptions) (*Loaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, arg, ok := strings.Cut(location, ":")
	if !ok {
		return nil, NewSourceError(SourceTypeSynthetic, location, ErrCodeInvalidLocation,
			"synthetic location must look like kind:value", nil)
	}

	value, err := strconv.ParseFloat(arg, 64)
	if err != nil || value <= 0 || math.IsInf(value, 0) {
		return nil, NewSourceError(SourceTypeSynthetic, location, ErrCodeInvalidLocation,
			fmt.Sprintf("synthetic %s needs a positive number, got %q", kind, arg), err)
	}

	rate, length, err := generatorSize(location, SourceTypeSynthetic, opts)
	if err != nil {
		return nil, err
	}

	var buf pitch.Buffer
	switch strings.ToLower(kind) {
	case "sine":
		buf = Quantize(Sine(value, rate, length))
	case "harmonic":
		buf = Quantize(Harmonic(value, rate, length, []float64{1, 0.5, 0.33, 0.25, 0.2, 0.16}))
	case "tile":
		if value != math.Trunc(value) {
			return nil, NewSourceError(SourceTypeSynthetic, location, ErrCodeInvalidLocation,
				fmt.Sprintf("tile period must be a whole number of samples: %s", arg), nil)
		}
		buf = Tile(int(value), length, l.Seed)
	default:
		return nil, NewSourceError(SourceTypeSynthetic, location, ErrCodeUnsupported,
			fmt.Sprintf("unknown synthetic signal: %s", kind), nil)
	}

	return &Loaded{
		Buffer:   buf,
		Metadata: newMetadata(location, SourceTypeSynthetic, rate, 8, 1, len(buf)),
	}, nil
}

func generatorSize(location string, sourceType SourceType, opts LoadOptions) (int, int, error) {
	if opts.SampleRate <= 0 {
		return 0, 0, NewSourceError(sourceType, location, ErrCodeInvalidLocation,
			fmt.Sprintf("generated sources need a positive sample rate, got %d", opts.SampleRate), nil)
	}
	length := opts.Length
	if length <= 0 {
		length = DefaultLength
	}
	return opts.SampleRate, length, nil
}

// Sine renders a unit sine at hz
func Sine(hz float64, sampleRate, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * hz / float64(sampleRate)
	for i := range out {
		out[i] = math.Sin(step * float64(i))
	}
	return out
}

// Harmonic renders hz with partials at integer multiples; weights[k] is
// the amplitude of partial k+1
func Harmonic(hz float64, sampleRate, length int, weights []float64) []float64 {
	out := make([]float64, length)
	scaled := make([]float64, length)
	for k, w := range weights {
		if w == 0 {
			continue
		}
		vecmath.ScaleBlock(scaled, Sine(hz*float64(k+1), sampleRate, length), w)
		vecmath.AddBlockInPlace(out, scaled)
	}
	return out
}

// AddNoise adds uniform noise of the given peak amplitude in place
func AddNoise(signal []float64, amplitude float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	noise := make([]float64, len(signal))
	for i := range noise {
		noise[i] = 2*rng.Float64() - 1
	}
	vecmath.ScaleBlockInPlace(noise, amplitude)
	vecmath.AddBlockInPlace(signal, noise)
}

// Quantize scales signal so its peak maps to 127 and rounds to samples.
// A silent signal becomes all zeros.
func Quantize(signal []float64) pitch.Buffer {
	peak := 0.0
	for _, v := range signal {
		peak = math.Max(peak, math.Abs(v))
	}

	buf := make(pitch.Buffer, len(signal))
	if peak == 0 {
		return buf
	}

	scale := 127 / peak
	for i, v := range signal {
		buf[i] = pitch.Sample(math.Round(v * scale))
	}
	return buf
}

// Tile repeats a seeded random pattern of exactly period samples, so the
// phase search finds period with zero error
func Tile(period, length int, seed int64) pitch.Buffer {
	rng := rand.New(rand.NewSource(seed))
	pattern := make([]pitch.Sample, period)
	for i := range pattern {
		pattern[i] = pitch.Sample(rng.Intn(256) - 128)
	}

	buf := make(pitch.Buffer, length)
	for i := range buf {
		buf[i] = pattern[i%period]
	}
	return buf
}
