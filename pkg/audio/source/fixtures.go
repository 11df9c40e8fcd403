package source

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/RyanBlaney/phase-pitch/pkg/pitch"
)

// Fixture is a deterministic recording stand-in
type Fixture struct {
	Name      string
	Frequency float64
	Weights   []float64

	// Decay is the amplitude time constant in seconds; zero holds steady
	Decay float64

	// Noise is the peak noise amplitude relative to the fundamental
	Noise float64
}

var fixtures = map[string]Fixture{
	// low E string, plucked
	"bass": {
		Name:      "bass",
		Frequency: 41.2034,
		Weights:   []float64{1, 0.7, 0.45, 0.3, 0.2, 0.12, 0.08},
		Decay:     1.5,
		Noise:     0.01,
	},
	// sustained low male voice with a strong second and third partial
	"voice": {
		Name:      "voice",
		Frequency: 55,
		Weights:   []float64{0.6, 1, 0.8, 0.35, 0.5, 0.2, 0.15, 0.1},
		Noise:     0.03,
	},
}

// Fixtures returns the fixture names in sorted order
func Fixtures() []string {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupFixture returns the named fixture
func LookupFixture(name string) (Fixture, bool) {
	f, ok := fixtures[strings.ToLower(name)]
	return f, ok
}

// Render generates length samples of the fixture at sampleRate
func (f Fixture) Render(sampleRate, length int) pitch.Buffer {
	signal := Harmonic(f.Frequency, sampleRate, length, f.Weights)

	if f.Decay > 0 {
		envelope := make([]float64, length)
		for i := range envelope {
			envelope[i] = math.Exp(-float64(i) / (f.Decay * float64(sampleRate)))
		}
		vecmath.MulBlockInPlace(signal, envelope)
	}

	if f.Noise > 0 {
		AddNoise(signal, f.Noise, int64(len(f.Name))*7919)
	}

	return Quantize(signal)
}

// FixtureLoader serves "fixture:<name>" locations
type FixtureLoader struct{}

func NewFixtureLoader() *FixtureLoader {
	return &FixtureLoader{}
}

func (l *FixtureLoader) Type() SourceType {
	return SourceTypeFixture
}

func (l *FixtureLoader) Load(ctx context.Context, location string, opts LoadOptions) (*Loaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, name, _ := strings.Cut(location, ":")
	fixture, ok := LookupFixture(name)
	if !ok {
		return nil, NewSourceError(SourceTypeFixture, location, ErrCodeInvalidLocation,
			fmt.Sprintf("unknown fixture %q, available: %s", name, strings.Join(Fixtures(), ", ")), nil)
	}

	rate, length, err := generatorSize(location, SourceTypeFixture, opts)
	if err != nil {
		return nil, err
	}

	buf := fixture.Render(rate, length)
	return &Loaded{
		Buffer:   buf,
		Metadata: newMetadata(location, SourceTypeFixture, rate, 8, 1, len(buf)),
	}, nil
}
