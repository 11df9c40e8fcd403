// Package note names musical pitches. A Pitch counts half steps from A4
// (440 Hz); octaves follow scientific pitch notation, so C4 is middle C
// and the octave number changes between B and C. Names from tools that
// count octaves from A differ for C through G♯: their C4 is C5 here.
package note

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// ReferenceFrequency is the frequency of A4, pitch 0
const ReferenceFrequency = 440.0

// DefaultOctave is assumed when a note name carries no octave digit
const DefaultOctave = 4

// Pitch is the signed number of half steps from A4
type Pitch int

// ErrInvalidNote is returned for note names that cannot be parsed
var ErrInvalidNote = errors.New("invalid note name")

// half steps of each natural relative to A in the same octave
var naturals = map[rune]int{
	'C': -9,
	'D': -7,
	'E': -5,
	'F': -4,
	'G': -2,
	'A': 0,
	'B': 2,
}

var alterations = map[rune]int{
	'♯': 1,
	'#': 1,
	'♮': 0,
	'b': -1,
	'♭': -1,
}

// names from C, the first note of every octave
var names = [12]string{"C", "C♯", "D", "D♯", "E", "F", "F♯", "G", "G♯", "A", "A♯", "B"}

// c0 is the pitch of C0
const c0 = -57

// Parse reads a note name such as "A4", "C#3", "B♭2", "E♮" or "G".
// The note letter comes first, then an optional alteration, then an
// optional single octave digit (DefaultOctave when absent).
func Parse(name string) (Pitch, error) {
	rest := strings.TrimSpace(name)
	if rest == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNote)
	}

	letter, size := utf8.DecodeRuneInString(rest)
	offset, ok := naturals[toUpper(letter)]
	if !ok {
		return 0, fmt.Errorf("%w: %q has no note letter", ErrInvalidNote, name)
	}
	rest = rest[size:]

	if r, size := utf8.DecodeRuneInString(rest); size > 0 {
		if alt, ok := alterations[r]; ok {
			offset += alt
			rest = rest[size:]
		}
	}

	octave := DefaultOctave
	if rest != "" {
		if len(rest) != 1 || rest[0] < '0' || rest[0] > '9' {
			return 0, fmt.Errorf("%w: %q has a bad octave", ErrInvalidNote, name)
		}
		octave = int(rest[0] - '0')
	}

	return Pitch(offset + (octave-DefaultOctave)*12), nil
}

// MustParse is Parse for constants; it panics on a bad name
func MustParse(name string) Pitch {
	p, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Octave returns the scientific octave number of p
func (p Pitch) Octave() int {
	return floorDiv(int(p)-c0, 12)
}

// Name returns the note letter and sharp without the octave
func (p Pitch) Name() string {
	return names[floorMod(int(p)-c0, 12)]
}

// String prints the note with sharps and its octave, e.g. "C♯3"
func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", p.Name(), p.Octave())
}

// Frequency returns the equal-tempered frequency of p in Hz
func (p Pitch) Frequency() float64 {
	return ReferenceFrequency * math.Pow(2, float64(p)/12)
}

// Note is a frequency resolved to its nearest pitch
type Note struct {
	Pitch     Pitch   `json:"pitch" yaml:"pitch"`
	Name      string  `json:"name" yaml:"name"`
	Octave    int     `json:"octave" yaml:"octave"`
	Frequency float64 `json:"frequency" yaml:"frequency"`

	// Cents is how far the input lies from Pitch, in [-50, 50]
	Cents float64 `json:"cents" yaml:"cents"`
}

// FromFrequency resolves hz to the nearest equal-tempered pitch
func FromFrequency(hz float64) (Note, error) {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return Note{}, fmt.Errorf("frequency must be positive and finite: %g", hz)
	}

	semitones := 12 * math.Log2(hz/ReferenceFrequency)
	p := Pitch(math.Round(semitones))

	return Note{
		Pitch:     p,
		Name:      p.String(),
		Octave:    p.Octave(),
		Frequency: p.Frequency(),
		Cents:     100 * (semitones - float64(p)),
	}, nil
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'g' {
		return r - 'a' + 'A'
	}
	return r
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
