package tonal

import (
	"fmt"
	"math"
	"strconv"
)

// PitchClass is one of the 12 note letter names
type PitchClass int

const (
	PitchClassA PitchClass = iota
	PitchClassASharp
	PitchClassB
	PitchClassC
	PitchClassCSharp
	PitchClassD
	PitchClassDSharp
	PitchClassE
	PitchClassF
	PitchClassFSharp
	PitchClassG
	PitchClassGSharp
)

var pitchClassNames = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// String renders the letter name, e.g. "A" or "C#"
func (pc PitchClass) String() string {
	if pc < 0 || int(pc) >= len(pitchClassNames) {
		return fmt.Sprintf("PitchClass(%d)", int(pc))
	}
	return pitchClassNames[pc]
}

// NoteName is a note letter name paired with its octave
type NoteName struct {
	Class  PitchClass `json:"class"`
	Octave int        `json:"octave"`
}

// FromPitch returns the note name that most closely corresponds to the
// given frequency in Hz.
//
// Note numbers count semitones relative to A0 shifted so that number 48 is
// A4 (440 Hz); the surrounding half-semitone band maps to the same name.
func FromPitch(pitch float64) NoteName {
	noteNum := int(math.Floor(12.0*math.Log2(pitch/440.0) + 48.5))

	noteIndex := noteNum % 12
	if noteIndex < 0 {
		noteIndex += 12
	}

	// Add 9 to the note number so the octave changes at C notes: note
	// number 3 (C1) belongs to octave 1, not octave 0.
	octave := int(math.Floor(float64(noteNum+9) / 12.0))

	return NoteName{Class: PitchClass(noteIndex), Octave: octave}
}

// String renders the display form, e.g. "A4" or "C#3"
func (n NoteName) String() string {
	return fmt.Sprintf("%s%d", n.Class, n.Octave)
}

// MarshalJSON encodes the note name in its display form
func (n NoteName) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(n.String())), nil
}
