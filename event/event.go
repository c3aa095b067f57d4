package event

import (
	"fmt"

	"github.com/jsphweid/midiline/pitch"
)

type Kind uint8

const (
	KindNote Kind = iota
	KindChord
	KindTimeline
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindChord:
		return "chord"
	case KindTimeline:
		return "timeline"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event is anything that can be placed on a timeline: a Note, a Chord or a
// nested timeline.
type Event interface {
	Kind() Kind
}

// Sound is what the MIDI codec needs from an event. Only Note and Chord
// implement it.
type Sound interface {
	Event
	Pitches() []int
	Intensity() float64
	Duration() float64
}

// Transposer is implemented by events that can be shifted by a number of
// semitones.
type Transposer interface {
	Transposed(semitones int) Event
}

// IsRest reports whether s occupies a timepoint without making any sound.
func IsRest(s Sound) bool {
	return s.Duration() <= 0
}

// Transpose shifts e when it supports transposition and returns it unchanged
// otherwise.
func Transpose(e Event, semitones int) Event {
	if t, ok := e.(Transposer); ok {
		return t.Transposed(semitones)
	}
	return e
}

// Note is a single pitch struck with an intensity in [0,1] and held for a
// duration in beats.
type Note struct {
	pitch     pitch.Pitch
	intensity float64
	duration  float64
}

func NewNote(p pitch.Pitch, intensity, duration float64) Note {
	return Note{pitch: p, intensity: intensity, duration: duration}
}

// Rest is a note with a negative duration. It is skipped by the encoder.
func Rest(p pitch.Pitch) Note {
	return Note{pitch: p, intensity: MF, duration: -1}
}

func (n Note) Kind() Kind             { return KindNote }
func (n Note) Pitch() pitch.Pitch     { return n.pitch }
func (n Note) Pitches() []int         { return []int{int(n.pitch)} }
func (n Note) Intensity() float64     { return n.intensity }
func (n Note) Duration() float64      { return n.duration }
func (n Note) Transposed(s int) Event { return n.Transpose(s) }

func (n Note) Transpose(semitones int) Note {
	n.pitch += pitch.Pitch(semitones)
	return n
}

func (n Note) String() string {
	return fmt.Sprintf("Note(%v, %g, %g)", n.pitch, n.intensity, n.duration)
}

// Chord is a group of pitches sharing one intensity and duration.
type Chord struct {
	pitches   []pitch.Pitch
	intensity float64
	duration  float64
}

// NewChord copies pitches, so the caller may reuse the slice.
func NewChord(pitches []pitch.Pitch, intensity, duration float64) Chord {
	ps := make([]pitch.Pitch, len(pitches))
	copy(ps, pitches)
	return Chord{pitches: ps, intensity: intensity, duration: duration}
}

func (c Chord) Kind() Kind             { return KindChord }
func (c Chord) Intensity() float64     { return c.intensity }
func (c Chord) Duration() float64      { return c.duration }
func (c Chord) Transposed(s int) Event { return c.Transpose(s) }

// PitchList returns a copy of the chord's pitches in construction order.
func (c Chord) PitchList() []pitch.Pitch {
	ps := make([]pitch.Pitch, len(c.pitches))
	copy(ps, c.pitches)
	return ps
}

func (c Chord) Pitches() []int {
	res := make([]int, len(c.pitches))
	for i, p := range c.pitches {
		res[i] = int(p)
	}
	return res
}

// Notes splits the chord into one Note per pitch.
func (c Chord) Notes() []Note {
	res := make([]Note, len(c.pitches))
	for i, p := range c.pitches {
		res[i] = NewNote(p, c.intensity, c.duration)
	}
	return res
}

func (c Chord) Transpose(semitones int) Chord {
	ps := make([]pitch.Pitch, len(c.pitches))
	for i, p := range c.pitches {
		ps[i] = p + pitch.Pitch(semitones)
	}
	return Chord{pitches: ps, intensity: c.intensity, duration: c.duration}
}

func (c Chord) String() string {
	return fmt.Sprintf("Chord(%v, %g, %g)", c.pitches, c.intensity, c.duration)
}
