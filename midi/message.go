package midi

import (
	"fmt"

	"github.com/jsphweid/midiline/pitch"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type MessageKind uint8

// NoteOff sorts before NoteOn so a note ending on a tick is released before a
// note starting on the same tick.
const (
	NoteOff MessageKind = iota
	NoteOn
)

func (k MessageKind) String() string {
	if k == NoteOn {
		return "note_on"
	}
	return "note_off"
}

// Message is a note on or note off at an absolute tick.
type Message struct {
	Tick     int64
	Kind     MessageKind
	Pitch    uint8
	Velocity uint8
}

func (m Message) bytes(channel uint8) gomidi.Message {
	if m.Kind == NoteOn {
		return gomidi.NoteOn(channel, m.Pitch, m.Velocity)
	}
	return gomidi.NoteOff(channel, m.Pitch)
}

func (m Message) String() string {
	if m.Kind == NoteOn {
		return fmt.Sprintf("%8d %-8s %-4v vel=%d", m.Tick, m.Kind, pitch.Pitch(m.Pitch), m.Velocity)
	}
	return fmt.Sprintf("%8d %-8s %v", m.Tick, m.Kind, pitch.Pitch(m.Pitch))
}

// TrackMessages lists the note messages of a track with absolute ticks. A note
// on with velocity 0 is reported as a note off. Other messages are skipped.
func TrackMessages(track smf.Track) []Message {
	var res []Message
	var absTicks int64
	for _, evt := range track {
		absTicks += int64(evt.Delta)
		msg := gomidi.Message(evt.Message)
		var channel, key, velocity uint8
		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			res = append(res, Message{Tick: absTicks, Kind: NoteOn, Pitch: key, Velocity: velocity})
		case msg.GetNoteEnd(&channel, &key):
			res = append(res, Message{Tick: absTicks, Kind: NoteOff, Pitch: key})
		}
	}
	return res
}
