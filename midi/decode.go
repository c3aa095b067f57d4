package midi

import (
	"fmt"

	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/pitch"
	"github.com/jsphweid/midiline/timeline"
	"github.com/jsphweid/midiline/util"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Decoder turns note on/note off tracks into timelines of Notes. Notes that
// start together end up in the same event list; Chords are never rebuilt.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

type openNote struct {
	tick     int64
	velocity uint8
}

// TicksPerBeat reads the resolution declared by the file header.
func TicksPerBeat(s *smf.SMF) (uint16, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, &UnsupportedFormatError{Reason: fmt.Sprintf("time format %v has no ticks per beat", s.TimeFormat)}
	}
	if mt == 0 {
		return 0, &UnsupportedFormatError{Reason: "header declares 0 ticks per beat"}
	}
	return uint16(mt), nil
}

// DecodeFile returns one timeline per track. When a track is malformed the
// timelines of the tracks before it are returned along with the error.
func (d *Decoder) DecodeFile(s *smf.SMF) ([]*timeline.Timeline, error) {
	ticksPerBeat, err := TicksPerBeat(s)
	if err != nil {
		return nil, err
	}

	res := make([]*timeline.Timeline, 0, len(s.Tracks))
	for i, track := range s.Tracks {
		tl, err := d.DecodeTrack(i, track, ticksPerBeat)
		if err != nil {
			return res, err
		}
		res = append(res, tl)
	}
	return res, nil
}

// DecodeTrack pairs every note off with the oldest open note on of the same
// pitch, on any channel. index is only used in errors.
func (d *Decoder) DecodeTrack(index int, track smf.Track, ticksPerBeat uint16) (*timeline.Timeline, error) {
	tl := timeline.New()
	tpb := float64(ticksPerBeat)
	open := make(map[uint8][]openNote)

	var absTicks int64
	for _, evt := range track {
		absTicks += int64(evt.Delta)
		msg := gomidi.Message(evt.Message)
		var channel, key, velocity uint8
		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			open[key] = append(open[key], openNote{tick: absTicks, velocity: velocity})
		case msg.GetNoteEnd(&channel, &key):
			queue := open[key]
			if len(queue) == 0 {
				return nil, &MalformedTrackError{
					Track:  index,
					Tick:   absTicks,
					Pitch:  key,
					Reason: "note off without a matching note on",
				}
			}
			on := queue[0]
			open[key] = queue[1:]
			tl.Add(float64(on.tick)/tpb, event.NewNote(
				pitch.Pitch(key),
				float64(on.velocity)/127.0,
				float64(absTicks-on.tick)/tpb,
			))
		}
	}

	if err := dangling(index, open); err != nil {
		return nil, err
	}
	return tl, nil
}

// dangling reports the earliest note on still open at the end of a track.
func dangling(index int, open map[uint8][]openNote) error {
	var found *MalformedTrackError
	for _, key := range util.SortedKeys(open) {
		queue := open[key]
		if len(queue) == 0 {
			continue
		}
		if found == nil || queue[0].tick < found.Tick {
			found = &MalformedTrackError{
				Track:  index,
				Tick:   queue[0].tick,
				Pitch:  key,
				Reason: "note on without a matching note off",
			}
		}
	}
	if found == nil {
		return nil
	}
	return found
}
