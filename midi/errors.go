package midi

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrUnsupportedValue = errors.New("expected a *timeline.Timeline or a []*timeline.Timeline")

// PitchRangeError is returned by the encoder for a pitch that cannot be sent
// as a MIDI key. Pitches are never clamped.
type PitchRangeError struct {
	Track int
	Time  float64
	Pitch int
}

func (e *PitchRangeError) Error() string {
	return fmt.Sprintf("track %d: pitch %d at beat %g is outside 0-127", e.Track, e.Pitch, e.Time)
}

// TimeRangeError is returned by the encoder for an event that would land on a
// negative tick or need a delta time the file format cannot hold.
type TimeRangeError struct {
	Track int
	Time  float64
	Tick  int64
}

func (e *TimeRangeError) Error() string {
	return fmt.Sprintf("track %d: beat %g (tick %d) cannot be encoded", e.Track, e.Time, e.Tick)
}

// MalformedTrackError is returned by the decoder when note ons and note offs
// do not pair up.
type MalformedTrackError struct {
	Track  int
	Tick   int64
	Pitch  uint8
	Reason string
}

func (e *MalformedTrackError) Error() string {
	return fmt.Sprintf("track %d: tick %d: pitch %d: %s", e.Track, e.Tick, e.Pitch, e.Reason)
}

// UnsupportedFormatError is returned by the decoder when the file cannot be
// parsed or uses a time format without ticks per beat.
type UnsupportedFormatError struct {
	Reason string
	Err    error
}

func (e *UnsupportedFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported midi file: %s: %v", e.Reason, e.Err)
	}
	return "unsupported midi file: " + e.Reason
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Err
}
