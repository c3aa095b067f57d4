// Package sample cuts short excerpts out of decoded tracks.
package sample

import (
	"math"

	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/timeline"
)

type Options struct {
	// From is the first beat of the excerpt. Events before it are dropped
	// and the rest are shifted so that From becomes beat 0.
	From float64
	// Length in beats. Zero or less means until the end of the track.
	Length float64
	// MaxEvents caps the number of sounds kept per track. Zero means no cap.
	MaxEvents int
}

func (o Options) end() float64 {
	if o.Length <= 0 {
		return math.Inf(1)
	}
	return o.From + o.Length
}

// Create returns one excerpt per track. Sounds that outlast the window are
// cut off at its end.
func Create(tls []*timeline.Timeline, opts Options) []*timeline.Timeline {
	res := make([]*timeline.Timeline, len(tls))
	for i, tl := range tls {
		res[i] = excerpt(tl, opts)
	}
	return res
}

func excerpt(tl *timeline.Timeline, opts Options) *timeline.Timeline {
	res := timeline.New()
	end := opts.end()
	var kept int
EventLoop:
	for time, evt := range tl.Flatten().All() {
		if time < opts.From || time >= end {
			continue
		}
		s, ok := evt.(event.Sound)
		if !ok {
			continue
		}
		if opts.MaxEvents > 0 && kept >= opts.MaxEvents {
			break EventLoop
		}
		res.Add(time-opts.From, clip(s, end-time))
		kept += 1
	}
	return res
}

func clip(s event.Sound, maxDuration float64) event.Sound {
	if event.IsRest(s) || s.Duration() <= maxDuration {
		return s
	}
	switch v := s.(type) {
	case event.Note:
		return event.NewNote(v.Pitch(), v.Intensity(), maxDuration)
	case event.Chord:
		return event.NewChord(v.PitchList(), v.Intensity(), maxDuration)
	}
	return s
}
