package chord

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/pitch"
	"github.com/jsphweid/midiline/timeline"
)

// Key names a set of pitches regardless of order, e.g. "60-64-67".
func Key(pitches []int) string {
	sorted := append([]int(nil), pitches...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "-")
}

type shape struct {
	intensity float64
	duration  float64
}

// Group returns a copy of tl where notes that start together with the same
// intensity and duration are merged into one chord. The chord takes the
// place of the first of its notes. Rests, chords and nested timelines are
// kept as they are.
func Group(tl *timeline.Timeline) *timeline.Timeline {
	res := timeline.New()
	for time, events := range tl.EachTime() {
		res.Set(time, groupAt(events)...)
	}
	return res
}

func groupAt(events []event.Event) []event.Event {
	pressed := make(map[shape][]pitch.Pitch)
	first := make(map[shape]int)
	var res []event.Event
	for _, evt := range events {
		n, ok := evt.(event.Note)
		if !ok || event.IsRest(n) {
			res = append(res, evt)
			continue
		}
		s := shape{n.Intensity(), n.Duration()}
		if _, seen := pressed[s]; !seen {
			first[s] = len(res)
			res = append(res, n)
		}
		pressed[s] = append(pressed[s], n.Pitch())
	}

	for s, pitches := range pressed {
		if len(pitches) < 2 {
			continue
		}
		sort.Slice(pitches, func(i, j int) bool { return pitches[i] < pitches[j] })
		res[first[s]] = event.NewChord(pitches, s.intensity, s.duration)
	}
	return res
}
