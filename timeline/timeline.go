// Package timeline holds a sparse, time ordered map of beat positions to the
// events that start there.
package timeline

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
	"strings"

	"github.com/jsphweid/midiline/event"
)

// Timeline maps times, in beats, to the list of events occurring at that
// time. An explicit empty list is kept until Compact is called.
//
// A Timeline is itself an event, so timelines may be nested. Flatten
// resolves the nesting into absolute times.
type Timeline struct {
	events map[float64][]event.Event
}

// Pair is one timepoint and its event list.
type Pair struct {
	Time   float64
	Events []event.Event
}

func New() *Timeline {
	return &Timeline{events: make(map[float64][]event.Event)}
}

// FromMap builds a Timeline from a map of times to event lists. The lists are
// copied; m is not modified.
func FromMap(m map[float64][]event.Event) *Timeline {
	t := New()
	for time, events := range m {
		t.Set(time, events...)
	}
	return t
}

// FromEvents builds a Timeline where every time holds a single event.
func FromEvents(m map[float64]event.Event) *Timeline {
	t := New()
	for time, e := range m {
		t.Set(time, e)
	}
	return t
}

// FromPairs builds a Timeline from (time, events) pairs. Later pairs replace
// earlier ones with the same time.
func FromPairs(pairs []Pair) *Timeline {
	t := New()
	for _, p := range pairs {
		t.Set(p.Time, p.Events...)
	}
	return t
}

func (t *Timeline) Kind() event.Kind {
	return event.KindTimeline
}

// At returns a copy of the events at time and whether the time is present
// at all.
func (t *Timeline) At(time float64) ([]event.Event, bool) {
	events, ok := t.events[time]
	if !ok {
		return nil, false
	}
	list := make([]event.Event, len(events))
	copy(list, events)
	return list, true
}

// Set replaces whatever is at time with events.
func (t *Timeline) Set(time float64, events ...event.Event) {
	list := make([]event.Event, len(events))
	copy(list, events)
	t.events[time] = list
}

// Add appends events to the list at time, creating the list if needed.
func (t *Timeline) Add(time float64, events ...event.Event) {
	list, ok := t.events[time]
	if !ok {
		list = make([]event.Event, 0, len(events))
	}
	t.events[time] = append(list, events...)
}

func (t *Timeline) Delete(time float64) {
	delete(t.events, time)
}

func (t *Timeline) HasTime(time float64) bool {
	_, ok := t.events[time]
	return ok
}

func (t *Timeline) Empty() bool {
	return len(t.events) == 0
}

// Len is the number of timepoints, including those with empty lists.
func (t *Timeline) Len() int {
	return len(t.events)
}

// Clear removes every timepoint and returns t.
func (t *Timeline) Clear() *Timeline {
	t.events = make(map[float64][]event.Event)
	return t
}

// Merge copies every timepoint of other into t, replacing the lists already
// at those times. It returns t.
func (t *Timeline) Merge(other *Timeline) *Timeline {
	for time, events := range other.events {
		t.Set(time, events...)
	}
	return t
}

// MergeMap is Merge for a plain map.
func (t *Timeline) MergeMap(m map[float64][]event.Event) *Timeline {
	return t.Merge(FromMap(m))
}

// Times returns all times in ascending order.
func (t *Timeline) Times() []float64 {
	times := make([]float64, 0, len(t.events))
	for time := range t.events {
		times = append(times, time)
	}
	sort.Float64s(times)
	return times
}

// Events returns every event ordered by time. Events sharing a time keep
// their list order.
func (t *Timeline) Events() []event.Event {
	var res []event.Event
	for _, time := range t.Times() {
		res = append(res, t.events[time]...)
	}
	return res
}

// All yields each (time, event) pair in ascending time order. Each call
// starts a new traversal.
func (t *Timeline) All() iter.Seq2[float64, event.Event] {
	return func(yield func(float64, event.Event) bool) {
		for _, time := range t.Times() {
			for _, e := range t.events[time] {
				if !yield(time, e) {
					return
				}
			}
		}
	}
}

// EachTime yields each (time, event list) pair in ascending time order. The
// yielded list is the one stored in t.
func (t *Timeline) EachTime() iter.Seq2[float64, []event.Event] {
	return func(yield func(float64, []event.Event) bool) {
		for _, time := range t.Times() {
			if !yield(time, t.events[time]) {
				return
			}
		}
	}
}

// Map returns a new Timeline built from fn applied to every (time, event)
// pair. Results are regrouped by the time fn returns.
func (t *Timeline) Map(fn func(time float64, e event.Event) (float64, event.Event)) *Timeline {
	res := New()
	for time, e := range t.All() {
		newTime, newEvent := fn(time, e)
		res.Add(newTime, newEvent)
	}
	return res
}

// MapInPlace is Map, but replaces the contents of t.
func (t *Timeline) MapInPlace(fn func(time float64, e event.Event) (float64, event.Event)) *Timeline {
	t.events = t.Map(fn).events
	return t
}

// MapEvents returns a new Timeline with fn applied to every event. Times do
// not change.
func (t *Timeline) MapEvents(fn func(e event.Event) event.Event) *Timeline {
	return t.Clone().MapEventsInPlace(fn)
}

func (t *Timeline) MapEventsInPlace(fn func(e event.Event) event.Event) *Timeline {
	for _, events := range t.events {
		for i, e := range events {
			events[i] = fn(e)
		}
	}
	return t
}

// Compact removes every time whose event list is empty.
func (t *Timeline) Compact() *Timeline {
	for time, events := range t.events {
		if len(events) == 0 {
			delete(t.events, time)
		}
	}
	return t
}

// Flatten returns a new Timeline in which every nested Timeline event at time
// T is replaced by its own events shifted by T, recursively. A timeline that
// contains itself is expanded once along each path.
func (t *Timeline) Flatten() *Timeline {
	flat := New()
	t.flattenInto(flat, 0, map[*Timeline]bool{})
	return flat
}

func (t *Timeline) flattenInto(dst *Timeline, offset float64, visiting map[*Timeline]bool) {
	visiting[t] = true
	defer delete(visiting, t)

	for _, time := range t.Times() {
		events := t.events[time]
		if len(events) == 0 {
			dst.Add(offset + time)
			continue
		}
		for _, e := range events {
			nested, ok := e.(*Timeline)
			if !ok {
				dst.Add(offset+time, e)
				continue
			}
			if !visiting[nested] {
				nested.flattenInto(dst, offset+time, visiting)
			}
		}
	}
}

// Clone copies t deeply enough that changing the clone's lists leaves t
// alone. The events themselves are shared.
func (t *Timeline) Clone() *Timeline {
	c := New()
	for time, events := range t.events {
		c.Set(time, events...)
	}
	return c
}

// ToMap returns a copy of the underlying map.
func (t *Timeline) ToMap() map[float64][]event.Event {
	return t.Clone().events
}

// Transposed returns a copy with every transposable event shifted.
func (t *Timeline) Transposed(semitones int) event.Event {
	return t.MapEvents(func(e event.Event) event.Event {
		return event.Transpose(e, semitones)
	})
}

// Equal reports whether t and other hold the same events at the same times.
func (t *Timeline) Equal(other *Timeline) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.EqualMap(other.events)
}

// EqualMap compares t to a plain map of times to event lists.
func (t *Timeline) EqualMap(m map[float64][]event.Event) bool {
	if len(t.events) != len(m) {
		return false
	}
	for time, events := range t.events {
		others, ok := m[time]
		if !ok || !equalLists(events, others) {
			return false
		}
	}
	return true
}

func equalLists(a, b []event.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ta, okA := a[i].(*Timeline)
		tb, okB := b[i].(*Timeline)
		if okA && okB {
			if !ta.Equal(tb) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (t *Timeline) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, time := range t.Times() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g: %v", time, t.events[time])
	}
	sb.WriteString("}")
	return sb.String()
}
