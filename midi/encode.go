package midi

import (
	"math"
	"sort"
	"sync"

	"github.com/jsphweid/midiline/constants"
	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/timeline"
	"github.com/jsphweid/midiline/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

type Config struct {
	TicksPerBeat uint16
	// Channel, 0-15, used for every message.
	Channel uint8
}

func DefaultConfig() Config {
	return Config{TicksPerBeat: constants.DefaultTicksPerBeat}
}

func (c Config) Validate() error {
	if c.TicksPerBeat == 0 || c.TicksPerBeat > 0x7FFF {
		return errors.Errorf("ticks per beat must be in 1-32767, got %d", c.TicksPerBeat)
	}
	if c.Channel > 15 {
		return errors.Errorf("channel must be in 0-15, got %d", c.Channel)
	}
	return nil
}

// Encoder turns timelines into note on/note off tracks.
type Encoder struct {
	cfg Config
}

func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg}, nil
}

func (e *Encoder) Config() Config {
	return e.cfg
}

func (e *Encoder) ticks(beats float64) int64 {
	return int64(math.Round(beats * float64(e.cfg.TicksPerBeat)))
}

// velocity never returns 0: a note on with velocity 0 would read back as a
// note off, so an intensity of 0 writes velocity 1.
func velocity(intensity float64) uint8 {
	return uint8(util.Clamp(math.Round(intensity*127), 1, 127))
}

// Messages returns the sorted note messages for tl. Nested timelines are
// flattened first and rests are dropped. At equal ticks note offs come
// before note ons; otherwise the order of pitches within a timepoint is kept.
func (e *Encoder) Messages(tl *timeline.Timeline) ([]Message, error) {
	return e.messages(0, tl)
}

func (e *Encoder) messages(track int, tl *timeline.Timeline) ([]Message, error) {
	var msgs []Message
	for t, events := range tl.Flatten().EachTime() {
		start := e.ticks(t)
		for _, evt := range events {
			s, ok := evt.(event.Sound)
			if !ok || event.IsRest(s) {
				continue
			}
			if start < 0 {
				return nil, &TimeRangeError{Track: track, Time: t, Tick: start}
			}
			// a sounding note lasts at least one tick so its note off
			// cannot sort ahead of its note on
			end := start + util.Max(e.ticks(s.Duration()), 1)
			vel := velocity(s.Intensity())
			for _, p := range s.Pitches() {
				if p < 0 || p > 127 {
					return nil, &PitchRangeError{Track: track, Time: t, Pitch: p}
				}
				msgs = append(msgs,
					Message{Tick: start, Kind: NoteOn, Pitch: uint8(p), Velocity: vel},
					Message{Tick: end, Kind: NoteOff, Pitch: uint8(p)},
				)
			}
		}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Tick != msgs[j].Tick {
			return msgs[i].Tick < msgs[j].Tick
		}
		return msgs[i].Kind < msgs[j].Kind
	})
	return msgs, nil
}

// EncodeTrack encodes tl as a single closed track.
func (e *Encoder) EncodeTrack(tl *timeline.Timeline) (smf.Track, error) {
	return e.encodeTrack(0, tl)
}

func (e *Encoder) encodeTrack(index int, tl *timeline.Timeline) (smf.Track, error) {
	msgs, err := e.messages(index, tl)
	if err != nil {
		return nil, err
	}

	var track smf.Track
	var lastTick int64
	for _, m := range msgs {
		delta := m.Tick - lastTick
		if delta > constants.MaxDeltaTicks {
			return nil, &TimeRangeError{
				Track: index,
				Time:  float64(m.Tick) / float64(e.cfg.TicksPerBeat),
				Tick:  m.Tick,
			}
		}
		track.Add(uint32(delta), m.bytes(e.cfg.Channel))
		lastTick = m.Tick
	}
	track.Close(0)
	return track, nil
}

// EncodeFile builds a format 1 file with one track per timeline, in the
// given order. Tracks are encoded concurrently.
func (e *Encoder) EncodeFile(tls []*timeline.Timeline) (*smf.SMF, error) {
	tracks := make([]smf.Track, len(tls))
	errs := make([]error, len(tls))

	var wg sync.WaitGroup
	for i, tl := range tls {
		if tl == nil {
			errs[i] = errors.Errorf("track %d: nil timeline", i)
			continue
		}
		wg.Add(1)
		go func(i int, tl *timeline.Timeline) {
			defer wg.Done()
			tracks[i], errs[i] = e.encodeTrack(i, tl)
		}(i, tl)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := smf.NewSMF1()
	res.TimeFormat = smf.MetricTicks(e.cfg.TicksPerBeat)
	for i, track := range tracks {
		if err := res.Add(track); err != nil {
			return nil, errors.Wrapf(err, "track %d", i)
		}
	}
	return res, nil
}
