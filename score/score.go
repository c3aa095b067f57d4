// Package score reads and writes timelines as YAML or JSON documents:
//
//	tracks:
//	  - name: melody
//	    events:
//	      - {time: 0, pitch: C4, intensity: 0.7, duration: 1}
//	      - {time: 2, pitches: [G4, B4, D5], intensity: mf, duration: 2}
//
// Intensity defaults to mf and duration to one beat.
package score

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/pitch"
	"github.com/jsphweid/midiline/timeline"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath picks JSON for .json files and YAML for anything else.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type Document struct {
	Tracks []Track `json:"tracks" yaml:"tracks"`
}

type Track struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Events []Entry `json:"events" yaml:"events"`
}

// Entry is one event. Exactly one of Pitch and Pitches is set; Pitches makes
// a chord.
type Entry struct {
	Time      float64       `json:"time" yaml:"time"`
	Pitch     *pitch.Pitch  `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Pitches   []pitch.Pitch `json:"pitches,omitempty" yaml:"pitches,omitempty,flow"`
	Intensity *Intensity    `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Duration  *float64      `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Intensity is a number in [0,1] or a dynamic marking such as "mf".
type Intensity float64

func parseIntensity(s string) (Intensity, error) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return Intensity(v), nil
	}
	v, err := event.ParseDynamic(s)
	if err != nil {
		return 0, err
	}
	return Intensity(v), nil
}

func (i *Intensity) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*i = Intensity(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Errorf("intensity must be a number or a dynamic: %s", data)
	}
	parsed, err := parseIntensity(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i *Intensity) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseIntensity(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*i = parsed
	return nil
}

func (e Entry) intensity() float64 {
	if e.Intensity == nil {
		return event.MF
	}
	return float64(*e.Intensity)
}

func (e Entry) duration() float64 {
	if e.Duration == nil {
		return 1
	}
	return *e.Duration
}

// Event builds the Note or Chord described by e.
func (e Entry) Event() (event.Sound, error) {
	switch {
	case e.Pitch != nil && len(e.Pitches) > 0:
		return nil, errors.Errorf("time %g: both pitch and pitches are set", e.Time)
	case e.Pitch != nil:
		return event.NewNote(*e.Pitch, e.intensity(), e.duration()), nil
	case len(e.Pitches) > 0:
		return event.NewChord(e.Pitches, e.intensity(), e.duration()), nil
	}
	return nil, errors.Errorf("time %g: no pitch given", e.Time)
}

func entryFor(time float64, s event.Sound) Entry {
	intensity := Intensity(s.Intensity())
	duration := s.Duration()
	e := Entry{Time: time, Intensity: &intensity, Duration: &duration}
	switch v := s.(type) {
	case event.Note:
		p := v.Pitch()
		e.Pitch = &p
	case event.Chord:
		e.Pitches = v.PitchList()
	}
	return e
}

// Timeline builds the track's timeline. Entries sharing a time keep their
// document order.
func (t Track) Timeline() (*timeline.Timeline, error) {
	tl := timeline.New()
	for _, entry := range t.Events {
		evt, err := entry.Event()
		if err != nil {
			return nil, errors.Wrapf(err, "track %q", t.Name)
		}
		tl.Add(entry.Time, evt)
	}
	return tl, nil
}

func (d Document) Timelines() ([]*timeline.Timeline, error) {
	res := make([]*timeline.Timeline, 0, len(d.Tracks))
	for i, track := range d.Tracks {
		tl, err := track.Timeline()
		if err != nil {
			return nil, errors.Wrapf(err, "track %d", i)
		}
		res = append(res, tl)
	}
	return res, nil
}

// FromTimelines describes tls as a document. Nested timelines are flattened
// and events that are neither notes nor chords are left out.
func FromTimelines(tls []*timeline.Timeline) Document {
	doc := Document{Tracks: make([]Track, 0, len(tls))}
	for _, tl := range tls {
		track := Track{Events: []Entry{}}
		for time, evt := range tl.Flatten().All() {
			if s, ok := evt.(event.Sound); ok {
				track.Events = append(track.Events, entryFor(time, s))
			}
		}
		doc.Tracks = append(doc.Tracks, track)
	}
	return doc
}

// Parse tries JSON first and falls back to YAML.
func Parse(data []byte) (Document, error) {
	var doc Document
	errJSON := json.Unmarshal(data, &doc)
	if errJSON == nil {
		return doc, nil
	}
	doc = Document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if errYaml := dec.Decode(&doc); errYaml != nil {
		return Document{}, errors.Errorf("score could not be unmarshaled as .json (%v) or .yml (%v)", errJSON, errYaml)
	}
	return doc, nil
}

func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrap(err, "error reading score")
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, errors.Wrap(err, path)
	}
	return doc, nil
}

func Marshal(doc Document, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
