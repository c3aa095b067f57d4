package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/midi"
	"github.com/jsphweid/midiline/pitch"
	"github.com/jsphweid/midiline/sample"
	"github.com/jsphweid/midiline/score"
	"github.com/jsphweid/midiline/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScore = `
tracks:
  - name: melody
    events:
      - {time: 0, pitch: C4, intensity: 0.5, duration: 1}
      - {time: 1, pitch: D4, intensity: 0.5, duration: 1}
      - {time: 2, pitches: [C4, E4, G4], intensity: 0.5, duration: 2}
  - name: bass
    events:
      - {time: 0, pitch: 36, duration: 4}
`

func writeScore(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "score.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func writeMidi(t *testing.T, path string, tls ...*timeline.Timeline) {
	t.Helper()
	require.NoError(t, midi.WriteMidiFile(path, tls))
}

func TestEncodeWritesOneTrackPerScoreTrack(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "out.mid")

	got, err := Encode(writeScore(t, dir, testScore), EncodeOptions{Out: out, TicksPerBeat: 96})
	require.NoError(t, err)
	assert.Equal(t, out, got)

	tls, err := midi.ReadMidiFile(out)
	require.NoError(t, err)
	require.Len(t, tls, 2)

	assert := assert.New(t)
	assert.Equal([]float64{0, 1, 2}, tls[0].Times())
	at2, _ := tls[0].At(2)
	assert.Len(at2, 3)
	at0, _ := tls[1].At(0)
	assert.Equal(4.0, at0[0].(event.Sound).Duration())
}

func TestEncodeDefaultsToOutDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "generated")
	t.Setenv("MIDILINE_OUT_DIR", outDir)

	got, err := Encode(writeScore(t, dir, testScore), EncodeOptions{TicksPerBeat: 480})
	require.NoError(t, err)
	assert.Equal(t, outDir, filepath.Dir(got))
	assert.Equal(t, ".mid", filepath.Ext(got))
	assert.FileExists(t, got)
}

func TestEncodeTransposes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mid")
	_, err := Encode(writeScore(t, dir, testScore), EncodeOptions{Out: out, TicksPerBeat: 480, Transpose: 2})
	require.NoError(t, err)

	tls, err := midi.ReadMidiFile(out)
	require.NoError(t, err)
	at0, _ := tls[0].At(0)
	assert.Equal(t, pitch.D4, at0[0].(event.Note).Pitch())
}

func TestEncodeRejectsOutOfRangePitch(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mid")
	path := writeScore(t, dir, "tracks:\n  - events:\n      - {time: 0, pitch: 128}\n")

	_, err := Encode(path, EncodeOptions{Out: out, TicksPerBeat: 480})

	var pre *midi.PitchRangeError
	assert.ErrorAs(t, err, &pre)
	assert.NoFileExists(t, out)
}

func TestEncodeRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := Encode(writeScore(t, dir, testScore), EncodeOptions{Out: filepath.Join(dir, "out.mid"), TicksPerBeat: 480, Channel: 16})
	assert.Error(t, err)
}

func TestDecodePrintsScore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.mid")
	writeMidi(t, path, timeline.FromEvents(map[float64]event.Event{
		0: event.NewNote(pitch.C4, 1, 1),
		1: event.NewNote(pitch.G4, 1, 0.5),
	}))

	var buf bytes.Buffer
	require.NoError(t, Decode(path, score.FormatYAML, false, &buf))

	doc, err := score.Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Tracks, 1)
	events := doc.Tracks[0].Events
	require.Len(t, events, 2)
	assert.Equal(t, pitch.G4, *events[1].Pitch)
	assert.Equal(t, 0.5, *events[1].Duration)
}

func TestDecodeRebuildsChords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.mid")
	writeMidi(t, path, timeline.FromEvents(map[float64]event.Event{
		0: event.NewChord([]pitch.Pitch{pitch.C4, pitch.E4, pitch.G4}, 1, 1),
	}))

	var buf bytes.Buffer
	require.NoError(t, Decode(path, score.FormatJSON, true, &buf))

	doc, err := score.Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Tracks[0].Events, 1)
	assert.Equal(t, []pitch.Pitch{pitch.C4, pitch.E4, pitch.G4}, doc.Tracks[0].Events[0].Pitches)
}

func TestDecodeMissingFile(t *testing.T) {
	err := Decode(filepath.Join(t.TempDir(), "nope.mid"), score.FormatYAML, false, &bytes.Buffer{})
	assert.ErrorContains(t, err, "error reading midi file")
}

func TestInspectListsMessages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.mid")
	writeMidi(t, path, timeline.FromEvents(map[float64]event.Event{0: event.NewNote(pitch.C4, 1, 1)}))

	var buf bytes.Buffer
	require.NoError(t, Inspect(path, &buf))

	out := buf.String()
	assert := assert.New(t)
	assert.Contains(out, "tracks: 1")
	assert.Contains(out, "2 note messages")
	assert.Contains(out, "note_on")
	assert.Contains(out, "note_off")
}

func TestReportCountsAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeMidi(t, filepath.Join(dir, "a.mid"), timeline.FromEvents(map[float64]event.Event{
		0: event.NewNote(pitch.C4, 1, 1),
		3: event.NewNote(pitch.D4, 1, 2),
		6: event.NewChord([]pitch.Pitch{pitch.C4, pitch.E4, pitch.G4}, 1, 1),
		8: event.NewChord([]pitch.Pitch{pitch.D4, pitch.F4}, 1, 1),
	}))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeMidi(t, filepath.Join(dir, "sub", "b.midi"),
		timeline.FromEvents(map[float64]event.Event{0: event.NewNote(pitch.C4, 1, 1)}),
		timeline.FromEvents(map[float64]event.Event{
			0: event.NewNote(pitch.E4, 1, 1),
			2: event.NewChord([]pitch.Pitch{pitch.G4, pitch.C4, pitch.E4}, 1, 1),
		}),
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.mid"), []byte("not midi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	r, err := Report(dir, 0)
	require.NoError(t, err)

	assert.Equal(t, DirReport{
		NumFiles:       2,
		NumSkipped:     1,
		NumTracks:      3,
		NumNotes:       12,
		NumTimes:       7,
		LongestBeats:   9,
		NumChordShapes: 2,
	}, r)

	var buf bytes.Buffer
	r.Print(&buf)
	assert.Contains(t, buf.String(), "files skipped: 1")
	assert.Contains(t, buf.String(), "distinct chord shapes: 2")
}

func TestExcerptKeepsResolution(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mid")
	enc, err := midi.NewEncoder(midi.Config{TicksPerBeat: 96})
	require.NoError(t, err)
	require.NoError(t, enc.WriteFile(in, timeline.FromEvents(map[float64]event.Event{
		0: event.NewNote(pitch.C4, 1, 1),
		2: event.NewNote(pitch.D4, 1, 4),
		8: event.NewNote(pitch.E4, 1, 1),
	})))

	out := filepath.Join(dir, "excerpt.mid")
	_, err = Excerpt(in, out, sample.Options{From: 2, Length: 2})
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	s, err := midi.ReadSMF(f)
	require.NoError(t, err)
	tpb, err := midi.TicksPerBeat(s)
	require.NoError(t, err)
	assert.Equal(t, uint16(96), tpb)

	tls, err := midi.NewDecoder().DecodeFile(s)
	require.NoError(t, err)
	assert.True(t, tls[0].EqualMap(map[float64][]event.Event{
		0: {event.NewNote(pitch.D4, 1, 2)},
	}), tls[0].String())
}
