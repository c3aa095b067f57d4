// Package midi converts timelines to and from Standard MIDI Files. Only note
// on and note off messages are written or read; every other message in a file
// is skipped.
package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/midiline/timeline"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

var defaultEncoder = &Encoder{cfg: DefaultConfig()}

// ParseSMF parses a whole file held in memory.
func ParseSMF(data []byte) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = &UnsupportedFormatError{Reason: "parser panicked", Err: fmt.Errorf("%v", r)}
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, &UnsupportedFormatError{Reason: "could not parse file", Err: err}
	}
	return res, nil
}

// ReadSMF reads and parses a file from r. Errors from r are returned wrapped,
// parse errors as *UnsupportedFormatError.
func ReadSMF(r io.Reader) (*smf.SMF, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return ParseSMF(data)
}

// Decode returns one timeline per track of the file read from r.
func Decode(r io.Reader) ([]*timeline.Timeline, error) {
	s, err := ReadSMF(r)
	if err != nil {
		return nil, err
	}
	return NewDecoder().DecodeFile(s)
}

// Encode writes tl as a single track file using 480 ticks per beat.
func Encode(tl *timeline.Timeline, w io.Writer) error {
	return defaultEncoder.Encode(tl, w)
}

// EncodeAll writes one track per timeline using 480 ticks per beat.
func EncodeAll(tls []*timeline.Timeline, w io.Writer) error {
	return defaultEncoder.EncodeAll(tls, w)
}

// Write encodes a *timeline.Timeline as a single track file and a
// []*timeline.Timeline as a multi track file.
func Write(v any, w io.Writer) error {
	return defaultEncoder.Write(v, w)
}

func (e *Encoder) Encode(tl *timeline.Timeline, w io.Writer) error {
	return e.EncodeAll([]*timeline.Timeline{tl}, w)
}

func (e *Encoder) EncodeAll(tls []*timeline.Timeline, w io.Writer) error {
	s, err := e.EncodeFile(tls)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "error writing midi file")
	}
	return nil
}

func (e *Encoder) Write(v any, w io.Writer) error {
	switch tl := v.(type) {
	case *timeline.Timeline:
		return e.Encode(tl, w)
	case []*timeline.Timeline:
		return e.EncodeAll(tl, w)
	}
	return errors.Wrapf(ErrUnsupportedValue, "got %T", v)
}

// Bytes encodes v, as accepted by Write, into memory.
func (e *Encoder) Bytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ReadMidiFile(path string) ([]*timeline.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	defer f.Close()
	return Decode(f)
}

// WriteMidiFile creates or truncates path and writes v to it as Write does.
func WriteMidiFile(path string, v any) error {
	return defaultEncoder.WriteFile(path, v)
}

func (e *Encoder) WriteFile(path string, v any) (err error) {
	// encode first so a bad timeline leaves an existing file alone
	data, err := e.Bytes(v)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating midi file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "error closing midi file")
		}
	}()
	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "error writing midi file")
	}
	return nil
}
