package pitch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pitch is a semitone number where C4 (middle C) is 60.
type Pitch int

const (
	C4  Pitch = 60
	Db4 Pitch = 61
	D4  Pitch = 62
	Eb4 Pitch = 63
	E4  Pitch = 64
	F4  Pitch = 65
	Gb4 Pitch = 66
	G4  Pitch = 67
	Ab4 Pitch = 68
	A4  Pitch = 69
	Bb4 Pitch = 70
	B4  Pitch = 71
	C5  Pitch = 72
	D5  Pitch = 74
)

var names = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

var letters = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Parse reads either a plain semitone number ("60") or a scientific pitch name
// ("C4", "C#4", "Db4", "Bb-1").
func Parse(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty pitch")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Pitch(n), nil
	}

	value, ok := letters[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch name %q", s)
	}
	i := 1
Accidentals:
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			value++
		case 'b':
			value--
		default:
			break Accidentals
		}
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in pitch name %q", s)
	}
	return Pitch((octave+1)*12 + value), nil
}

// MustParse is Parse for constant input; it panics on error.
func MustParse(s string) Pitch {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Octave follows scientific pitch notation, so 60 is in octave 4.
func (p Pitch) Octave() int {
	return floorDiv(int(p), 12) - 1
}

// Class is the pitch class in 0..11.
func (p Pitch) Class() int {
	return int(p) - floorDiv(int(p), 12)*12
}

func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", names[p.Class()], p.Octave())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func (p Pitch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pitch) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Pitch(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("pitch must be a name or a number: %s", data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Pitch) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *Pitch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: pitch must be a scalar", node.Line)
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %v", node.Line, err)
	}
	*p = parsed
	return nil
}
