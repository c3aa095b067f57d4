package constants

import (
	"os"
	"strconv"
)

const DefaultTicksPerBeat = 480

// MIDI and score file extensions recognised by the CLI.
var (
	MidiExtensions  = []string{".mid", ".midi"}
	ScoreExtensions = []string{".yml", ".yaml", ".json"}
)

func GetOutDir() string {
	path := os.Getenv("MIDILINE_OUT_DIR")
	if path != "" {
		return path
	}
	return "./out"
}

func GetAddr() string {
	addr := os.Getenv("MIDILINE_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

// GetTicksPerBeat falls back to DefaultTicksPerBeat when the variable is
// unset or not a valid resolution.
func GetTicksPerBeat() uint16 {
	v, err := strconv.ParseUint(os.Getenv("MIDILINE_TICKS_PER_BEAT"), 10, 16)
	if err != nil || v == 0 {
		return DefaultTicksPerBeat
	}
	return uint16(v)
}

// 0x0FFFFFFF is the largest delta time a variable length quantity can hold.
const MaxDeltaTicks = 0x0FFFFFFF
