package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jsphweid/midiline/chord"
	"github.com/jsphweid/midiline/constants"
	"github.com/jsphweid/midiline/event"
	"github.com/jsphweid/midiline/midi"
	"github.com/jsphweid/midiline/timeline"
	"github.com/jsphweid/midiline/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <dir> [max files]",
	Short: "Decodes every MIDI file under a directory and reports totals",
	Long:  `Decodes every .mid/.midi file under dir. Files that fail to decode are skipped and counted.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			maxNum = n
		}
		r, err := Report(args[0], maxNum)
		if err != nil {
			return err
		}
		r.Print(cmd.OutOrStdout())
		return nil
	},
}

type DirReport struct {
	NumFiles     int
	NumSkipped   int
	NumTracks    int
	NumNotes     int
	NumTimes     int
	LongestBeats float64
	// NumChordShapes counts distinct pitch sets sounded together, see
	// chord.Group.
	NumChordShapes int
}

func Report(dir string, maxNum int) (DirReport, error) {
	var report DirReport
	shapes := make(map[string]bool)
	paths, err := util.GatherPaths(dir, constants.MidiExtensions, maxNum)
	if err != nil {
		return report, err
	}

	for i, path := range paths {
		logrus.Debugf("Processing %v of %v midi files", i+1, len(paths))
		tls, err := midi.ReadMidiFile(path)
		if err != nil {
			logrus.WithField("file", path).Warnf("Skipping because: %v", err)
			report.NumSkipped += 1
			continue
		}
		report.NumFiles += 1
		report.NumTracks += len(tls)
		for _, tl := range tls {
			report.NumTimes += tl.Len()
			for time, evt := range tl.All() {
				report.NumNotes += 1
				if n, ok := evt.(event.Sound); ok && time+n.Duration() > report.LongestBeats {
					report.LongestBeats = time + n.Duration()
				}
			}
			addChordShapes(shapes, tl)
		}
	}
	report.NumChordShapes = len(shapes)
	return report, nil
}

func addChordShapes(shapes map[string]bool, tl *timeline.Timeline) {
	for _, evt := range chord.Group(tl).All() {
		if s, ok := evt.(event.Sound); ok && len(s.Pitches()) > 1 {
			shapes[chord.Key(s.Pitches())] = true
		}
	}
}

func (r DirReport) Print(w io.Writer) {
	fmt.Fprintf(w, "files decoded: %v\n", r.NumFiles)
	fmt.Fprintf(w, "files skipped: %v\n", r.NumSkipped)
	fmt.Fprintf(w, "tracks: %v\n", r.NumTracks)
	fmt.Fprintf(w, "notes: %v\n", r.NumNotes)
	fmt.Fprintf(w, "distinct start times: %v\n", r.NumTimes)
	fmt.Fprintf(w, "longest file (beats): %v\n", r.LongestBeats)
	fmt.Fprintf(w, "distinct chord shapes: %v\n", r.NumChordShapes)
}
