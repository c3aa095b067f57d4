package cmd

import (
	"io"

	"github.com/jsphweid/midiline/chord"
	"github.com/jsphweid/midiline/midi"
	"github.com/jsphweid/midiline/score"
	"github.com/jsphweid/midiline/timeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	decodeJSON   bool
	decodeChords bool
)

func init() {
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "print JSON instead of YAML")
	decodeCmd.Flags().BoolVar(&decodeChords, "chords", false, "merge notes that start and end together into chords")
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <file.mid>",
	Short: "Decodes a MIDI file into a score",
	Long: `Decodes the note on/note off messages of every track into a score. Notes
starting together are listed separately unless --chords is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := score.FormatYAML
		if decodeJSON {
			format = score.FormatJSON
		}
		return Decode(args[0], format, decodeChords, cmd.OutOrStdout())
	},
}

func Decode(path string, format score.Format, chords bool, w io.Writer) error {
	tls, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	if chords {
		groupChords(tls)
	}
	logrus.WithFields(logrus.Fields{"file": path, "tracks": len(tls)}).Debug("decoded midi file")

	data, err := score.Marshal(score.FromTimelines(tls), format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func groupChords(tls []*timeline.Timeline) {
	for i, tl := range tls {
		tls[i] = chord.Group(tl)
	}
}
