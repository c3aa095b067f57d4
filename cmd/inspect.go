package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/midiline/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Lists the note messages of a MIDI file",
	Long:  `Prints the header and, per track, every note on/note off with its absolute tick.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Inspect(args[0], cmd.OutOrStdout())
	},
}

func Inspect(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "error reading midi file")
	}
	defer f.Close()

	s, err := midi.ReadSMF(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "format: %v\n", s.Format())
	fmt.Fprintf(w, "time format: %v\n", s.TimeFormat)
	fmt.Fprintf(w, "tracks: %v\n", len(s.Tracks))
	for i, track := range s.Tracks {
		msgs := midi.TrackMessages(track)
		fmt.Fprintf(w, "track %v: %v events, %v note messages\n", i, len(track), len(msgs))
		for _, m := range msgs {
			fmt.Fprintf(w, "  %v\n", m)
		}
	}
	return nil
}
