package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsphweid/midiline/midi"
	"github.com/jsphweid/midiline/sample"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	excerptOpts sample.Options
	excerptOut  string
)

func init() {
	flags := excerptCmd.Flags()
	flags.Float64Var(&excerptOpts.From, "from", 0, "first beat of the excerpt")
	flags.Float64Var(&excerptOpts.Length, "length", 0, "length in beats (default: until the end)")
	flags.IntVar(&excerptOpts.MaxEvents, "max-events", 0, "keep at most this many sounds per track")
	flags.StringVarP(&excerptOut, "out", "o", "", "output file (default: a new file in $MIDILINE_OUT_DIR)")
	rootCmd.AddCommand(excerptCmd)
}

var excerptCmd = &cobra.Command{
	Use:   "excerpt <file.mid>",
	Short: "Writes a short excerpt of a MIDI file",
	Long:  `Decodes the file, keeps the notes that start inside the window and writes them to a new file with the same resolution.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := Excerpt(args[0], excerptOut, excerptOpts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// Excerpt writes the window of the MIDI file at path described by opts to
// out and returns the path written.
func Excerpt(path, out string, opts sample.Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "error reading midi file")
	}
	defer f.Close()

	s, err := midi.ReadSMF(f)
	if err != nil {
		return "", err
	}
	tpb, err := midi.TicksPerBeat(s)
	if err != nil {
		return "", err
	}
	tls, err := midi.NewDecoder().DecodeFile(s)
	if err != nil {
		return "", errors.Wrap(err, path)
	}

	enc, err := midi.NewEncoder(midi.Config{TicksPerBeat: tpb})
	if err != nil {
		return "", err
	}
	if out == "" {
		out = defaultOutPath()
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", errors.Wrap(err, "could not create output directory")
	}
	if err := enc.WriteFile(out, sample.Create(tls, opts)); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"source": path,
		"file":   out,
		"from":   opts.From,
		"length": opts.Length,
	}).Info("wrote excerpt")
	return out, nil
}
