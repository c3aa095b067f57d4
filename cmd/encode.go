package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jsphweid/midiline/constants"
	"github.com/jsphweid/midiline/midi"
	"github.com/jsphweid/midiline/score"
	"github.com/jsphweid/midiline/timeline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type EncodeOptions struct {
	Out          string
	TicksPerBeat uint16
	Channel      uint8
	Transpose    int
}

var encodeOpts EncodeOptions

func init() {
	flags := encodeCmd.Flags()
	flags.StringVarP(&encodeOpts.Out, "out", "o", "", "output file (default: a new file in $MIDILINE_OUT_DIR)")
	flags.Uint16Var(&encodeOpts.TicksPerBeat, "ticks-per-beat", constants.GetTicksPerBeat(), "resolution of the written file")
	flags.Uint8Var(&encodeOpts.Channel, "channel", 0, "MIDI channel, 0-15")
	flags.IntVarP(&encodeOpts.Transpose, "transpose", "t", 0, "semitones to shift every pitch by")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <score>",
	Short: "Encodes a score into a MIDI file",
	Long:  `Encodes a YAML or JSON score into a MIDI file with one track per score track.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := Encode(args[0], encodeOpts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func defaultOutPath() string {
	return filepath.Join(constants.GetOutDir(), uuid.New().String()+".mid")
}

// Encode reads the score at path, writes it as a MIDI file and returns the
// path written.
func Encode(path string, opts EncodeOptions) (string, error) {
	doc, err := score.ReadFile(path)
	if err != nil {
		return "", err
	}
	tls, err := doc.Timelines()
	if err != nil {
		return "", errors.Wrap(err, path)
	}
	if opts.Transpose != 0 {
		for i, tl := range tls {
			tls[i] = tl.Transposed(opts.Transpose).(*timeline.Timeline)
		}
	}

	enc, err := midi.NewEncoder(midi.Config{TicksPerBeat: opts.TicksPerBeat, Channel: opts.Channel})
	if err != nil {
		return "", err
	}

	out := opts.Out
	if out == "" {
		out = defaultOutPath()
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", errors.Wrap(err, "could not create output directory")
	}
	if err := enc.WriteFile(out, tls); err != nil {
		return "", errors.Wrap(err, path)
	}

	logrus.WithFields(logrus.Fields{
		"score":  path,
		"file":   out,
		"tracks": len(tls),
	}).Info("encoded score")
	return out, nil
}
