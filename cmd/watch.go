package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/midiline/constants"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type WatchOptions struct {
	EncodeOptions
	Interval time.Duration
	Wait     time.Duration
}

var watchOpts WatchOptions

func init() {
	flags := watchCmd.Flags()
	flags.StringVarP(&watchOpts.Out, "out", "o", "", "output file (default: a new file in $MIDILINE_OUT_DIR)")
	flags.Uint16Var(&watchOpts.TicksPerBeat, "ticks-per-beat", constants.GetTicksPerBeat(), "resolution of the written file")
	flags.Uint8Var(&watchOpts.Channel, "channel", 0, "MIDI channel, 0-15")
	flags.IntVarP(&watchOpts.Transpose, "transpose", "t", 0, "semitones to shift every pitch by")
	flags.DurationVar(&watchOpts.Interval, "interval", 250*time.Millisecond, "how often to check the score for changes")
	flags.DurationVar(&watchOpts.Wait, "wait", 500*time.Millisecond, "quiet period before re-encoding")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <score>",
	Short: "Re-encodes a score whenever it changes",
	Long:  `Encodes the score once, then again every time it is saved, until interrupted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return Watch(ctx, args[0], watchOpts, nil)
	},
}

// Watch encodes path to a fixed output file and keeps it current until ctx
// is done. onEncode, if set, is called after every attempt. No encode runs
// after Watch returns.
func Watch(ctx context.Context, path string, opts WatchOptions, onEncode func(out string, err error)) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "could not watch score")
	}
	if opts.Out == "" {
		opts.Out = defaultOutPath()
	}
	if opts.Interval <= 0 {
		opts.Interval = 250 * time.Millisecond
	}

	// mu is held for a whole encode; once stopped is set no encode starts.
	var mu sync.Mutex
	var stopped bool
	encode := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		out, err := Encode(path, opts.EncodeOptions)
		if err != nil {
			logrus.WithField("score", path).Errorf("Could not encode: %v", err)
		}
		if onEncode != nil {
			onEncode(out, err)
		}
	}
	encode()

	debounced := debounce.New(opts.Wait)
	lastMod := info.ModTime()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			debounced(func() {})
			mu.Lock()
			stopped = true
			mu.Unlock()
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				logrus.WithField("score", path).Debugf("stat failed: %v", err)
				continue
			}
			if info.ModTime().Equal(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			logrus.WithField("score", path).Debug("change detected")
			debounced(encode)
		}
	}
}
