package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_captions/internal/engine/captions"
)

func newFollowCommand(ctx *commandContext) *cobra.Command {
	var (
		interval time.Duration
		start    float64
		speed    float64
	)

	cmd := &cobra.Command{
		Use:   "follow <url|file>",
		Short: "Print the active caption as a simulated player plays through the video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seq captions.Sequence
			if isFile(args[0]) || args[0] == "-" {
				s, err := readSequence(cmd, args[0])
				if err != nil {
					return err
				}
				seq = s
			} else {
				res, err := ctx.newFetcher().Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				seq = res.Captions
			}
			if len(seq) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no captions")
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return follow(runCtx, cmd.OutOrStdout(), seq, newSimPlayer(speed, nil), start, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", captions.DefaultTickInterval, "Clock sampling interval")
	cmd.Flags().Float64Var(&start, "start", 0, "Start position in seconds")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Playback rate")
	return cmd
}

// follow plays p from start until the last caption ends or ctx is done, printing
// every active-caption change.
func follow(ctx context.Context, w io.Writer, seq captions.Sequence, p *simPlayer, start float64, interval time.Duration) error {
	f := captions.NewFollower(p, interval)
	f.OnChange = func(idx int, seq captions.Sequence) {
		if idx == captions.NoCaption {
			fmt.Fprintf(w, "%7s  -\n", captions.FormatClock(p.CurrentTime()))
			return
		}
		fmt.Fprintf(w, "%7s  %s\n", captions.FormatClock(seq[idx].Start), seq[idx].Text)
	}
	f.Load(seq)

	p.SeekTo(start)
	p.Play()
	f.HandleState(ctx, captions.StatePlaying)

	remaining := (lastEnd(seq) - start) / p.speed
	if remaining < 0 {
		remaining = 0
	}
	timer := time.NewTimer(time.Duration(remaining*float64(time.Second)) + interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	p.Pause()
	f.HandleState(ctx, captions.StateEnded)
	return nil
}

func lastEnd(seq captions.Sequence) float64 {
	end := 0.0
	for _, c := range seq {
		end = max(end, c.End)
	}
	return end
}
