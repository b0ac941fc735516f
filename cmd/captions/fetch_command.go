package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_captions/internal/engine/captions"
	"github.com/anatolykoptev/go_captions/internal/engine/sources"
)

// outputFormat selects how a caption sequence is printed.
type outputFormat struct {
	json bool
	vtt  bool
}

func (o *outputFormat) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&o.vtt, "vtt", false, "Output WebVTT")
	cmd.MarkFlagsMutuallyExclusive("json", "vtt")
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var out outputFormat

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download captions for a YouTube video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.newFetcher().Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case out.json:
				return writeJSON(cmd, res)
			case out.vtt:
				_, err := io.WriteString(w, res.VTT)
				return err
			}
			fmt.Fprintf(w, "video %s  track %s", res.VideoID, trackLabel(res.Track))
			fmt.Fprintf(w, "  %d captions\n", len(res.Captions))
			return printCaptions(w, res.Captions)
		},
	}
	out.register(cmd)
	return cmd
}

func trackLabel(t sources.CaptionTrack) string {
	label := t.LanguageCode
	if t.Name != "" && t.Name != t.LanguageCode {
		label += " (" + t.Name + ")"
	}
	if t.Kind == "asr" {
		label += " [auto]"
	}
	return label
}

func printCaptions(w io.Writer, seq captions.Sequence) error {
	if len(seq) == 0 {
		_, err := fmt.Fprintln(w, "no captions")
		return err
	}
	_, err := fmt.Fprintln(w, renderCaptions(seq))
	return err
}
