package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_captions/internal/engine/sources"
)

func newResolveCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Print the video ID of a YouTube URL (offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := sources.ResolveVideoID(args[0])
			if asJSON {
				return writeJSON(cmd, map[string]any{"video_id": id, "found": ok})
			}
			if !ok {
				return fmt.Errorf("%w: %q", sources.ErrInvalidInput, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
