package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_captions/internal/engine/captions"
)

func newParseCommand() *cobra.Command {
	var out outputFormat

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a local WebVTT file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := readSequence(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case out.json:
				return writeJSON(cmd, seq)
			case out.vtt:
				_, err := io.WriteString(w, captions.Format(seq))
				return err
			}
			return printCaptions(w, seq)
		},
	}
	out.register(cmd)
	return cmd
}

func readSequence(cmd *cobra.Command, path string) (captions.Sequence, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	return captions.Parse(string(data)), nil
}
