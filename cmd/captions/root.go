package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_captions/internal/engine"
	"github.com/anatolykoptev/go_captions/internal/engine/sources"
)

// commandContext carries the global flags shared by every subcommand.
type commandContext struct {
	lang      string
	userAgent string
	timeout   time.Duration
	rps       float64
	verbose   bool

	// watchBaseURL is empty outside tests.
	watchBaseURL string
}

func newRootCommand() *cobra.Command {
	return buildRootCommand(&commandContext{})
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "captions",
		Short:         "Fetch, parse and follow YouTube captions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.setupLogging(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.lang, "lang", env.Str("CAPTION_LANG", ""), "Preferred caption language (default: first listed track)")
	flags.StringVar(&ctx.userAgent, "user-agent", env.Str("USER_AGENT", engine.UserAgentChrome), "User-Agent for YouTube requests (empty: random Chrome UA)")
	flags.DurationVar(&ctx.timeout, "timeout", env.Duration("FETCH_TIMEOUT", 15*time.Second), "Per-request timeout")
	flags.Float64Var(&ctx.rps, "rps", env.Float("REQUESTS_PER_SECOND", 2), "Outbound requests per second (0: unlimited)")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newFollowCommand(ctx))

	return rootCmd
}

func (c *commandContext) setupLogging(cmd *cobra.Command) {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

func (c *commandContext) newFetcher() *sources.Fetcher {
	return sources.NewFetcher(sources.FetcherConfig{
		Client:       engine.NewHTTPClient(c.timeout),
		UserAgent:    c.userAgent,
		Language:     c.lang,
		Limiter:      engine.NewLimiter(c.rps, env.Int("REQUEST_BURST", 4)),
		WatchBaseURL: c.watchBaseURL,
	})
}

// isFile reports whether arg names an existing regular file.
func isFile(arg string) bool {
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}
