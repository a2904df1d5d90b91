// Command reddit-flatten converts Reddit JSON exports (feeds, single posts
// with their threads, user histories and bare comment listings) into
// flattened text blocks, printed, saved or published to NATS.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:   "reddit-flatten",
		Short: "Flatten Reddit JSON exports into readable text blocks",
		Long: `reddit-flatten reads a Reddit JSON export and renders its posts and
comment threads as plain text blocks separated by "---" lines.

Without --shape it asks which kind of export was loaded (feed, single post,
profile or comments only) when run on a terminal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, found, err := loadFileConfig(opts.ConfigPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if found {
				opts.merge(cfg, cmd.Flags())
			}

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if found {
				logger.Debug("config loaded", "path", opts.ConfigPath)
			}

			a := &app{
				prompt:      newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
				out:         cmd.OutOrStdout(),
				status:      cmd.ErrOrStderr(),
				interactive: isTerminal(os.Stdin),
				logger:      logger,
				connect: func(url string) (*nats.Conn, error) {
					return nats.Connect(url, nats.Name("reddit-flatten"))
				},
			}
			return a.run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "TOML config file")
	f.StringVarP(&opts.File, "file", "f", opts.File, "Reddit JSON export to read")
	f.StringVarP(&opts.Shape, "shape", "s", "", "export shape: feed, single-post, profile, comments-only (or 1-4)")
	f.StringVar(&opts.Filter, "filter", "", "profile entries to keep: posts, comments, both (or p/c/b)")
	f.StringVarP(&opts.Out, "out", "o", "", "write the result to this file instead of the terminal")
	f.BoolVar(&opts.Print, "print", false, "print to the terminal without asking")
	f.StringVar(&opts.Separator, "separator", opts.Separator, "text placed between blocks")
	f.StringVar(&opts.Marker, "marker", "", "reply depth marker (default \">\")")
	f.StringVar(&opts.NATSURL, "nats", "", "NATS URL to publish each block to (disabled if empty)")
	f.StringVar(&opts.Subject, "subject", opts.Subject, "NATS subject for published blocks")
	f.Float64Var(&opts.Rate, "rate", 0, "max blocks published per second (0 = unlimited)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			failColor.Fprintf(os.Stderr, "✗ %v\n", err)
		}
		os.Exit(1)
	}
}
