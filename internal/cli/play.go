package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/internal/presentation/tui"
	"github.com/aretw0/quest/pkg/runner"
)

// PlayOptions configures an interactive session.
type PlayOptions struct {
	// Key persists the session under this name; empty plays an ephemeral session.
	Key string
	// Name greets the player in a new session.
	Name string
	// Headless disables the banner and markdown rendering.
	Headless bool
	// JSON switches to NDJSON input and output.
	JSON bool

	In  io.Reader
	Out io.Writer
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Play runs the interactive loop against the app's store until the player quits.
func Play(ctx context.Context, app *App, opts PlayOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	rich := !opts.Headless && !opts.JSON

	runnerOpts := []runner.Option{
		runner.WithSessionManager(app.Sessions),
		runner.WithKey(opts.Key),
		runner.WithSubjectName(opts.Name),
		runner.WithLogger(app.Logger),
		runner.WithSanitizer(runner.NewSanitizer(app.Config.MaxInputSize)),
	}

	switch {
	case opts.JSON:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(opts.In, opts.Out)))
	case rich:
		tui.PrintBanner(opts.Out, strings.TrimSpace(quest.Version))
		render, err := tui.NewRenderer(tui.DefaultWordWrap)
		if err != nil {
			app.Logger.Warn("markdown rendering unavailable", "err", err)
			render = nil
		}
		runnerOpts = append(runnerOpts, runner.WithInputHandler(
			runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(render)),
		))
	default:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(opts.In, opts.Out)))
	}

	if err := runner.NewRunner(runnerOpts...).Run(ctx, app.Engine); err != nil {
		return fmt.Errorf("play failed: %w", err)
	}
	return nil
}
