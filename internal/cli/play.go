package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/aretw0/letluck"
	"github.com/aretw0/letluck/internal/presentation/tui"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/session"
)

// PlayOptions configures the interactive terminal.
type PlayOptions struct {
	SessionID string
	// Fresh drops the stored session before opening it.
	Fresh bool
	// Quiet hides the banner and system messages.
	Quiet bool
	// Plain disables colors and markdown styling.
	Plain bool

	Input  io.Reader
	Output io.Writer
}

// Play runs the interactive grid until the user quits or a signal arrives.
func Play(ctx context.Context, app *letluck.App, opts PlayOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = "default"
	}
	logger := app.Logger()

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	if opts.Fresh {
		if err := app.Manager().Delete(sigCtx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("Failed to reset session", "session_id", opts.SessionID, "err", err)
		}
	}

	if !opts.Quiet {
		tui.PrintBanner(opts.Output, letluck.Version)
	}

	var rendererOpts []tui.Option
	if opts.Plain || !app.Config().Display.Color {
		rendererOpts = append(rendererOpts, tui.WithPlain())
	}
	renderer := tui.NewRenderer(opts.Output, rendererOpts...)

	s, err := app.Open(sigCtx, opts.SessionID, session.WithRenderer(renderer))
	if err != nil {
		return err
	}
	state, err := s.State(sigCtx)
	if err != nil {
		return err
	}
	if !opts.Quiet {
		if state.AtHome() {
			printSystemMessage(opts.Output, "Session '%s' active.", opts.SessionID)
		} else {
			printSystemMessage(opts.Output, "Resuming at '%s'.", state.NodeID)
		}
	}
	logger.Info("Session opened", "session_id", opts.SessionID, "node_id", state.NodeID)

	if app.Config().Watch {
		go func() {
			if err := app.Watch(sigCtx); err != nil {
				logger.Warn("Tree watch stopped", "err", err)
			}
		}()
	}

	runner := letluck.NewRunner()
	runner.Input = opts.Input
	runner.Output = opts.Output
	runErr := runner.Run(sigCtx, s)

	if sig := sigCtx.Signal(); sig != nil && !opts.Quiet {
		io.WriteString(opts.Output, "\n")
		printSystemMessage(opts.Output, "Interrupted (%v).", sig)
	}
	return handleExecutionError(runErr)
}
