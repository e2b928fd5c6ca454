// Package cli holds the logic behind the letluck commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/letluck/internal/config"
	"github.com/aretw0/letluck/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the log section.
// debug forces the debug level. Records go to w, which should not be the
// stream carrying the grid or MCP stdio.
func NewLogger(w io.Writer, cfg config.LogConfig, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(w, level, cfg.Format), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError turns interruptions into a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
