package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/letluck"
	httpAdapter "github.com/aretw0/letluck/pkg/adapters/http"
	"github.com/aretw0/letluck/pkg/adapters/mcp"
)

// ShutdownTimeout bounds graceful shutdown of the servers.
const ShutdownTimeout = 5 * time.Second

// Serve runs the HTTP API until a signal arrives.
func Serve(ctx context.Context, app *letluck.App, addr string) error {
	logger := app.Logger()
	handler, err := httpAdapter.NewHandler(app,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithVersion(letluck.Version),
		httpAdapter.WithMetrics(app.Metrics().Handler()),
	)
	if err != nil {
		return fmt.Errorf("failed to build http handler: %w", err)
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	if app.Config().Watch {
		go func() {
			if err := app.Watch(sigCtx); err != nil {
				logger.Warn("Tree watch stopped", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting letluck server", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
		logger.Info("Shutting down", "signal", sigCtx.Signal())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on stdio or SSE.
func ServeMCP(ctx context.Context, app *letluck.App, transport, addr, baseURL string) error {
	srv := mcp.NewServer(app,
		mcp.WithLogger(app.Logger()),
		mcp.WithVersion(letluck.Version),
	)
	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "sse":
		sigCtx := NewSignalContext(ctx)
		defer sigCtx.Cancel()
		err := srv.ServeSSE(sigCtx, addr, baseURL)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
}
