package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/quest/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/quest/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// NewHTTPHandler wires the HTTP adapter with content reloads and Prometheus metrics.
// streams should be the manager whose Observe was passed to NewApp so that session diffs reach SSE clients.
func NewHTTPHandler(app *App, streams *httpAdapter.StreamManager) http.Handler {
	return httpAdapter.NewHandler(app.Service,
		httpAdapter.WithStreams(streams),
		httpAdapter.WithMetrics(app.Metrics.Handler()),
		httpAdapter.WithWatcher(app.Engine.Watch),
		httpAdapter.WithLogger(app.Logger),
	)
}

// Serve runs the HTTP server on port until ctx is cancelled.
func Serve(ctx context.Context, app *App, streams *httpAdapter.StreamManager, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewHTTPHandler(app, streams),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("quest server listening", "address", srv.Addr, "content", contentName(app))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		app.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}

// ServeMCP runs the MCP server on the configured transport.
func ServeMCP(ctx context.Context, app *App) error {
	srv := mcpAdapter.NewServer(app.Service, mcpAdapter.WithLogger(app.Logger))
	switch app.Config.MCPTransport {
	case "sse":
		return srv.ServeSSE(ctx, app.Config.MCPPort)
	default:
		return srv.ServeStdio()
	}
}

func contentName(app *App) string {
	if app.Engine.Name != "" {
		return app.Engine.Name
	}
	return app.Config.ContentPath
}
