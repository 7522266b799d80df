package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/stepwise/internal/config"
	stephttp "github.com/aretw0/stepwise/pkg/adapters/http"
	"github.com/aretw0/stepwise/pkg/adapters/mcp"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServeHandler mounts the JSON API and, when enabled, the /metrics endpoint.
func NewServeHandler(app *App, metrics bool) (http.Handler, error) {
	api, err := stephttp.NewHandler(app.Engine, stephttp.WithLogger(app.Logger))
	if err != nil {
		return nil, fmt.Errorf("error building http handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if metrics {
		r.Handle("/metrics", promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{}))
	}
	r.Mount("/", api)
	return r, nil
}

// Serve runs the HTTP server until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, app *App, cfg config.ServeConfig) error {
	handler, err := NewServeHandler(app, cfg.Metrics)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting Stepwise Server", "address", srv.Addr, "wizard", app.Registry.Name(), "metrics", cfg.Metrics)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "timeout", cfg.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		app.Logger.Info("Stepwise Server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on the configured transport.
func ServeMCP(ctx context.Context, app *App, cfg config.MCPConfig) error {
	srv := mcp.NewServer(app.Engine, mcp.WithLogger(app.Logger))

	switch cfg.Transport {
	case "stdio":
		app.Logger.Info("Starting Stepwise MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		app.Logger.Info("Starting Stepwise MCP Server (SSE)", "port", cfg.Port)
		if err := srv.ServeSSE(ctx, cfg.Port); err != nil {
			return err
		}
		app.Logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.Transport)
	}
}
