package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/config"
	httpserver "github.com/rezkam/taskboard/internal/infrastructure/http"
	"github.com/rezkam/taskboard/internal/infrastructure/http/handler"
	"github.com/rezkam/taskboard/internal/infrastructure/http/response"
	"github.com/rezkam/taskboard/internal/infrastructure/http/web"
	"github.com/rezkam/taskboard/internal/infrastructure/observability"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	if err := run(); err != nil {
		// slog may not be initialised when config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Root context for all normal operations; cancelled on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		Version:     version,
		Environment: cfg.Env,
	})
	if err != nil {
		return err
	}
	defer func() {
		// Use a timeout to prevent hanging if collector is unreachable
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to shutdown telemetry: %v\n", err)
		}
	}()

	slog.InfoContext(ctx, "starting taskboard", "env", cfg.Env, "version", version)

	store, err := persistence.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	slog.InfoContext(ctx, "storage initialized", "type", cfg.Storage.Type, "location", storageLocation(cfg.Storage))

	archiver, err := newArchiver(ctx, cfg.Export)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create export archiver: %w", err)
	}
	cleanup := newCleanup(archiver, store)
	defer cleanup()

	var opts []task.Option
	if archiver != nil {
		opts = append(opts, task.WithArchiver(archiver))
		slog.InfoContext(ctx, "export archiving enabled", "sink", cfg.Export.Sink)
	}
	svc := task.NewService(store, task.NewValidator(time.Now), opts...)

	resp := response.NewResponder(!cfg.IsProduction())
	webHandler, err := web.NewHandler(svc)
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}

	server := httpserver.NewAPIServer(httpserver.Handlers{
		API:    handler.NewTaskHandler(svc, resp).Routes(),
		Web:    webHandler.Routes(),
		Health: handler.NewHealthHandler(resp, store, version, cfg.Env),
	}, resp, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")

		// Main ctx is already cancelled; give in-flight requests a fresh window
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
		slog.InfoContext(shutdownCtx, "HTTP server shutdown complete")
		return nil
	case err := <-errResult:
		return err
	}
}

func storageLocation(cfg config.StorageConfig) string {
	if cfg.Type == config.StoragePostgres {
		return maskPassword(cfg.DSN)
	}
	return cfg.SQLitePath
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		// If parsing fails, fall back to full redaction to be safe
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
