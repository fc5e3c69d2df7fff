package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/officina/internal/config"
	"github.com/rpggio/officina/internal/domain/dashboard"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rpggio/officina/internal/mcp"
	"github.com/rpggio/officina/internal/transport"
)

var version = "dev"

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs never go to stdout: in stdio mode it carries JSON-RPC.
	logWriter := io.Writer(os.Stderr)
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	integrity := dependent.Options{
		CompensateOnLinkFailure: cfg.Integrity.CompensateOnLinkFailure,
		StrictLinking:           cfg.Integrity.StrictLinking,
	}
	projectSvc := project.NewService(store, logger)
	snippetSvc := snippet.NewService(store, logger)
	services := transport.Services{
		Projects:  projectSvc,
		Quotes:    dependent.NewService(dependent.Quotes, store, projectSvc, integrity, logger),
		Contracts: dependent.NewService(dependent.Contracts, store, projectSvc, integrity, logger),
		Snippets:  snippetSvc,
		Dashboard: dashboard.NewService(projectSvc, snippetSvc),
	}

	keys := make(map[string]string, len(cfg.Auth.APIKeys))
	for _, key := range cfg.Auth.APIKeys {
		keys[key.Name] = key.Key
	}
	resolver := transport.NewStaticKeys(keys)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled(),
		TransportMode: cfg.Server.Mode,
		Version:       version,
		Logger:        logger,
	})

	if cfg.Server.Mode == config.ModeStdio {
		err = runStdioMode(ctx, logger, mcpServer)
	} else {
		err = runHTTPMode(ctx, logger, cfg, services, resolver, mcpServer)
	}
	if err != nil {
		logger.Error("server error", "error", err)
		closeStore()
		os.Exit(1)
	}
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")
	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, cfg config.Config, services transport.Services, resolver transport.PrincipalResolver, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	opts := transport.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		MCP:            mcpHandler,
	}
	if cfg.Auth.Enabled() {
		opts.Auth = transport.AuthMiddleware(resolver)
	} else {
		logger.Warn("auth disabled: no API keys configured")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(services, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "driver", cfg.Store.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
