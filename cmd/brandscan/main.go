// Command brandscan serves the design-system extraction API.
//
// Usage:
//
//	brandscan -config brandscan.yaml        # HTTP server
//	brandscan -config brandscan.yaml -mcp   # MCP server on stdio
//	brandscan -url https://example.com      # scan one site, print JSON, exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"brandscan/internal/browser"
	"brandscan/internal/config"
	"brandscan/internal/fetcher"
	"brandscan/internal/hint"
	"brandscan/internal/scan"
	"brandscan/internal/server"
	"brandscan/internal/store"
	"brandscan/internal/vision"
)

func main() {
	configPath := flag.String("config", "", "path to brandscan.yaml config file")
	singleURL := flag.String("url", "", "scan a single URL, print the result, and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	logLevel := flag.String("log-level", "", "log level override: debug, info, warn, error")
	flag.Parse()

	// Optional; a missing .env just means the environment is already set.
	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "brandscan:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, *singleURL, *mcpMode); err != nil {
		logger.Error("brandscan: fatal", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
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

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, singleURL string, mcpMode bool) error {
	var mgr *browser.Manager
	if cfg.Browser.Enabled {
		mgr = browser.NewManager(browser.Config{RemoteURL: cfg.Browser.Remote, Logger: logger})
		if err := mgr.Start(ctx); err != nil {
			logger.Warn("browser unavailable, falling back to plain fetches", "error", err)
			mgr = nil
		} else {
			defer mgr.Close()
		}
	}

	hints := hint.New(hint.Config{
		Endpoint: cfg.Hint.Endpoint,
		Model:    cfg.Hint.Model,
		APIKey:   config.HintAPIKey(),
		Referer:  cfg.Hint.Referer,
		Title:    cfg.Hint.Title,
		Timeout:  cfg.Hint.Timeout,
		Logger:   logger,
	})
	if !hints.Enabled() {
		logger.Info("no hint API key set, running programmatic-only")
	}

	scanner := scan.New(scan.Config{
		Fetcher: fetcher.New(fetcher.Config{Browser: mgr, Logger: logger}),
		Hints:   hints,
		Vision:  vision.New(vision.Config{Logger: logger}),
		Logger:  logger,
	})

	if singleURL != "" {
		return runSingle(ctx, scanner, singleURL)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := server.New(server.Config{
		Scanner:   scanner,
		Store:     st,
		CacheSize: cfg.Cache.Size,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logger,
	})

	if mcpMode {
		logger.Info("serving MCP on stdio")
		return srv.ServeStdio(ctx)
	}
	return serveHTTP(ctx, logger, cfg.Listen, srv.Handler())
}

func runSingle(ctx context.Context, scanner *scan.Scanner, url string) error {
	res, err := scanner.Scan(ctx, url)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func serveHTTP(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
