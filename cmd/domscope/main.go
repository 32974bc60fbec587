// Command domscope inspects a live page: tree snapshots, raw markup,
// rule resolution, and substring search over either.
//
// Usage:
//
//	domscope -url https://example.com                 # HTTP API on the default port
//	domscope -url https://example.com -mcp            # plus MCP tools on stdio
//	domscope -config domscope.yaml -url https://...   # settings from YAML
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domscope/config"
	"github.com/hazyhaar/domscope/export"
	"github.com/hazyhaar/domscope/history"
	"github.com/hazyhaar/domscope/inspector"
)

func main() {
	configPath := flag.String("config", "", "path to domscope.yaml config file")
	pageURL := flag.String("url", "", "page to inspect (required)")
	remote := flag.String("remote", "", "ws:// devtools URL of an external Chrome")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "also serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *remote, *listen, *mcpStdio); err != nil {
		logger.Error("domscope: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, remote, listen string, mcpStdio bool) error {
	if pageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: domscope -url <url> [-config <file>] [-remote <ws-url>] [-mcp]")
		return errors.New("url is required")
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if remote != "" {
		cfg.Browser.Remote = remote
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	// Optional snapshot history.
	var hist *history.Store
	if cfg.History.Path != "" {
		db, err := history.OpenDB(cfg.History.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		hist = history.NewStore(db)
		if err := hist.Init(); err != nil {
			return fmt.Errorf("history init: %w", err)
		}
		defer hist.Close()
		if n, err := hist.Prune(ctx, cfg.History.Retention); err != nil {
			logger.Warn("history prune", "error", err)
		} else if n > 0 {
			logger.Info("history pruned", "rows", n)
		}
	}

	sess, err := inspector.OpenSession(ctx, pageURL, inspector.SessionConfig{
		RemoteURL:       cfg.Browser.Remote,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
		Inspector: inspector.Config{
			MaxDepth:   cfg.Snapshot.MaxDepth,
			MaxTextLen: cfg.Snapshot.MaxTextLen,
			MaxRules:   cfg.Snapshot.MaxRules,
			Logger:     logger,
		},
		DebounceWindow: cfg.Search.DebounceWindow,
		History:        hist,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	// Optional MCP on stdio, alongside the HTTP API.
	if mcpStdio {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "domscope",
			Version: "1.0.0",
		}, nil)
		sess.RegisterMCP(mcpSrv)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("mcp stdio", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           newRouter(sess, export.New(), hist),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Listen, "url", pageURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	return nil
}
