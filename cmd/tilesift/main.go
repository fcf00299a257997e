// Command tilesift watches a recommendations page in headless Chrome and
// suppresses the tiles that are not music.
//
// Usage:
//
//	tilesift -config tilesift.yaml
//	tilesift -url https://www.youtube.com      # defaults for everything else
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/tilesift/agent"
	"github.com/hazyhaar/tilesift/config"
)

func main() {
	configPath := flag.String("config", "", "path to tilesift.yaml")
	pageURL := flag.String("url", "", "override the page URL")
	storePath := flag.String("store", "", "override the SQLite store path")
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

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		logger.Error("tilesift: config", "error", err)
		os.Exit(1)
	}
	if *pageURL != "" {
		cfg.Page.URL = *pageURL
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := agent.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("tilesift: fatal", "error", err)
		os.Exit(1)
	}
}
