// Package main is the entry point for the student registry server.
//
// The main package stays minimal — its job is to:
//  1. Read configuration
//  2. Create dependencies (logger, data directory)
//  3. Start the application
//
// All actual logic lives in the imported internal packages.
//
// RUNNING THE SERVER:
//
//	go run ./cmd/server
//	go run ./cmd/server --config=config/local.yaml
//	go run ./cmd/server --seed        # insert the sample roster
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/student-registry/internal/config"
	"github.com/sakif/student-registry/internal/server"
)

func main() {
	// --seed must be registered before MustLoad, which calls flag.Parse().
	seed := flag.Bool("seed", false, "insert sample students at startup")

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)

	logger.Info("starting student-registry",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.StoragePath),
	)

	// Ensure the directory for the SQLite file exists (like `mkdir -p`).
	if dbDir := filepath.Dir(cfg.StoragePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Addr:        cfg.Addr,
		TemplateDir: cfg.TemplateDir,
		StaticDir:   cfg.StaticDir,
		DBPath:      cfg.StoragePath,
		SeedData:    *seed,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment:
// human-readable text at debug level in dev, JSON at info level in prod.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
}
