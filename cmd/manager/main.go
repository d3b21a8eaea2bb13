// Package main is the entry point for the interactive registry manager —
// a terminal alternative to the web UI that talks to the same database
// through the same service layer.
//
// RUNNING THE MANAGER:
//
//	go run ./cmd/manager
//	go run ./cmd/manager --config=config/local.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/student-registry/internal/config"
	"github.com/sakif/student-registry/internal/console"
	"github.com/sakif/student-registry/internal/repository/sqlite"
	"github.com/sakif/student-registry/internal/service"
)

func main() {
	cfg := config.MustLoad()

	// Stdout belongs to the menu, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if dbDir := filepath.Dir(cfg.StoragePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	db, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	svc := service.NewStudentService(db, logger)
	manager := console.NewManager(svc, os.Stdin, os.Stdout)

	if err := manager.Run(context.Background()); err != nil {
		logger.Error("manager error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
