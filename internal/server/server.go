// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where handlers,
// middleware and routes are connected. main.go stays minimal; tests can build
// a fully wired server without running main.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go builds Config → Server.New() creates:
//	  sqlite.DB → StudentService → StudentHandler → routes
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/student-registry/internal/handler"
	"github.com/sakif/student-registry/internal/middleware"
	sqliteRepo "github.com/sakif/student-registry/internal/repository/sqlite"
	"github.com/sakif/student-registry/internal/service"
)

// Config holds server configuration.
type Config struct {
	Addr        string
	TemplateDir string
	StaticDir   string
	DBPath      string
	SeedData    bool // insert the sample roster at startup (idempotent)
}

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it during graceful shutdown so
// the WAL is flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// This is where the entire dependency chain is assembled:
//  1. Open the database (sqlite.New), optionally seed it
//  2. Create the service layer with the repository interface
//  3. Create the handlers with the service
//  4. Wire handlers to routes
//
// The service gets the repository interface (not the concrete sqlite.DB) and
// the handler gets the service — each layer only receives what it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.SeedData {
		if err := db.Seed(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding database: %w", err)
		}
		logger.Info("sample students seeded", slog.String("database", cfg.DBPath))
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                    → registry page (HTML)
//	GET    /static/*            → static files (CSS, JS)
//	GET    /api/students        → list students (optional ?min_grade=N)
//	GET    /api/students/{id}   → get one student
//	POST   /api/students        → create student
//	PUT    /api/students/{id}   → update student
//	DELETE /api/students/{id}   → delete student
//	GET    /api/statistics      → aggregate grade statistics
//
// MIDDLEWARE ORDER MATTERS — middleware executes in registration order:
// RequestID → RealIP → Recoverer → request logging → CORS.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	s.router.Use(middleware.Logger(s.logger))

	// The browser client may be served from a different origin during
	// development (e.g. a file:// page or a separate dev server), so the API
	// answers preflight requests for the methods it supports.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.router.Use(c.Handler)

	// GET /static/css/style.css → serves {StaticDir}/css/style.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleIndex)

	studentService := service.NewStudentService(s.db, s.logger)
	studentHandler := handler.NewStudentHandler(studentService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/students", studentHandler.HandleList)
		r.Get("/students/{id}", studentHandler.HandleGetByID)
		r.Post("/students", studentHandler.HandleCreate)
		r.Put("/students/{id}", studentHandler.HandleUpdate)
		r.Delete("/students/{id}", studentHandler.HandleDelete)
		r.Get("/statistics", studentHandler.HandleStatistics)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// On SIGINT/SIGTERM:
//  1. Stop accepting new connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (via the deferred Close)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("address", s.config.Addr),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
