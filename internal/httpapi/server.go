// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package httpapi exposes the auth and notes services over HTTP.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/samber/oops"

	"github.com/quillstash/quillstash/internal/auth"
	"github.com/quillstash/quillstash/internal/notes"
	"github.com/quillstash/quillstash/internal/observability"
)

// Server is the HTTP API. Construct with New, then Listen.
type Server struct {
	app     *fiber.App
	auth    *auth.Service
	notes   *notes.Service
	codec   *auth.TokenCodec
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Options carries the Server dependencies. Metrics and Logger may be
// nil; everything else is required.
type Options struct {
	Auth    *auth.Service
	Notes   *notes.Service
	Codec   *auth.TokenCodec
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// New creates the API server and registers all routes.
func New(opts Options) (*Server, error) {
	if opts.Auth == nil || opts.Notes == nil || opts.Codec == nil {
		return nil, oops.Code("HTTPAPI_CONFIG_INVALID").New("auth service, notes service, and token codec are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName: "quillstash",
		}),
		auth:    opts.Auth,
		notes:   opts.Notes,
		codec:   opts.Codec,
		logger:  logger,
		metrics: opts.Metrics,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(s.requestID)
	s.app.Use(s.requestLogger)

	s.app.Get("/health", s.handleHealth)
	s.app.Post("/health", s.handleHealth)

	authGroup := s.app.Group("/api/auth")
	authGroup.Post("/register", s.handleRegister)
	authGroup.Post("/login", s.handleLogin)
	authGroup.Get("/google", s.handleGoogleStart)
	authGroup.Get("/google/callback", s.handleGoogleCallback)
	authGroup.Post("/google/idtoken", s.handleGoogleIDToken)
	authGroup.Post("/refresh", s.handleRefresh)

	notesGroup := s.app.Group("/api/notes", s.requireAuth)
	notesGroup.Post("/", s.handleCreateNote)
	notesGroup.Get("/", s.handleListNotes)
	notesGroup.Get("/:id", s.handleGetNote)
	notesGroup.Patch("/:id", s.handleUpdateNote)
	notesGroup.Delete("/:id", s.handleDeleteNote)
}

// Listen serves the API on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	if err := s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		return oops.Code("HTTPAPI_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return oops.Code("HTTPAPI_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
