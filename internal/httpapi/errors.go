// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/quillstash/quillstash/internal/auth"
	"github.com/quillstash/quillstash/internal/notes"
	"github.com/quillstash/quillstash/pkg/errutil"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Message string `json:"message"`
}

// mapError resolves a service error to a status code and a fixed
// client-safe message. Internals (oops context, database errors) stay
// in the logs.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, notes.ErrTitleRequired),
		errors.Is(err, notes.ErrContentRequired),
		errors.Is(err, notes.ErrTitleTooLong),
		errors.Is(err, notes.ErrContentTooLong),
		errors.Is(err, notes.ErrNothingToUpdate):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "Email already registered"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"

	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Missing token"

	case errors.Is(err, auth.ErrTokenRevoked):
		return http.StatusUnauthorized, "Refresh token is invalid or has been revoked"

	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"

	case errors.Is(err, auth.ErrInvalidIDToken):
		return http.StatusUnauthorized, "Invalid Google id_token"

	case errors.Is(err, auth.ErrExchangeFailed):
		return http.StatusBadGateway, "Google OAuth error"

	case errors.Is(err, notes.ErrNoteNotFound):
		return http.StatusNotFound, "Note not found"

	case errors.Is(err, auth.ErrNotFound):
		return http.StatusNotFound, "Not found"

	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes the mapped error and logs server-side failures.
func (s *Server) respondError(c fiber.Ctx, err error) error {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	} else {
		s.logger.DebugContext(c.Context(), "request rejected",
			slog.Int("status", status),
			slog.String("reason", message))
	}
	return c.Status(status).JSON(errorResponse{Message: message})
}
