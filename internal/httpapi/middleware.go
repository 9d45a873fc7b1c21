// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/oklog/ulid/v2"

	"github.com/quillstash/quillstash/internal/auth"
	"github.com/quillstash/quillstash/internal/logging"
	"github.com/quillstash/quillstash/internal/observability"
)

const (
	requestIDHeader = "X-Request-Id"
	identityKey     = "identity"
)

// requestID assigns a ULID to each request, echoes it in the response
// header, and stamps it onto the request context for log correlation.
func (s *Server) requestID(c fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = ulid.Make().String()
	}
	c.Set(requestIDHeader, id)
	c.SetContext(logging.WithRequestID(c.Context(), id))
	return c.Next()
}

// requestLogger logs each request and records HTTP metrics.
func (s *Server) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	elapsed := time.Since(start)

	status := c.Response().StatusCode()
	route := c.Route().Path

	s.logger.InfoContext(c.Context(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", elapsed.Milliseconds())

	if s.metrics != nil {
		s.metrics.HTTPRequestsTotal.
			WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		s.metrics.HTTPRequestDuration.
			WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())
	}

	return err
}

// requireAuth rejects requests without a valid access token and stores
// the caller identity in Locals for downstream handlers.
func (s *Server) requireAuth(c fiber.Ctx) error {
	identity, err := auth.Authenticate(c.Get(fiber.HeaderAuthorization), s.codec)
	if err != nil {
		observability.RecordTokenRejection(rejectionReason(err))
		return s.respondError(c, err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// identityFrom returns the authenticated identity stored by requireAuth.
func identityFrom(c fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals(identityKey).(*auth.Identity)
	return identity
}

func rejectionReason(err error) string {
	if errors.Is(err, auth.ErrMissingToken) {
		return "missing"
	}
	return "invalid"
}
