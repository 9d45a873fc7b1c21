// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package httpapi

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/oklog/ulid/v2"

	"github.com/quillstash/quillstash/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string             `json:"message"`
	User    auth.PublicAccount `json:"user"`
}

func (s *Server) handleRegister(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Invalid request body"})
	}

	account, err := s.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.recordAuthAttempt("register", err)
		return s.respondError(c, err)
	}

	s.recordAuthAttempt("register", nil)
	return c.Status(http.StatusCreated).JSON(registerResponse{
		Message: "User registered successfully",
		User:    *account,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	auth.TokenPair
}

func (s *Server) handleLogin(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Invalid request body"})
	}

	pair, err := s.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		s.recordAuthAttempt("login", err)
		return s.respondError(c, err)
	}

	s.recordAuthAttempt("login", nil)
	return c.JSON(loginResponse{Message: "Login successful", TokenPair: *pair})
}

func (s *Server) handleGoogleStart(c fiber.Ctx) error {
	if !s.auth.IdentityProviderEnabled() {
		return c.Status(http.StatusNotFound).JSON(errorResponse{Message: "Google sign-in is not configured"})
	}

	url, err := s.auth.AuthCodeURL(ulid.Make().String())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect().Status(http.StatusFound).To(url)
}

type providerLoginResponse struct {
	Message string `json:"message"`
	auth.ProviderLogin
}

func (s *Server) handleGoogleCallback(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Missing code"})
	}

	login, err := s.auth.LoginWithCode(c.Context(), code)
	if err != nil {
		s.recordAuthAttempt("google_callback", err)
		return s.respondError(c, err)
	}

	s.recordAuthAttempt("google_callback", nil)
	return c.JSON(providerLoginResponse{Message: "Google login successful", ProviderLogin: *login})
}

type idTokenRequest struct {
	IDToken string `json:"id_token"`
}

func (s *Server) handleGoogleIDToken(c fiber.Ctx) error {
	var req idTokenRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Invalid request body"})
	}
	if req.IDToken == "" {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Missing id_token"})
	}

	login, err := s.auth.LoginWithIDToken(c.Context(), req.IDToken)
	if err != nil {
		s.recordAuthAttempt("google_idtoken", err)
		return s.respondError(c, err)
	}

	s.recordAuthAttempt("google_idtoken", nil)
	return c.JSON(providerLoginResponse{Message: "Google login successful", ProviderLogin: *login})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (s *Server) handleRefresh(c fiber.Ctx) error {
	var req refreshRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Invalid request body"})
	}
	if req.RefreshToken == "" {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Missing refresh token"})
	}

	accessToken, err := s.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		s.recordAuthAttempt("refresh", err)
		return s.respondError(c, err)
	}

	s.recordAuthAttempt("refresh", nil)
	return c.JSON(refreshResponse{AccessToken: accessToken})
}

func (s *Server) recordAuthAttempt(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}
