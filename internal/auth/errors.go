// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth

import "errors"

// Account errors.
var (
	// ErrNotFound is returned when a requested account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when the email is already registered. 409
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response cannot be used for account enumeration. 401
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Token errors.
var (
	ErrMissingToken = errors.New("missing bearer token")                    // 401
	ErrInvalidToken = errors.New("invalid or expired token")                // 401
	ErrTokenRevoked = errors.New("refresh token is invalid or has been revoked") // 401
)

// Identity provider errors.
var (
	ErrExchangeFailed = errors.New("authorization code exchange failed") // 502
	ErrInvalidIDToken = errors.New("invalid identity token")             // 401
)

// Validation errors (client input).
var (
	ErrNameRequired     = errors.New("name is required")                  // 400
	ErrInvalidEmail     = errors.New("invalid email format")              // 400
	ErrPasswordTooShort = errors.New("password is too short")             // 400
)
