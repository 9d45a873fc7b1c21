// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 6

// emailRegex matches addresses of the shape local@domain.tld. It is a shape
// check, not an RFC 5322 validator; the mailbox proves itself by being used.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Account represents a registered identity.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash *string // nil for provider-created accounts, permanently
	RefreshToken *string // the single currently valid refresh token, if any
	CreatedAt    time.Time
}

// PublicAccount is the projection of an Account safe to return to clients.
type PublicAccount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the client-safe projection of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Name: a.Name, Email: a.Email}
}

// ValidateRegistration checks registration input. It returns the first
// validation sentinel that fails, or nil.
func ValidateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// AccountRepository manages account persistence.
//
// Create must rely on the storage layer's uniqueness constraint for email and
// return ErrEmailTaken on violation, so concurrent duplicate registration
// resolves to exactly one winner without a client-side transaction.
type AccountRepository interface {
	// GetByEmail retrieves an account by its exact email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// Create stores a new account and fills in ID and CreatedAt.
	Create(ctx context.Context, account *Account) error

	// SetRefreshToken atomically overwrites the stored refresh token,
	// invalidating whatever token was stored before.
	SetRefreshToken(ctx context.Context, id int64, token string) error
}
