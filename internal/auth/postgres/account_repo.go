// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package postgres implements auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/quillstash/quillstash/internal/auth"
)

// db is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it, so unit tests run without a database.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool db
}

var _ auth.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool db) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account and fills in the generated ID and creation
// time. Email uniqueness rides on the accounts_email_key constraint: a
// violation maps to auth.ErrEmailTaken so concurrent duplicate registration
// resolves to Conflict rather than an internal error.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, account.Name, account.Email, account.PasswordHash).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_EMAIL_TAKEN").
				With("email", account.Email).
				Wrap(auth.ErrEmailTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves an account by its exact email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, refresh_token, created_at
		FROM accounts
		WHERE email = $1
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, refresh_token, created_at
		FROM accounts
		WHERE id = $1
	`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id).
			Wrap(err)
	}
	return account, nil
}

// SetRefreshToken overwrites the stored refresh token in a single-row
// UPDATE. Per-row atomicity is all the rotation invariant needs.
func (r *AccountRepository) SetRefreshToken(ctx context.Context, id int64, token string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET refresh_token = $2 WHERE id = $1
	`, id, token)
	if err != nil {
		return oops.Code("ACCOUNT_SET_REFRESH_FAILED").
			With("operation", "update refresh token").
			With("id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	account := &auth.Account{}
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.RefreshToken,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
