// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quillstash/quillstash/internal/auth"
	"github.com/quillstash/quillstash/internal/httpapi"
	"github.com/quillstash/quillstash/internal/observability"
)

// Pool is the subset of pgxpool.Pool the serve command needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// APIServer wraps the HTTP server methods used by serve.
type APIServer interface {
	Listen(addr string) error
	Shutdown(ctx context.Context) error
}

// ObservabilityServer wraps the metrics/health server methods used by serve.
type ObservabilityServer interface {
	Metrics() *observability.Metrics
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
}

// Migrator wraps the migration methods used by the migrate subcommands.
type Migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory connects to the database. Default: store.Connect.
	PoolFactory func(ctx context.Context, url string, logger *slog.Logger) (Pool, error)

	// IdentityVerifierFactory builds the Google verifier.
	// Default: auth.NewGoogleVerifier.
	IdentityVerifierFactory func(ctx context.Context, cfg auth.GoogleConfig) (auth.IdentityVerifier, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer.
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// APIServerFactory creates the HTTP API server.
	// Default: httpapi.New.
	APIServerFactory func(opts httpapi.Options) (APIServer, error)
}

// MigrateDeps contains injectable dependencies for the migrate subcommands.
type MigrateDeps struct {
	// MigratorFactory builds a migrator for the database.
	// Default: store.NewMigrator.
	MigratorFactory func(databaseURL string) (Migrator, error)

	// DatabaseURLGetter resolves the database URL.
	// Default: loads the configuration file and environment.
	DatabaseURLGetter func() (string, error)
}
