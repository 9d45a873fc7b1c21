// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package store provides PostgreSQL connection plumbing and schema
// management.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connect settings. The backoff is capped so a slow database start
// (fresh container, failover) is survived without hammering it.
const (
	connectMaxRetries  = 5
	connectBaseBackoff = 500 * time.Millisecond
	connectMaxBackoff  = 5 * time.Second
)

// Connect opens a pgx pool and verifies it with a ping, retrying with
// exponential backoff while the database comes up. Logger may be nil.
func Connect(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_POOL_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithCappedDuration(connectMaxBackoff,
		retry.WithMaxRetries(connectMaxRetries,
			retry.NewExponential(connectBaseBackoff)))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("database not ready, retrying",
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_UNREACHABLE").
			With("attempts", attempt).
			Wrap(err)
	}

	return pool, nil
}
