// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillstash/quillstash/internal/auth"
	authpg "github.com/quillstash/quillstash/internal/auth/postgres"
	"github.com/quillstash/quillstash/internal/config"
	"github.com/quillstash/quillstash/internal/httpapi"
	"github.com/quillstash/quillstash/internal/logging"
	"github.com/quillstash/quillstash/internal/notes"
	notespg "github.com/quillstash/quillstash/internal/notes/postgres"
	"github.com/quillstash/quillstash/internal/observability"
	"github.com/quillstash/quillstash/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the Quillstash API server. Configuration is read from the
config file, QUILLSTASH_* environment variables, and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, nil)
		},
	}

	// Flag names mirror configuration keys so they layer over the file
	// and environment.
	cmd.Flags().String("http.addr", "", "API listen address")
	cmd.Flags().String("metrics.addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

// runServe starts the API server with injectable dependencies. If deps
// is nil, default implementations are used.
func runServe(ctx context.Context, cfg *config.Config, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, url string, logger *slog.Logger) (Pool, error) {
			return store.Connect(ctx, url, logger)
		}
	}
	if deps.IdentityVerifierFactory == nil {
		deps.IdentityVerifierFactory = func(ctx context.Context, cfg auth.GoogleConfig) (auth.IdentityVerifier, error) {
			return auth.NewGoogleVerifier(ctx, cfg)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.APIServerFactory == nil {
		deps.APIServerFactory = func(opts httpapi.Options) (APIServer, error) {
			return httpapi.New(opts)
		}
	}

	warnings := cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("quillstash", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()
	for _, warning := range warnings {
		logger.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	codec, err := auth.NewTokenCodec(
		auth.SigningContext{Secret: []byte(cfg.Auth.Access.Secret), TTL: cfg.Auth.Access.TTL},
		auth.SigningContext{Secret: []byte(cfg.Auth.Refresh.Secret), TTL: cfg.Auth.Refresh.TTL},
	)
	if err != nil {
		return err
	}

	var identity auth.IdentityVerifier
	if cfg.GoogleEnabled() {
		identity, err = deps.IdentityVerifierFactory(ctx, auth.GoogleConfig{
			ClientID:     cfg.Google.Client.ID,
			ClientSecret: cfg.Google.Client.Secret,
			RedirectURL:  cfg.Google.Redirect.URL,
		})
		if err != nil {
			return err
		}
		logger.Info("sign-in with Google enabled")
	}

	authSvc, err := auth.NewService(authpg.NewAccountRepository(pool), auth.NewArgon2idHasher(), codec, identity, logger)
	if err != nil {
		return err
	}
	notesSvc, err := notes.NewService(notespg.NewNoteRepository(pool), logger)
	if err != nil {
		return err
	}

	var obs ObservabilityServer
	var obsErr <-chan error
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obs = deps.ObservabilityServerFactory(cfg.Metrics.Addr, func() bool {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obs.Metrics()

		obsErr, err = obs.Start()
		if err != nil {
			return err
		}
		logger.Info("observability server started", "addr", cfg.Metrics.Addr)
	}

	api, err := deps.APIServerFactory(httpapi.Options{
		Auth:    authSvc,
		Notes:   notesSvc,
		Codec:   codec,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- api.Listen(cfg.HTTP.Addr)
	}()
	logger.Info("API server started", "addr", cfg.HTTP.Addr)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-listenErr:
		if err != nil {
			runErr = oops.Code("SERVE_FAILED").Wrap(err)
		}
	case err := <-obsErr:
		if err != nil {
			runErr = oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", "error", err)
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			logger.Error("observability server shutdown failed", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
