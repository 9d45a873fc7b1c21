// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillstash/quillstash/internal/config"
	"github.com/quillstash/quillstash/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back, or inspect schema migrations for the PostgreSQL database.`,
	}

	cmd.AddCommand(newMigrateUpCmd(), newMigrateDownCmd(), newMigrateStatusCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd, nil)
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateDown(cmd, nil)
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateStatus(cmd, nil)
		},
	}
}

// fillMigrateDeps applies default implementations for nil fields.
func fillMigrateDeps(deps *MigrateDeps) *MigrateDeps {
	if deps == nil {
		deps = &MigrateDeps{}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if deps.DatabaseURLGetter == nil {
		deps.DatabaseURLGetter = func() (string, error) {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return "", err
			}
			if cfg.Database.URL == "" {
				return "", oops.Code("CONFIG_INVALID").Errorf("database.url is required")
			}
			return cfg.Database.URL, nil
		}
	}
	return deps
}

func openMigrator(deps *MigrateDeps) (Migrator, error) {
	databaseURL, err := deps.DatabaseURLGetter()
	if err != nil {
		return nil, err
	}
	return deps.MigratorFactory(databaseURL)
}

func runMigrateUp(cmd *cobra.Command, deps *MigrateDeps) error {
	deps = fillMigrateDeps(deps)

	m, err := openMigrator(deps)
	if err != nil {
		return err
	}
	defer m.Close()

	cmd.Println("Applying migrations...")
	if err := m.Up(); err != nil {
		return err
	}

	version, _, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("No migrations to apply")
		return nil
	}
	cmd.Printf("Database is at version %d\n", version)
	return nil
}

func runMigrateDown(cmd *cobra.Command, deps *MigrateDeps) error {
	deps = fillMigrateDeps(deps)

	m, err := openMigrator(deps)
	if err != nil {
		return err
	}
	defer m.Close()

	cmd.Println("Rolling back migrations...")
	if err := m.Down(); err != nil {
		return err
	}

	cmd.Println("All migrations rolled back")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, deps *MigrateDeps) error {
	deps = fillMigrateDeps(deps)

	m, err := openMigrator(deps)
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("Current version: none")
	} else {
		cmd.Printf("Current version: %d (dirty: %v)\n", version, dirty)
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}

	cmd.Printf("Applied: %d, pending: %d\n", len(applied), len(pending))
	for _, v := range pending {
		name, err := store.MigrationName(v)
		if err != nil {
			name = "unknown"
		}
		cmd.Printf("  pending: %d (%s)\n", v, name)
	}
	return nil
}
