// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Quillstash CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quillstash",
		Short: "Quillstash - a notes service with token-based auth",
		Long: `Quillstash is a personal notes service. It issues JWT access and
refresh tokens, supports sign-in with Google, and stores notes in PostgreSQL.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
