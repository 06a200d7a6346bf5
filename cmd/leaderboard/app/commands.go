// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the leaderboard command-line application.
package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/leaderboard/pkg/api"
	"github.com/stacklok/leaderboard/pkg/config"
	"github.com/stacklok/leaderboard/pkg/logger"
)

// NewRootCmd creates a new root command for the leaderboard CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "leaderboard",
		DisableAutoGenTag: true,
		Short:             "Leaderboard - sign in with Auth0 and record users in MongoDB",
		Long: `Leaderboard is a small web application that signs users in through Auth0
(OpenID Connect), shows the signed-in identity, stores it in MongoDB on request,
and records names submitted through a leaderboard form.

Configuration is read from environment variables, optionally seeded from a
dotenv file (.env in the working directory by default).`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
			slog.SetDefault(logger.Get())
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().String("env-file", "", "Path to a dotenv file (default .env, if present)")
	if err := viper.BindPFlag("env-file", rootCmd.PersistentFlags().Lookup("env-file")); err != nil {
		logger.Errorf("Error binding env-file flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// newServeCmd creates the serve command for starting the web server
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the leaderboard web server",
		Long: `Start the leaderboard web server.

The server connects to the configured storage and session backends and serves
the login, callback, logout, home, adduser and addleaderboard pages until it
receives SIGINT or SIGTERM, then shuts down gracefully.`,
		RunE: runServe,
	}
}

// newValidateCmd creates the validate command for checking configuration
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Validate the configuration without starting the server.

This command checks:
- Required variables are present
- Values parse as their expected types
- Identity provider URLs use HTTPS (plain HTTP is allowed for localhost)
- The storage and session backends are known and fully configured`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "✓ Configuration is valid")
			_, _ = fmt.Fprintf(out, "  Issuer: %s\n", cfg.OIDC.Issuer())
			_, _ = fmt.Fprintf(out, "  Storage: %s\n", cfg.Mongo.Backend)
			_, _ = fmt.Fprintf(out, "  Sessions: %s\n", cfg.Session.Backend)
			_, _ = fmt.Fprintf(out, "  Listen: %s\n", cfg.Addr())
			return nil
		},
	}
}

// loadConfig loads and validates the configuration from the environment and
// the --env-file flag.
func loadConfig() (*config.Config, error) {
	envFile := viper.GetString("env-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("configuration loading failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	logger.Debugf("Configuration loaded and validated successfully")
	return cfg, nil
}

// runServe implements the serve command logic
func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.close(ctx)

	logger.Infof("Serving leaderboard on %s (storage: %s, sessions: %s)",
		cfg.Addr(), cfg.Mongo.Backend, cfg.Session.Backend)

	return api.Serve(ctx, cfg.Addr(), srv.handler)
}
