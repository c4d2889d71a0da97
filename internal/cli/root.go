// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/locbeacon/internal/config"
)

// Dependencies are injected by main and replaced in tests.
type Dependencies struct {
	Version string
	Stdout  io.Writer
	Stderr  io.Writer

	// Serve runs the server until ctx ends. Defaults to RunServer.
	Serve func(ctx context.Context, cfg *config.Config) error
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Serve == nil {
		d.Serve = RunServer
	}
	return d
}

// NewRootCommand builds the complete command tree. Running the root
// command without a subcommand serves.
func NewRootCommand(deps Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	root := &cobra.Command{
		Use:           "locbeacon",
		Short:         "Live location broadcasting server.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyConfigFlag(cmd)
		},
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (overrides "+config.ConfigPathEnvVar+").")

	serve := newServeCommand(deps)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newVersionCommand(deps))
	root.AddCommand(newConfigCommand(deps))
	root.AddCommand(newReportCommand(deps))

	return root
}

// applyConfigFlag exports --config so every config loader sees it.
func applyConfigFlag(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return nil //nolint:nilerr // flag absent on this command
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	return os.Setenv(config.ConfigPathEnvVar, path)
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(Dependencies{Version: version})
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
