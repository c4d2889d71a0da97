// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/locbeacon/internal/config"
)

func newConfigCommand(_ Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML.",
		Long: "Print the configuration after merging defaults, the config file and\n" +
			"environment variables. The configuration is validated first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			out, err := config.Dump()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
