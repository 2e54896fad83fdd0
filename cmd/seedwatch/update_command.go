// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/autobrr/seedwatch/internal/buildinfo"
	"github.com/autobrr/seedwatch/internal/update"

	"github.com/spf13/cobra"
)

// RunUpdateCommand replaces the current binary with the latest GitHub release.
func RunUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update seedwatch to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			updater := update.NewUpdater(update.Config{
				Repository: "autobrr/seedwatch",
				Version:    buildinfo.Version,
			})

			updated, err := updater.Run(cmd.Context())
			if err != nil {
				return err
			}
			if updated {
				cmd.Println("Restart the service to pick up the new binary.")
			}

			return nil
		},
	}

	return cmd
}
