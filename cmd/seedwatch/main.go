// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "seedwatch",
		Short:        "Tracker-aware seeding policy daemon for qBittorrent",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(RunCommand())
	rootCmd.AddCommand(RunCheckCommand())
	rootCmd.AddCommand(RunUpdateCommand())
	rootCmd.AddCommand(RunVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
