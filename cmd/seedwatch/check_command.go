// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/autobrr/seedwatch/internal/config"
	"github.com/autobrr/seedwatch/internal/domain"

	"github.com/spf13/cobra"
)

// RunCheckCommand validates a configuration file and prints the resolved
// policies without touching qBittorrent.
func RunCheckCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print resolved policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := config.New(configPath)
			if err != nil {
				return err
			}
			cfg := appConfig.Config

			cmd.Printf("configuration ok: %s\n\n", configPath)
			cmd.Printf("qbittorrent:  %s\n", cfg.Qbittorrent.Host)
			cmd.Printf("interval:     %s\n", cfg.Interval())
			cmd.Printf("dry_run:      %t\n", cfg.Runtime.DryRun)
			if cfg.Metrics.Enabled {
				cmd.Printf("metrics:      %s:%d\n", cfg.Metrics.Host, cfg.Metrics.Port)
			} else {
				cmd.Printf("metrics:      disabled\n")
			}

			cmd.Printf("\ndefault policy:\n%s", formatPolicy(cfg.Policies.Default))

			hosts := make([]string, 0, len(cfg.Policies.Trackers))
			for host := range cfg.Policies.Trackers {
				hosts = append(hosts, host)
			}
			sort.Strings(hosts)

			for _, host := range hosts {
				cmd.Printf("\npolicy for %s:\n%s", host, formatPolicy(cfg.Policies.Trackers[host]))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func formatPolicy(policy domain.Policy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  ratio:           %s\n", formatRatio(policy.Ratio))
	fmt.Fprintf(&b, "  seeding_minutes: %s\n", formatMinutes(policy.SeedingMinutes))
	fmt.Fprintf(&b, "  idle_minutes:    %s\n", formatMinutes(policy.IdleMinutes))
	fmt.Fprintf(&b, "  action:          %s\n", policy.Action)
	fmt.Fprintf(&b, "  include_tags:    %s\n", formatTags(policy.IncludeTags))
	fmt.Fprintf(&b, "  exclude_tags:    %s\n", formatTags(policy.ExcludeTags))

	if policy.Disabled() {
		fmt.Fprintf(&b, "  warning:         all thresholds are off, this policy never matches\n")
	}

	return b.String()
}

func formatRatio(ratio float64) string {
	if ratio <= 0 {
		return "off"
	}
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}

func formatMinutes(minutes int) string {
	if minutes <= 0 {
		return "off"
	}
	return fmt.Sprintf("%d min", minutes)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}
