// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"time"
)

// QbitConfig holds the qBittorrent WebUI connection parameters.
type QbitConfig struct {
	Host          string `mapstructure:"host"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	BasicUser     string `mapstructure:"basic_user"`
	BasicPass     string `mapstructure:"basic_pass"`
	TLSSkipVerify bool   `mapstructure:"tls_skip_verify"`
	Timeout       int    `mapstructure:"timeout"`
}

// RuntimeConfig controls the polling loop and logging.
type RuntimeConfig struct {
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	DryRun          bool   `mapstructure:"dry_run"`
	LogLevel        string `mapstructure:"log_level"`
	LogPath         string `mapstructure:"log_path"`
	LogMaxSize      int    `mapstructure:"log_max_size"`
	LogMaxBackups   int    `mapstructure:"log_max_backups"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	BasicAuthUsers string `mapstructure:"basic_auth_users"`
}

// Config is the fully-loaded application configuration. Tracker policies are
// resolved against the default policy at load time; nothing downstream merges
// or inherits.
type Config struct {
	Qbittorrent QbitConfig
	Policies    Policies
	Runtime     RuntimeConfig
	Metrics     MetricsConfig
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Runtime.IntervalSeconds) * time.Second
}

// Validate checks everything that must be rejected before the first cycle.
func (c *Config) Validate() error {
	if c.Qbittorrent.Host == "" {
		return errors.New("qbittorrent.host is required")
	}
	if c.Runtime.IntervalSeconds <= 0 {
		return fmt.Errorf("runtime.interval_seconds must be positive, got %d", c.Runtime.IntervalSeconds)
	}
	if _, err := ParseAction(string(c.Policies.Default.Action)); err != nil {
		return fmt.Errorf("policy.default: %w", err)
	}
	for host, policy := range c.Policies.Trackers {
		if _, err := ParseAction(string(policy.Action)); err != nil {
			return fmt.Errorf("policy.trackers.%s: %w", host, err)
		}
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	return nil
}
