// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the seedwatch configuration file, applies defaults and
// environment overrides, and resolves tracker policies against the default
// policy so the rest of the program only ever sees fully-merged values.
package config

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/seedwatch/internal/domain"
)

// EnvPrefix is the environment override prefix; a key such as
// qbittorrent.password becomes SEEDWATCH__QBITTORRENT_PASSWORD.
const EnvPrefix = "SEEDWATCH_"

// fileConfig mirrors the layout of the config file before resolution.
type fileConfig struct {
	Qbittorrent domain.QbitConfig    `mapstructure:"qbittorrent"`
	Policy      policySection        `mapstructure:"policy"`
	Runtime     domain.RuntimeConfig `mapstructure:"runtime"`
	Metrics     domain.MetricsConfig `mapstructure:"metrics"`
}

type policySection struct {
	Default  domain.Policy                    `mapstructure:"default"`
	Trackers map[string]domain.PolicyOverride `mapstructure:"trackers"`
}

// AppConfig owns the loaded configuration and the viper instance backing it,
// so log verbosity can be re-read when the file changes on disk.
type AppConfig struct {
	Config *domain.Config

	viper *viper.Viper
	mu    sync.Mutex
}

// New reads, resolves and validates the config file at path. Any problem here
// is a configuration error: the caller reports it and exits before the first
// cycle runs.
func New(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "config: could not read %s", path)
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.Wrap(err, "config: could not parse config file")
	}

	// Tracker hosts contain dots, which the full-tree unmarshal splits into
	// nested key paths. Decode the subtree directly so each host stays one key.
	raw.Policy.Trackers = nil
	if v.IsSet("policy.trackers") {
		if err := v.UnmarshalKey("policy.trackers", &raw.Policy.Trackers); err != nil {
			return nil, errors.Wrap(err, "config: could not parse policy.trackers")
		}
	}

	cfg, err := resolve(raw)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Runtime.LogLevel)); err != nil {
		return nil, errors.Wrapf(err, "config: invalid runtime.log_level %q", cfg.Runtime.LogLevel)
	}

	return &AppConfig{Config: cfg, viper: v}, nil
}

func setDefaults(v *viper.Viper) {
	// Connection keys get explicit defaults so environment-only overrides
	// (SEEDWATCH__QBITTORRENT_PASSWORD and friends) are visible to Unmarshal
	// even when the file omits the key.
	v.SetDefault("qbittorrent.host", "")
	v.SetDefault("qbittorrent.username", "")
	v.SetDefault("qbittorrent.password", "")
	v.SetDefault("qbittorrent.basic_user", "")
	v.SetDefault("qbittorrent.basic_pass", "")
	v.SetDefault("qbittorrent.timeout", 30)
	v.SetDefault("qbittorrent.tls_skip_verify", false)

	v.SetDefault("policy.default.ratio", 0.0)
	v.SetDefault("policy.default.seeding_minutes", 0)
	v.SetDefault("policy.default.idle_minutes", 0)
	v.SetDefault("policy.default.action", string(domain.ActionPause))

	v.SetDefault("runtime.interval_seconds", 60)
	v.SetDefault("runtime.dry_run", true)
	v.SetDefault("runtime.log_level", "info")
	v.SetDefault("runtime.log_path", "")
	v.SetDefault("runtime.log_max_size", 50)
	v.SetDefault("runtime.log_max_backups", 3)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.host", "127.0.0.1")
	v.SetDefault("metrics.port", 9074)
}

// resolve turns the raw file layout into a fully-resolved domain.Config:
// the default policy is normalized once, and every tracker entry is merged
// field by field on top of it.
func resolve(raw fileConfig) (*domain.Config, error) {
	action, err := domain.ParseAction(string(raw.Policy.Default.Action))
	if err != nil {
		return nil, errors.Wrap(err, "config: policy.default")
	}

	def := raw.Policy.Default
	def.Action = action
	def = def.Normalize()

	trackers := make(map[string]domain.Policy, len(raw.Policy.Trackers))
	for host, override := range raw.Policy.Trackers {
		resolved, err := domain.ResolvePolicy(def, override)
		if err != nil {
			return nil, errors.Wrapf(err, "config: policy.trackers.%s", host)
		}
		trackers[strings.ToLower(strings.TrimSpace(host))] = resolved
	}

	return &domain.Config{
		Qbittorrent: raw.Qbittorrent,
		Policies: domain.Policies{
			Default:  def,
			Trackers: trackers,
		},
		Runtime: raw.Runtime,
		Metrics: raw.Metrics,
	}, nil
}

// DynamicReload watches the config file and re-applies runtime.log_level on
// change. Policies and connection settings stay fixed for the process
// lifetime; a restart picks those up.
func (c *AppConfig) DynamicReload() {
	c.viper.OnConfigChange(func(_ fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()

		level := strings.ToLower(c.viper.GetString("runtime.log_level"))
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			log.Warn().Str("logLevel", level).Msg("config: ignoring invalid log level from reload")
			return
		}

		c.Config.Runtime.LogLevel = level
		zerolog.SetGlobalLevel(parsed)
		log.Debug().Str("logLevel", level).Msg("config: log level reloaded")
	})
	c.viper.WatchConfig()
}
