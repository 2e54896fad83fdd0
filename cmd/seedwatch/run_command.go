// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/autobrr/seedwatch/internal/buildinfo"
	"github.com/autobrr/seedwatch/internal/config"
	"github.com/autobrr/seedwatch/internal/logger"
	"github.com/autobrr/seedwatch/internal/metrics"
	"github.com/autobrr/seedwatch/internal/qbittorrent"
	"github.com/autobrr/seedwatch/internal/sentinel"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// RunCommand starts the policy loop, either as a long-running daemon or as a
// single evaluation cycle with --once.
func RunCommand() *cobra.Command {
	var (
		configPath string
		once       bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the seeding policy loop against qBittorrent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := config.New(configPath)
			if err != nil {
				return err
			}
			cfg := appConfig.Config

			// An explicit flag wins over the configured value, so operators
			// can force a dry run without editing the file.
			if cmd.Flags().Changed("dry-run") {
				cfg.Runtime.DryRun = dryRun
			}

			if err := logger.Setup(cfg.Runtime); err != nil {
				return err
			}
			appConfig.DynamicReload()

			log.Info().
				Str("version", buildinfo.Version).
				Str("host", cfg.Qbittorrent.Host).
				Dur("interval", cfg.Interval()).
				Bool("dryRun", cfg.Runtime.DryRun).
				Msg("seedwatch starting")

			client, err := qbittorrent.NewClient(cfg.Qbittorrent)
			if err != nil {
				return err
			}

			var (
				manager     *metrics.Manager
				loopMetrics *sentinel.Metrics
			)
			if cfg.Metrics.Enabled {
				manager = metrics.NewManager()
				loopMetrics = manager.SentinelMetrics()
			}

			dispatcher := sentinel.NewDispatcher(client, cfg.Runtime.DryRun)
			runner := sentinel.NewRunner(sentinel.Config{Interval: cfg.Interval()}, client, cfg.Policies, dispatcher, loopMetrics)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if once {
				return runner.RunCycle(ctx)
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return runner.Run(gctx)
			})

			if manager != nil {
				server := metrics.NewMetricsServer(manager, dispatcher, client, cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.BasicAuthUsers)

				g.Go(func() error {
					return server.ListenAndServe()
				})

				// Keep the health endpoint honest while the loop sleeps
				// between cycles.
				g.Go(func() error {
					ticker := time.NewTicker(30 * time.Second)
					defer ticker.Stop()

					for {
						select {
						case <-gctx.Done():
							return nil
						case <-ticker.C:
							if err := client.HealthCheck(gctx); err != nil {
								log.Warn().Err(err).Msg("health check failed")
							}
						}
					}
				})

				g.Go(func() error {
					<-gctx.Done()

					shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()

					return server.Shutdown(shutdownCtx)
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			log.Info().Msg("seedwatch stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	cmd.Flags().BoolVar(&once, "once", false, "run a single evaluation cycle and exit")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log actions without executing them")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
