// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package sentinel implements the seeding policy loop: poll qBittorrent for
// seeding torrents, measure upload idleness across cycles, evaluate each
// torrent against its tracker's policy, and pause or remove the ones that
// exceeded a threshold.
package sentinel

import (
	"context"
	"strings"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedwatch/internal/domain"
)

// torrentClient is the qBittorrent surface the runner needs.
type torrentClient interface {
	ListSeeding(ctx context.Context) ([]qbt.Torrent, error)
	Trackers(ctx context.Context, hash string) ([]qbt.TorrentTracker, error)
	SupportsTrackerInclude() bool
}

// Config controls the polling loop.
type Config struct {
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{Interval: time.Minute}
}

// Runner drives evaluation cycles. Cycles are strictly sequential: the next
// one does not start until the previous one finished.
type Runner struct {
	cfg        Config
	client     torrentClient
	policies   domain.Policies
	idle       *IdleTracker
	dispatcher *Dispatcher
	metrics    *Metrics

	now func() time.Time
}

// NewRunner constructs a Runner. metrics may be nil when the metrics
// endpoint is disabled.
func NewRunner(cfg Config, client torrentClient, policies domain.Policies, dispatcher *Dispatcher, metrics *Metrics) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	r := &Runner{
		cfg:        cfg,
		client:     client,
		policies:   policies,
		idle:       NewIdleTracker(),
		dispatcher: dispatcher,
		metrics:    metrics,
	}
	r.now = time.Now
	return r
}

// Run executes cycles at the configured interval until the context is
// cancelled or a cycle fails fatally. The first cycle runs immediately.
// Failing to fetch the seeding list is fatal; anything that only affects a
// single torrent is logged and the cycle moves on.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.RunCycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("sentinel: loop stopping")
			return nil
		case <-ticker.C:
			if err := r.RunCycle(ctx); err != nil {
				return err
			}
		}
	}
}

// RunCycle performs one evaluation pass over all seeding torrents.
func (r *Runner) RunCycle(ctx context.Context) error {
	started := r.now()

	torrents, err := r.client.ListSeeding(ctx)
	if err != nil {
		r.metrics.cycleCompleted(cycleOutcomeError, r.now().Sub(started), r.now())
		return errors.Wrap(err, "sentinel: could not fetch seeding torrents")
	}

	seen := make(map[string]struct{}, len(torrents))
	for _, torrent := range torrents {
		seen[torrent.Hash] = struct{}{}
	}
	r.idle.PruneAbsent(seen)

	var evaluated, skipped, dispatched int
	for _, torrent := range torrents {
		host := r.trackerHost(ctx, torrent)
		policy := r.policies.ForTracker(host)

		if !policy.AdmitsTags(splitTags(torrent.Tags)) {
			skipped++
			continue
		}
		evaluated++

		idle := r.idle.Observe(torrent.Hash, torrent.Uploaded, r.now())

		reasons := EvaluateTorrent(torrent, policy, idle)
		if len(reasons) == 0 {
			continue
		}

		if err := r.dispatcher.Dispatch(ctx, policy.Action, torrent, host, reasons); err != nil {
			log.Error().Err(err).
				Str("hash", torrent.Hash).
				Str("action", string(policy.Action)).
				Msg("sentinel: action failed")
			r.metrics.actionFailed(policy.Action)
			continue
		}
		dispatched++
		r.metrics.actionDispatched(policy.Action, reasons, r.dispatcher.DryRun())
	}

	finished := r.now()
	r.metrics.torrentsScanned(evaluated, skipped)
	r.metrics.setTrackedTorrents(r.idle.Len())
	r.metrics.cycleCompleted(cycleOutcomeOK, finished.Sub(started), finished)

	log.Debug().
		Int("torrents", len(torrents)).
		Int("evaluated", evaluated).
		Int("skipped", skipped).
		Int("dispatched", dispatched).
		Dur("duration", finished.Sub(started)).
		Msg("sentinel: cycle complete")

	return nil
}

// trackerHost resolves the torrent's tracker hostname. On WebAPI versions
// that cannot include trackers in the list call, a per-torrent lookup is
// made; if that fails the torrent falls back to the default policy rather
// than aborting the cycle.
func (r *Runner) trackerHost(ctx context.Context, torrent qbt.Torrent) string {
	if r.client.SupportsTrackerInclude() {
		if host := PrimaryTrackerHost(torrent.Trackers); host != "" {
			return host
		}
		return hostFromURL(torrent.Tracker)
	}

	trackers, err := r.client.Trackers(ctx, torrent.Hash)
	if err != nil {
		log.Debug().Err(err).
			Str("hash", torrent.Hash).
			Msg("sentinel: tracker lookup failed, using default policy")
		return ""
	}
	return PrimaryTrackerHost(trackers)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var cleaned []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
