// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/autobrr/seedwatch/internal/domain"
)

const (
	cycleOutcomeOK    = "ok"
	cycleOutcomeError = "error"
)

// Metrics instruments the policy loop. All series carry the seedwatch_
// prefix. A nil *Metrics is valid and drops every observation, so the loop
// runs unchanged with metrics disabled.
type Metrics struct {
	cycles            *prometheus.CounterVec
	torrentsEvaluated prometheus.Counter
	torrentsSkipped   prometheus.Counter
	actions           *prometheus.CounterVec
	actionFailures    *prometheus.CounterVec
	trackedTorrents   prometheus.Gauge
	lastCycleDuration prometheus.Gauge
	lastCycleUnix     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedwatch_cycles_total",
			Help: "Completed evaluation cycles by outcome.",
		}, []string{"outcome"}),
		torrentsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedwatch_torrents_evaluated_total",
			Help: "Torrents that went through policy evaluation.",
		}),
		torrentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedwatch_torrents_skipped_total",
			Help: "Torrents excluded by tag filters before evaluation.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedwatch_actions_total",
			Help: "Policy actions dispatched, including dry-run ones.",
		}, []string{"action", "reason", "dry_run"}),
		actionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedwatch_action_failures_total",
			Help: "Policy actions the qBittorrent API rejected.",
		}, []string{"action"}),
		trackedTorrents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seedwatch_tracked_torrents",
			Help: "Torrents with idle state in memory.",
		}),
		lastCycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seedwatch_last_cycle_duration_seconds",
			Help: "Wall time of the most recent cycle.",
		}),
		lastCycleUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seedwatch_last_cycle_unix",
			Help: "Unix timestamp of the last successful cycle.",
		}),
	}

	reg.MustRegister(
		m.cycles,
		m.torrentsEvaluated,
		m.torrentsSkipped,
		m.actions,
		m.actionFailures,
		m.trackedTorrents,
		m.lastCycleDuration,
		m.lastCycleUnix,
	)

	return m
}

func (m *Metrics) cycleCompleted(outcome string, duration time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.lastCycleDuration.Set(duration.Seconds())
	if outcome == cycleOutcomeOK {
		m.lastCycleUnix.Set(float64(finished.Unix()))
	}
}

func (m *Metrics) torrentsScanned(evaluated, skipped int) {
	if m == nil {
		return
	}
	m.torrentsEvaluated.Add(float64(evaluated))
	m.torrentsSkipped.Add(float64(skipped))
}

func (m *Metrics) actionDispatched(action domain.Action, reasons []Reason, dryRun bool) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(string(action), strings.Join(reasonStrings(reasons), ","), strconv.FormatBool(dryRun)).Inc()
}

func (m *Metrics) actionFailed(action domain.Action) {
	if m == nil {
		return
	}
	m.actionFailures.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) setTrackedTorrents(n int) {
	if m == nil {
		return
	}
	m.trackedTorrents.Set(float64(n))
}
