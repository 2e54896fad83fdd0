// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics owns the Prometheus registry and the optional HTTP
// endpoint that exposes it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedwatch/internal/sentinel"
)

type Manager struct {
	registry *prometheus.Registry
	sentinel *sentinel.Metrics
}

// NewManager builds a private registry carrying the Go runtime and process
// collectors plus the policy loop's own series.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	loopMetrics := sentinel.NewMetrics(registry)

	log.Debug().Msg("metrics: manager initialized")

	return &Manager{
		registry: registry,
		sentinel: loopMetrics,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// SentinelMetrics returns the loop instrumentation registered on this
// manager's registry.
func (m *Manager) SentinelMetrics() *sentinel.Metrics {
	return m.sentinel
}
