// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedwatch/internal/sentinel"
)

const defaultActivityLimit = 50

// activitySource is the audit history the activity endpoint reads from.
type activitySource interface {
	Activity(limit int) []sentinel.AuditRecord
}

// healthSource reports whether the qBittorrent connection is usable.
type healthSource interface {
	IsHealthy() bool
}

type MetricsServer struct {
	manager        *Manager
	activity       activitySource
	health         healthSource
	basicAuthUsers map[string]string
	server         *http.Server
}

// NewMetricsServer wires the scrape endpoint, a health probe and the recent
// activity feed. basicAuthUsers is a comma separated list of user:password
// pairs; when empty, /metrics and /api/activity are served unauthenticated.
func NewMetricsServer(manager *Manager, activity activitySource, health healthSource, host string, port int, basicAuthUsers string) *MetricsServer {
	s := &MetricsServer{
		manager:        manager,
		activity:       activity,
		health:         health,
		basicAuthUsers: parseBasicAuthUsers(basicAuthUsers),
	}

	r := chi.NewRouter()

	// The health probe stays reachable without credentials.
	r.Get("/healthz", s.handleHealthz)

	r.Group(func(pr chi.Router) {
		if len(s.basicAuthUsers) > 0 {
			pr.Use(middleware.BasicAuth("seedwatch", s.basicAuthUsers))
		}
		pr.Get("/metrics", promhttp.HandlerFor(manager.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP)
		pr.Get("/api/activity", s.handleActivity)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *MetricsServer) ListenAndServe() error {
	log.Info().Str("addr", s.server.Addr).Msg("metrics: server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *MetricsServer) Stop() error {
	return s.Shutdown(context.Background())
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *MetricsServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if s.health != nil && !s.health.IsHealthy() {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *MetricsServer) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var records []sentinel.AuditRecord
	if s.activity != nil {
		records = s.activity.Activity(limit)
	}
	if records == nil {
		records = []sentinel.AuditRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		log.Error().Err(err).Msg("metrics: could not encode activity response")
	}
}

func parseBasicAuthUsers(raw string) map[string]string {
	users := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			log.Warn().Str("entry", entry).Msg("metrics: skipping malformed basic auth entry")
			continue
		}
		users[strings.TrimSpace(parts[0])] = parts[1]
	}
	return users
}
