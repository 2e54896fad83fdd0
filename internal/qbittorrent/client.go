// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package qbittorrent wraps the go-qbittorrent client with the small surface
// the sentinel loop needs: list seeding torrents, resolve trackers, pause and
// delete.
package qbittorrent

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedwatch/internal/domain"
)

// Torrents with WebAPI >= 2.11.4 can be fetched with their tracker lists in
// one call instead of one request per hash.
var minTrackerIncludeVersion = semver.MustParse("2.11.4")

type Client struct {
	*qbt.Client

	webAPIVersion          string
	supportsTrackerInclude bool

	mu              sync.RWMutex
	lastHealthCheck time.Time
	isHealthy       bool
}

// filteredWriter wraps stderr to drop Go's "unsolicited response" HTTP noise.
// qBittorrent sometimes sends an extra response on an idle channel after the
// main request completes; the go-qbittorrent library does not expose its HTTP
// client, so the message is filtered at the standard library log level.
type filteredWriter struct {
	writer io.Writer
}

func (fw *filteredWriter) Write(p []byte) (n int, err error) {
	if strings.Contains(string(p), "Unsolicited response received on idle HTTP channel") {
		return len(p), nil
	}
	return fw.writer.Write(p)
}

func init() {
	stdlog.SetOutput(&filteredWriter{writer: os.Stderr})
}

// NewClient connects to the qBittorrent WebUI and authenticates. Login is
// retried a few times so a daemon starting alongside qBittorrent does not
// lose the race; after that, a failed login is fatal for the caller.
func NewClient(cfg domain.QbitConfig) (*Client, error) {
	qbtClient := qbt.NewClient(qbt.Config{
		Host:          cfg.Host,
		Username:      cfg.Username,
		Password:      cfg.Password,
		BasicUser:     cfg.BasicUser,
		BasicPass:     cfg.BasicPass,
		TLSSkipVerify: cfg.TLSSkipVerify,
		Timeout:       cfg.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := retry.Do(
		func() error {
			return qbtClient.LoginCtx(ctx)
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("qbittorrent: login failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qBittorrent at %s: %w", cfg.Host, err)
	}

	webAPIVersion, err := qbtClient.GetWebAPIVersionCtx(ctx)
	if err != nil {
		webAPIVersion = ""
	}

	client := &Client{
		Client:                 qbtClient,
		webAPIVersion:          webAPIVersion,
		supportsTrackerInclude: versionSupportsTrackerInclude(webAPIVersion),
		lastHealthCheck:        time.Now(),
		isHealthy:              true,
	}

	log.Debug().
		Str("host", cfg.Host).
		Str("webAPIVersion", webAPIVersion).
		Bool("supportsTrackerInclude", client.supportsTrackerInclude).
		Msg("qbittorrent: client connected")

	return client, nil
}

func versionSupportsTrackerInclude(webAPIVersion string) bool {
	if webAPIVersion == "" {
		return false
	}
	v, err := semver.NewVersion(webAPIVersion)
	if err != nil {
		return false
	}
	return !v.LessThan(minTrackerIncludeVersion)
}

// ListSeeding returns all torrents in a seeding state. When the WebAPI is
// recent enough the tracker lists come back in the same call.
func (c *Client) ListSeeding(ctx context.Context) ([]qbt.Torrent, error) {
	opts := qbt.TorrentFilterOptions{Filter: qbt.TorrentFilter("seeding")}
	if c.SupportsTrackerInclude() {
		opts.IncludeTrackers = true
	}

	torrents, err := c.GetTorrentsCtx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seeding torrents: %w", err)
	}
	return torrents, nil
}

// Trackers fetches the tracker list for a single torrent. Only needed on
// WebAPI versions too old for ListSeeding to include them.
func (c *Client) Trackers(ctx context.Context, hash string) ([]qbt.TorrentTracker, error) {
	trackers, err := c.GetTorrentTrackersCtx(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trackers for %s: %w", hash, err)
	}
	return trackers, nil
}

// HealthCheck probes the WebAPI and re-authenticates once if the session
// expired.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.GetWebAPIVersionCtx(ctx)
	if err != nil {
		if loginErr := c.LoginCtx(ctx); loginErr != nil {
			c.setHealthy(false)
			return fmt.Errorf("health check failed: login error: %w", loginErr)
		}
		if _, err = c.GetWebAPIVersionCtx(ctx); err != nil {
			c.setHealthy(false)
			return fmt.Errorf("health check failed: api error: %w", err)
		}
	}

	c.setHealthy(true)
	return nil
}

func (c *Client) setHealthy(healthy bool) {
	c.mu.Lock()
	c.isHealthy = healthy
	c.lastHealthCheck = time.Now()
	c.mu.Unlock()
}

func (c *Client) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isHealthy
}

func (c *Client) LastHealthCheck() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastHealthCheck
}

func (c *Client) SupportsTrackerInclude() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supportsTrackerInclude
}

func (c *Client) WebAPIVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webAPIVersion
}
