// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"net/url"
	"strings"

	qbt "github.com/autobrr/go-qbittorrent"
)

// PrimaryTrackerHost returns the hostname of the torrent's first real
// tracker. qBittorrent reports DHT, PeX and LSD as pseudo-trackers with
// "** [DHT] **"-style URLs; those are skipped. Returns "" when no tracker
// URL yields a hostname, which maps the torrent to the default policy.
func PrimaryTrackerHost(trackers []qbt.TorrentTracker) string {
	for _, tracker := range trackers {
		if host := hostFromURL(tracker.Url); host != "" {
			return host
		}
	}
	return ""
}

func hostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "**") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
