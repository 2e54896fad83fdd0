// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"testing"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
)

func TestPrimaryTrackerHost(t *testing.T) {
	tests := []struct {
		name     string
		trackers []qbt.TorrentTracker
		want     string
	}{
		{
			name:     "no trackers",
			trackers: nil,
			want:     "",
		},
		{
			name: "plain https announce",
			trackers: []qbt.TorrentTracker{
				{Url: "https://tracker.example.org/announce"},
			},
			want: "tracker.example.org",
		},
		{
			name: "udp announce with port",
			trackers: []qbt.TorrentTracker{
				{Url: "udp://open.example.com:6969/announce"},
			},
			want: "open.example.com",
		},
		{
			name: "dht and pex pseudo entries are skipped",
			trackers: []qbt.TorrentTracker{
				{Url: "** [DHT] **"},
				{Url: "** [PeX] **"},
				{Url: "** [LSD] **"},
				{Url: "https://tracker.example.org/announce"},
			},
			want: "tracker.example.org",
		},
		{
			name: "only pseudo entries",
			trackers: []qbt.TorrentTracker{
				{Url: "** [DHT] **"},
				{Url: "** [PeX] **"},
			},
			want: "",
		},
		{
			name: "first resolvable hostname wins",
			trackers: []qbt.TorrentTracker{
				{Url: "https://primary.example.org/announce"},
				{Url: "https://backup.example.net/announce"},
			},
			want: "primary.example.org",
		},
		{
			name: "blank url entries are skipped",
			trackers: []qbt.TorrentTracker{
				{Url: "   "},
				{Url: "https://tracker.example.org/announce"},
			},
			want: "tracker.example.org",
		},
		{
			name: "announce key in path is ignored for host",
			trackers: []qbt.TorrentTracker{
				{Url: "https://tracker.example.org/announce/abcdef0123456789"},
			},
			want: "tracker.example.org",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrimaryTrackerHost(tt.trackers))
		})
	}
}
