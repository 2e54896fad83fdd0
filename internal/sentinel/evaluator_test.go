// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"testing"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"

	"github.com/autobrr/seedwatch/internal/domain"
)

func TestEvaluateTorrent(t *testing.T) {
	tests := []struct {
		name    string
		torrent qbt.Torrent
		policy  domain.Policy
		idle    Idleness
		want    []Reason
	}{
		// Ratio rule
		{
			name:    "ratio exceeded",
			torrent: qbt.Torrent{Ratio: 2.5},
			policy:  domain.Policy{Ratio: 2.0},
			want:    []Reason{ReasonRatio},
		},
		{
			name:    "ratio exactly at threshold",
			torrent: qbt.Torrent{Ratio: 2.0},
			policy:  domain.Policy{Ratio: 2.0},
			want:    []Reason{ReasonRatio},
		},
		{
			name:    "ratio below threshold",
			torrent: qbt.Torrent{Ratio: 1.9},
			policy:  domain.Policy{Ratio: 2.0},
			want:    nil,
		},
		{
			name:    "zero ratio threshold never fires",
			torrent: qbt.Torrent{Ratio: 99},
			policy:  domain.Policy{Ratio: 0},
			want:    nil,
		},

		// Seeding time rule, thresholds in minutes against seconds from the API
		{
			name:    "seeding time exceeded",
			torrent: qbt.Torrent{SeedingTime: 61 * 60},
			policy:  domain.Policy{SeedingMinutes: 60},
			want:    []Reason{ReasonSeedingTime},
		},
		{
			name:    "seeding time exactly at threshold",
			torrent: qbt.Torrent{SeedingTime: 60 * 60},
			policy:  domain.Policy{SeedingMinutes: 60},
			want:    []Reason{ReasonSeedingTime},
		},
		{
			name:    "partial minute rounds down",
			torrent: qbt.Torrent{SeedingTime: 60*60 - 1},
			policy:  domain.Policy{SeedingMinutes: 60},
			want:    nil,
		},

		// Idle rule
		{
			name:    "idle long enough",
			torrent: qbt.Torrent{UpSpeed: 0},
			policy:  domain.Policy{IdleMinutes: 30},
			idle:    Idleness{Duration: 31 * time.Minute},
			want:    []Reason{ReasonIdle},
		},
		{
			name:    "idle exactly at threshold",
			torrent: qbt.Torrent{UpSpeed: 0},
			policy:  domain.Policy{IdleMinutes: 30},
			idle:    Idleness{Duration: 30 * time.Minute},
			want:    []Reason{ReasonIdle},
		},
		{
			name:    "still uploading suppresses idle",
			torrent: qbt.Torrent{UpSpeed: 1024},
			policy:  domain.Policy{IdleMinutes: 30},
			idle:    Idleness{Duration: 31 * time.Minute},
			want:    nil,
		},
		{
			name:    "first observation never idles",
			torrent: qbt.Torrent{UpSpeed: 0},
			policy:  domain.Policy{IdleMinutes: 30},
			idle:    Idleness{First: true},
			want:    nil,
		},
		{
			name:    "progress this cycle suppresses idle",
			torrent: qbt.Torrent{UpSpeed: 0},
			policy:  domain.Policy{IdleMinutes: 30},
			idle:    Idleness{Progressed: true},
			want:    nil,
		},
		{
			name:    "not idle long enough",
			torrent: qbt.Torrent{UpSpeed: 0},
			policy:  domain.Policy{IdleMinutes: 30},
			idle:    Idleness{Duration: 16 * time.Minute},
			want:    nil,
		},

		// Combinations keep a fixed reason order
		{
			name:    "all three reasons in order",
			torrent: qbt.Torrent{Ratio: 3.0, SeedingTime: 2 * 60 * 60, UpSpeed: 0},
			policy:  domain.Policy{Ratio: 2.0, SeedingMinutes: 60, IdleMinutes: 30},
			idle:    Idleness{Duration: time.Hour},
			want:    []Reason{ReasonRatio, ReasonSeedingTime, ReasonIdle},
		},
		{
			name:    "ratio and idle without seeding time",
			torrent: qbt.Torrent{Ratio: 3.0, SeedingTime: 60, UpSpeed: 0},
			policy:  domain.Policy{Ratio: 2.0, SeedingMinutes: 60, IdleMinutes: 30},
			idle:    Idleness{Duration: time.Hour},
			want:    []Reason{ReasonRatio, ReasonIdle},
		},
		{
			name:    "fully disabled policy never fires",
			torrent: qbt.Torrent{Ratio: 99, SeedingTime: 1 << 30, UpSpeed: 0},
			policy:  domain.Policy{},
			idle:    Idleness{Duration: 1000 * time.Hour},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateTorrent(tt.torrent, tt.policy, tt.idle))
		})
	}
}
