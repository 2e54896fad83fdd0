// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"time"

	qbt "github.com/autobrr/go-qbittorrent"

	"github.com/autobrr/seedwatch/internal/domain"
)

// Reason names the policy threshold a torrent exceeded.
type Reason string

const (
	ReasonRatio       Reason = "ratio"
	ReasonSeedingTime Reason = "seeding_time"
	ReasonIdle        Reason = "idle"
)

// EvaluateTorrent returns every threshold the torrent currently exceeds,
// always in ratio, seeding_time, idle order. A zero threshold never fires.
//
// The idle rule only fires when the torrent is not uploading right now
// (upload speed zero), made no progress this cycle, and has at least one
// earlier observation to measure against.
func EvaluateTorrent(torrent qbt.Torrent, policy domain.Policy, idle Idleness) []Reason {
	var reasons []Reason

	if policy.Ratio > 0 && torrent.Ratio >= policy.Ratio {
		reasons = append(reasons, ReasonRatio)
	}

	if policy.SeedingMinutes > 0 && torrent.SeedingTime/60 >= int64(policy.SeedingMinutes) {
		reasons = append(reasons, ReasonSeedingTime)
	}

	if policy.IdleMinutes > 0 && torrent.UpSpeed == 0 && !idle.First && !idle.Progressed &&
		idle.Duration >= time.Duration(policy.IdleMinutes)*time.Minute {
		reasons = append(reasons, ReasonIdle)
	}

	return reasons
}

func reasonStrings(reasons []Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
