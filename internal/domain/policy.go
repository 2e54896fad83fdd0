// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"fmt"
	"strings"
)

// Action is what happens to a torrent once a policy threshold is exceeded.
type Action string

const (
	// ActionPause stops the torrent but keeps it in the client.
	ActionPause Action = "pause"
	// ActionRemove deletes the torrent from the client and keeps its files.
	ActionRemove Action = "remove"
	// ActionRemoveData deletes the torrent and its downloaded files.
	ActionRemoveData Action = "remove_data"
)

// ParseAction validates a configured action string. Matching is
// case-insensitive; unknown values are a configuration error.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionPause:
		return ActionPause, nil
	case ActionRemove:
		return ActionRemove, nil
	case ActionRemoveData:
		return ActionRemoveData, nil
	default:
		return "", fmt.Errorf("unknown action %q (expected pause, remove or remove_data)", s)
	}
}

func (a Action) String() string {
	return string(a)
}

// Policy holds the seeding thresholds and the action for one tracker scope.
// A threshold of zero (or below) disables that rule.
type Policy struct {
	Ratio          float64  `mapstructure:"ratio"`
	SeedingMinutes int      `mapstructure:"seeding_minutes"`
	IdleMinutes    int      `mapstructure:"idle_minutes"`
	Action         Action   `mapstructure:"action"`
	IncludeTags    []string `mapstructure:"include_tags"`
	ExcludeTags    []string `mapstructure:"exclude_tags"`
}

// PolicyOverride is a partial policy as it appears under policy.trackers in
// the config file. Pointer fields distinguish "not set" from an explicit
// zero, so tracker entries inherit unset fields from the default policy.
type PolicyOverride struct {
	Ratio          *float64  `mapstructure:"ratio"`
	SeedingMinutes *int      `mapstructure:"seeding_minutes"`
	IdleMinutes    *int      `mapstructure:"idle_minutes"`
	Action         *string   `mapstructure:"action"`
	IncludeTags    *[]string `mapstructure:"include_tags"`
	ExcludeTags    *[]string `mapstructure:"exclude_tags"`
}

// ResolvePolicy merges an override onto the default policy field by field.
// The result is a fully-resolved policy; nothing is left to inherit at
// evaluation time.
func ResolvePolicy(def Policy, o PolicyOverride) (Policy, error) {
	resolved := def

	if o.Ratio != nil {
		resolved.Ratio = *o.Ratio
	}
	if o.SeedingMinutes != nil {
		resolved.SeedingMinutes = *o.SeedingMinutes
	}
	if o.IdleMinutes != nil {
		resolved.IdleMinutes = *o.IdleMinutes
	}
	if o.Action != nil {
		action, err := ParseAction(*o.Action)
		if err != nil {
			return Policy{}, err
		}
		resolved.Action = action
	}
	if o.IncludeTags != nil {
		resolved.IncludeTags = normalizeTags(*o.IncludeTags)
	}
	if o.ExcludeTags != nil {
		resolved.ExcludeTags = normalizeTags(*o.ExcludeTags)
	}

	return resolved.Normalize(), nil
}

// Normalize clamps non-positive thresholds to zero (disabled) and cleans up
// tag lists. Called once at config load.
func (p Policy) Normalize() Policy {
	if p.Ratio < 0 {
		p.Ratio = 0
	}
	if p.SeedingMinutes < 0 {
		p.SeedingMinutes = 0
	}
	if p.IdleMinutes < 0 {
		p.IdleMinutes = 0
	}
	p.IncludeTags = normalizeTags(p.IncludeTags)
	p.ExcludeTags = normalizeTags(p.ExcludeTags)
	return p
}

// Disabled reports whether no threshold in this policy can ever fire.
func (p Policy) Disabled() bool {
	return p.Ratio <= 0 && p.SeedingMinutes <= 0 && p.IdleMinutes <= 0
}

// AdmitsTags reports whether a torrent with the given tags falls within this
// policy's scope. A non-empty include list requires at least one match; any
// match against the exclude list rejects. Comparison is case-insensitive.
func (p Policy) AdmitsTags(tags []string) bool {
	if len(p.IncludeTags) == 0 && len(p.ExcludeTags) == 0 {
		return true
	}

	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.ToLower(strings.TrimSpace(tag))
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}

	if len(p.IncludeTags) > 0 {
		matched := false
		for _, tag := range p.IncludeTags {
			if _, ok := set[strings.ToLower(tag)]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, tag := range p.ExcludeTags {
		if _, ok := set[strings.ToLower(tag)]; ok {
			return false
		}
	}

	return true
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

// Policies maps tracker hosts to their fully-resolved policies. Hosts are
// stored lowercase; lookups fold case.
type Policies struct {
	Default  Policy
	Trackers map[string]Policy
}

// ForTracker returns the policy for a tracker host, falling back to the
// default policy when the host is empty or has no tracker-specific entry.
func (p Policies) ForTracker(host string) Policy {
	if host == "" || len(p.Trackers) == 0 {
		return p.Default
	}
	if policy, ok := p.Trackers[strings.ToLower(host)]; ok {
		return policy
	}
	return p.Default
}
