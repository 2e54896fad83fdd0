// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import "time"

// Idleness describes what one cycle's observation revealed about a torrent's
// upload activity.
type Idleness struct {
	// Duration is how long the torrent has gone without uploading anything.
	Duration time.Duration
	// Progressed is set when the uploaded byte count grew this cycle.
	Progressed bool
	// First is set the first time a torrent is observed; a single sample
	// says nothing about idleness yet.
	First bool
}

type idleState struct {
	uploaded int64
	lastUp   time.Time
}

// IdleTracker remembers each torrent's uploaded byte count across cycles so
// upload inactivity can be measured. It is owned by the runner goroutine and
// is not safe for concurrent use.
type IdleTracker struct {
	states map[string]*idleState
}

func NewIdleTracker() *IdleTracker {
	return &IdleTracker{states: make(map[string]*idleState)}
}

// Observe records the torrent's uploaded byte count for this cycle. A byte
// count that went backwards (client restart, recheck) keeps the stored
// high-water mark and does not reset the idle clock.
func (t *IdleTracker) Observe(hash string, uploaded int64, now time.Time) Idleness {
	st, ok := t.states[hash]
	if !ok {
		t.states[hash] = &idleState{uploaded: uploaded, lastUp: now}
		return Idleness{First: true}
	}

	if uploaded > st.uploaded {
		st.uploaded = uploaded
		st.lastUp = now
		return Idleness{Progressed: true}
	}

	return Idleness{Duration: now.Sub(st.lastUp)}
}

// PruneAbsent drops state for torrents that are no longer in the client.
func (t *IdleTracker) PruneAbsent(seen map[string]struct{}) {
	for hash := range t.states {
		if _, ok := seen[hash]; !ok {
			delete(t.states, hash)
		}
	}
}

// Len returns the number of torrents currently tracked.
func (t *IdleTracker) Len() int {
	return len(t.states)
}
