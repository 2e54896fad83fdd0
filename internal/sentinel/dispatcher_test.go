// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"context"
	"fmt"
	"testing"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/seedwatch/internal/domain"
)

func TestDispatcherActions(t *testing.T) {
	torrent := qbt.Torrent{Hash: "aaa111", Name: "debian-13.iso"}

	tests := []struct {
		name        string
		action      domain.Action
		wantPauses  [][]string
		wantDeletes []deleteCall
	}{
		{
			name:       "pause",
			action:     domain.ActionPause,
			wantPauses: [][]string{{"aaa111"}},
		},
		{
			name:        "remove keeps files",
			action:      domain.ActionRemove,
			wantDeletes: []deleteCall{{hashes: []string{"aaa111"}, deleteFiles: false}},
		},
		{
			name:        "remove_data deletes files",
			action:      domain.ActionRemoveData,
			wantDeletes: []deleteCall{{hashes: []string{"aaa111"}, deleteFiles: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			d := NewDispatcher(client, false)

			err := d.Dispatch(context.Background(), tt.action, torrent, "tracker.example.org", []Reason{ReasonRatio})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPauses, client.pauseCalls)
			assert.Equal(t, tt.wantDeletes, client.deleteCalls)
		})
	}
}

func TestDispatcherDryRunWithholdsActions(t *testing.T) {
	client := &fakeClient{}
	d := NewDispatcher(client, true)

	torrent := qbt.Torrent{Hash: "bbb222", Name: "ubuntu-24.04.iso"}
	for _, action := range []domain.Action{domain.ActionPause, domain.ActionRemove, domain.ActionRemoveData} {
		err := d.Dispatch(context.Background(), action, torrent, "", []Reason{ReasonSeedingTime, ReasonIdle})
		require.NoError(t, err)
	}

	assert.Empty(t, client.pauseCalls, "dry-run must never reach the client")
	assert.Empty(t, client.deleteCalls, "dry-run must never reach the client")

	records := d.Activity(0)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.True(t, rec.DryRun)
		assert.Equal(t, []string{"seeding_time", "idle"}, rec.Reasons)
	}
}

func TestDispatcherRecordsBeforeActionFails(t *testing.T) {
	client := &fakeClient{pauseErr: fmt.Errorf("torrent gone")}
	d := NewDispatcher(client, false)

	err := d.Dispatch(context.Background(), domain.ActionPause, qbt.Torrent{Hash: "ccc333"}, "", []Reason{ReasonRatio})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not pause torrent ccc333")

	// The audit entry reflects the attempt even when the client rejected it.
	require.Len(t, d.Activity(0), 1)
}

func TestDispatcherRejectsUnknownAction(t *testing.T) {
	d := NewDispatcher(&fakeClient{}, false)

	err := d.Dispatch(context.Background(), domain.Action("defenestrate"), qbt.Torrent{Hash: "ddd444"}, "", []Reason{ReasonRatio})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestDispatcherHistoryCapAndActivityLimit(t *testing.T) {
	d := NewDispatcher(&fakeClient{}, true)
	d.historyCap = 5

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := 0
	d.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}

	for n := 0; n < 8; n++ {
		hash := fmt.Sprintf("hash-%d", n)
		err := d.Dispatch(context.Background(), domain.ActionPause, qbt.Torrent{Hash: hash}, "", []Reason{ReasonRatio})
		require.NoError(t, err)
	}

	all := d.Activity(0)
	require.Len(t, all, 5, "history keeps only the newest entries")
	assert.Equal(t, "hash-3", all[0].Hash)
	assert.Equal(t, "hash-7", all[4].Hash)

	limited := d.Activity(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "hash-6", limited[0].Hash)
	assert.Equal(t, "hash-7", limited[1].Hash)

	// Returned slices are copies.
	limited[0].Hash = "mutated"
	assert.Equal(t, "hash-6", d.Activity(2)[0].Hash)
}
