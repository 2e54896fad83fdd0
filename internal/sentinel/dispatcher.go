// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sentinel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedwatch/internal/domain"
)

const defaultHistorySize = 200

// actionClient is the slice of the qBittorrent API the dispatcher drives.
type actionClient interface {
	PauseCtx(ctx context.Context, hashes []string) error
	DeleteTorrentsCtx(ctx context.Context, hashes []string, deleteFiles bool) error
}

// AuditRecord is one enforced (or dry-run) action, kept in a bounded
// in-memory history for the activity endpoint.
type AuditRecord struct {
	Action      domain.Action `json:"action"`
	Hash        string        `json:"hash"`
	Name        string        `json:"name"`
	TrackerHost string        `json:"trackerHost,omitempty"`
	Reasons     []string      `json:"reasons"`
	DryRun      bool          `json:"dryRun"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Dispatcher turns evaluation results into qBittorrent API calls and keeps
// the audit trail. In dry-run mode every action is logged and recorded but
// nothing is sent to the client.
type Dispatcher struct {
	client actionClient
	dryRun bool
	now    func() time.Time

	historyMu  sync.RWMutex
	history    []AuditRecord
	historyCap int
}

func NewDispatcher(client actionClient, dryRun bool) *Dispatcher {
	return &Dispatcher{
		client:     client,
		dryRun:     dryRun,
		now:        time.Now,
		historyCap: defaultHistorySize,
	}
}

// DryRun reports whether the dispatcher withholds actions.
func (d *Dispatcher) DryRun() bool {
	return d.dryRun
}

// Dispatch applies the policy action to one torrent and records the audit
// entry. The audit line carries the action, hash, name, tracker host (or "-")
// and the comma-joined reasons.
func (d *Dispatcher) Dispatch(ctx context.Context, action domain.Action, torrent qbt.Torrent, host string, reasons []Reason) error {
	rec := AuditRecord{
		Action:      action,
		Hash:        torrent.Hash,
		Name:        torrent.Name,
		TrackerHost: host,
		Reasons:     reasonStrings(reasons),
		DryRun:      d.dryRun,
		Timestamp:   d.now(),
	}
	d.record(rec)
	d.logAudit(rec)

	if d.dryRun {
		return nil
	}

	var err error
	switch action {
	case domain.ActionPause:
		err = d.client.PauseCtx(ctx, []string{torrent.Hash})
	case domain.ActionRemove:
		err = d.client.DeleteTorrentsCtx(ctx, []string{torrent.Hash}, false)
	case domain.ActionRemoveData:
		err = d.client.DeleteTorrentsCtx(ctx, []string{torrent.Hash}, true)
	default:
		return errors.Errorf("unknown action %q", action)
	}
	if err != nil {
		return errors.Wrapf(err, "could not %s torrent %s", action, torrent.Hash)
	}
	return nil
}

func (d *Dispatcher) logAudit(rec AuditRecord) {
	host := rec.TrackerHost
	if host == "" {
		host = "-"
	}

	line := fmt.Sprintf("%s | %s | %s | %s | %s",
		strings.ToUpper(string(rec.Action)), rec.Hash, rec.Name, host, strings.Join(rec.Reasons, ","))
	if rec.DryRun {
		line = "DRY-RUN " + line
	}

	log.Info().
		Str("action", string(rec.Action)).
		Str("hash", rec.Hash).
		Str("trackerHost", host).
		Strs("reasons", rec.Reasons).
		Bool("dryRun", rec.DryRun).
		Msg(line)
}

func (d *Dispatcher) record(rec AuditRecord) {
	d.historyMu.Lock()
	defer d.historyMu.Unlock()

	d.history = append(d.history, rec)
	if len(d.history) > d.historyCap {
		d.history = d.history[len(d.history)-d.historyCap:]
	}
}

// Activity returns the most recent audit records, newest last.
func (d *Dispatcher) Activity(limit int) []AuditRecord {
	d.historyMu.RLock()
	defer d.historyMu.RUnlock()

	recs := d.history
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}

	out := make([]AuditRecord, len(recs))
	copy(out, recs)
	return out
}
