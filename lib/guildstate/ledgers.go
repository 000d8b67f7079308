// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package guildstate

import (
	"maps"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/lib/store"
)

// PutPending records a pending approval for a thread, overwriting any
// previous entry for the same thread.
func (m *Manager) PutPending(guild ref.GuildID, thread ref.ThreadID, entry schema.PendingApproval) error {
	_, err := update(m, guild, schema.PendingFile, schema.PendingLedger{}, nil,
		func(ledger *schema.PendingLedger) {
			if *ledger == nil {
				*ledger = schema.PendingLedger{}
			}
			(*ledger)[thread] = entry
		})
	return err
}

// Pending returns the pending approval for a thread, if any.
func (m *Manager) Pending(guild ref.GuildID, thread ref.ThreadID) (schema.PendingApproval, bool, error) {
	ledger, err := store.Load(m.store, guild, schema.PendingFile, schema.PendingLedger{})
	if err != nil {
		return schema.PendingApproval{}, false, err
	}
	entry, ok := ledger[thread]
	return entry, ok, nil
}

// PendingAll returns a copy of the guild's pending ledger.
func (m *Manager) PendingAll(guild ref.GuildID) (schema.PendingLedger, error) {
	ledger, err := store.Load(m.store, guild, schema.PendingFile, schema.PendingLedger{})
	if err != nil {
		return nil, err
	}
	return maps.Clone(ledger), nil
}

// RemovePending deletes a thread's pending entry. Absence is not an
// error; the second return reports whether an entry was removed.
func (m *Manager) RemovePending(guild ref.GuildID, thread ref.ThreadID) (bool, error) {
	removed := false
	_, err := update(m, guild, schema.PendingFile, schema.PendingLedger{}, nil,
		func(ledger *schema.PendingLedger) {
			if _, ok := (*ledger)[thread]; ok {
				delete(*ledger, thread)
				removed = true
			}
		})
	return removed, err
}

// PutResolution records (or overwrites) the resolution for a thread.
// From this point the thread is eligible for archival.
func (m *Manager) PutResolution(guild ref.GuildID, thread ref.ThreadID, entry schema.Resolution) error {
	_, err := update(m, guild, schema.ResolutionsFile, schema.ResolutionLedger{}, nil,
		func(ledger *schema.ResolutionLedger) {
			if *ledger == nil {
				*ledger = schema.ResolutionLedger{}
			}
			(*ledger)[thread] = entry
		})
	return err
}

// Resolution returns the resolution record for a thread, if any.
func (m *Manager) Resolution(guild ref.GuildID, thread ref.ThreadID) (schema.Resolution, bool, error) {
	ledger, err := store.Load(m.store, guild, schema.ResolutionsFile, schema.ResolutionLedger{})
	if err != nil {
		return schema.Resolution{}, false, err
	}
	entry, ok := ledger[thread]
	return entry, ok, nil
}

// Resolutions returns a copy of the guild's resolution ledger. The
// extraction engine snapshots this once per run.
func (m *Manager) Resolutions(guild ref.GuildID) (schema.ResolutionLedger, error) {
	ledger, err := store.Load(m.store, guild, schema.ResolutionsFile, schema.ResolutionLedger{})
	if err != nil {
		return nil, err
	}
	return maps.Clone(ledger), nil
}

// RemoveResolution deletes a thread's resolution record (reopen).
// Absence is not an error.
func (m *Manager) RemoveResolution(guild ref.GuildID, thread ref.ThreadID) (bool, error) {
	removed := false
	_, err := update(m, guild, schema.ResolutionsFile, schema.ResolutionLedger{}, nil,
		func(ledger *schema.ResolutionLedger) {
			if _, ok := (*ledger)[thread]; ok {
				delete(*ledger, thread)
				removed = true
			}
		})
	return removed, err
}

// AppendLog appends an audit entry, dropping the oldest entries past
// the ledger cap.
func (m *Manager) AppendLog(guild ref.GuildID, action, actor, details string) error {
	entry := schema.LogEntry{
		Timestamp: m.clock.Now(),
		Action:    action,
		Actor:     actor,
		Details:   details,
	}
	_, err := update(m, guild, schema.LogFile, []schema.LogEntry{}, nil,
		func(entries *[]schema.LogEntry) {
			*entries = append(*entries, entry)
			if excess := len(*entries) - schema.MaxLogEntries; excess > 0 {
				*entries = (*entries)[excess:]
			}
		})
	return err
}

// Logs returns the guild's audit log, newest last.
func (m *Manager) Logs(guild ref.GuildID) ([]schema.LogEntry, error) {
	return store.Load(m.store, guild, schema.LogFile, []schema.LogEntry{})
}
