// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"time"

	"github.com/amanda-project/amanda/lib/ref"
)

// Document file names within a guild's data directory. These are a
// persisted contract: renaming one orphans existing deployments.
const (
	ConfigFile      = "config.json"
	TaxonomyFile    = "categorias.json"
	PendingFile     = "pendencias.json"
	ResolutionsFile = "resolucoes.json"
	LogFile         = "logs.json"
)

// PermissionKey names a guarded operation in a guild's permission
// table. The keys are fixed; guild admins assign role lists to them.
type PermissionKey string

const (
	// PermResolve gates requesting resolution of a ticket thread.
	PermResolve PermissionKey = "resolvido"

	// PermApprove gates approving or rejecting a pending resolution.
	PermApprove PermissionKey = "aprovar"

	// PermReopen gates reopening a closed ticket thread.
	PermReopen PermissionKey = "reabrir"

	// PermExportChannel gates manual export of a single channel.
	PermExportChannel PermissionKey = "extracao_canal"

	// PermExportAll gates manual export of every connected channel.
	PermExportAll PermissionKey = "extracao_tudo"
)

// PermissionKeys lists every key a guild's permission table carries.
// FillDefaults ensures each is present (with an empty role list) so
// older config documents migrate additively.
var PermissionKeys = []PermissionKey{
	PermResolve, PermApprove, PermReopen, PermExportChannel, PermExportAll,
}

// GuildConfig is the per-guild settings document (config.json).
// Mutated only through the lock-protected update path; never deleted,
// only overwritten.
type GuildConfig struct {
	// AdminRoleID is the master role: holders bypass every
	// permission check.
	AdminRoleID ref.RoleID `json:"admin_role_id,omitempty"`

	// CommandChannelID is where operational commands are accepted
	// and where the daily backup bundle is delivered.
	CommandChannelID ref.ChannelID `json:"command_channel_id,omitempty"`

	// CountdownChannelID is where the next-backup countdown message
	// lives. The countdown itself is presentation-layer concern;
	// the id is stored here so that layer has somewhere to look.
	CountdownChannelID ref.ChannelID `json:"countdown_channel_id,omitempty"`

	// ApprovalChannelID is where resolution requests are posted for
	// review. Requesting resolution fails while this is unset.
	ApprovalChannelID ref.ChannelID `json:"approval_channel_id,omitempty"`

	// ConnectedChannels maps each channel enrolled for archival to
	// its export watermark.
	ConnectedChannels map[ref.ChannelID]ChannelMarker `json:"connected_channels"`

	// Perms maps permission keys to the roles allowed to perform
	// the guarded operation.
	Perms map[PermissionKey][]ref.RoleID `json:"perms"`
}

// ChannelMarker tracks how far a channel's closed threads have been
// exported. LastMarkerTimestamp is monotonically non-decreasing and
// advances only after at least one thread in the channel exported
// successfully.
type ChannelMarker struct {
	LastMarkerTimestamp time.Time `json:"last_marker_timestamp,omitzero"`
}

// DefaultConfig returns a fresh default config document. A new value
// is built on every call so a caller mutating the result cannot alias
// another guild's defaults.
func DefaultConfig() GuildConfig {
	cfg := GuildConfig{
		ConnectedChannels: make(map[ref.ChannelID]ChannelMarker),
		Perms:             make(map[PermissionKey][]ref.RoleID, len(PermissionKeys)),
	}
	for _, key := range PermissionKeys {
		cfg.Perms[key] = []ref.RoleID{}
	}
	return cfg
}

// FillDefaults adds any top-level structure missing from an older
// document. Migration is additive only: nothing present is removed or
// rewritten. Reports whether the document changed.
func (c *GuildConfig) FillDefaults() bool {
	changed := false
	if c.ConnectedChannels == nil {
		c.ConnectedChannels = make(map[ref.ChannelID]ChannelMarker)
		changed = true
	}
	if c.Perms == nil {
		c.Perms = make(map[PermissionKey][]ref.RoleID, len(PermissionKeys))
		changed = true
	}
	for _, key := range PermissionKeys {
		if _, ok := c.Perms[key]; !ok {
			c.Perms[key] = []ref.RoleID{}
			changed = true
		}
	}
	return changed
}

// Taxonomy is the per-guild classification document (categorias.json):
// organizations with their category lists, and the set of teams that
// handle tickets.
type Taxonomy struct {
	Orgaos  map[string][]string `json:"orgaos"`
	Equipes []string            `json:"equipes"`
}

// DefaultTaxonomy returns a fresh default taxonomy. New deployments
// start with two generic teams.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Orgaos:  make(map[string][]string),
		Equipes: []string{"Geral", "TI"},
	}
}

// FillDefaults adds missing structure to an older taxonomy document.
// Reports whether the document changed.
func (t *Taxonomy) FillDefaults() bool {
	changed := false
	if t.Orgaos == nil {
		t.Orgaos = make(map[string][]string)
		changed = true
	}
	if t.Equipes == nil {
		t.Equipes = []string{"Geral", "TI"}
		changed = true
	}
	return changed
}

// PendingApproval records a ticket that requested closure and awaits
// a reviewer decision. At most one entry exists per thread; a repeat
// request overwrites the previous entry.
type PendingApproval struct {
	RequestedAt       time.Time  `json:"requested_at"`
	ThreadName        string     `json:"thread_name"`
	SourceChannelName string     `json:"source_channel_name"`
	ResolvedByName    string     `json:"resolved_by_name"`
	ResolvedByID      ref.UserID `json:"resolved_by_id"`
	Category          string     `json:"category"`
	Org               string     `json:"org"`
}

// PendingLedger is the pendencias.json document: pending approvals
// keyed by thread id.
type PendingLedger map[ref.ThreadID]PendingApproval

// Resolution is the durable proof that a ticket was approved. Its
// presence is the sole authorization for the thread to be archived by
// the extraction engine.
type Resolution struct {
	ResolvedAt     time.Time  `json:"resolved_at"`
	ThreadName     string     `json:"thread_name"`
	ResolvedByName string     `json:"resolved_by_name"`
	ResolvedByID   ref.UserID `json:"resolved_by_id"`
	Category       string     `json:"category"`
	Org            string     `json:"org"`
}

// ResolutionLedger is the resolucoes.json document: resolutions keyed
// by thread id.
type ResolutionLedger map[ref.ThreadID]Resolution

// MaxLogEntries bounds the audit log document. When the ledger grows
// past this, the oldest entries are dropped first.
const MaxLogEntries = 1000

// LogEntry is one append-only audit record (logs.json).
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
}
