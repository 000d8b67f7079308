// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/guildstate"
	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/messaging"
)

// DefaultEditBudget bounds how long a thread rename may take before
// the machine gives up on the name and applies the rest of the edit.
// Renames hit a platform rate limit of a couple per ten minutes, and a
// throttled rename can hang for the whole window.
const DefaultEditBudget = 5 * time.Second

// ErrNotPending is returned by Approve and Reject when the thread has
// no pending resolution request.
var ErrNotPending = errors.New("thread has no pending resolution request")

// ErrApprovalChannelUnset is returned by RequestResolution while the
// guild has not configured an approval channel.
var ErrApprovalChannelUnset = errors.New("approval channel not configured")

// PermissionError reports a member lacking the role required for an
// operation.
type PermissionError struct {
	User ref.UserID
	Perm schema.PermissionKey
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s lacks permission %q", e.User, e.Perm)
}

// Notifier posts resolution requests for review. The service wires an
// implementation that writes to the guild's approval channel.
type Notifier interface {
	PostApprovalRequest(ctx context.Context, guild ref.GuildID, channel ref.ChannelID,
		thread ref.ThreadID, entry schema.PendingApproval) error
}

// Machine drives ticket transitions. The guildstate ledgers are the
// source of truth; platform-side thread edits are a projection that is
// allowed to lag (see editWithFallback).
type Machine struct {
	state      *guildstate.Manager
	client     messaging.Client
	notifier   Notifier
	clock      clock.Clock
	logger     *slog.Logger
	editBudget time.Duration
}

// NewMachine creates a Machine with the default edit budget.
func NewMachine(state *guildstate.Manager, client messaging.Client, notifier Notifier,
	clk clock.Clock, logger *slog.Logger) *Machine {
	return &Machine{
		state:      state,
		client:     client,
		notifier:   notifier,
		clock:      clk,
		logger:     logger,
		editBudget: DefaultEditBudget,
	}
}

// SetEditBudget overrides the rename budget. Tests use this to avoid
// waiting out the default.
func (m *Machine) SetEditBudget(budget time.Duration) { m.editBudget = budget }

// Authorize checks a member against the guild's permission table.
// Admin-role holders pass every check; otherwise the member needs at
// least one role from the key's list.
func Authorize(cfg schema.GuildConfig, member messaging.Member, perm schema.PermissionKey) error {
	if cfg.AdminRoleID != "" && slices.Contains(member.Roles, cfg.AdminRoleID) {
		return nil
	}
	for _, role := range cfg.Perms[perm] {
		if slices.Contains(member.Roles, role) {
			return nil
		}
	}
	return &PermissionError{User: member.UserID, Perm: perm}
}

// RequestResolution marks a thread as awaiting closure approval: it
// records the pending entry, posts the request to the approval
// channel, and renames and locks the thread.
func (m *Machine) RequestResolution(ctx context.Context, guild ref.GuildID,
	threadID ref.ThreadID, actor messaging.Member, category, org string) error {

	cfg, err := m.state.Config(guild)
	if err != nil {
		return err
	}
	if err := Authorize(cfg, actor, schema.PermResolve); err != nil {
		return err
	}
	if cfg.ApprovalChannelID == "" {
		return ErrApprovalChannelUnset
	}

	thread, err := m.client.Thread(ctx, threadID)
	if err != nil {
		return err
	}

	entry := schema.PendingApproval{
		RequestedAt:       m.clock.Now().UTC(),
		ThreadName:        StripDoneMarker(thread.Name()),
		SourceChannelName: thread.ParentName(),
		ResolvedByName:    actor.DisplayName,
		ResolvedByID:      actor.UserID,
		Category:          category,
		Org:               org,
	}
	if err := m.state.PutPending(guild, threadID, entry); err != nil {
		return err
	}

	if err := m.notifier.PostApprovalRequest(ctx, guild, cfg.ApprovalChannelID, threadID, entry); err != nil {
		// The pending ledger already has the entry; reviewers can
		// still find it through the pending listing.
		m.logger.Warn("approval notification failed",
			"guild", guild, "thread", threadID, "error", err)
	}

	// Archived is forced off: the thread stays visible while the
	// request awaits review, even if it had auto-archived meanwhile.
	edit := messaging.ThreadEdit{
		Name:     pointer(EnsureDoneMarker(thread.Name())),
		Locked:   pointer(true),
		Archived: pointer(false),
		Reason:   fmt.Sprintf("resolução solicitada por %s", actor.DisplayName),
	}
	if err := m.editWithFallback(ctx, thread, edit); err != nil {
		return err
	}

	return m.state.AppendLog(guild, "resolucao_solicitada", actor.DisplayName,
		fmt.Sprintf("tópico %s (%s/%s)", entry.ThreadName, org, category))
}

// Approve converts a pending request into a durable resolution record
// and closes the thread. Only resolved threads are ever exported.
func (m *Machine) Approve(ctx context.Context, guild ref.GuildID,
	threadID ref.ThreadID, actor messaging.Member) error {

	cfg, err := m.state.Config(guild)
	if err != nil {
		return err
	}
	if err := Authorize(cfg, actor, schema.PermApprove); err != nil {
		return err
	}

	pending, ok, err := m.state.Pending(guild, threadID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	resolution := schema.Resolution{
		ResolvedAt:     m.clock.Now().UTC(),
		ThreadName:     pending.ThreadName,
		ResolvedByName: pending.ResolvedByName,
		ResolvedByID:   pending.ResolvedByID,
		Category:       pending.Category,
		Org:            pending.Org,
	}
	// Resolution lands before the pending entry is removed: a crash in
	// between leaves both records, and a repeat approval simply
	// overwrites the resolution.
	if err := m.state.PutResolution(guild, threadID, resolution); err != nil {
		return err
	}
	if _, err := m.state.RemovePending(guild, threadID); err != nil {
		return err
	}

	thread, err := m.client.Thread(ctx, threadID)
	if err != nil {
		return err
	}
	edit := messaging.ThreadEdit{
		Locked:   pointer(true),
		Archived: pointer(true),
		Reason:   fmt.Sprintf("resolução aprovada por %s", actor.DisplayName),
	}
	if !HasDoneMarker(thread.Name()) {
		edit.Name = pointer(EnsureDoneMarker(thread.Name()))
	}
	if err := m.editWithFallback(ctx, thread, edit); err != nil {
		return err
	}

	return m.state.AppendLog(guild, "resolucao_aprovada", actor.DisplayName,
		fmt.Sprintf("tópico %s", pending.ThreadName))
}

// Reject discards a pending request. The thread is closed without a
// resolution record, so the extraction engine never exports it.
func (m *Machine) Reject(ctx context.Context, guild ref.GuildID,
	threadID ref.ThreadID, actor messaging.Member) error {

	cfg, err := m.state.Config(guild)
	if err != nil {
		return err
	}
	if err := Authorize(cfg, actor, schema.PermApprove); err != nil {
		return err
	}

	pending, ok, err := m.state.Pending(guild, threadID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}
	if _, err := m.state.RemovePending(guild, threadID); err != nil {
		return err
	}

	thread, err := m.client.Thread(ctx, threadID)
	if err != nil {
		return err
	}
	// The name keeps its done marker: a rejected thread is still a
	// processed thread, it just never becomes archivable.
	edit := messaging.ThreadEdit{
		Locked:   pointer(true),
		Archived: pointer(true),
		Reason:   fmt.Sprintf("resolução rejeitada por %s", actor.DisplayName),
	}
	if !HasDoneMarker(thread.Name()) {
		edit.Name = pointer(EnsureDoneMarker(thread.Name()))
	}
	if err := m.editWithFallback(ctx, thread, edit); err != nil {
		return err
	}

	return m.state.AppendLog(guild, "resolucao_rejeitada", actor.DisplayName,
		fmt.Sprintf("tópico %s", pending.ThreadName))
}

// Reopen clears any pending or resolution record for the thread and
// restores it to an open state. Reopening a thread that was never
// closed is a no-op on the ledgers and still unlocks the thread.
func (m *Machine) Reopen(ctx context.Context, guild ref.GuildID,
	threadID ref.ThreadID, actor messaging.Member) error {

	cfg, err := m.state.Config(guild)
	if err != nil {
		return err
	}
	if err := Authorize(cfg, actor, schema.PermReopen); err != nil {
		return err
	}

	if _, err := m.state.RemovePending(guild, threadID); err != nil {
		return err
	}
	if _, err := m.state.RemoveResolution(guild, threadID); err != nil {
		return err
	}

	thread, err := m.client.Thread(ctx, threadID)
	if err != nil {
		return err
	}
	edit := messaging.ThreadEdit{
		Locked:   pointer(false),
		Archived: pointer(false),
		Reason:   fmt.Sprintf("reaberto por %s", actor.DisplayName),
	}
	if HasDoneMarker(thread.Name()) {
		edit.Name = pointer(StripDoneMarker(thread.Name()))
	}
	if err := m.editWithFallback(ctx, thread, edit); err != nil {
		return err
	}

	return m.state.AppendLog(guild, "topico_reaberto", actor.DisplayName,
		fmt.Sprintf("tópico %s", StripDoneMarker(thread.Name())))
}

// editWithFallback applies a thread edit, time-boxing the rename. A
// rename that exceeds the budget (platform rename rate limits throttle
// for up to ten minutes) is dropped and the remaining flags are
// applied on their own, so a transition never hangs on cosmetics.
func (m *Machine) editWithFallback(ctx context.Context, thread messaging.Thread, edit messaging.ThreadEdit) error {
	if edit.Name != nil && *edit.Name == thread.Name() {
		edit.Name = nil
	}
	// An archived thread that stays archived cannot be renamed.
	if edit.Name != nil && thread.Archived() && (edit.Archived == nil || *edit.Archived) {
		edit.Name = nil
	}
	if edit.Name == nil {
		if edit.Locked == nil && edit.Archived == nil {
			return nil
		}
		return thread.Edit(ctx, edit)
	}

	renameCtx, cancel := context.WithTimeout(ctx, m.editBudget)
	err := thread.Edit(renameCtx, edit)
	cancel()
	if err == nil {
		return nil
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	m.logger.Warn("thread rename timed out, applying flags without it",
		"thread", thread.ID(), "name", *edit.Name)
	fallback := edit
	fallback.Name = nil
	fallback.Reason = edit.Reason + " (fallback)"
	if err := thread.Edit(ctx, fallback); err != nil {
		return err
	}
	if sendErr := thread.SendMessage(ctx,
		"Não foi possível renomear o tópico agora (limite de renomeações); o estado foi atualizado mesmo assim."); sendErr != nil {
		m.logger.Warn("rename fallback notice failed", "thread", thread.ID(), "error", sendErr)
	}
	return nil
}

func pointer[T any](v T) *T { return &v }
