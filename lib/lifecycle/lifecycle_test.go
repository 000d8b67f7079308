// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/guildstate"
	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/lib/store"
	"github.com/amanda-project/amanda/messaging"
)

const (
	testGuild   = ref.GuildID("500")
	testChannel = ref.ChannelID("ch-1")
	testThread  = ref.ThreadID("th-1")
	approvalCh  = ref.ChannelID("ch-approvals")
)

type recordingNotifier struct {
	calls []schema.PendingApproval
	err   error
}

func (n *recordingNotifier) PostApprovalRequest(ctx context.Context, guild ref.GuildID,
	channel ref.ChannelID, thread ref.ThreadID, entry schema.PendingApproval) error {
	n.calls = append(n.calls, entry)
	return n.err
}

type fixture struct {
	machine  *Machine
	state    *guildstate.Manager
	thread   *messaging.FakeThread
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.Open(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.Fake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	state := guildstate.NewManager(s, clk, logger)

	thread := &messaging.FakeThread{
		ThreadID:   testThread,
		ThreadName: "impressora quebrada",
		Parent:     "suporte-ti",
	}
	client := &messaging.FakeClient{
		Bot: "bot-user",
		Channels: map[ref.ChannelID]*messaging.FakeChannel{
			testChannel: {ChannelID: testChannel, ChanName: "suporte-ti", Threads: []*messaging.FakeThread{thread}},
			approvalCh:  {ChannelID: approvalCh, ChanName: "aprovacoes"},
		},
	}
	notifier := &recordingNotifier{}

	_, err = state.UpdateConfig(testGuild, func(c *schema.GuildConfig) {
		c.AdminRoleID = "role-admin"
		c.ApprovalChannelID = approvalCh
		c.Perms[schema.PermResolve] = []ref.RoleID{"role-support"}
		c.Perms[schema.PermApprove] = []ref.RoleID{"role-lead"}
		c.Perms[schema.PermReopen] = []ref.RoleID{"role-lead"}
	})
	if err != nil {
		t.Fatal(err)
	}

	machine := NewMachine(state, client, notifier, clk, logger)
	return &fixture{machine: machine, state: state, thread: thread, notifier: notifier}
}

func supportMember() messaging.Member {
	return messaging.Member{UserID: "user-ana", DisplayName: "ana", Roles: []ref.RoleID{"role-support"}}
}

func leadMember() messaging.Member {
	return messaging.Member{UserID: "user-bia", DisplayName: "bia", Roles: []ref.RoleID{"role-lead"}}
}

func TestRequestResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.machine.RequestResolution(ctx, testGuild, testThread, supportMember(), "Hardware", "TI")
	if err != nil {
		t.Fatalf("RequestResolution: %v", err)
	}

	pending, ok, err := f.state.Pending(testGuild, testThread)
	if err != nil || !ok {
		t.Fatalf("pending entry missing: ok=%v err=%v", ok, err)
	}
	if pending.ThreadName != "impressora quebrada" || pending.Category != "Hardware" || pending.Org != "TI" {
		t.Errorf("pending = %+v", pending)
	}
	if pending.ResolvedByID != "user-ana" {
		t.Errorf("ResolvedByID = %q", pending.ResolvedByID)
	}

	if len(f.notifier.calls) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(f.notifier.calls))
	}

	if got := f.thread.Name(); got != "OK - impressora quebrada" {
		t.Errorf("thread name = %q", got)
	}
	if !f.thread.Locked() {
		t.Error("thread not locked")
	}
	if f.thread.Archived() {
		t.Error("thread archived before approval")
	}
}

func TestRequestResolutionRequiresApprovalChannel(t *testing.T) {
	f := newFixture(t)
	_, err := f.state.UpdateConfig(testGuild, func(c *schema.GuildConfig) {
		c.ApprovalChannelID = ""
	})
	if err != nil {
		t.Fatal(err)
	}

	err = f.machine.RequestResolution(context.Background(), testGuild, testThread, supportMember(), "Hardware", "TI")
	if !errors.Is(err, ErrApprovalChannelUnset) {
		t.Fatalf("err = %v, want ErrApprovalChannelUnset", err)
	}
}

func TestRequestResolutionPermissionDenied(t *testing.T) {
	f := newFixture(t)
	intruder := messaging.Member{UserID: "user-x", DisplayName: "x", Roles: []ref.RoleID{"role-random"}}

	err := f.machine.RequestResolution(context.Background(), testGuild, testThread, intruder, "Hardware", "TI")
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError", err)
	}
	if permErr.Perm != schema.PermResolve {
		t.Errorf("denied perm = %q", permErr.Perm)
	}
	if _, ok, _ := f.state.Pending(testGuild, testThread); ok {
		t.Error("pending entry recorded despite denial")
	}
}

func TestAdminRoleBypassesPermissions(t *testing.T) {
	f := newFixture(t)
	admin := messaging.Member{UserID: "user-root", DisplayName: "root", Roles: []ref.RoleID{"role-admin"}}

	err := f.machine.RequestResolution(context.Background(), testGuild, testThread, admin, "Hardware", "TI")
	if err != nil {
		t.Fatalf("admin request: %v", err)
	}
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.machine.RequestResolution(ctx, testGuild, testThread, supportMember(), "Hardware", "TI"); err != nil {
		t.Fatal(err)
	}
	if err := f.machine.Approve(ctx, testGuild, testThread, leadMember()); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, ok, _ := f.state.Pending(testGuild, testThread); ok {
		t.Error("pending entry survived approval")
	}
	resolution, ok, err := f.state.Resolution(testGuild, testThread)
	if err != nil || !ok {
		t.Fatalf("resolution missing: ok=%v err=%v", ok, err)
	}
	if resolution.ThreadName != "impressora quebrada" || resolution.Category != "Hardware" {
		t.Errorf("resolution = %+v", resolution)
	}
	if !f.thread.Locked() || !f.thread.Archived() {
		t.Errorf("thread locked=%v archived=%v, want both", f.thread.Locked(), f.thread.Archived())
	}
}

func TestApproveWithoutPending(t *testing.T) {
	f := newFixture(t)
	err := f.machine.Approve(context.Background(), testGuild, testThread, leadMember())
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("err = %v, want ErrNotPending", err)
	}
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.machine.RequestResolution(ctx, testGuild, testThread, supportMember(), "Hardware", "TI"); err != nil {
		t.Fatal(err)
	}
	if err := f.machine.Reject(ctx, testGuild, testThread, leadMember()); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if _, ok, _ := f.state.Pending(testGuild, testThread); ok {
		t.Error("pending entry survived rejection")
	}
	if _, ok, _ := f.state.Resolution(testGuild, testThread); ok {
		t.Error("rejection produced a resolution record")
	}
	if got := f.thread.Name(); got != "OK - impressora quebrada" {
		t.Errorf("thread name after reject = %q, want marker kept", got)
	}
	if !f.thread.Locked() || !f.thread.Archived() {
		t.Error("rejected thread not closed")
	}
}

func TestReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.machine.RequestResolution(ctx, testGuild, testThread, supportMember(), "Hardware", "TI"); err != nil {
		t.Fatal(err)
	}
	if err := f.machine.Approve(ctx, testGuild, testThread, leadMember()); err != nil {
		t.Fatal(err)
	}
	if err := f.machine.Reopen(ctx, testGuild, testThread, leadMember()); err != nil {
		t.Fatalf("Reopen: %v", err)
	}

	if _, ok, _ := f.state.Resolution(testGuild, testThread); ok {
		t.Error("resolution survived reopen")
	}
	if f.thread.Locked() || f.thread.Archived() {
		t.Errorf("thread locked=%v archived=%v after reopen, want open", f.thread.Locked(), f.thread.Archived())
	}
	if got := f.thread.Name(); got != "impressora quebrada" {
		t.Errorf("thread name after reopen = %q", got)
	}
}

// Reopening a thread that was never closed clears nothing but still
// succeeds and unlocks the thread.
func TestReopenIsIdempotent(t *testing.T) {
	f := newFixture(t)
	if err := f.machine.Reopen(context.Background(), testGuild, testThread, leadMember()); err != nil {
		t.Fatalf("Reopen on open thread: %v", err)
	}
}

// A rename swallowed by the platform must not block the transition:
// the flags still land, the name stays, and the call succeeds.
func TestRenameTimeoutFallsBackToFlags(t *testing.T) {
	f := newFixture(t)
	f.machine.SetEditBudget(10 * time.Millisecond)
	f.thread.RenameErr = context.DeadlineExceeded

	err := f.machine.RequestResolution(context.Background(), testGuild, testThread, supportMember(), "Hardware", "TI")
	if err != nil {
		t.Fatalf("RequestResolution with stuck rename: %v", err)
	}

	if got := f.thread.Name(); got != "impressora quebrada" {
		t.Errorf("thread name = %q, want unchanged", got)
	}
	if !f.thread.Locked() {
		t.Error("thread not locked after fallback")
	}
	if len(f.thread.Sent) == 0 {
		t.Error("no fallback notice posted to thread")
	}
	if _, ok, _ := f.state.Pending(testGuild, testThread); !ok {
		t.Error("pending entry missing after fallback")
	}
}

// A thread that auto-archived before the request must come back: the
// request keeps it visible for review.
func TestRequestResolutionUnarchivesThread(t *testing.T) {
	f := newFixture(t)
	f.thread.IsArchived = true
	f.thread.ArchivedAt = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	if err := f.machine.RequestResolution(context.Background(), testGuild, testThread, supportMember(), "Hardware", "TI"); err != nil {
		t.Fatalf("RequestResolution: %v", err)
	}
	if f.thread.Archived() {
		t.Error("thread still archived while awaiting review")
	}
	if !f.thread.Locked() {
		t.Error("thread not locked")
	}
	if got := f.thread.Name(); got != "OK - impressora quebrada" {
		t.Errorf("thread name = %q", got)
	}
}

// Archived threads cannot be renamed while staying archived; the edit
// drops the rename instead of failing.
func TestEditSkipsRenameOnArchivedThread(t *testing.T) {
	f := newFixture(t)
	f.thread.IsArchived = true
	f.thread.ArchivedAt = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	// Fail any rename attempt so a non-skipped rename is visible.
	f.thread.RenameErr = errors.New("rename on archived thread")

	err := f.state.PutPending(testGuild, testThread, schema.PendingApproval{
		ThreadName: "impressora quebrada",
		Category:   "Hardware",
		Org:        "TI",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.machine.Approve(context.Background(), testGuild, testThread, leadMember()); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !f.thread.Locked() || !f.thread.Archived() {
		t.Errorf("thread locked=%v archived=%v, want both", f.thread.Locked(), f.thread.Archived())
	}
	if got := f.thread.Name(); got != "impressora quebrada" {
		t.Errorf("thread name = %q, want rename skipped", got)
	}
}
