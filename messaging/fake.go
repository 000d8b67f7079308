// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/amanda-project/amanda/lib/ref"
)

// FakeThread is an in-memory Thread for tests. Successful edits are
// applied to its state and recorded in Edits; RenameErr, when set,
// is returned by any Edit that carries a rename.
type FakeThread struct {
	mu sync.Mutex

	ThreadID    ref.ThreadID
	ThreadName  string
	Parent      string
	IsLocked    bool
	IsArchived  bool
	ArchivedAt  time.Time
	History     []Message
	MessagesErr error

	// RenameErr makes edits that set Name fail without applying,
	// simulating a rename swallowed by the platform's rate limiter.
	RenameErr error

	Edits []ThreadEdit
	Sent  []string
}

var _ Thread = (*FakeThread)(nil)

func (t *FakeThread) ID() ref.ThreadID { return t.ThreadID }

func (t *FakeThread) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ThreadName
}

func (t *FakeThread) ParentName() string { return t.Parent }

func (t *FakeThread) Locked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.IsLocked
}

func (t *FakeThread) Archived() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.IsArchived
}

func (t *FakeThread) ArchiveTimestamp() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ArchivedAt, !t.ArchivedAt.IsZero()
}

func (t *FakeThread) Messages(ctx context.Context) ([]Message, error) {
	if t.MessagesErr != nil {
		return nil, t.MessagesErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.History))
	copy(out, t.History)
	return out, nil
}

func (t *FakeThread) Edit(ctx context.Context, edit ThreadEdit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if edit.Name != nil && t.RenameErr != nil {
		return t.RenameErr
	}
	t.Edits = append(t.Edits, edit)
	if edit.Name != nil {
		t.ThreadName = *edit.Name
	}
	if edit.Locked != nil {
		t.IsLocked = *edit.Locked
	}
	if edit.Archived != nil {
		t.IsArchived = *edit.Archived
	}
	return nil
}

func (t *FakeThread) SendMessage(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent = append(t.Sent, text)
	return nil
}

// FakeChannel is an in-memory Channel for tests.
type FakeChannel struct {
	mu sync.Mutex

	ChannelID ref.ChannelID
	ChanName  string
	Threads   []*FakeThread

	Sent  []string
	Files []string
}

var _ Channel = (*FakeChannel)(nil)

func (c *FakeChannel) ID() ref.ChannelID { return c.ChannelID }
func (c *FakeChannel) Name() string      { return c.ChanName }

func (c *FakeChannel) ArchivedThreads(ctx context.Context) ([]Thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Thread
	for _, thread := range c.Threads {
		if thread.Archived() {
			out = append(out, thread)
		}
	}
	return out, nil
}

func (c *FakeChannel) SendMessage(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, text)
	return nil
}

func (c *FakeChannel) SendFile(ctx context.Context, name string, content io.Reader) error {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Files = append(c.Files, name)
	return nil
}

// FakeClient is an in-memory Client for tests.
type FakeClient struct {
	Bot      ref.UserID
	Channels map[ref.ChannelID]*FakeChannel
	Members  map[ref.UserID]Member

	// Denied channels return ErrAccessDenied from Channel.
	Denied map[ref.ChannelID]bool
}

var _ Client = (*FakeClient)(nil)

func (c *FakeClient) BotUser() ref.UserID { return c.Bot }

func (c *FakeClient) Channel(ctx context.Context, id ref.ChannelID) (Channel, error) {
	if c.Denied[id] {
		return nil, fmt.Errorf("channel %s: %w", id, ErrAccessDenied)
	}
	channel, ok := c.Channels[id]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", id, ErrNotFound)
	}
	return channel, nil
}

func (c *FakeClient) Thread(ctx context.Context, id ref.ThreadID) (Thread, error) {
	for _, channel := range c.Channels {
		for _, thread := range channel.Threads {
			if thread.ThreadID == id {
				return thread, nil
			}
		}
	}
	return nil, fmt.Errorf("thread %s: %w", id, ErrNotFound)
}

func (c *FakeClient) Member(ctx context.Context, guild ref.GuildID, user ref.UserID) (Member, error) {
	member, ok := c.Members[user]
	if !ok {
		return Member{}, fmt.Errorf("member %s: %w", user, ErrNotFound)
	}
	return member, nil
}
