// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"io"
	"time"

	"github.com/amanda-project/amanda/lib/ref"
)

// Member is a guild member with the role set used for permission
// checks.
type Member struct {
	UserID      ref.UserID
	DisplayName string
	Roles       []ref.RoleID
}

// Message is one message in a thread, normalized for export: mentions
// already replaced with display names, attachments reduced to URLs.
type Message struct {
	AuthorID    ref.UserID
	AuthorName  string
	Content     string
	Attachments []string
	CreatedAt   time.Time
}

// ThreadEdit describes a partial update to a thread. Nil fields are
// left untouched. Reason, when set, is recorded in the platform's
// audit log.
type ThreadEdit struct {
	Name     *string
	Locked   *bool
	Archived *bool
	Reason   string
}

// Thread is a ticket thread. Name, Locked, Archived and
// ArchiveTimestamp reflect the state at fetch time; Edit does not
// refresh them.
type Thread interface {
	ID() ref.ThreadID
	Name() string
	ParentName() string
	Locked() bool
	Archived() bool

	// ArchiveTimestamp returns when the thread was archived. The
	// second return is false when the platform reported no timestamp.
	ArchiveTimestamp() (time.Time, bool)

	// Messages returns the thread's full history, oldest first.
	Messages(ctx context.Context) ([]Message, error)

	// Edit applies a partial update to the thread.
	Edit(ctx context.Context, edit ThreadEdit) error

	// SendMessage posts a plain text message to the thread.
	SendMessage(ctx context.Context, text string) error
}

// Channel is a text channel whose threads hold tickets.
type Channel interface {
	ID() ref.ChannelID
	Name() string

	// ArchivedThreads returns every archived thread of the channel,
	// paging through the platform's listing until exhausted.
	ArchivedThreads(ctx context.Context) ([]Thread, error)

	// SendMessage posts a plain text message to the channel.
	SendMessage(ctx context.Context, text string) error

	// SendFile uploads a file to the channel.
	SendFile(ctx context.Context, name string, content io.Reader) error
}

// Client is a connected chat-platform session.
type Client interface {
	// BotUser returns the bot's own user id, used to exclude its
	// messages from exports.
	BotUser() ref.UserID

	Channel(ctx context.Context, id ref.ChannelID) (Channel, error)
	Thread(ctx context.Context, id ref.ThreadID) (Thread, error)

	// Member resolves a guild member and their roles.
	Member(ctx context.Context, guild ref.GuildID, user ref.UserID) (Member, error)
}
