// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/messaging"
)

type thread struct {
	client     *Client
	raw        *discordgo.Channel
	parentName string
}

var _ messaging.Thread = (*thread)(nil)

func (t *thread) ID() ref.ThreadID   { return ref.ThreadID(t.raw.ID) }
func (t *thread) Name() string       { return t.raw.Name }
func (t *thread) ParentName() string { return t.parentName }

func (t *thread) Locked() bool {
	return t.raw.ThreadMetadata != nil && t.raw.ThreadMetadata.Locked
}

func (t *thread) Archived() bool {
	return t.raw.ThreadMetadata != nil && t.raw.ThreadMetadata.Archived
}

func (t *thread) ArchiveTimestamp() (time.Time, bool) {
	if t.raw.ThreadMetadata == nil || t.raw.ThreadMetadata.ArchiveTimestamp.IsZero() {
		return time.Time{}, false
	}
	return t.raw.ThreadMetadata.ArchiveTimestamp, true
}

// Messages fetches the full history, oldest first. The platform pages
// newest first, so pages are collected and reversed.
func (t *thread) Messages(ctx context.Context) ([]messaging.Message, error) {
	var collected []messaging.Message
	beforeID := ""
	for {
		page, err := t.client.session.ChannelMessages(t.raw.ID, listPageSize,
			beforeID, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapErr("fetch messages", err)
		}
		if len(page) == 0 {
			break
		}
		for _, raw := range page {
			collected = append(collected, convertMessage(raw))
		}
		beforeID = page[len(page)-1].ID
		if len(page) < listPageSize {
			break
		}
	}
	slices.Reverse(collected)
	return collected, nil
}

// convertMessage normalizes a platform message: mention markup is
// replaced with display names and attachments reduced to URLs.
func convertMessage(raw *discordgo.Message) messaging.Message {
	attachments := make([]string, 0, len(raw.Attachments))
	for _, attachment := range raw.Attachments {
		attachments = append(attachments, attachment.URL)
	}
	name := userDisplayName(raw.Author)
	if raw.Member != nil && raw.Member.Nick != "" {
		name = raw.Member.Nick
	}
	var authorID ref.UserID
	if raw.Author != nil {
		authorID = ref.UserID(raw.Author.ID)
	}
	return messaging.Message{
		AuthorID:    authorID,
		AuthorName:  name,
		Content:     raw.ContentWithMentionsReplaced(),
		Attachments: attachments,
		CreatedAt:   raw.Timestamp,
	}
}

// Edit applies a partial update. The audit reason rides along when the
// platform call supports it.
func (t *thread) Edit(ctx context.Context, edit messaging.ThreadEdit) error {
	data := &discordgo.ChannelEdit{
		Locked:   edit.Locked,
		Archived: edit.Archived,
	}
	if edit.Name != nil {
		data.Name = *edit.Name
	}
	options := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if edit.Reason != "" {
		options = append(options, discordgo.WithAuditLogReason(edit.Reason))
	}
	updated, err := t.client.session.ChannelEdit(t.raw.ID, data, options...)
	if err != nil {
		return wrapErr("edit thread", err)
	}
	t.raw = updated
	return nil
}

func (t *thread) SendMessage(ctx context.Context, text string) error {
	_, err := t.client.session.ChannelMessageSend(t.raw.ID, text, discordgo.WithContext(ctx))
	if err != nil {
		return wrapErr("send message", err)
	}
	return nil
}
