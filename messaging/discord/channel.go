// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/messaging"
)

// listPageSize is the platform's maximum page size for thread and
// message listings.
const listPageSize = 100

type channel struct {
	client *Client
	raw    *discordgo.Channel
}

var _ messaging.Channel = (*channel)(nil)

func (c *channel) ID() ref.ChannelID { return ref.ChannelID(c.raw.ID) }
func (c *channel) Name() string      { return c.raw.Name }

// ArchivedThreads pages through the channel's archived threads, newest
// first, until the platform reports no more.
func (c *channel) ArchivedThreads(ctx context.Context) ([]messaging.Thread, error) {
	var threads []messaging.Thread
	var before *time.Time
	for {
		page, err := c.client.session.ThreadsArchived(c.raw.ID, before, listPageSize,
			discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapErr("list archived threads", err)
		}
		for _, raw := range page.Threads {
			threads = append(threads, &thread{client: c.client, raw: raw, parentName: c.raw.Name})
			if raw.ThreadMetadata != nil {
				timestamp := raw.ThreadMetadata.ArchiveTimestamp
				if before == nil || timestamp.Before(*before) {
					before = &timestamp
				}
			}
		}
		if !page.HasMore || len(page.Threads) == 0 {
			return threads, nil
		}
	}
}

func (c *channel) SendMessage(ctx context.Context, text string) error {
	_, err := c.client.session.ChannelMessageSend(c.raw.ID, text, discordgo.WithContext(ctx))
	if err != nil {
		return wrapErr("send message", err)
	}
	return nil
}

func (c *channel) SendFile(ctx context.Context, name string, content io.Reader) error {
	_, err := c.client.session.ChannelFileSend(c.raw.ID, name, content, discordgo.WithContext(ctx))
	if err != nil {
		return wrapErr("send file", err)
	}
	return nil
}
