// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord adapts a discordgo session to the messaging
// interfaces. All calls carry the caller's context and, where the
// platform supports it, an audit log reason.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/messaging"
)

// Client implements messaging.Client on a discordgo session. The
// session must be opened before use so the bot's own user is known.
type Client struct {
	session *discordgo.Session
	logger  *slog.Logger
}

var _ messaging.Client = (*Client)(nil)

// New wraps an opened session.
func New(session *discordgo.Session, logger *slog.Logger) *Client {
	return &Client{session: session, logger: logger}
}

// BotUser returns the bot's own user id.
func (c *Client) BotUser() ref.UserID {
	return ref.UserID(c.session.State.User.ID)
}

// Channel fetches a text channel.
func (c *Client) Channel(ctx context.Context, id ref.ChannelID) (messaging.Channel, error) {
	raw, err := c.session.Channel(string(id), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("fetch channel", err)
	}
	return &channel{client: c, raw: raw}, nil
}

// Thread fetches a thread and resolves its parent channel's name.
func (c *Client) Thread(ctx context.Context, id ref.ThreadID) (messaging.Thread, error) {
	raw, err := c.session.Channel(string(id), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("fetch thread", err)
	}
	if !raw.IsThread() {
		return nil, fmt.Errorf("channel %s is not a thread: %w", id, messaging.ErrNotFound)
	}
	parentName := ""
	if raw.ParentID != "" {
		parent, err := c.session.Channel(raw.ParentID, discordgo.WithContext(ctx))
		if err == nil {
			parentName = parent.Name
		} else {
			c.logger.Warn("parent channel lookup failed", "thread", id, "error", err)
		}
	}
	return &thread{client: c, raw: raw, parentName: parentName}, nil
}

// Member resolves a guild member and their roles.
func (c *Client) Member(ctx context.Context, guild ref.GuildID, user ref.UserID) (messaging.Member, error) {
	member, err := c.session.GuildMember(string(guild), string(user), discordgo.WithContext(ctx))
	if err != nil {
		return messaging.Member{}, wrapErr("fetch member", err)
	}
	roles := make([]ref.RoleID, len(member.Roles))
	for i, role := range member.Roles {
		roles[i] = ref.RoleID(role)
	}
	return messaging.Member{
		UserID:      user,
		DisplayName: memberDisplayName(member),
		Roles:       roles,
	}, nil
}

func memberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	return userDisplayName(member.User)
}

func userDisplayName(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// wrapErr translates platform failures into the messaging error
// vocabulary.
func wrapErr(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%s: %w", op, messaging.ErrAccessDenied)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, messaging.ErrNotFound)
		}
	}
	return &messaging.PlatformError{Op: op, Err: err}
}
