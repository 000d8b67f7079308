// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/codec"
	"github.com/amanda-project/amanda/lib/extraction"
	"github.com/amanda-project/amanda/lib/guildstate"
	"github.com/amanda-project/amanda/lib/ipc"
	"github.com/amanda-project/amanda/lib/lifecycle"
	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/messaging"
)

// controlActions owns the handlers behind the control socket. Ticket
// transitions go through the same lifecycle machine as everything
// else, so permission checks apply to operators too.
type controlActions struct {
	state   *guildstate.Manager
	machine *lifecycle.Machine
	engine  *extraction.Engine
	client  messaging.Client
	clock   clock.Clock
	started time.Time
	version string
}

func (a *controlActions) register(server *ipc.Server) {
	server.Handle("status", a.status)
	server.Handle("pending", a.pending)
	server.Handle("resolve", a.resolve)
	server.Handle("approve", a.approve)
	server.Handle("reject", a.reject)
	server.Handle("reopen", a.reopen)
	server.Handle("export", a.export)
}

// ticketRequest is the common parameter shape of the ticket actions.
type ticketRequest struct {
	Guild  ref.GuildID  `cbor:"guild"`
	Thread ref.ThreadID `cbor:"thread"`
	Actor  ref.UserID   `cbor:"actor"`

	// Category and Org are only read by the resolve action.
	Category string `cbor:"category"`
	Org      string `cbor:"org"`
}

func decodeTicketRequest(raw []byte) (ticketRequest, error) {
	var request ticketRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("invalid parameters: %w", err)
	}
	if request.Guild == "" || request.Thread == "" || request.Actor == "" {
		return request, fmt.Errorf("guild, thread and actor are required")
	}
	return request, nil
}

func (a *controlActions) member(ctx context.Context, guild ref.GuildID, user ref.UserID) (messaging.Member, error) {
	member, err := a.client.Member(ctx, guild, user)
	if err != nil {
		return messaging.Member{}, fmt.Errorf("resolving actor: %w", err)
	}
	return member, nil
}

func (a *controlActions) status(ctx context.Context, raw []byte) (any, error) {
	guilds, err := a.state.Store().Guilds()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"version": a.version,
		"guilds":  len(guilds),
		"uptime":  a.clock.Now().Sub(a.started).Round(time.Second).String(),
	}, nil
}

func (a *controlActions) pending(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		Guild ref.GuildID `cbor:"guild"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if request.Guild == "" {
		return nil, fmt.Errorf("guild is required")
	}
	ledger, err := a.state.PendingAll(request.Guild)
	if err != nil {
		return nil, err
	}
	return map[string]schema.PendingLedger{"pending": ledger}, nil
}

func (a *controlActions) resolve(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeTicketRequest(raw)
	if err != nil {
		return nil, err
	}
	if request.Category == "" || request.Org == "" {
		return nil, fmt.Errorf("category and org are required")
	}
	actor, err := a.member(ctx, request.Guild, request.Actor)
	if err != nil {
		return nil, err
	}
	return nil, a.machine.RequestResolution(ctx, request.Guild, request.Thread, actor,
		request.Category, request.Org)
}

func (a *controlActions) approve(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeTicketRequest(raw)
	if err != nil {
		return nil, err
	}
	actor, err := a.member(ctx, request.Guild, request.Actor)
	if err != nil {
		return nil, err
	}
	return nil, a.machine.Approve(ctx, request.Guild, request.Thread, actor)
}

func (a *controlActions) reject(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeTicketRequest(raw)
	if err != nil {
		return nil, err
	}
	actor, err := a.member(ctx, request.Guild, request.Actor)
	if err != nil {
		return nil, err
	}
	return nil, a.machine.Reject(ctx, request.Guild, request.Thread, actor)
}

func (a *controlActions) reopen(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeTicketRequest(raw)
	if err != nil {
		return nil, err
	}
	actor, err := a.member(ctx, request.Guild, request.Actor)
	if err != nil {
		return nil, err
	}
	return nil, a.machine.Reopen(ctx, request.Guild, request.Thread, actor)
}

// export runs an extraction pass immediately. The bundle stays in the
// scratch directory for the operator to pick up.
func (a *controlActions) export(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		Guild    ref.GuildID     `cbor:"guild"`
		Channels []ref.ChannelID `cbor:"channels"`
		ForceAll bool            `cbor:"force_all"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if request.Guild == "" {
		return nil, fmt.Errorf("guild is required")
	}
	stats, bundle, err := a.engine.ExportGuild(ctx, request.Guild, request.Channels, request.ForceAll)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"channels": stats.Channels,
		"threads":  stats.Threads,
		"bundle":   bundle,
	}, nil
}
