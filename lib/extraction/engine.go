// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/guildstate"
	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/messaging"
)

// Engine exports closed ticket threads to transcript bundles.
type Engine struct {
	state       *guildstate.Manager
	client      messaging.Client
	clock       clock.Clock
	logger      *slog.Logger
	scratchDir  string
	compression Tag
}

// NewEngine creates an Engine writing its scratch trees and bundles
// under scratchDir.
func NewEngine(state *guildstate.Manager, client messaging.Client, clk clock.Clock,
	logger *slog.Logger, scratchDir string, compression Tag) *Engine {
	return &Engine{
		state:       state,
		client:      client,
		clock:       clk,
		logger:      logger,
		scratchDir:  scratchDir,
		compression: compression,
	}
}

// Stats summarizes one export run. Channels counts only channels that
// contributed at least one thread.
type Stats struct {
	Channels int
	Threads  int
}

// ExportGuild runs one export pass over the guild. A nil targets slice
// means every connected channel; forceAll ignores watermarks and
// re-exports everything eligible. The returned bundle path is empty
// when nothing exported. The caller owns (and removes) the bundle.
func (e *Engine) ExportGuild(ctx context.Context, guild ref.GuildID,
	targets []ref.ChannelID, forceAll bool) (Stats, string, error) {

	cfg, err := e.state.Config(guild)
	if err != nil {
		return Stats{}, "", err
	}

	channels := targets
	if channels == nil {
		for id := range cfg.ConnectedChannels {
			channels = append(channels, id)
		}
		slices.Sort(channels)
	}
	if len(channels) == 0 {
		return Stats{}, "", nil
	}

	// Resolutions are snapshotted once: a ticket approved mid-run is
	// picked up by the next run.
	resolutions, err := e.state.Resolutions(guild)
	if err != nil {
		return Stats{}, "", err
	}

	runStart := e.clock.Now().UTC()
	root := filepath.Join(e.scratchDir, fmt.Sprintf("%s_%s", guild, runStart.Format("150405")))

	var stats Stats
	for _, channelID := range channels {
		if err := ctx.Err(); err != nil {
			os.RemoveAll(root)
			return stats, "", err
		}
		exported, err := e.exportChannel(ctx, guild, cfg, channelID, resolutions, root, forceAll)
		if err != nil {
			// One broken channel (revoked access, deleted channel)
			// must not sink the rest of the run.
			e.logger.Warn("channel export skipped",
				"guild", guild, "channel", channelID, "error", err)
			continue
		}
		if exported == 0 {
			continue
		}
		stats.Channels++
		stats.Threads += exported

		// Advance the watermark to the run start, not to now: threads
		// archived while the run was in flight stay ahead of it.
		_, err = e.state.UpdateConfig(guild, func(c *schema.GuildConfig) {
			if _, ok := c.ConnectedChannels[channelID]; ok {
				c.ConnectedChannels[channelID] = schema.ChannelMarker{LastMarkerTimestamp: runStart}
			}
		})
		if err != nil {
			os.RemoveAll(root)
			return stats, "", fmt.Errorf("advancing watermark for %s: %w", channelID, err)
		}
	}

	if stats.Threads == 0 {
		os.RemoveAll(root)
		return stats, "", nil
	}

	bundlePath, err := Bundle(root, e.compression)
	os.RemoveAll(root)
	if err != nil {
		return stats, "", err
	}
	e.logger.Info("export run finished",
		"guild", guild, "channels", stats.Channels, "threads", stats.Threads, "bundle", bundlePath)
	return stats, bundlePath, nil
}

// exportChannel writes transcripts for every eligible thread of one
// channel and returns how many it exported.
func (e *Engine) exportChannel(ctx context.Context, guild ref.GuildID, cfg schema.GuildConfig,
	channelID ref.ChannelID, resolutions schema.ResolutionLedger, root string, forceAll bool) (int, error) {

	channel, err := e.client.Channel(ctx, channelID)
	if err != nil {
		return 0, err
	}
	threads, err := channel.ArchivedThreads(ctx)
	if err != nil {
		return 0, err
	}

	var watermark time.Time
	if !forceAll {
		watermark = cfg.ConnectedChannels[channelID].LastMarkerTimestamp
	}

	channelDir := filepath.Join(root, schema.FileSafeName(channel.Name()))
	exported := 0
	for _, thread := range threads {
		if !thread.Locked() {
			continue
		}
		archivedAt, ok := thread.ArchiveTimestamp()
		if !ok {
			continue
		}
		if !watermark.IsZero() && !archivedAt.After(watermark) {
			continue
		}
		// No resolution record means the closure was never approved;
		// the thread stays out of the archive no matter its flags.
		resolution, ok := resolutions[thread.ID()]
		if !ok {
			continue
		}
		if err := e.exportThread(ctx, thread, resolution, channelDir); err != nil {
			if errors.Is(err, errNoMessages) {
				continue
			}
			e.logger.Warn("thread export skipped",
				"guild", guild, "thread", thread.ID(), "error", err)
			continue
		}
		exported++
	}
	return exported, nil
}

var errNoMessages = errors.New("thread has no exportable messages")

func (e *Engine) exportThread(ctx context.Context, thread messaging.Thread,
	resolution schema.Resolution, channelDir string) error {

	history, err := thread.Messages(ctx)
	if err != nil {
		return err
	}
	messages := history[:0:0]
	for _, message := range history {
		if message.AuthorID == e.client.BotUser() {
			continue
		}
		messages = append(messages, message)
	}
	if len(messages) == 0 {
		return errNoMessages
	}

	transcript := Transcript(Context{
		Origin:   thread.ParentName(),
		Name:     thread.Name(),
		Org:      resolution.Org,
		Category: resolution.Category,
		ID:       thread.ID(),
	}, messages)

	if err := os.MkdirAll(channelDir, 0o755); err != nil {
		return err
	}
	fileName := fmt.Sprintf("topico_%s.txt", schema.FileSafeName(thread.Name()))
	return os.WriteFile(filepath.Join(channelDir, fileName), []byte(transcript), 0o644)
}
