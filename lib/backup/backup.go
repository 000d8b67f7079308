// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package backup runs the daily export job: once a day, every guild's
// connected channels are exported and the bundle is delivered to the
// guild's command channel. One guild's failure never blocks the rest.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/extraction"
	"github.com/amanda-project/amanda/lib/guildstate"
	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/retry"
	"github.com/amanda-project/amanda/lib/schedule"
)

// Exporter is the slice of the extraction engine the runner needs.
type Exporter interface {
	ExportGuild(ctx context.Context, guild ref.GuildID, targets []ref.ChannelID, forceAll bool) (extraction.Stats, string, error)
}

// Deliverer sends run results to a guild's command channel.
type Deliverer interface {
	SendText(ctx context.Context, channel ref.ChannelID, text string) error
	SendBundle(ctx context.Context, channel ref.ChannelID, path string) error
}

// Runner fires the export job on a daily schedule.
type Runner struct {
	state     *guildstate.Manager
	engine    Exporter
	deliverer Deliverer
	clock     clock.Clock
	logger    *slog.Logger
	schedule  schedule.Daily
	attempts  int
	delay     time.Duration
}

// NewRunner creates a Runner. attempts and delay bound the per-guild
// export retry.
func NewRunner(state *guildstate.Manager, engine Exporter, deliverer Deliverer,
	clk clock.Clock, logger *slog.Logger, daily schedule.Daily,
	attempts int, delay time.Duration) *Runner {
	return &Runner{
		state:     state,
		engine:    engine,
		deliverer: deliverer,
		clock:     clk,
		logger:    logger,
		schedule:  daily,
		attempts:  attempts,
		delay:     delay,
	}
}

// Run blocks, firing RunOnce at each scheduled time, until ctx is
// canceled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		now := r.clock.Now()
		next := r.schedule.Next(now)
		r.logger.Info("next backup scheduled", "at", next)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(next.Sub(now)):
		}
		r.RunOnce(ctx)
	}
}

// RunOnce exports every known guild. Guilds without a command channel
// are skipped: there is nowhere to deliver the bundle.
func (r *Runner) RunOnce(ctx context.Context) {
	guilds, err := r.state.Store().Guilds()
	if err != nil {
		r.logger.Error("listing guilds for backup", "error", err)
		return
	}
	for _, guild := range guilds {
		if ctx.Err() != nil {
			return
		}
		if err := r.runGuild(ctx, guild); err != nil {
			r.logger.Error("guild backup failed", "guild", guild, "error", err)
		}
	}
}

func (r *Runner) runGuild(ctx context.Context, guild ref.GuildID) error {
	cfg, err := r.state.Config(guild)
	if err != nil {
		return err
	}
	if cfg.CommandChannelID == "" {
		r.logger.Info("guild has no command channel, skipping backup", "guild", guild)
		return nil
	}

	var stats extraction.Stats
	var bundle string
	err = retry.Do(ctx, r.clock, r.attempts, r.delay, func(ctx context.Context) error {
		var exportErr error
		stats, bundle, exportErr = r.engine.ExportGuild(ctx, guild, nil, false)
		return exportErr
	})
	if err != nil {
		return err
	}

	if bundle == "" {
		return r.deliverer.SendText(ctx, cfg.CommandChannelID,
			"Backup diário: nenhum tópico novo para arquivar.")
	}
	defer os.Remove(bundle)
	if err := r.deliverer.SendBundle(ctx, cfg.CommandChannelID, bundle); err != nil {
		return fmt.Errorf("delivering bundle: %w", err)
	}
	return r.deliverer.SendText(ctx, cfg.CommandChannelID,
		fmt.Sprintf("Backup diário concluído: %d tópico(s) de %d canal(is).", stats.Threads, stats.Channels))
}
