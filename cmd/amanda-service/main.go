// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Command amanda-service runs the support-ticket archival service: it
// connects to the chat platform, fires the daily export job, and
// serves the control socket for operators.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/pflag"

	"github.com/amanda-project/amanda/lib/backup"
	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/config"
	"github.com/amanda-project/amanda/lib/extraction"
	"github.com/amanda-project/amanda/lib/guildstate"
	"github.com/amanda-project/amanda/lib/ipc"
	"github.com/amanda-project/amanda/lib/lifecycle"
	"github.com/amanda-project/amanda/lib/schedule"
	"github.com/amanda-project/amanda/lib/store"
	"github.com/amanda-project/amanda/messaging/discord"
)

// version is stamped by the release build.
var version = "devel"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		tokenFile   string
		showVersion bool
	)
	pflag.StringVar(&configPath, "config", "", "path to the YAML configuration file")
	pflag.StringVar(&tokenFile, "token-file", "", "file containing the bot token (default: AMANDA_TOKEN env var)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("amanda-service %s\n", version)
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	compression, err := extraction.ParseTag(cfg.Bundle.Compression)
	if err != nil {
		return err
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMembers
	if err := session.Open(); err != nil {
		return fmt.Errorf("connecting to gateway: %w", err)
	}
	defer session.Close()
	logger.Info("gateway session open", "user", session.State.User.ID)

	documents, err := store.Open(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	clk := clock.Real()
	client := discord.New(session, logger)
	state := guildstate.NewManager(documents, clk, logger)
	engine := extraction.NewEngine(state, client, clk, logger, cfg.ScratchDir, compression)
	machine := lifecycle.NewMachine(state, client, &approvalNotifier{client: client}, clk, logger)
	runner := backup.NewRunner(state, engine, backup.ChannelDeliverer{Client: client},
		clk, logger,
		schedule.Daily{Hour: cfg.Backup.Hour, Minute: cfg.Backup.Minute, Location: cfg.Location()},
		cfg.Backup.RetryAttempts, cfg.Backup.RetryDelay.Std())

	control := ipc.NewServer(cfg.SocketPath, logger)
	actions := &controlActions{
		state:   state,
		machine: machine,
		engine:  engine,
		client:  client,
		clock:   clk,
		started: clk.Now(),
		version: version,
	}
	actions.register(control)

	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		runner.Run(ctx)
	}()

	logger.Info("amanda service running",
		"data_dir", cfg.DataDir,
		"socket", cfg.SocketPath,
		"backup_at", fmt.Sprintf("%02d:%02d", cfg.Backup.Hour, cfg.Backup.Minute),
	)

	if err := control.Serve(ctx); err != nil {
		logger.Error("control socket failed", "error", err)
	}
	<-runnerDone
	logger.Info("shutdown complete")
	return nil
}

// loadToken reads the bot token from the given file, falling back to
// the AMANDA_TOKEN environment variable.
func loadToken(tokenFile string) (string, error) {
	if tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return "", fmt.Errorf("reading token file: %w", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("token file %s is empty", tokenFile)
		}
		return token, nil
	}
	if token := os.Getenv("AMANDA_TOKEN"); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("no token: pass --token-file or set AMANDA_TOKEN")
}
