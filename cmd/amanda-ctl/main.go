// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Command amanda-ctl drives the service's control socket. Ticket
// decisions made here pass through the same permission checks as any
// other path, so the actor flag must name a guild member with the
// required role.
//
// Usage:
//
//	amanda-ctl [flags] status
//	amanda-ctl [flags] pending --guild ID
//	amanda-ctl [flags] resolve --guild ID --thread ID --actor ID --org NAME --category NAME
//	amanda-ctl [flags] approve|reject|reopen --guild ID --thread ID --actor ID
//	amanda-ctl [flags] export --guild ID [--channel ID]... [--force-all]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/amanda-project/amanda/lib/ipc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		socketPath string
		guild      string
		thread     string
		actor      string
		category   string
		org        string
		channels   []string
		forceAll   bool
		timeout    time.Duration
	)
	pflag.StringVar(&socketPath, "socket", "./amanda.sock", "path to the service control socket")
	pflag.StringVar(&guild, "guild", "", "guild id")
	pflag.StringVar(&thread, "thread", "", "thread id")
	pflag.StringVar(&actor, "actor", "", "acting member's user id")
	pflag.StringVar(&category, "category", "", "ticket category (resolve)")
	pflag.StringVar(&org, "org", "", "ticket organization (resolve)")
	pflag.StringArrayVar(&channels, "channel", nil, "restrict export to this channel (repeatable)")
	pflag.BoolVar(&forceAll, "force-all", false, "export everything, ignoring watermarks")
	pflag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	pflag.Parse()

	if pflag.NArg() != 1 {
		return fmt.Errorf("exactly one action expected, got %d", pflag.NArg())
	}
	action := pflag.Arg(0)

	request := map[string]any{"action": action}
	switch action {
	case "status":
	case "pending":
		request["guild"] = guild
	case "resolve":
		request["guild"] = guild
		request["thread"] = thread
		request["actor"] = actor
		request["category"] = category
		request["org"] = org
	case "approve", "reject", "reopen":
		request["guild"] = guild
		request["thread"] = thread
		request["actor"] = actor
	case "export":
		request["guild"] = guild
		request["force_all"] = forceAll
		if len(channels) > 0 {
			request["channels"] = channels
		}
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var result map[string]any
	if err := ipc.Call(ctx, socketPath, request, &result); err != nil {
		return err
	}
	if result == nil {
		fmt.Println("ok")
		return nil
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
