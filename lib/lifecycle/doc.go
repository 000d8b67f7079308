// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle implements the ticket state machine: a thread
// requests resolution, a reviewer approves or rejects it, and a closed
// thread can later be reopened. The durable ledgers in guildstate are
// the source of truth for state; thread names and lock flags on the
// platform are a best-effort projection of it. A rename that the
// platform swallows never blocks a transition: the machine falls back
// to the same edit without the rename and the ledger still moves.
package lifecycle
