// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package guildstate provides the typed repositories over the raw
// document store: guild configuration, the category taxonomy, the
// pending-approval and resolution ledgers, and the audit log.
//
// Every mutation is a read-modify-write under the guild's lock:
// reload the current document, apply a pure mutation, persist, return
// the new value. No caller assigns document fields outside this path.
// Read accessors skip the lock and may observe a document one write
// stale, which is harmless because writes never depend on a previous
// unlocked read.
package guildstate
