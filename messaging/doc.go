// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging defines the chat-platform surface the rest of the
// system depends on: channels, their archived threads, and the small
// set of edits the ticket lifecycle performs. Platform adapters (see
// messaging/discord) implement these interfaces; tests use the fakes
// in fake.go.
package messaging
