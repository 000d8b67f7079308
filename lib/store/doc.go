// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists one JSON document per (guild, file) pair
// with crash-safe writes and per-guild mutual exclusion.
//
// Writes go through a temp file in the target directory, an fsync,
// and an atomic rename, so a reader never observes a half-written
// document. A document that fails to parse is treated as corruption:
// the schema default is substituted and the incident logged, never
// surfaced as an error. Losing one guild's settings to a bad sector
// must not take the service down.
//
// The lock manager hands out one mutex per guild id, created lazily
// and cached for the process lifetime. Every read-modify-write runs
// under the guild's lock; plain reads skip it and tolerate observing
// a slightly stale document, which is safe because all domain writes
// re-read under the lock before writing.
package store
