// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the per-guild documents Amanda persists and
// the rules for keeping them well-formed: schema defaults, additive
// migration of missing fields, the audit log cap, and the sanitization
// applied to user-supplied labels before they enter a document.
//
// One guild's data never references another guild's. Every document
// lives in its own JSON file under the guild's data directory; the
// file names here are a fixed on-disk contract shared with the
// original deployment.
package schema
