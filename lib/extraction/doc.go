// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package extraction turns closed ticket threads into plain-text
// transcripts and bundles them for delivery. A thread is exported only
// when it is locked, archived with a timestamp newer than its
// channel's watermark, and backed by a resolution record. Watermarks
// advance per channel, and only after at least one thread in that
// channel exported, so a failed run re-exports rather than skips.
package extraction
