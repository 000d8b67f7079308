// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance it deterministically.
// Any code path that a test exercises (watermark comparisons, retry
// delays, the daily backup schedule) takes a Clock instead of calling
// the time package directly.
package clock

import "time"

// Clock is the subset of the time package Amanda needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. If d <= 0 the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time

	// Sleep pauses the calling goroutine for at least duration d.
	Sleep(d time.Duration)
}
