// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package retry provides a bounded retry executor for platform calls
// that fail transiently.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
)

// Do runs op up to attempts times, sleeping delay between failures.
// It returns nil on the first success. The sleep is interruptible: a
// canceled context returns ctx.Err() without further attempts. The
// final failure is wrapped with the attempt count.
func Do(ctx context.Context, clk clock.Clock, attempts int, delay time.Duration, op func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(delay):
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
