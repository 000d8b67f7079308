// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amanda-project/amanda/lib/clock"
)

func TestFirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), clock.Fake(time.Unix(0, 0)), 3, time.Second,
		func(context.Context) error {
			calls++
			return nil
		})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetriesUntilSuccess(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(context.Background(), clk, 3, 2*time.Second, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
	}()

	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)
	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)

	if err := <-done; err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExhaustionWrapsLastError(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	final := errors.New("still broken")
	done := make(chan error, 1)
	go func() {
		done <- Do(context.Background(), clk, 3, time.Second, func(context.Context) error {
			return final
		})
	}()

	for i := 0; i < 2; i++ {
		clk.BlockUntil(1)
		clk.Advance(time.Second)
	}

	err := <-done
	if !errors.Is(err, final) {
		t.Fatalf("err = %v, want wrapped %v", err, final)
	}
}

func TestCancellationStopsRetries(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, clk, 5, time.Minute, func(context.Context) error {
			return errors.New("transient")
		})
	}()

	clk.BlockUntil(1)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
