// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amanda-project/amanda/lib/codec"
)

func startServer(t *testing.T, register func(*Server)) string {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "control.sock")
	server := NewServer(socketPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	register(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})

	// Wait for the socket to appear.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := Call(context.Background(), socketPath, map[string]string{"action": "ping"}, nil); err == nil ||
			!strings.Contains(err.Error(), "dialing") {
			return socketPath
		}
		if time.Now().After(deadline) {
			t.Fatal("socket never came up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRoundTrip(t *testing.T) {
	socketPath := startServer(t, func(s *Server) {
		s.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
			var request struct {
				Echo string `cbor:"echo"`
			}
			if err := codec.Unmarshal(raw, &request); err != nil {
				return nil, err
			}
			return map[string]string{"echo": request.Echo}, nil
		})
	})

	var out struct {
		Echo string `cbor:"echo"`
	}
	err := Call(context.Background(), socketPath,
		map[string]string{"action": "ping", "echo": "oi"}, &out)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out.Echo != "oi" {
		t.Fatalf("echo = %q", out.Echo)
	}
}

func TestHandlerErrorBecomesCallError(t *testing.T) {
	socketPath := startServer(t, func(s *Server) {
		s.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
			return nil, errors.New("ticket não encontrado")
		})
		s.Handle("boom", func(ctx context.Context, raw []byte) (any, error) {
			return nil, errors.New("broken")
		})
	})

	err := Call(context.Background(), socketPath, map[string]string{"action": "boom"}, nil)
	if err == nil || err.Error() != "broken" {
		t.Fatalf("err = %v, want handler message", err)
	}
}

func TestUnknownAction(t *testing.T) {
	socketPath := startServer(t, func(s *Server) {
		s.Handle("ping", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
	})

	err := Call(context.Background(), socketPath, map[string]string{"action": "nope"}, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("err = %v, want unknown action", err)
	}
}

func TestMissingAction(t *testing.T) {
	socketPath := startServer(t, func(s *Server) {
		s.Handle("ping", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
	})

	err := Call(context.Background(), socketPath, map[string]string{"other": "x"}, nil)
	if err == nil || !strings.Contains(err.Error(), "action") {
		t.Fatalf("err = %v, want missing action error", err)
	}
}
