// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/amanda-project/amanda/lib/codec"
)

// Call sends one control request and decodes the data field of the
// response into out (which may be nil when no payload is expected).
// A response with ok=false becomes an error carrying the server's
// message.
func Call(ctx context.Context, socketPath string, request any, out any) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if !response.OK {
		return errors.New(response.Error)
	}
	if out != nil && response.Data != nil {
		if err := codec.Unmarshal(response.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}
