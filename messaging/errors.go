// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
)

// ErrAccessDenied marks a platform refusal (missing permission,
// revoked access). Callers match it with errors.Is and treat the
// resource as skippable rather than failing the whole run.
var ErrAccessDenied = errors.New("access denied")

// ErrNotFound marks a channel or thread that no longer exists.
var ErrNotFound = errors.New("not found")

// PlatformError wraps a platform API failure with the operation that
// produced it.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }
