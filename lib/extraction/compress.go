// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import "fmt"

// Tag selects the bundle compression algorithm.
type Tag uint8

const (
	// TagNone produces a plain tar bundle.
	TagNone Tag = iota

	// TagLZ4 favors speed over ratio.
	TagLZ4

	// TagZstd is the default: near-LZ4 speed at a better ratio.
	TagZstd
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagLZ4:
		return "lz4"
	case TagZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Extension returns the file suffix for bundles written with this tag.
func (t Tag) Extension() string {
	switch t {
	case TagLZ4:
		return ".tar.lz4"
	case TagZstd:
		return ".tar.zst"
	default:
		return ".tar"
	}
}

// ParseTag parses a configuration string into a Tag.
func ParseTag(s string) (Tag, error) {
	switch s {
	case "none":
		return TagNone, nil
	case "lz4":
		return TagLZ4, nil
	case "zstd":
		return TagZstd, nil
	default:
		return TagNone, fmt.Errorf("unknown compression %q", s)
	}
}
