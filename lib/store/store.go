// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amanda-project/amanda/lib/ref"
)

// Store reads and writes per-guild JSON documents under a base
// directory. Layout: <base>/<guildID>/<file>.
type Store struct {
	base   string
	logger *slog.Logger
	locks  lockTable
}

// Open creates a Store rooted at base, creating the directory if
// needed.
func Open(base string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", base, err)
	}
	return &Store{base: base, logger: logger}, nil
}

// Base returns the root data directory.
func (s *Store) Base() string { return s.base }

// path returns <base>/<guild>/<name>.
func (s *Store) path(guild ref.GuildID, name string) string {
	return filepath.Join(s.base, guild.String(), name)
}

// Guilds enumerates the guild ids that have a data directory. Only
// directories with snowflake-shaped names count; anything else under
// the base directory is ignored.
func (s *Store) Guilds() ([]ref.GuildID, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return nil, fmt.Errorf("listing data directory %s: %w", s.base, err)
	}
	var guilds []ref.GuildID
	for _, entry := range entries {
		if entry.IsDir() && ref.IsNumeric(entry.Name()) {
			guilds = append(guilds, ref.GuildID(entry.Name()))
		}
	}
	return guilds, nil
}

// Load reads the named document for a guild. A missing file persists
// and returns defaultValue. A file that fails to parse returns
// defaultValue too: corruption is logged, never fatal, and the bad
// file is left in place for inspection until the next save replaces
// it.
func Load[T any](s *Store, guild ref.GuildID, name string, defaultValue T) (T, error) {
	path := s.path(guild, name)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := Save(s, guild, name, defaultValue); err != nil {
			return defaultValue, err
		}
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, fmt.Errorf("reading %s: %w", path, err)
	}

	var document T
	if err := json.Unmarshal(data, &document); err != nil {
		s.logger.Warn("corrupt document, substituting default",
			"guild", guild,
			"file", name,
			"error", err,
		)
		return defaultValue, nil
	}
	return document, nil
}

// Save writes the named document for a guild atomically: marshal,
// write to a temp file in the same directory, fsync, rename over the
// final path. A failed rename removes the temp file and surfaces the
// error.
func Save[T any](s *Store, guild ref.GuildID, name string, document T) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s for guild %s: %w", name, guild, err)
	}

	dir := filepath.Join(s.base, guild.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating guild directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("renaming %s into place: %w", tmpPath, err)
	}

	success = true
	return nil
}

// WithLock runs fn while holding the guild's exclusive lock. All
// read-modify-write cycles for a guild go through here; writers for
// different guilds never block each other.
func (s *Store) WithLock(guild ref.GuildID, fn func() error) error {
	lock := s.locks.guild(guild)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}
