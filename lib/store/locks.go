// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"sync"

	"github.com/amanda-project/amanda/lib/ref"
)

// lockTable hands out one mutex per guild id. Locks are created
// lazily on first use and cached for the process lifetime; the set of
// guilds a process serves is small and stable, so the table never
// needs eviction.
type lockTable struct {
	mu    sync.Mutex
	locks map[ref.GuildID]*sync.Mutex
}

// guild returns the lock for the given guild, creating it if needed.
func (t *lockTable) guild(id ref.GuildID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = make(map[ref.GuildID]*sync.Mutex)
	}
	lock, ok := t.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[id] = lock
	}
	return lock
}
