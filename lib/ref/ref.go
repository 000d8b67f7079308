// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref defines the typed identifiers shared across Amanda
// packages. Discord identifies everything by snowflake; distinct Go
// types keep a guild id from being passed where a thread id is
// expected. All types serialize as plain strings.
package ref

// GuildID identifies a Discord guild (a tenant). Every persisted
// document is scoped by exactly one GuildID.
type GuildID string

// ChannelID identifies a text channel within a guild.
type ChannelID string

// ThreadID identifies a discussion thread within a channel.
type ThreadID string

// UserID identifies a Discord user.
type UserID string

// RoleID identifies a guild role. Permission tables map permission
// keys to sets of RoleIDs.
type RoleID string

func (id GuildID) String() string   { return string(id) }
func (id ChannelID) String() string { return string(id) }
func (id ThreadID) String() string  { return string(id) }
func (id UserID) String() string    { return string(id) }
func (id RoleID) String() string    { return string(id) }

// IsNumeric reports whether s looks like a Discord snowflake: a
// non-empty string of ASCII digits. Used to filter guild data
// directories from stray files.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
