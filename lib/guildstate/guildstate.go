// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package guildstate

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/amanda-project/amanda/lib/clock"
	"github.com/amanda-project/amanda/lib/ref"
	"github.com/amanda-project/amanda/lib/schema"
	"github.com/amanda-project/amanda/lib/store"
)

// Manager is the single access point for a guild's persisted state.
type Manager struct {
	store  *store.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewManager creates a Manager over the given store.
func NewManager(s *store.Store, clk clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{store: s, clock: clk, logger: logger}
}

// Store exposes the underlying document store (guild enumeration for
// the daily job).
func (m *Manager) Store() *store.Store { return m.store }

// update is the one mutation path: reload under the guild lock, fill
// schema defaults, apply the mutator, persist.
func update[T any](m *Manager, guild ref.GuildID, file string, defaultValue T,
	fill func(*T) bool, mutate func(*T)) (T, error) {

	var result T
	err := m.store.WithLock(guild, func() error {
		document, err := store.Load(m.store, guild, file, defaultValue)
		if err != nil {
			return err
		}
		if fill != nil {
			fill(&document)
		}
		mutate(&document)
		if err := store.Save(m.store, guild, file, document); err != nil {
			return err
		}
		result = document
		return nil
	})
	return result, err
}

// Config returns the guild's configuration, filling any missing
// top-level structure with schema defaults. When the fill changed the
// document, the filled version is persisted through the update path
// so the migration happens exactly once.
func (m *Manager) Config(guild ref.GuildID) (schema.GuildConfig, error) {
	cfg, err := store.Load(m.store, guild, schema.ConfigFile, schema.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	if cfg.FillDefaults() {
		return m.UpdateConfig(guild, func(*schema.GuildConfig) {})
	}
	return cfg, nil
}

// UpdateConfig applies a mutation to the guild's configuration under
// the guild lock and returns the new document.
func (m *Manager) UpdateConfig(guild ref.GuildID, mutate func(*schema.GuildConfig)) (schema.GuildConfig, error) {
	return update(m, guild, schema.ConfigFile, schema.DefaultConfig(),
		(*schema.GuildConfig).FillDefaults, mutate)
}

// Taxonomy returns the guild's category taxonomy with defaults filled.
func (m *Manager) Taxonomy(guild ref.GuildID) (schema.Taxonomy, error) {
	tax, err := store.Load(m.store, guild, schema.TaxonomyFile, schema.DefaultTaxonomy())
	if err != nil {
		return tax, err
	}
	if tax.FillDefaults() {
		return m.UpdateTaxonomy(guild, func(*schema.Taxonomy) {})
	}
	return tax, nil
}

// UpdateTaxonomy applies a mutation to the guild's taxonomy under the
// guild lock and returns the new document.
func (m *Manager) UpdateTaxonomy(guild ref.GuildID, mutate func(*schema.Taxonomy)) (schema.Taxonomy, error) {
	return update(m, guild, schema.TaxonomyFile, schema.DefaultTaxonomy(),
		(*schema.Taxonomy).FillDefaults, mutate)
}

// AddOrg inserts a sanitized organization name with an empty category
// list. Returns the sanitized name actually stored.
func (m *Manager) AddOrg(guild ref.GuildID, name string) (string, error) {
	clean := schema.SanitizeLabel(name)
	if clean == "" {
		return "", fmt.Errorf("org name %q is empty after sanitization", name)
	}
	_, err := m.UpdateTaxonomy(guild, func(t *schema.Taxonomy) {
		if _, ok := t.Orgaos[clean]; !ok {
			t.Orgaos[clean] = []string{}
		}
	})
	return clean, err
}

// RemoveOrg deletes an organization and all its categories.
func (m *Manager) RemoveOrg(guild ref.GuildID, name string) error {
	_, err := m.UpdateTaxonomy(guild, func(t *schema.Taxonomy) {
		delete(t.Orgaos, name)
	})
	return err
}

// AddCategory inserts a sanitized category under an existing org.
func (m *Manager) AddCategory(guild ref.GuildID, org, category string) (string, error) {
	clean := schema.SanitizeLabel(category)
	if clean == "" {
		return "", fmt.Errorf("category name %q is empty after sanitization", category)
	}
	var missing bool
	_, err := m.UpdateTaxonomy(guild, func(t *schema.Taxonomy) {
		categories, ok := t.Orgaos[org]
		if !ok {
			missing = true
			return
		}
		if !slices.Contains(categories, clean) {
			t.Orgaos[org] = append(categories, clean)
		}
	})
	if err != nil {
		return "", err
	}
	if missing {
		return "", fmt.Errorf("org %q does not exist", org)
	}
	return clean, nil
}

// RemoveCategory deletes a category from an org. Unknown names are
// ignored.
func (m *Manager) RemoveCategory(guild ref.GuildID, org, category string) error {
	_, err := m.UpdateTaxonomy(guild, func(t *schema.Taxonomy) {
		if categories, ok := t.Orgaos[org]; ok {
			t.Orgaos[org] = slices.DeleteFunc(categories, func(c string) bool {
				return c == category
			})
		}
	})
	return err
}

// AddTeam inserts a sanitized team name.
func (m *Manager) AddTeam(guild ref.GuildID, name string) (string, error) {
	clean := schema.SanitizeLabel(name)
	if clean == "" {
		return "", fmt.Errorf("team name %q is empty after sanitization", name)
	}
	_, err := m.UpdateTaxonomy(guild, func(t *schema.Taxonomy) {
		if !slices.Contains(t.Equipes, clean) {
			t.Equipes = append(t.Equipes, clean)
		}
	})
	return clean, err
}

// RemoveTeam deletes a team name. Unknown names are ignored.
func (m *Manager) RemoveTeam(guild ref.GuildID, name string) error {
	_, err := m.UpdateTaxonomy(guild, func(t *schema.Taxonomy) {
		t.Equipes = slices.DeleteFunc(t.Equipes, func(e string) bool {
			return e == name
		})
	})
	return err
}
