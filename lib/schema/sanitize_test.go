// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/amanda-project/amanda/lib/ref"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Ouvidoria", "Ouvidoria"},
		{"keeps accents", "Direção Geral", "Direção Geral"},
		{"strips punctuation", "TI/Suporte!", "TISuporte"},
		{"keeps dots and hyphens", "v2.1-beta_x", "v2.1-beta_x"},
		{"trims whitespace", "  Geral  ", "Geral"},
		{"all junk", "!!!@@@###", ""},
		{"empty", "", ""},
		{"caps length", strings.Repeat("a", 80), strings.Repeat("a", MaxLabelLength)},
		{"caps length at a multibyte boundary", strings.Repeat("a", 49) + "ção", strings.Repeat("a", 49) + "ç"},
		{"caps all-multibyte input", strings.Repeat("ã", 80), strings.Repeat("ã", MaxLabelLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeLabel(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("SanitizeLabel(%q) produced invalid UTF-8: %q", tt.input, got)
			}
		})
	}
}

func TestFileSafeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "suporte-ti", "suporte-ti"},
		{"spaces become underscores", "canal de ajuda", "canal_de_ajuda"},
		{"drops punctuation", "ajuda: geral?", "ajuda_geral"},
		{"drops accents", "atenção", "ateno"},
		{"trims underscores", " _canal_ ", "canal"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileSafeName(tt.input); got != tt.want {
				t.Errorf("FileSafeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigFillDefaults(t *testing.T) {
	var cfg GuildConfig
	if !cfg.FillDefaults() {
		t.Fatal("FillDefaults on zero config reported no change")
	}
	if cfg.ConnectedChannels == nil {
		t.Error("ConnectedChannels still nil after fill")
	}
	for _, key := range PermissionKeys {
		if _, ok := cfg.Perms[key]; !ok {
			t.Errorf("permission key %q missing after fill", key)
		}
	}
	if cfg.FillDefaults() {
		t.Error("second FillDefaults reported a change")
	}
}

func TestConfigFillDefaultsPreservesExisting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Perms[PermResolve] = []ref.RoleID{"role-1"}
	cfg.FillDefaults()
	if len(cfg.Perms[PermResolve]) != 1 || cfg.Perms[PermResolve][0] != "role-1" {
		t.Errorf("fill rewrote existing role list: %v", cfg.Perms[PermResolve])
	}
}

func TestTaxonomyFillDefaults(t *testing.T) {
	var tax Taxonomy
	if !tax.FillDefaults() {
		t.Fatal("FillDefaults on zero taxonomy reported no change")
	}
	if tax.Orgaos == nil {
		t.Error("Orgaos still nil after fill")
	}
	if len(tax.Equipes) != 2 {
		t.Errorf("default teams = %v, want two entries", tax.Equipes)
	}
}
