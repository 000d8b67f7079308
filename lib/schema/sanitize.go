// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "strings"

// MaxLabelLength caps user-supplied taxonomy labels (org, category,
// team names) before insertion.
const MaxLabelLength = 50

// SanitizeLabel strips everything outside letters, digits, spaces,
// hyphens, underscores, and dots from a user-supplied label, caps the
// length, and trims surrounding whitespace. An all-junk input comes
// back empty; callers treat that as invalid.
func SanitizeLabel(label string) string {
	if label == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r > 127 && !isPunctOrSymbol(r):
			// Keep accented letters; the original deployment is
			// Portuguese-speaking.
			b.WriteRune(r)
		}
	}
	clean := strings.TrimSpace(b.String())
	// The cap counts characters, not bytes: slicing bytes could split
	// an accented letter and leave invalid UTF-8 in the stored label.
	if runes := []rune(clean); len(runes) > MaxLabelLength {
		clean = strings.TrimSpace(string(runes[:MaxLabelLength]))
	}
	return clean
}

// isPunctOrSymbol reports whether r is in the Unicode punctuation or
// symbol general categories that SanitizeLabel rejects. Kept as a
// small table instead of importing unicode tables for a handful of
// troublemakers seen in practice.
func isPunctOrSymbol(r rune) bool {
	switch r {
	case '«', '»', '“', '”', '‘', '’', '—', '–', '…', '¡', '¿', '©', '®', '™':
		return true
	}
	return false
}

// FileSafeName converts a channel or thread name into a name safe for
// the export tree: letters, digits, hyphens, and underscores survive;
// spaces become underscores; everything else is dropped.
func FileSafeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
