// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import "strings"

// doneMarkers are the recognized closed-ticket name prefixes, in
// precedence order. The first entry is what new closures get; the rest
// are legacy spellings still found on old threads.
var doneMarkers = []string{
	"OK - ",
	"OK ",
	"[OK] ",
	"[OK]",
	"(OK) ",
	"(OK)",
}

// HasDoneMarker reports whether a thread name carries any closed
// marker prefix.
func HasDoneMarker(name string) bool {
	for _, marker := range doneMarkers {
		if strings.HasPrefix(name, marker) {
			return true
		}
	}
	return false
}

// EnsureDoneMarker prefixes the canonical closed marker, leaving names
// already marked (in any spelling) untouched.
func EnsureDoneMarker(name string) string {
	if HasDoneMarker(name) {
		return name
	}
	return doneMarkers[0] + name
}

// StripDoneMarker removes the first matching marker prefix. Only one
// marker is stripped; a doubly-prefixed name keeps its inner marker.
func StripDoneMarker(name string) string {
	for _, marker := range doneMarkers {
		if strings.HasPrefix(name, marker) {
			return name[len(marker):]
		}
	}
	return name
}
