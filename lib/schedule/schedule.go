// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package schedule computes the firing times of the daily backup job.
package schedule

import "time"

// Daily fires once a day at a fixed wall-clock time in a fixed
// location.
type Daily struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Next returns the first firing time strictly after the given instant.
func (d Daily) Next(after time.Time) time.Time {
	location := d.Location
	if location == nil {
		location = time.UTC
	}
	local := after.In(location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, location)
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
