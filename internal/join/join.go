// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package join

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roster-stamp/internal/roster"
)

// Mode selects the fallback used when a name has no entry on the target date
type Mode string

const (
	// ModeStrict accepts only an entry on the exact target date
	ModeStrict Mode = "strict"
	// ModeNearest falls back to the entry closest in days to the target
	ModeNearest Mode = "nearest"
	// ModeWeek falls back to any entry in the target's Sunday-start week
	ModeWeek Mode = "week"
)

// ErrUnknownMode is returned for mode names outside strict, nearest and week
var ErrUnknownMode = errors.New("unknown join mode")

// ParseMode converts a configuration value to a Mode. There is no implicit
// default: an empty string is an error.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStrict:
		return ModeStrict, nil
	case ModeNearest, "nearest-in-week":
		return ModeNearest, nil
	case ModeWeek, "week-membership":
		return ModeWeek, nil
	}
	return "", fmt.Errorf("%w: %q (expected strict, nearest or week)", ErrUnknownMode, s)
}

// Joiner looks up roster entries for matched names
type Joiner struct {
	Mode Mode
	// MaxDistanceDays bounds the nearest fallback; zero means unbounded
	MaxDistanceDays int
}

// Lookup returns the entry for name on target. Duplicates on the same date
// resolve to the first entry in parse order.
func (j Joiner) Lookup(name string, target time.Time, entries []roster.Entry) (roster.Entry, bool) {
	for _, e := range entries {
		if e.DriverName == name && e.SameDay(target) {
			return e, true
		}
	}

	switch j.Mode {
	case ModeNearest:
		return j.nearest(name, target, entries)
	case ModeWeek:
		return week(name, target, entries)
	default:
		return roster.Entry{}, false
	}
}

// Lookup applies the given mode without a distance bound
func Lookup(name string, target time.Time, entries []roster.Entry, mode Mode) (roster.Entry, bool) {
	return Joiner{Mode: mode}.Lookup(name, target, entries)
}

func (j Joiner) nearest(name string, target time.Time, entries []roster.Entry) (roster.Entry, bool) {
	var best roster.Entry
	bestDist := -1
	for _, e := range entries {
		if e.DriverName != name {
			continue
		}
		d := abs(dayDiff(e.Date, target))
		if j.MaxDistanceDays > 0 && d > j.MaxDistanceDays {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && dayDiff(e.Date, best.Date) < 0) {
			best, bestDist = e, d
		}
	}
	return best, bestDist >= 0
}

func week(name string, target time.Time, entries []roster.Entry) (roster.Entry, bool) {
	ty, tw := SundayWeek(target)
	for _, e := range entries {
		if e.DriverName != name {
			continue
		}
		if y, w := SundayWeek(e.Date); y == ty && w == tw {
			return e, true
		}
	}
	return roster.Entry{}, false
}

// SundayWeek returns the (year, week) of t for weeks starting on Sunday.
// The date is shifted forward one day before ISO week extraction, so
// Sunday becomes day 1 of the following ISO week.
func SundayWeek(t time.Time) (year, week int) {
	return t.AddDate(0, 0, 1).ISOWeek()
}

// Candidates returns the distinct names, in parse order, for which Lookup
// would succeed on target. This is the roster-name set a page is matched
// against.
func (j Joiner) Candidates(target time.Time, entries []roster.Entry) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if seen[e.DriverName] {
			continue
		}
		if _, ok := j.Lookup(e.DriverName, target, entries); ok {
			seen[e.DriverName] = true
			names = append(names, e.DriverName)
		}
	}
	return names
}

// dayDiff returns a-b in whole calendar days
func dayDiff(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ad.Sub(bd).Hours() / 24)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
