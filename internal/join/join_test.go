// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package join

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-stamp/internal/roster"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(name string, date time.Time, tour string) roster.Entry {
	return roster.Entry{
		Date:         date,
		DriverName:   name,
		TourID:       tour,
		WeekdayLabel: roster.WeekdayLabel(date, "de"),
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"strict":          ModeStrict,
		" Nearest ":       ModeNearest,
		"nearest-in-week": ModeNearest,
		"WEEK":            ModeWeek,
		"week-membership": ModeWeek,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "fuzzy", "closest"} {
		_, err := ParseMode(in)
		assert.True(t, errors.Is(err, ErrUnknownMode), "expected ErrUnknownMode for %q", in)
	}
}

func TestLookup_Strict(t *testing.T) {
	target := day(2024, 3, 5)
	entries := []roster.Entry{
		entry("Schmidt Anna", day(2024, 3, 4), "17"),
		entry("Schmidt Anna", target, "18"),
	}

	got, ok := Lookup("Schmidt Anna", target, entries, ModeStrict)
	require.True(t, ok)
	assert.Equal(t, "18", got.TourID)

	_, ok = Lookup("Schmidt Anna", day(2024, 3, 6), entries, ModeStrict)
	assert.False(t, ok, "strict must not fall back to another date")

	_, ok = Lookup("Weber Jan", target, entries, ModeStrict)
	assert.False(t, ok)
}

func TestLookup_DuplicateResolvesToFirst(t *testing.T) {
	target := day(2024, 3, 5)
	entries := []roster.Entry{
		entry("Schmidt Anna", target, "17"),
		entry("Schmidt Anna", target, "99"),
	}
	for _, mode := range []Mode{ModeStrict, ModeNearest, ModeWeek} {
		got, ok := Lookup("Schmidt Anna", target, entries, mode)
		require.True(t, ok, mode)
		assert.Equal(t, "17", got.TourID, mode)
	}
}

func TestLookup_Nearest(t *testing.T) {
	target := day(2024, 3, 10)
	entries := []roster.Entry{
		entry("Schmidt Anna", day(2024, 3, 13), "plus3"),
		entry("Schmidt Anna", day(2024, 3, 9), "minus1"),
		entry("Weber Jan", day(2024, 3, 1), "far"),
	}

	got, ok := Lookup("Schmidt Anna", target, entries, ModeNearest)
	require.True(t, ok)
	assert.Equal(t, "minus1", got.TourID)

	got, ok = Lookup("Weber Jan", target, entries, ModeNearest)
	require.True(t, ok, "nearest is unbounded by default")
	assert.Equal(t, "far", got.TourID)

	_, ok = Joiner{Mode: ModeNearest, MaxDistanceDays: 3}.Lookup("Weber Jan", target, entries)
	assert.False(t, ok, "entry 9 days away exceeds the bound")
}

func TestLookup_NearestTieTakesEarlierDate(t *testing.T) {
	target := day(2024, 3, 10)
	entries := []roster.Entry{
		entry("Schmidt Anna", day(2024, 3, 11), "after"),
		entry("Schmidt Anna", day(2024, 3, 9), "before"),
	}
	got, ok := Lookup("Schmidt Anna", target, entries, ModeNearest)
	require.True(t, ok)
	assert.Equal(t, "before", got.TourID)
}

func TestLookup_Week(t *testing.T) {
	// Sunday 2024-03-03 starts the week that ends Saturday 2024-03-09
	sunday := day(2024, 3, 3)
	saturday := day(2024, 3, 9)
	entries := []roster.Entry{
		entry("Schmidt Anna", day(2024, 3, 2), "prev-saturday"),
		entry("Schmidt Anna", saturday, "saturday"),
		entry("Schmidt Anna", day(2024, 3, 6), "wednesday"),
	}

	got, ok := Lookup("Schmidt Anna", sunday, entries, ModeWeek)
	require.True(t, ok)
	assert.Equal(t, "saturday", got.TourID, "first in parse order within the week")

	_, ok = Lookup("Schmidt Anna", day(2024, 3, 10), []roster.Entry{entries[1]}, ModeWeek)
	assert.False(t, ok, "the following Sunday starts a new week")
}

func TestSundayWeek(t *testing.T) {
	y1, w1 := SundayWeek(day(2024, 3, 3))
	y2, w2 := SundayWeek(day(2024, 3, 9))
	y3, w3 := SundayWeek(day(2024, 3, 2))

	assert.Equal(t, [2]int{y1, w1}, [2]int{y2, w2})
	assert.NotEqual(t, [2]int{y1, w1}, [2]int{y3, w3})

	// Sunday 2023-12-31 belongs with the first days of 2024
	y, w := SundayWeek(day(2023, 12, 31))
	assert.Equal(t, 2024, y)
	assert.Equal(t, 1, w)
}

func TestCandidates(t *testing.T) {
	target := day(2024, 3, 5)
	entries := []roster.Entry{
		entry("Weber Jan", day(2024, 3, 6), "1"),
		entry("Schmidt Anna", target, "2"),
		entry("Schmidt Anna", target, "3"),
		entry("Meyer Eva", day(2024, 4, 1), "4"),
	}

	assert.Equal(t, []string{"Schmidt Anna"}, Joiner{Mode: ModeStrict}.Candidates(target, entries))
	assert.Equal(t, []string{"Weber Jan", "Schmidt Anna"}, Joiner{Mode: ModeWeek}.Candidates(target, entries))
	assert.Equal(t, []string{"Weber Jan", "Schmidt Anna", "Meyer Eva"}, Joiner{Mode: ModeNearest}.Candidates(target, entries))
	assert.Empty(t, Joiner{Mode: ModeStrict}.Candidates(day(2025, 1, 1), entries))
}

func TestPayloadFor(t *testing.T) {
	e := entry("Schmidt Anna", day(2024, 3, 4), "17")
	e.ShiftTime = "06:00"

	p := PayloadFor(e)
	assert.Equal(t, Payload{TourID: "17", WeekdayLabel: "Montag", ShiftTime: "06:00"}, p)
	assert.False(t, p.Empty())
	assert.True(t, Payload{}.Empty())
	assert.True(t, Payload{TourID: " "}.Empty())
}
