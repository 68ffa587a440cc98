// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoEntries is returned when a roster yields no usable entry at all
var ErrNoEntries = errors.New("roster contains no parseable entries")

// Entry is one driver's assignment on one date
type Entry struct {
	Date         time.Time `json:"date" yaml:"date"`
	WeekdayLabel string    `json:"weekday_label" yaml:"weekday_label"`
	DriverName   string    `json:"driver_name" yaml:"driver_name"`
	TourID       string    `json:"tour_id" yaml:"tour_id"`
	ShiftTime    string    `json:"shift_time,omitempty" yaml:"shift_time,omitempty"`
	VehicleID    string    `json:"vehicle_id,omitempty" yaml:"vehicle_id,omitempty"`

	// Row is the 1-based spreadsheet row and Slot the driver pair (1 or 2).
	// Together they define parse order.
	Row  int `json:"row" yaml:"row"`
	Slot int `json:"slot" yaml:"slot"`
}

// SameDay reports whether the entry falls on the calendar day of t
func (e Entry) SameDay(t time.Time) bool {
	y1, m1, d1 := e.Date.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ColumnMap maps logical roster fields to zero-based column indices
type ColumnMap struct {
	Driver1Last  int `yaml:"driver1_last"`
	Driver1First int `yaml:"driver1_first"`
	Driver2Last  int `yaml:"driver2_last"`
	Driver2First int `yaml:"driver2_first"`
	Time         int `yaml:"time"`
	Vehicle      int `yaml:"vehicle"`
	Date         int `yaml:"date"`
	Tour         int `yaml:"tour"`
}

// DefaultColumns is the layout of the dispatch roster export
func DefaultColumns() ColumnMap {
	return ColumnMap{
		Driver1Last:  3,
		Driver1First: 4,
		Driver2Last:  6,
		Driver2First: 7,
		Time:         8,
		Vehicle:      11,
		Date:         14,
		Tour:         15,
	}
}

// Validate rejects negative indices
func (c ColumnMap) Validate() error {
	fields := map[string]int{
		"driver1_last":  c.Driver1Last,
		"driver1_first": c.Driver1First,
		"driver2_last":  c.Driver2Last,
		"driver2_first": c.Driver2First,
		"time":          c.Time,
		"vehicle":       c.Vehicle,
		"date":          c.Date,
		"tour":          c.Tour,
	}
	for name, idx := range fields {
		if idx < 0 {
			return fmt.Errorf("column %s has negative index %d", name, idx)
		}
	}
	return nil
}

// RowIssue records a row or slot that was skipped during parsing
type RowIssue struct {
	Row    int
	Slot   int
	Reason string
}

func (i RowIssue) String() string {
	if i.Slot > 0 {
		return fmt.Sprintf("row %d slot %d: %s", i.Row, i.Slot, i.Reason)
	}
	return fmt.Sprintf("row %d: %s", i.Row, i.Reason)
}

// Result is the outcome of parsing a roster sheet
type Result struct {
	Entries []Entry
	Issues  []RowIssue
}

var weekdayLabels = map[string][7]string{
	"de": {"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
	"en": {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// WeekdayLabel returns the localized weekday name. Unknown locales use German.
func WeekdayLabel(t time.Time, locale string) string {
	labels, ok := weekdayLabels[strings.ToLower(locale)]
	if !ok {
		labels = weekdayLabels["de"]
	}
	return labels[t.Weekday()]
}

// SupportedLocale reports whether a weekday locale is known
func SupportedLocale(locale string) bool {
	_, ok := weekdayLabels[strings.ToLower(locale)]
	return ok
}
