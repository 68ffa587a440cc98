// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package join

import (
	"strings"

	"roster-stamp/internal/roster"
)

// Payload is the tour metadata stamped onto a matched page
type Payload struct {
	TourID       string `json:"tour_id,omitempty" yaml:"tour_id,omitempty"`
	WeekdayLabel string `json:"weekday_label,omitempty" yaml:"weekday_label,omitempty"`
	ShiftTime    string `json:"shift_time,omitempty" yaml:"shift_time,omitempty"`
}

// PayloadFor copies the stampable fields of a roster entry
func PayloadFor(e roster.Entry) Payload {
	return Payload{
		TourID:       e.TourID,
		WeekdayLabel: e.WeekdayLabel,
		ShiftTime:    e.ShiftTime,
	}
}

// Empty reports whether there is nothing to stamp
func (p Payload) Empty() bool {
	return strings.TrimSpace(p.TourID) == "" &&
		strings.TrimSpace(p.WeekdayLabel) == "" &&
		strings.TrimSpace(p.ShiftTime) == ""
}
