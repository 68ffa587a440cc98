// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"regexp"
	"time"
)

// ErrNoTargetDate is reported when neither the request nor the filename
// names a date
const ErrNoTargetDate = "no target date"

var filenameDates = []struct {
	pattern *regexp.Regexp
	layout  string
}{
	{regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2})(?:\D|$)`), "2006-01-02"},
	{regexp.MustCompile(`(?:^|\D)(\d{2}\.\d{2}\.\d{4})(?:\D|$)`), "02.01.2006"},
	{regexp.MustCompile(`(?:^|\D)(\d{8})(?:\D|$)`), "20060102"},
}

// TargetDate returns the explicit date when set, otherwise the first valid
// date token found in the filename
func TargetDate(explicit *time.Time, filename string) (time.Time, bool) {
	if explicit != nil {
		return dayOf(*explicit), true
	}
	for _, fd := range filenameDates {
		for _, m := range fd.pattern.FindAllStringSubmatch(filename, -1) {
			if t, err := time.Parse(fd.layout, m[1]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
