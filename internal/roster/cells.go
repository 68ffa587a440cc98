// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2.1.06",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var (
	dottedTime    = regexp.MustCompile(`^(\d{1,2})\.(\d{2})$`)
	integralFloat = regexp.MustCompile(`^(-?\d+)\.0+$`)
)

// Excel serial day numbers for 1900-01-01 and 9999-12-31
const (
	minSerial = 1
	maxSerial = 2958465
)

// parseDate accepts Excel serial numbers and common textual date formats.
// The result is midnight UTC of the calendar day.
func parseDate(raw string, date1904 bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f < minSerial || f > maxSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, date1904)
		if err != nil {
			return time.Time{}, false
		}
		return dayOf(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dayOf(t), true
		}
	}
	return time.Time{}, false
}

// parseTimeOfDay returns HH:MM for fractional-day numbers, serial
// date-times and textual times. Unparseable values yield "".
func parseTimeOfDay(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04")
		}
	}

	f, numErr := strconv.ParseFloat(raw, 64)
	if numErr == nil && f >= 0 && f < 1 {
		return fractionOfDay(f)
	}

	// "06.30" is a German-style clock time, not 6.3 days. Below one the
	// fraction wins; workbook cells typed as text are rewritten beforehand.
	if m := dottedTime.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if h < 24 && mins < 60 {
			return fmt.Sprintf("%02d:%02d", h, mins)
		}
		return ""
	}

	if numErr != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return ""
	}
	return fractionOfDay(f)
}

func fractionOfDay(f float64) string {
	frac := f - math.Floor(f)
	minutes := int(math.Round(frac*24*60)) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// tidyNumber drops a zero fraction from numeric identifiers ("17.0" -> "17")
// and leaves every other value untouched
func tidyNumber(raw string) string {
	if m := integralFloat.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
