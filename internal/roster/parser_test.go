// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// row builds a positional row using the default column layout
func row(last1, first1, last2, first2, tm, vehicle, date, tour string) []string {
	r := make([]string, 16)
	r[3], r[4] = last1, first1
	r[6], r[7] = last2, first2
	r[8] = tm
	r[11] = vehicle
	r[14] = date
	r[15] = tour
	return r
}

func TestParseRows_TwoSlots(t *testing.T) {
	rows := [][]string{
		row("Schmidt", "Anna", "Weber", "Jan", "0.25", "B-XY 12", "45355", "17"),
	}

	res, err := ParseRows(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}

	first := res.Entries[0]
	if first.DriverName != "Schmidt Anna" {
		t.Errorf("driver name = %q", first.DriverName)
	}
	if !first.Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", first.Date)
	}
	if first.WeekdayLabel != "Montag" {
		t.Errorf("weekday = %q, want Montag", first.WeekdayLabel)
	}
	if first.ShiftTime != "06:00" {
		t.Errorf("shift time = %q, want 06:00", first.ShiftTime)
	}
	if first.TourID != "17" || first.VehicleID != "B-XY 12" {
		t.Errorf("tour/vehicle = %q/%q", first.TourID, first.VehicleID)
	}
	if first.Row != 1 || first.Slot != 1 {
		t.Errorf("row/slot = %d/%d", first.Row, first.Slot)
	}

	second := res.Entries[1]
	if second.DriverName != "Weber Jan" || second.Slot != 2 || second.TourID != "17" {
		t.Errorf("unexpected second slot entry %+v", second)
	}
}

func TestParseRows_SkipsAndIssues(t *testing.T) {
	rows := [][]string{
		row("Nachname", "Vorname", "", "", "Zeit", "", "Datum", "Tour"),
		{},
		row("Schmidt", "Anna", "Weber", "", "06:30", "", "04.03.2024", "17.0"),
		row("  ", "", "", "", "", "", "05.03.2024", "18"),
		row("Meyer", "Eva", "", "", "", "", "kein Datum", "19"),
	}

	res, err := ParseRows(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(res.Entries), res.Entries)
	}
	e := res.Entries[0]
	if e.Row != 3 || e.TourID != "17" || e.ShiftTime != "06:30" {
		t.Errorf("unexpected entry %+v", e)
	}

	if len(res.Issues) != 3 {
		t.Fatalf("expected 3 issues (header, incomplete slot, bad date), got %v", res.Issues)
	}
	if res.Issues[1].Row != 3 || res.Issues[1].Slot != 2 {
		t.Errorf("expected incomplete slot 2 on row 3, got %v", res.Issues[1])
	}
}

func TestParseRows_NoEntries(t *testing.T) {
	rows := [][]string{row("Schmidt", "Anna", "", "", "", "", "", "17")}
	_, err := ParseRows(rows, DefaultOptions())
	if !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries, got %v", err)
	}
}

func TestParseRows_CustomColumns(t *testing.T) {
	cols := ColumnMap{Driver1Last: 0, Driver1First: 1, Driver2Last: 2, Driver2First: 3, Time: 4, Vehicle: 5, Date: 6, Tour: 7}
	rows := [][]string{{"Schmidt", "Anna", "", "", "7:15", "", "2024-03-05", "A1"}}

	res, err := ParseRows(rows, Options{Columns: cols, WeekdayLocale: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Entries[0]; got.WeekdayLabel != "Tuesday" || got.ShiftTime != "07:15" || got.TourID != "A1" {
		t.Errorf("unexpected entry %+v", got)
	}
}

func TestParseRows_NegativeColumn(t *testing.T) {
	cols := DefaultColumns()
	cols.Tour = -1
	if _, err := ParseRows(nil, Options{Columns: cols}); err == nil {
		t.Error("expected validation error for negative column")
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"45355", "45355.75", "2024-03-04", "04.03.2024", "4.3.2024", "04.03.24", "03/04/2024", "2024-03-04 00:00:00"} {
		got, ok := parseDate(in, false)
		if !ok || !got.Equal(want) {
			t.Errorf("parseDate(%q) = %v, %v", in, got, ok)
		}
	}
	for _, in := range []string{"", "Datum", "0", "-3", "99999999"} {
		if _, ok := parseDate(in, false); ok {
			t.Errorf("parseDate(%q) should fail", in)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"0.25":                "06:00",
		"0.2708333333333333":  "06:30",
		"45355.5":             "12:00",
		"0.99999":             "00:00",
		"6:30":                "06:30",
		"06:30:00":            "06:30",
		"6:30 PM":             "18:30",
		"06.30":               "06:30",
		"25.61":               "",
		"1899-12-30 05:45:00": "05:45",
		"abends":              "",
	}
	for in, want := range tests {
		if got := parseTimeOfDay(in); got != want {
			t.Errorf("parseTimeOfDay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWeekdayLabel(t *testing.T) {
	sunday := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	if got := WeekdayLabel(sunday, "de"); got != "Sonntag" {
		t.Errorf("got %q", got)
	}
	if got := WeekdayLabel(sunday, "fr"); got != "Sonntag" {
		t.Errorf("unknown locale should fall back to German, got %q", got)
	}
	if !SupportedLocale("EN") || SupportedLocale("fr") {
		t.Error("unexpected locale support")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	set := func(cell string, v interface{}) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	set("D1", "Schmidt")
	set("E1", "Anna")
	set("I1", 0.25)
	set("L1", "B-XY 12")
	set("O1", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	set("P1", 17)
	set("G2", "Weber")
	set("H2", "Jan")
	set("O2", "05.03.2024")
	set("P2", "18")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	f.Close()

	res, err := ParseFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", res.Entries)
	}
	a := res.Entries[0]
	if a.DriverName != "Schmidt Anna" || a.TourID != "17" || a.WeekdayLabel != "Montag" || a.ShiftTime != "06:00" {
		t.Errorf("unexpected first entry %+v", a)
	}
	b := res.Entries[1]
	if b.DriverName != "Weber Jan" || b.Slot != 2 || b.WeekdayLabel != "Dienstag" {
		t.Errorf("unexpected second entry %+v", b)
	}
}

func TestParseFile_TextClockTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	set := func(cell string, v interface{}) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	// I1 typed as text, I2 a numeric day fraction
	set("D1", "Schmidt")
	set("E1", "Anna")
	set("I1", "0.30")
	set("O1", "04.03.2024")
	set("D2", "Weber")
	set("E2", "Jan")
	set("I2", 0.3)
	set("O2", "04.03.2024")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	f.Close()

	res, err := ParseFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", res.Entries)
	}
	if got := res.Entries[0].ShiftTime; got != "00:30" {
		t.Errorf("text cell 0.30: got %q, want 00:30", got)
	}
	if got := res.Entries[1].ShiftTime; got != "07:12" {
		t.Errorf("numeric cell 0.3: got %q, want 07:12", got)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"), DefaultOptions()); err == nil {
		t.Error("expected error for missing workbook")
	}
}
