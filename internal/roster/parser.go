// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Options controls how a roster workbook is read
type Options struct {
	// Sheet defaults to the first sheet of the workbook
	Sheet         string
	Columns       ColumnMap
	WeekdayLocale string
}

// DefaultOptions returns the standard column layout with German weekday labels
func DefaultOptions() Options {
	return Options{
		Columns:       DefaultColumns(),
		WeekdayLocale: "de",
	}
}

func (o Options) columns() ColumnMap {
	if o.Columns == (ColumnMap{}) {
		return DefaultColumns()
	}
	return o.Columns
}

// ParseFile reads the roster workbook at path
func ParseFile(path string, opts Options) (*Result, error) {
	f, err := excelize.OpenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

// Parse reads a roster workbook from r
func Parse(r io.Reader, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

func parseWorkbook(f *excelize.File, opts Options) (*Result, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("roster workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	textClockTimes(f, sheet, rows, opts.columns().Time)

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	return parseRows(rows, opts, date1904)
}

// ParseRows turns positional rows into entries. Rows are taken as-is: there
// is no header row, and a header simply fails the date check.
func ParseRows(rows [][]string, opts Options) (*Result, error) {
	return parseRows(rows, opts, false)
}

func parseRows(rows [][]string, opts Options, date1904 bool) (*Result, error) {
	cols := opts.columns()
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	slots := [2][2]int{
		{cols.Driver1Last, cols.Driver1First},
		{cols.Driver2Last, cols.Driver2First},
	}

	res := &Result{}
	for i, row := range rows {
		rowNum := i + 1
		if isBlank(row) {
			continue
		}

		rawDate := cell(row, cols.Date)
		date, ok := parseDate(rawDate, date1904)
		if !ok {
			if hasAnyName(row, slots) {
				res.Issues = append(res.Issues, RowIssue{Row: rowNum, Reason: fmt.Sprintf("unparseable date %q", rawDate)})
			}
			continue
		}

		shift := parseTimeOfDay(cell(row, cols.Time))
		tour := tidyNumber(cell(row, cols.Tour))
		vehicle := tidyNumber(cell(row, cols.Vehicle))

		for s, pair := range slots {
			last, first := cell(row, pair[0]), cell(row, pair[1])
			if last == "" && first == "" {
				continue
			}
			if last == "" || first == "" {
				res.Issues = append(res.Issues, RowIssue{Row: rowNum, Slot: s + 1, Reason: "incomplete driver name"})
				continue
			}
			res.Entries = append(res.Entries, Entry{
				Date:         date,
				WeekdayLabel: WeekdayLabel(date, opts.WeekdayLocale),
				DriverName:   strings.Join(strings.Fields(last+" "+first), " "),
				TourID:       tour,
				ShiftTime:    shift,
				VehicleID:    vehicle,
				Row:          rowNum,
				Slot:         s + 1,
			})
		}
	}

	if len(res.Entries) == 0 {
		return res, ErrNoEntries
	}
	return res, nil
}

// textClockTimes rewrites dotted times typed as text ("0.30") to "0:30".
// Numeric cells keep their raw value and still read as fractions of a day.
func textClockTimes(f *excelize.File, sheet string, rows [][]string, col int) {
	if col < 0 {
		return
	}
	for i, row := range rows {
		raw := cell(row, col)
		if !dottedTime.MatchString(raw) {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(col+1, i+1)
		if err != nil {
			continue
		}
		typ, err := f.GetCellType(sheet, axis)
		if err != nil || (typ != excelize.CellTypeSharedString && typ != excelize.CellTypeInlineString) {
			continue
		}
		row[col] = strings.Replace(raw, ".", ":", 1)
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func hasAnyName(row []string, slots [2][2]int) bool {
	for _, pair := range slots {
		if cell(row, pair[0]) != "" || cell(row, pair[1]) != "" {
			return true
		}
	}
	return false
}
