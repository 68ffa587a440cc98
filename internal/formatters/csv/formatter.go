// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"strconv"
	"strings"

	"roster-stamp/internal/formatters"
	"roster-stamp/internal/report"
)

// Header is the fixed column order of the CSV report
var Header = []string{"pdf_name", "page_index", "matched_name", "tour_id", "weekday_label", "shift_time", "match_method", "match_score"}

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "One row per page for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(rep *report.Report, options formatters.FormatterOptions) ([]byte, error) {
	headers := Header
	if options.Verbose {
		headers = append(append([]string{}, Header...), "text_source", "candidates", "error")
	}

	rows := []string{strings.Join(headers, ",")}
	for _, p := range rep.Pages {
		rows = append(rows, f.createCSVRow(p, options))
	}
	return []byte(strings.Join(rows, "\n") + "\n"), nil
}

// createCSVRow creates a CSV row for a page
func (f *Formatter) createCSVRow(p report.PageResult, options formatters.FormatterOptions) string {
	row := []string{
		f.escapeCSVField(p.PDFName),
		strconv.Itoa(p.PageIndex),
		f.escapeCSVField(p.MatchedName),
		f.escapeCSVField(p.TourID),
		f.escapeCSVField(p.WeekdayLabel),
		f.escapeCSVField(p.ShiftTime),
		f.escapeCSVField(p.MatchMethod),
		formatters.ScoreString(p.MatchScore),
	}
	if options.Verbose {
		row = append(row,
			f.escapeCSVField(p.TextSource),
			f.escapeCSVField(strings.Join(p.Candidates, "; ")),
			f.escapeCSVField(p.Error),
		)
	}
	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

// sanitizeFormulaInjection neutralizes values a spreadsheet would evaluate
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
