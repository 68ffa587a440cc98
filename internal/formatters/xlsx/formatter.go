// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"strings"

	"roster-stamp/internal/formatters"
	"roster-stamp/internal/report"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding one row per page
const SheetName = "Report"

const warningSheet = "Warnings"

var headers = []string{
	"PDF", "Page", "Matched Name", "Tour", "Weekday", "Shift Time", "Method", "Score",
}

// Formatter writes the report as an Excel workbook
type Formatter struct{}

// NewFormatter creates a new XLSX formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "xlsx"
}

func (f *Formatter) Description() string {
	return "Excel workbook with one row per page"
}

func (f *Formatter) FileExtension() string {
	return ".xlsx"
}

func (f *Formatter) Format(rep *report.Report, options formatters.FormatterOptions) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	cols := headers
	if options.Verbose {
		cols = append(append([]string{}, headers...), "Text Source", "Candidates", "Error")
	}
	for i, h := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i, p := range rep.Pages {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = wb.SetCellValue(SheetName, cell, v)
		}

		write(1, p.PDFName)
		write(2, p.PageIndex)
		write(3, p.MatchedName)
		write(4, p.TourID)
		write(5, p.WeekdayLabel)
		write(6, p.ShiftTime)
		write(7, p.MatchMethod)
		if p.MatchScore != nil {
			write(8, *p.MatchScore)
		}
		if options.Verbose {
			write(9, p.TextSource)
			write(10, strings.Join(p.Candidates, ", "))
			write(11, p.Error)
		}
	}

	// Freeze the header row
	_ = wb.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	_ = wb.SetColWidth(SheetName, "A", "A", 32) // pdf
	_ = wb.SetColWidth(SheetName, "C", "C", 28) // name
	_ = wb.SetColWidth(SheetName, "D", "G", 12)

	if len(rep.Warnings) > 0 || len(rep.FileErrors) > 0 {
		if _, err := wb.NewSheet(warningSheet); err != nil {
			return nil, fmt.Errorf("xlsx sheet: %w", err)
		}
		row := 1
		for _, w := range rep.Warnings {
			_ = wb.SetCellValue(warningSheet, fmt.Sprintf("A%d", row), w)
			row++
		}
		for _, fe := range rep.FileErrors {
			_ = wb.SetCellValue(warningSheet, fmt.Sprintf("A%d", row), fe.PDFName+": "+fe.Error)
			row++
		}
		_ = wb.SetColWidth(warningSheet, "A", "A", 80)
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
