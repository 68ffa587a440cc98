// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"

	"roster-stamp/internal/formatters"
	"roster-stamp/internal/report"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable table with one line per page"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(rep *report.Report, options formatters.FormatterOptions) ([]byte, error) {
	var builder strings.Builder

	for _, w := range rep.Warnings {
		f.paint(&builder, options, "yellow", "warning: %s\n", w)
	}
	for _, fe := range rep.FileErrors {
		f.paint(&builder, options, "red", "error: %s: %s\n", fe.PDFName, fe.Error)
	}

	if len(rep.Pages) == 0 {
		builder.WriteString("No pages processed.\n")
	} else {
		nameWidth := f.nameColumnWidth(rep.Pages)
		f.appendHeaders(&builder, nameWidth, options)
		for _, p := range rep.Pages {
			f.appendPageLine(&builder, p, nameWidth, options)
			if options.Verbose {
				f.appendDetails(&builder, p)
			}
		}
	}

	for _, s := range rep.Stamped {
		f.paint(&builder, options, "green", "stamped %d page(s): %s\n", s.Pages, s.Output)
	}

	s := rep.Summary
	f.paint(&builder, options, "white", "\n%d PDF(s), %d page(s): %d matched, %d unmatched, %d page error(s), %d file error(s)\n",
		s.PDFs, s.Pages, s.Matched, s.Unmatched, s.PageErrors, s.FileErrors)

	return []byte(builder.String()), nil
}

func (f *Formatter) paint(builder *strings.Builder, options formatters.FormatterOptions, colorName, format string, args ...interface{}) {
	if options.NoColor {
		fmt.Fprintf(builder, format, args...)
		return
	}
	f.colors[colorName].Fprintf(builder, format, args...)
}

func (f *Formatter) appendHeaders(builder *strings.Builder, nameWidth int, options formatters.FormatterOptions) {
	header := fmt.Sprintf("%-8s %-24s %5s %-*s %-8s %-10s %-5s %6s\n",
		"METHOD", "PDF", "PAGE", nameWidth, "NAME", "TOUR", "DAY", "TIME", "SCORE")
	separator := strings.Repeat("-", len([]rune(header))-1) + "\n"
	f.paint(builder, options, "white", "%s", header+separator)
}

// nameColumnWidth sizes the name column to the longest match, capped at 30
func (f *Formatter) nameColumnWidth(pages []report.PageResult) int {
	width := 4
	for _, p := range pages {
		width = max(width, len([]rune(p.MatchedName)))
	}
	return min(width, 30)
}

func (f *Formatter) appendPageLine(builder *strings.Builder, p report.PageResult, nameWidth int, options formatters.FormatterOptions) {
	methodColor := "red"
	switch p.MatchMethod {
	case "exact":
		methodColor = "green"
	case "fuzzy":
		methodColor = "yellow"
	case "robust":
		methodColor = "cyan"
	}
	if p.Error != "" {
		methodColor = "magenta"
	}

	method := fmt.Sprintf("%-8s", p.MatchMethod)
	if !options.NoColor {
		method = f.colors[methodColor].Sprintf("%-8s", p.MatchMethod)
	}

	name := truncate(p.MatchedName, nameWidth)
	if name == "" {
		name = "-"
	}

	fmt.Fprintf(builder, "%s %-24s %5d %-*s %-8s %-10s %-5s %6s\n",
		method,
		truncate(filepath.Base(p.PDFName), 24),
		p.PageIndex,
		nameWidth, name,
		truncate(p.TourID, 8),
		truncate(p.WeekdayLabel, 10),
		p.ShiftTime,
		formatters.ScoreString(p.MatchScore))
}

func (f *Formatter) appendDetails(builder *strings.Builder, p report.PageResult) {
	fmt.Fprintf(builder, "         text source: %s\n", p.TextSource)
	if p.TargetDate != "" {
		fmt.Fprintf(builder, "         target date: %s\n", p.TargetDate)
	}
	if len(p.Candidates) > 0 {
		fmt.Fprintf(builder, "         candidates:  %s\n", strings.Join(p.Candidates, ", "))
	}
	if p.Error != "" {
		fmt.Fprintf(builder, "         error:       %s\n", p.Error)
	}
}

// truncate shortens s to width runes
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
