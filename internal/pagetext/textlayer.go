// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pagetext

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Document is an opened PDF text layer
type Document interface {
	NumPages() int
	// PageText returns the text of the 0-based page
	PageText(index int) (string, error)
	Close() error
}

// Opener opens the text layer of a PDF
type Opener func(path string) (Document, error)

// PageCounter counts pages of a PDF whose text layer could not be opened
type PageCounter func(path string) (int, error)

// OpenTextLayer opens a PDF with ledongthuc/pdf
func OpenTextLayer(path string) (doc Document, err error) {
	// The decoder panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("error opening PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	return &textLayer{closer: f, reader: r}, nil
}

// CountPages reads the page count with pdfcpu
func CountPages(path string) (int, error) {
	n, err := api.PageCountFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("error counting pages: %w", err)
	}
	return n, nil
}

type textLayer struct {
	closer interface{ Close() error }
	reader *pdf.Reader
}

func (t *textLayer) NumPages() int {
	return t.reader.NumPage()
}

func (t *textLayer) PageText(index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("text layer of page %d: %v", index+1, r)
		}
	}()

	p := t.reader.Page(index + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("null page %d", index+1)
	}
	return extractTextWithProperSpacing(p)
}

func (t *textLayer) Close() error {
	return t.closer.Close()
}

// extractTextWithProperSpacing rebuilds the page line by line from the
// positioned glyphs of the content stream. Content runs the full text state
// machine (Td, TD, T*, TL, Tm), so every line keeps its own baseline.
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	texts := p.Content().Text
	if len(texts) == 0 {
		return p.GetPlainText(nil)
	}
	return joinRows(groupRows(texts)), nil
}

// groupRows collects glyphs into lines. Glyphs whose baselines lie within
// half a font size of a line's first glyph belong to that line.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]pdf.Text
	for _, t := range sorted {
		if n := len(rows); n > 0 && math.Abs(rows[n-1][0].Y-t.Y) <= rowTolerance(rows[n-1][0]) {
			rows[n-1] = append(rows[n-1], t)
			continue
		}
		rows = append(rows, []pdf.Text{t})
	}
	return rows
}

func rowTolerance(t pdf.Text) float64 {
	return math.Max(fontSize(t)*0.5, 1)
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 12
	}
	return t.FontSize
}

// joinRows orders rows top to bottom and rebuilds each row's text.
// PDF Y grows upwards, so a higher Y is higher on the page.
func joinRows(rows [][]pdf.Text) string {
	sort.SliceStable(rows, func(i, j int) bool {
		return averageY(rows[i]) > averageY(rows[j])
	})

	var buf bytes.Buffer
	for _, row := range rows {
		rowText := reconstructRowText(row)
		if rowText != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// reconstructRowText rebuilds a row left to right. A space goes in wherever
// the gap to the next glyph exceeds a fifth of the font size; space glyphs
// that are present in the stream are kept, never doubled.
func reconstructRowText(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > fontSize(prev)*0.2 && !endsWithSpace(b.String()) && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		if t.S == " " && endsWithSpace(b.String()) {
			continue
		}
		b.WriteString(t.S)
	}
	return strings.TrimSpace(b.String())
}

func endsWithSpace(s string) bool {
	return s == "" || strings.HasSuffix(s, " ")
}
