// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package stamp writes annotated copies of scanned PDFs. Each page with a
// roster payload receives a short text stamp; all other pages are left as
// they are.
package stamp

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"roster-stamp/internal/join"
	"roster-stamp/internal/observability"
)

const (
	DefaultTemplate = "{tour_id} {weekday} {shift_time}"
	DefaultFont     = "Helvetica"
	DefaultFontSize = 12
	DefaultOffsetX  = 50
	DefaultOffsetY  = 50
	DefaultColor    = "#000000"
	DefaultSuffix   = "_annotiert"
)

// Options describes the stamp text and where it is placed. Offsets are in
// points from the top-left corner of the page.
type Options struct {
	Template string  `yaml:"template"`
	Font     string  `yaml:"font"`
	FontSize int     `yaml:"font_size"`
	OffsetX  float64 `yaml:"offset_x"`
	OffsetY  float64 `yaml:"offset_y"`
	Color    string  `yaml:"color"`
	Suffix   string  `yaml:"suffix"`
}

// DefaultOptions returns the standard top-left Helvetica stamp
func DefaultOptions() Options {
	return Options{
		Template: DefaultTemplate,
		Font:     DefaultFont,
		FontSize: DefaultFontSize,
		OffsetX:  DefaultOffsetX,
		OffsetY:  DefaultOffsetY,
		Color:    DefaultColor,
		Suffix:   DefaultSuffix,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if strings.TrimSpace(o.Template) == "" {
		o.Template = d.Template
	}
	if o.Font == "" {
		o.Font = d.Font
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.Color == "" {
		o.Color = d.Color
	}
	if o.Suffix == "" {
		o.Suffix = d.Suffix
	}
	return o
}

// watermarkWriter matches api.AddWatermarksMapFile
type watermarkWriter func(inFile, outFile string, m map[int]*model.Watermark, conf *model.Configuration) error

// Stamper writes stamped PDF copies
type Stamper struct {
	opts     Options
	conf     *model.Configuration
	write    watermarkWriter
	observer *observability.StandardObserver
}

// New creates a Stamper. Empty template, font, color and suffix and a
// non-positive font size fall back to the defaults. Offsets are used as
// given, so 0,0 places the stamp in the top-left corner; start from
// DefaultOptions for the standard margin.
func New(opts Options, observer *observability.StandardObserver) *Stamper {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Stamper{
		opts:     opts.withDefaults(),
		conf:     conf,
		write:    api.AddWatermarksMapFile,
		observer: observer,
	}
}

// Options returns the effective options
func (s *Stamper) Options() Options {
	return s.opts
}

// Render fills the template with the payload fields and collapses runs of
// whitespace, so a missing field never leaves a double space behind
func Render(template string, p join.Payload) string {
	r := strings.NewReplacer(
		"{tour_id}", strings.TrimSpace(p.TourID),
		"{weekday}", strings.TrimSpace(p.WeekdayLabel),
		"{shift_time}", strings.TrimSpace(p.ShiftTime),
	)
	return strings.Join(strings.Fields(r.Replace(template)), " ")
}

// Description returns the pdfcpu watermark description for the options
func (s *Stamper) Description() string {
	return fmt.Sprintf("font:%s, points:%d, pos:tl, off:%s %s, scale:1 abs, rot:0, fillcolor:%s, opacity:1",
		s.opts.Font, s.opts.FontSize,
		formatPoints(s.opts.OffsetX), formatPoints(-s.opts.OffsetY),
		s.opts.Color)
}

// OutputPath returns <outputDir>/<base><suffix>.pdf. An empty outputDir
// places the copy next to the input.
func (s *Stamper) OutputPath(outputDir, inPath string) string {
	return OutputPath(outputDir, inPath, s.opts.Suffix)
}

// Stamp writes a copy of inPath to outPath with one stamp per page in
// payloads. Keys are 0-based page indexes. Without any non-empty payload the
// input is copied byte for byte.
func (s *Stamper) Stamp(inPath, outPath string, payloads map[int]join.Payload) (err error) {
	finishTiming := s.observer.StartTiming("stamp", "stamp_pdf", inPath)
	stamped := 0
	defer func() {
		finishTiming(err == nil, map[string]interface{}{
			"output":        outPath,
			"stamped_pages": stamped,
		})
	}()

	if inPath == "" || outPath == "" {
		return fmt.Errorf("input and output paths cannot be empty")
	}
	if _, statErr := os.Stat(inPath); statErr != nil {
		return fmt.Errorf("input does not exist: %w", statErr)
	}
	if err := ensureDirectoryExists(outPath); err != nil {
		return err
	}

	marks, err := s.watermarks(payloads)
	if err != nil {
		return err
	}
	if len(marks) == 0 {
		return copyFile(inPath, outPath)
	}

	if err := s.write(inPath, outPath, marks, s.conf); err != nil {
		return fmt.Errorf("failed to stamp %s: %w", inPath, err)
	}
	stamped = len(marks)
	return nil
}

// watermarks builds the pdfcpu page map. pdfcpu page numbers are 1-based.
func (s *Stamper) watermarks(payloads map[int]join.Payload) (map[int]*model.Watermark, error) {
	indexes := make([]int, 0, len(payloads))
	for idx := range payloads {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	desc := s.Description()
	marks := make(map[int]*model.Watermark)
	for _, idx := range indexes {
		if idx < 0 {
			return nil, fmt.Errorf("invalid page index %d", idx)
		}
		text := Render(s.opts.Template, payloads[idx])
		if text == "" {
			continue
		}
		wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("invalid stamp for page %d: %w", idx+1, err)
		}
		marks[idx+1] = wm
	}
	return marks, nil
}

func formatPoints(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
