// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package stamp

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-stamp/internal/join"
	"roster-stamp/internal/testpdf"
)

func TestRender(t *testing.T) {
	full := join.Payload{TourID: "17", WeekdayLabel: "Montag", ShiftTime: "06:00"}
	assert.Equal(t, "17 Montag 06:00", Render(DefaultTemplate, full))
	assert.Equal(t, "17 06:00", Render(DefaultTemplate, join.Payload{TourID: "17", ShiftTime: " 06:00 "}))
	assert.Equal(t, "", Render(DefaultTemplate, join.Payload{}))
	assert.Equal(t, "Tour 17 / Montag", Render("Tour {tour_id}  /  {weekday}", full))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "KW10_Schmidt_annotiert.pdf"), OutputPath("out", "/scans/KW10_Schmidt.pdf", DefaultSuffix))
	assert.Equal(t, filepath.Join("/scans", "a_x.pdf"), OutputPath("", "/scans/a.PDF", "_x"))

	s := New(Options{}, nil)
	assert.Equal(t, filepath.Join("o", "b_annotiert.pdf"), s.OutputPath("o", "b.pdf"))
}

func TestFormatPoints(t *testing.T) {
	for in, want := range map[float64]string{0: "0", 10: "10", -50: "-50", 12.5: "12.5", 7.333: "7.33"} {
		assert.Equal(t, want, formatPoints(in), "%v", in)
	}
	assert.Equal(t, "0", formatPoints(math.Copysign(0, -1)))
}

func TestDescription(t *testing.T) {
	s := New(DefaultOptions(), nil)
	assert.Equal(t, "font:Helvetica, points:12, pos:tl, off:50 -50, scale:1 abs, rot:0, fillcolor:#000000, opacity:1", s.Description())

	s = New(Options{}, nil)
	assert.Equal(t, "font:Helvetica, points:12, pos:tl, off:0 0, scale:1 abs, rot:0, fillcolor:#000000, opacity:1", s.Description(),
		"a zero offset is a valid corner placement")

	s = New(Options{Font: "Courier", FontSize: 9, OffsetX: 12.5, OffsetY: 30, Color: "#FF0000"}, nil)
	assert.Equal(t, "font:Courier, points:9, pos:tl, off:12.5 -30, scale:1 abs, rot:0, fillcolor:#FF0000, opacity:1", s.Description())
}

func TestStamp_CopiesWithoutPayloads(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(in, []byte("not really a pdf"), 0600))

	s := New(Options{}, nil)
	s.write = func(string, string, map[int]*model.Watermark, *model.Configuration) error {
		t.Fatal("writer must not be called without payloads")
		return nil
	}

	out := filepath.Join(dir, "nested", "scan_annotiert.pdf")
	require.NoError(t, s.Stamp(in, out, map[int]join.Payload{0: {}, 2: {TourID: "  "}}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "not really a pdf", string(got))
}

func TestStamp_MapsPagesOneBased(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF"), 0600))

	var got map[int]*model.Watermark
	s := New(Options{}, nil)
	s.write = func(_, _ string, m map[int]*model.Watermark, _ *model.Configuration) error {
		got = m
		return nil
	}

	payloads := map[int]join.Payload{
		0: {TourID: "17", WeekdayLabel: "Montag"},
		1: {},
		3: {ShiftTime: "06:00"},
	}
	require.NoError(t, s.Stamp(in, filepath.Join(dir, "out.pdf"), payloads))

	require.Len(t, got, 2)
	assert.Equal(t, "17 Montag", got[1].TextString)
	assert.Equal(t, "06:00", got[4].TextString)
}

func TestStamp_WriterError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF"), 0600))

	s := New(Options{}, nil)
	s.write = func(string, string, map[int]*model.Watermark, *model.Configuration) error {
		return errors.New("broken xref")
	}
	err := s.Stamp(in, filepath.Join(dir, "out.pdf"), map[int]join.Payload{0: {TourID: "1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken xref")
}

func TestStamp_MissingInput(t *testing.T) {
	dir := t.TempDir()
	err := New(Options{}, nil).Stamp(filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "out.pdf"), nil)
	assert.Error(t, err)
}

func TestStamp_RealPDF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "KW10.pdf")
	require.NoError(t, testpdf.Write(in, [][]string{{"Schmidt Anna"}, {"Weber Jan"}, nil}))

	s := New(Options{}, nil)
	out := s.OutputPath(filepath.Join(dir, "out"), in)
	require.NoError(t, s.Stamp(in, out, map[int]join.Payload{
		0: {TourID: "17", WeekdayLabel: "Montag", ShiftTime: "06:00"},
		2: {TourID: "18"},
	}))

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, api.ValidateFile(out, model.NewDefaultConfiguration()))
}
