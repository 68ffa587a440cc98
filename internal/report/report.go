// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report holds the ordered outcome of a batch run. A report carries
// no timestamps or run identifiers, so identical inputs format identically.
package report

import (
	"roster-stamp/internal/join"
)

// PageResult is the outcome for one page of one PDF
type PageResult struct {
	PDFName      string   `json:"pdf_name" yaml:"pdf_name"`
	PageIndex    int      `json:"page_index" yaml:"page_index"`
	TargetDate   string   `json:"target_date,omitempty" yaml:"target_date,omitempty"`
	MatchedName  string   `json:"matched_name,omitempty" yaml:"matched_name,omitempty"`
	TourID       string   `json:"tour_id,omitempty" yaml:"tour_id,omitempty"`
	WeekdayLabel string   `json:"weekday_label,omitempty" yaml:"weekday_label,omitempty"`
	ShiftTime    string   `json:"shift_time,omitempty" yaml:"shift_time,omitempty"`
	MatchMethod  string   `json:"match_method" yaml:"match_method"`
	MatchScore   *float64 `json:"match_score,omitempty" yaml:"match_score,omitempty"`
	TextSource   string   `json:"text_source" yaml:"text_source"`
	Candidates   []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty"`
	Warning      string   `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Matched reports whether a roster name was attached to the page
func (p PageResult) Matched() bool {
	return p.MatchedName != ""
}

// Payload returns the stamp data joined to the page
func (p PageResult) Payload() join.Payload {
	return join.Payload{TourID: p.TourID, WeekdayLabel: p.WeekdayLabel, ShiftTime: p.ShiftTime}
}

// SetPayload copies joined stamp data onto the page
func (p *PageResult) SetPayload(pl join.Payload) {
	p.TourID, p.WeekdayLabel, p.ShiftTime = pl.TourID, pl.WeekdayLabel, pl.ShiftTime
}

// FileError records a PDF that could not be processed at all
type FileError struct {
	PDFName string `json:"pdf_name" yaml:"pdf_name"`
	Error   string `json:"error" yaml:"error"`
}

// StampedFile records an annotated copy written by the run
type StampedFile struct {
	PDFName string `json:"pdf_name" yaml:"pdf_name"`
	Output  string `json:"output" yaml:"output"`
	Pages   int    `json:"stamped_pages" yaml:"stamped_pages"`
}

// Summary counts the run's outcomes
type Summary struct {
	PDFs       int `json:"pdfs" yaml:"pdfs"`
	Pages      int `json:"pages" yaml:"pages"`
	Matched    int `json:"matched" yaml:"matched"`
	Unmatched  int `json:"unmatched" yaml:"unmatched"`
	PageErrors int `json:"page_errors" yaml:"page_errors"`
	FileErrors int `json:"file_errors" yaml:"file_errors"`
}

// Report is the ordered result of a run
type Report struct {
	Strategy   string        `json:"strategy" yaml:"strategy"`
	Scorer     string        `json:"scorer,omitempty" yaml:"scorer,omitempty"`
	JoinMode   string        `json:"join_mode" yaml:"join_mode"`
	Warnings   []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Pages      []PageResult  `json:"pages" yaml:"pages"`
	FileErrors []FileError   `json:"file_errors,omitempty" yaml:"file_errors,omitempty"`
	Stamped    []StampedFile `json:"stamped,omitempty" yaml:"stamped,omitempty"`
	Summary    Summary       `json:"summary" yaml:"summary"`
}

// AddWarning appends a warning once
func (r *Report) AddWarning(msg string) {
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}

// AddPDF appends the pages of one PDF, in page order
func (r *Report) AddPDF(pages []PageResult) {
	r.Summary.PDFs++
	for _, p := range pages {
		r.Pages = append(r.Pages, p)
		r.Summary.Pages++
		if p.Matched() {
			r.Summary.Matched++
		} else {
			r.Summary.Unmatched++
		}
		if p.Error != "" {
			r.Summary.PageErrors++
		}
	}
}

// AddFileError records a PDF that produced no pages
func (r *Report) AddFileError(pdfName string, err error) {
	r.Summary.PDFs++
	r.Summary.FileErrors++
	r.FileErrors = append(r.FileErrors, FileError{PDFName: pdfName, Error: err.Error()})
}

// AddStamped records an annotated output file
func (r *Report) AddStamped(pdfName, output string, pages int) {
	r.Stamped = append(r.Stamped, StampedFile{PDFName: pdfName, Output: output, Pages: pages})
}
