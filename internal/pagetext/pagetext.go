// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pagetext turns each page of a PDF into text, preferring the
// embedded text layer and falling back to OCR for scanned pages.
package pagetext

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"roster-stamp/internal/observability"
)

// Source tells where a page's text came from
type Source string

const (
	SourceText Source = "text"
	SourceOCR  Source = "ocr"
	SourceNone Source = "none"
)

// DefaultMinTextLength is the trimmed text length below which a page
// counts as scanned
const DefaultMinTextLength = 30

// Page is the extracted text of one page. Err is set when extraction
// failed; Text is then empty.
type Page struct {
	Index  int
	Text   string
	Source Source
	Err    error
}

// PageSource yields the pages of one opened PDF
type PageSource interface {
	NumPages() int
	// Page extracts the 0-based page. It never panics and reports
	// failures through Page.Err.
	Page(ctx context.Context, index int) Page
	Close() error
}

// Config controls extraction
type Config struct {
	MinTextLength int
	// OCR is nil when OCR is disabled
	OCR *OCR
}

// Extractor opens PDFs and extracts page text
type Extractor struct {
	cfg      Config
	open     Opener
	count    PageCounter
	observer *observability.StandardObserver
}

// Option customizes an Extractor
type Option func(*Extractor)

// WithOpener replaces the ledongthuc text layer
func WithOpener(o Opener) Option {
	return func(e *Extractor) { e.open = o }
}

// WithPageCounter replaces the pdfcpu page counter
func WithPageCounter(c PageCounter) Option {
	return func(e *Extractor) { e.count = c }
}

// WithObserver records per-page timing
func WithObserver(obs *observability.StandardObserver) Option {
	return func(e *Extractor) { e.observer = obs }
}

// New creates an Extractor
func New(cfg Config, opts ...Option) *Extractor {
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	e := &Extractor{
		cfg:   cfg,
		open:  OpenTextLayer,
		count: CountPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open prepares a PDF for per-page extraction. When the text layer cannot
// be read, the page count comes from pdfcpu and every page goes to OCR.
// A file neither library can read is an error.
func (e *Extractor) Open(path string) (PageSource, error) {
	doc, openErr := e.open(path)
	if openErr == nil {
		return &source{e: e, path: path, doc: doc, pages: doc.NumPages()}, nil
	}

	n, countErr := e.count(path)
	if countErr != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), errors.Join(openErr, countErr))
	}
	return &source{e: e, path: path, pages: n, layerErr: openErr}, nil
}

// Pages extracts every page in order. Cancellation stops between pages and
// returns the pages extracted so far.
func (e *Extractor) Pages(ctx context.Context, path string) ([]Page, error) {
	src, err := e.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pages := make([]Page, 0, src.NumPages())
	for i := 0; i < src.NumPages(); i++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		pages = append(pages, src.Page(ctx, i))
	}
	return pages, nil
}

type source struct {
	e        *Extractor
	path     string
	doc      Document
	pages    int
	layerErr error
}

func (s *source) NumPages() int {
	return s.pages
}

func (s *source) Close() error {
	if s.doc == nil {
		return nil
	}
	return s.doc.Close()
}

func (s *source) Page(ctx context.Context, index int) (page Page) {
	page = Page{Index: index, Source: SourceNone}
	done := s.e.observer.StartTiming("pagetext", "extract_page", s.path)
	defer func() {
		if r := recover(); r != nil {
			page = Page{Index: index, Source: SourceNone, Err: fmt.Errorf("page %d: %v", index+1, r)}
		}
		meta := map[string]interface{}{"page": index, "source": string(page.Source), "text_length": len(page.Text)}
		if page.Err != nil {
			meta["error"] = page.Err.Error()
		}
		done(page.Err == nil, meta)
	}()

	if index < 0 || index >= s.pages {
		page.Err = fmt.Errorf("page %d out of range (1-%d)", index+1, s.pages)
		return page
	}

	var text string
	layerErr := s.layerErr
	if s.doc != nil {
		text, layerErr = s.doc.PageText(index)
		if layerErr != nil {
			text = ""
		}
	}

	if len(strings.TrimSpace(text)) >= s.e.cfg.MinTextLength {
		page.Text, page.Source = text, SourceText
		return page
	}

	if s.e.cfg.OCR == nil {
		if layerErr != nil {
			page.Err = layerErr
			return page
		}
		if strings.TrimSpace(text) != "" {
			page.Text, page.Source = text, SourceText
		}
		return page
	}

	ocrText, err := s.e.cfg.OCR.Page(ctx, s.path, index)
	if err != nil {
		page.Err = err
		return page
	}
	page.Text, page.Source = ocrText, SourceOCR
	return page
}
