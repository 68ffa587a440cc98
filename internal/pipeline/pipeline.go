// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs one batch: it parses the roster, matches every PDF
// page against the drivers scheduled for the target date, joins the roster
// payload and optionally stamps and audits the result.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"roster-stamp/internal/audit"
	"roster-stamp/internal/disambiguate"
	"roster-stamp/internal/join"
	"roster-stamp/internal/matcher"
	"roster-stamp/internal/observability"
	"roster-stamp/internal/pagetext"
	"roster-stamp/internal/parallel"
	"roster-stamp/internal/report"
	"roster-stamp/internal/roster"
)

// TextSource opens a PDF for per-page text extraction
type TextSource interface {
	Open(path string) (pagetext.PageSource, error)
}

// Stamper writes annotated PDF copies
type Stamper interface {
	Stamp(inPath, outPath string, payloads map[int]join.Payload) error
	OutputPath(outputDir, inPath string) string
}

// Recorder persists a finished run
type Recorder interface {
	Record(ctx context.Context, runID string, meta audit.RunMeta, rep *report.Report) error
}

// Config is the immutable run configuration
type Config struct {
	Strategy matcher.Strategy
	Matcher  matcher.Options
	Join     join.Joiner
	Roster   roster.Options
	// Denylist nil means disambiguate.DefaultDenylist
	Denylist []string
	// Workers <= 1 processes pages sequentially
	Workers int
	// StampDir is where annotated copies go; empty means next to the input
	StampDir string
	// Now is the reference date for PDFs without a target date; nil means
	// time.Now
	Now func() time.Time
}

// Request names the inputs of one run
type Request struct {
	PDFs   []string
	Roster string
	// TargetDate overrides the date found in each PDF's filename
	TargetDate *time.Time
}

// runMatcher is the matcher capability resolved once per run
type runMatcher struct {
	resolution matcher.Resolution
	scorer     matcher.Scorer
}

// Runner executes runs. It is safe to reuse across runs.
type Runner struct {
	cfg      Config
	text     TextSource
	stamper  Stamper
	recorder Recorder
	chooser  *disambiguate.Chooser
	observer *observability.StandardObserver
}

// Option customizes a Runner
type Option func(*Runner)

// WithStamper enables annotated output
func WithStamper(s Stamper) Option {
	return func(r *Runner) { r.stamper = s }
}

// WithRecorder enables the audit history
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithObserver enables timing records and debug traces
func WithObserver(obs *observability.StandardObserver) Option {
	return func(r *Runner) { r.observer = obs }
}

// New creates a Runner
func New(cfg Config, text TextSource, opts ...Option) *Runner {
	denylist := cfg.Denylist
	if denylist == nil {
		denylist = disambiguate.DefaultDenylist
	}
	r := &Runner{
		cfg:  cfg,
		text: text,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.chooser = disambiguate.NewChooser(denylist, cfg.Matcher.Normalizer)
	return r
}

// Run processes every PDF of the request in order. A roster without entries
// is fatal. On cancellation the pages finished so far are returned together
// with ctx.Err().
func (r *Runner) Run(ctx context.Context, req Request) (*report.Report, error) {
	if _, err := matcher.ParseStrategy(string(r.cfg.Strategy)); err != nil {
		return nil, err
	}
	if _, err := join.ParseMode(string(r.cfg.Join.Mode)); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	r.observer.SetRunID(runID)
	started := time.Now()
	finishTiming := r.observer.StartTiming("pipeline", "run", req.Roster)

	parsed, err := roster.ParseFile(req.Roster, r.cfg.Roster)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("roster %s: %w", filepath.Base(req.Roster), err)
	}
	for _, issue := range parsed.Issues {
		r.debug().LogDetail("roster", "skipped "+issue.String())
	}
	r.debug().LogMetric("roster", "entries", len(parsed.Entries))

	resolution, scorer := matcher.Resolve(r.cfg.Strategy, r.cfg.Matcher.Scorer)
	rm := runMatcher{resolution: resolution, scorer: scorer}
	rep := &report.Report{
		Strategy: string(resolution.Effective),
		Scorer:   resolution.Scorer,
		JoinMode: string(r.cfg.Join.Mode),
	}
	if resolution.Warning != "" {
		rep.AddWarning(resolution.Warning)
		r.observer.Warn("matcher", resolution.Warning)
	}

	var runErr error
	for _, pdf := range req.PDFs {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if runErr = r.processPDF(ctx, pdf, req.TargetDate, parsed.Entries, rm, rep); runErr != nil {
			break
		}
	}

	if r.recorder != nil && runErr == nil {
		meta := audit.RunMeta{StartedAt: started, Roster: filepath.Base(req.Roster)}
		if err := r.recorder.Record(ctx, runID, meta, rep); err != nil {
			rep.AddWarning(fmt.Sprintf("audit record failed: %v", err))
			r.observer.Warn("audit", err.Error())
		}
	}

	finishTiming(runErr == nil, map[string]interface{}{
		"pdfs":    rep.Summary.PDFs,
		"pages":   rep.Summary.Pages,
		"matched": rep.Summary.Matched,
	})
	return rep, runErr
}

// processPDF adds one PDF's pages to rep. Only cancellation is returned as
// an error; everything else is recorded in the report.
func (r *Runner) processPDF(ctx context.Context, pdf string, explicit *time.Time, entries []roster.Entry, rm runMatcher, rep *report.Report) error {
	name := filepath.Base(pdf)
	finishStep := r.debug().StartStep("pipeline", "process_pdf", pdf)

	src, err := r.text.Open(pdf)
	if err != nil {
		rep.AddFileError(name, err)
		finishStep(false, err.Error())
		return nil
	}

	// Without a date the nearest roster date to today decides
	joiner := r.cfg.Join
	var dateWarning string
	target, ok := TargetDate(explicit, name)
	if !ok {
		target = dayOf(r.now())
		joiner = join.Joiner{Mode: join.ModeNearest, MaxDistanceDays: r.cfg.Join.MaxDistanceDays}
		dateWarning = fmt.Sprintf("%s: %s; joined the nearest roster date to %s", name, ErrNoTargetDate, target.Format("2006-01-02"))
		rep.AddWarning(dateWarning)
		r.observer.Warn("pipeline", dateWarning)
	}

	names := joiner.Candidates(target, entries)
	m := matcher.Build(rm.resolution, rm.scorer, names, r.cfg.Matcher)
	r.debug().LogMetric("pipeline", "candidate_names", len(names))

	handler := func(ctx context.Context, index int) report.PageResult {
		res := r.matchPage(src.Page(ctx, index), name, target, joiner, entries, m)
		res.Warning = dateWarning
		return res
	}
	results, stats, procErr := parallel.ProcessPages(ctx, r.cfg.Workers, src.NumPages(), handler, r.observer)
	src.Close()

	pages := make([]report.PageResult, len(results))
	for i, res := range results {
		pages[i] = res.Value
	}
	rep.AddPDF(pages)
	if procErr != nil {
		finishStep(false, procErr.Error())
		return procErr
	}

	if r.stamper != nil {
		r.stampPDF(pdf, name, pages, rep)
	}
	finishStep(true, fmt.Sprintf("%d page(s) with %d worker(s)", stats.Completed, stats.WorkerCount))
	return nil
}

// matchPage runs match, disambiguation and join for one extracted page
func (r *Runner) matchPage(page pagetext.Page, pdfName string, target time.Time, joiner join.Joiner, entries []roster.Entry, m matcher.Matcher) report.PageResult {
	res := report.PageResult{
		PDFName:     pdfName,
		PageIndex:   page.Index,
		TargetDate:  target.Format("2006-01-02"),
		MatchMethod: string(matcher.MethodNone),
		TextSource:  string(page.Source),
	}
	if page.Err != nil {
		res.Error = page.Err.Error()
	}

	// A failed page still carries the filename line, which may name the driver
	candidates := m.Match(page.Text, pdfName)
	res.Candidates = matcher.Names(candidates)

	chosen, ok := r.chooser.Choose(res.Candidates, pdfName)
	if !ok {
		return res
	}
	for _, c := range candidates {
		if c.Name == chosen {
			res.MatchedName = c.Name
			res.MatchMethod = string(c.Method)
			res.MatchScore = c.Score
			break
		}
	}

	if entry, ok := joiner.Lookup(chosen, target, entries); ok {
		res.SetPayload(join.PayloadFor(entry))
	}
	return res
}

func (r *Runner) stampPDF(pdf, name string, pages []report.PageResult, rep *report.Report) {
	payloads := make(map[int]join.Payload)
	for _, p := range pages {
		if pl := p.Payload(); p.Matched() && !pl.Empty() {
			payloads[p.PageIndex] = pl
		}
	}

	out := r.stamper.OutputPath(r.cfg.StampDir, pdf)
	if err := r.stamper.Stamp(pdf, out, payloads); err != nil {
		rep.AddWarning(fmt.Sprintf("stamping %s failed: %v", name, err))
		r.observer.Warn("stamp", err.Error())
		return
	}
	rep.AddStamped(name, out, len(payloads))
}

func (r *Runner) now() time.Time {
	if r.cfg.Now != nil {
		return r.cfg.Now()
	}
	return time.Now()
}

func (r *Runner) debug() *observability.DebugObserver {
	if r.observer == nil {
		return nil
	}
	return r.observer.DebugObserver
}
