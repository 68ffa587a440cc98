// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"roster-stamp/internal/audit"
	"roster-stamp/internal/config"
	"roster-stamp/internal/join"
	"roster-stamp/internal/matcher"
	"roster-stamp/internal/normalize"
	"roster-stamp/internal/observability"
	"roster-stamp/internal/pagetext"
	"roster-stamp/internal/parallel"
	"roster-stamp/internal/pipeline"
	"roster-stamp/internal/resilience"
	"roster-stamp/internal/stamp"
	"roster-stamp/internal/version"

	"roster-stamp/internal/formatters"
	_ "roster-stamp/internal/formatters/csv"
	_ "roster-stamp/internal/formatters/json"
	_ "roster-stamp/internal/formatters/text"
	_ "roster-stamp/internal/formatters/xlsx"
	_ "roster-stamp/internal/formatters/yaml"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds command line flag values
type cliFlags struct {
	roster     string
	date       string
	configFile string
	profile    string
	strategy   string
	joinMode   string
	scorer     string
	caseSens   bool
	format     string
	output     string
	stamp      bool
	stampDir   string
	ocr        bool
	ocrLang    string
	workers    int
	auditDB    string
	debug      bool
	verbose    bool
	noColor    bool
	version    bool

	// set records which flags appeared on the command line
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	f := &cliFlags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("roster-stamp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.roster, "roster", "", "Path to the roster workbook (XLSX)")
	fs.StringVar(&f.date, "date", "", "Target date (2006-01-02 or 02.01.2006); default: date in each PDF's filename")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.profile, "profile", "", "Profile name to use from config file")
	fs.StringVar(&f.strategy, "strategy", "", "Matching strategy: exact, fuzzy or robust (default: exact)")
	fs.StringVar(&f.joinMode, "join", "", "Roster join mode: strict, nearest or week (default: strict)")
	fs.StringVar(&f.scorer, "scorer", "", "Fuzzy scorer: "+strings.Join(matcher.ScorerNames(), ", ")+" (default: "+matcher.DefaultScorer+")")
	fs.BoolVar(&f.caseSens, "case-sensitive", false, "Exact strategy compares page words without uppercasing")
	fs.StringVar(&f.format, "format", "", "Output format: "+strings.Join(formatters.List(), ", ")+" (default: text)")
	fs.StringVar(&f.output, "output", "", "Path to output file (if not specified, output to stdout)")
	fs.BoolVar(&f.stamp, "stamp", false, "Write annotated copies of the PDFs")
	fs.StringVar(&f.stampDir, "stamp-dir", "", "Directory for annotated copies (default from config: ./annotiert)")
	fs.BoolVar(&f.ocr, "ocr", false, "OCR pages without a usable text layer (needs pdftoppm and tesseract)")
	fs.StringVar(&f.ocrLang, "ocr-lang", "", "Tesseract language (default: deu)")
	fs.IntVar(&f.workers, "workers", 0, "Pages processed in parallel (default: CPU count, max 8)")
	fs.StringVar(&f.auditDB, "audit-db", "", "Record the run in this SQLite database")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging to stderr")
	fs.BoolVar(&f.verbose, "verbose", false, "Include text source, candidates and errors per page")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.version, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: roster-stamp -roster plan.xlsx [-date 2024-03-04] [flags] file.pdf [more.pdf | dir | glob ...]\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nFormats:\n")
		for _, info := range formatters.GetSupportedFormats() {
			fmt.Fprintf(stderr, "  %-6s %-6s %s\n", info.Name, info.Extension, info.Description)
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, fs.Args(), nil
}

// settings are the values resolved from flags, profile, config and defaults
type settings struct {
	strategy   matcher.Strategy
	joiner     join.Joiner
	scorer     string
	threshold  float64
	caseSens   bool
	format     string
	workers    int
	stamp      bool
	stampDir   string
	ocr        bool
	auditPath  string
	verbose    bool
	debug      bool
	noColor    bool
	targetDate *time.Time
}

// resolveSettings applies flags over the (profile-adjusted) config
func resolveSettings(cfg *config.Config, f *cliFlags) (*settings, error) {
	s := &settings{
		scorer:    cfg.Defaults.Scorer,
		threshold: cfg.Defaults.Threshold,
		caseSens:  cfg.Defaults.CaseSensitive,
		format:    cfg.Defaults.Format,
		workers:   cfg.Defaults.Workers,
		stamp:     cfg.Stamp.Enabled,
		stampDir:  cfg.Stamp.OutputDir,
		ocr:       cfg.OCR.Enabled,
		verbose:   cfg.Defaults.Verbose,
		debug:     cfg.Defaults.Debug,
		noColor:   cfg.Defaults.NoColor,
	}
	if cfg.Audit.Enabled {
		s.auditPath = cfg.Audit.Path
	}

	strategy := cfg.Defaults.Strategy
	if f.set["strategy"] {
		strategy = f.strategy
	}
	st, err := matcher.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	s.strategy = st

	mode := cfg.Defaults.Join
	if f.set["join"] {
		mode = f.joinMode
	}
	m, err := join.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	s.joiner = join.Joiner{Mode: m, MaxDistanceDays: cfg.Defaults.MaxDistanceDays}

	if f.set["scorer"] {
		s.scorer = f.scorer
	}
	if f.set["case-sensitive"] {
		s.caseSens = f.caseSens
	}

	switch {
	case f.set["format"]:
		s.format = f.format
	case f.output != "":
		// infer from the output extension
		if fm, ok := formatters.DefaultRegistry.ForPath(f.output); ok {
			s.format = fm.Name()
		}
	}
	if _, ok := formatters.Get(s.format); !ok {
		return nil, fmt.Errorf("unsupported format '%s'. Available formats: %s", s.format, strings.Join(formatters.List(), ", "))
	}

	if f.set["workers"] {
		if f.workers < 0 {
			return nil, fmt.Errorf("-workers cannot be negative")
		}
		s.workers = f.workers
	}
	if s.workers == 0 {
		s.workers = parallel.DefaultWorkers()
	}

	if f.set["stamp"] {
		s.stamp = f.stamp
	}
	if f.set["stamp-dir"] {
		s.stampDir = f.stampDir
		// a stamp directory implies stamping unless -stamp=false was given
		if !f.set["stamp"] {
			s.stamp = true
		}
	}
	if f.set["ocr"] {
		s.ocr = f.ocr
	}
	if f.set["audit-db"] {
		s.auditPath = f.auditDB
	}
	if f.set["verbose"] {
		s.verbose = f.verbose
	}
	if f.set["debug"] {
		s.debug = f.debug
	}
	if f.set["no-color"] {
		s.noColor = f.noColor
	}

	if f.date != "" {
		t, err := parseDate(f.date)
		if err != nil {
			return nil, err
		}
		s.targetDate = &t
	}
	return s, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02.01.2006", "20060102"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid -date %q (expected 2006-01-02 or 02.01.2006)", s)
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string, stderr io.Writer) *config.Config {
	if configFile == "" {
		configFile = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigOrDefault(configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(stderr, "Using default configuration\n")
	}
	return cfg
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, inputs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.version {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	cfg := loadConfiguration(flags.configFile, stderr)
	if flags.set["ocr-lang"] {
		cfg.OCR.Language = flags.ocrLang
	}
	if flags.profile != "" {
		if err := cfg.ApplyProfile(flags.profile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
	}

	s, err := resolveSettings(cfg, flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if flags.roster == "" {
		fmt.Fprintf(stderr, "Error: -roster is required\n")
		return exitUsage
	}
	pdfs, skipped, err := expandInputs(inputs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	for _, sk := range skipped {
		fmt.Fprintf(stderr, "Warning: Skipping %s: %s\n", sk.Path, sk.Reason)
	}
	if len(pdfs) == 0 {
		fmt.Fprintf(stderr, "Error: no PDF files to process\n")
		return exitUsage
	}
	if formatters.GetFormatInfo(s.format).Binary && flags.output == "" && isTerminal(stdout) {
		fmt.Fprintf(stderr, "Error: %s output is binary; use -output\n", s.format)
		return exitUsage
	}

	var observer *observability.StandardObserver
	if s.debug {
		observer = observability.NewDebugObserver(stderr).StandardObserver
	}

	fold, err := cfg.FoldTable()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	extractCfg := pagetext.Config{MinTextLength: cfg.OCR.MinTextLength}
	if s.ocr {
		ocrCfg, err := cfg.OCRConfig()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFatal
		}
		extractCfg.OCR = pagetext.NewOCR(ocrCfg, pagetext.ExecRunner{}, resilience.DefaultRetryConfig())
	}
	extractor := pagetext.New(extractCfg, pagetext.WithObserver(observer))

	runnerCfg := pipeline.Config{
		Strategy: s.strategy,
		Matcher: matcher.Options{
			Scorer:     s.scorer,
			Threshold:     s.threshold,
			CaseSensitive: s.caseSens,
			Normalizer:    normalize.New(fold),
		},
		Join:     s.joiner,
		Roster:   cfg.RosterOptions(),
		Denylist: cfg.Denylist,
		Workers:  s.workers,
		StampDir: s.stampDir,
	}
	opts := []pipeline.Option{pipeline.WithObserver(observer)}
	if s.stamp {
		opts = append(opts, pipeline.WithStamper(stamp.New(cfg.Stamp.Options, observer)))
	}
	if s.auditPath != "" {
		store, err := openAudit(s.auditPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFatal
		}
		defer store.Close()
		opts = append(opts, pipeline.WithRecorder(store))
	}

	rep, runErr := pipeline.New(runnerCfg, extractor, opts...).Run(ctx, pipeline.Request{
		PDFs:       pdfs,
		Roster:     flags.roster,
		TargetDate: s.targetDate,
	})
	if rep == nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return exitFatal
	}

	if s.format != "text" {
		for _, w := range rep.Warnings {
			fmt.Fprintf(stderr, "Warning: %s\n", w)
		}
	}

	noColor := s.noColor || flags.output != "" || !isTerminal(stdout)
	data, err := formatters.Export(s.format, rep, formatters.FormatterOptions{Verbose: s.verbose, NoColor: noColor})
	if err != nil {
		fmt.Fprintf(stderr, "Error: formatting report: %v\n", err)
		return exitFatal
	}
	if err := writeOutput(flags.output, data, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "Error: run interrupted: %v\n", runErr)
		return exitFatal
	}
	return exitOK
}

func openAudit(path string) (*audit.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return audit.Open(path)
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cleanPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
