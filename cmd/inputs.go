// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"roster-stamp/internal/paths"
)

// maxPDFSize skips files that are too large to be a scanned driver sheet
const maxPDFSize = 200 * 1024 * 1024

// SkippedFile represents a file that was skipped during input expansion
type SkippedFile struct {
	Path   string
	Reason string
}

// expandInputs turns file, directory and glob arguments into a list of PDF
// paths. Directories contribute their top-level PDFs in name order;
// duplicates are dropped.
func expandInputs(args []string) ([]string, []SkippedFile, error) {
	var (
		pdfs    []string
		skipped []SkippedFile
		seen    = make(map[string]bool)
	)
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil && !seen[abs] {
			seen[abs] = true
			pdfs = append(pdfs, path)
		}
	}
	consider := func(path string) {
		if reason := checkPDF(path); reason != "" {
			skipped = append(skipped, SkippedFile{Path: path, Reason: reason})
			return
		}
		add(path)
	}

	for _, arg := range args {
		path := paths.NormalizePath(arg)
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
			}
			for _, e := range entries {
				if !e.IsDir() && isPDFName(e.Name()) {
					consider(filepath.Join(path, e.Name()))
				}
			}
		case err == nil:
			consider(path)
		case strings.ContainsAny(path, "*?["):
			matches, err := filepath.Glob(path)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid glob pattern %s: %w", arg, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				if isPDFName(m) {
					consider(m)
				}
			}
		default:
			return nil, nil, fmt.Errorf("path does not exist or is not accessible: %s", arg)
		}
	}
	return pdfs, skipped, nil
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// checkPDF returns a skip reason, or "" when the file should be processed
func checkPDF(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "not accessible"
	}
	if !info.Mode().IsRegular() {
		return "not a regular file"
	}
	if !isPDFName(path) {
		return "not a PDF file"
	}
	if info.Size() > maxPDFSize {
		return fmt.Sprintf("file too large (max size: %dMB)", maxPDFSize/(1024*1024))
	}
	return ""
}
