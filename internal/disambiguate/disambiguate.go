// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package disambiguate

import (
	"path/filepath"
	"strings"

	"roster-stamp/internal/normalize"
	"roster-stamp/internal/variants"
)

// DefaultDenylist holds surnames that OCR of the roster scans is known to
// report without the driver being on the page.
var DefaultDenylist = []string{"Adler"}

// Chooser picks a single name when several candidates match one page
type Chooser struct {
	norm     *normalize.Normalizer
	denylist map[string]bool
}

// NewChooser creates a chooser. Denylist entries are compared after heavy
// normalization, so "Adler" and "ADLER" are the same entry.
func NewChooser(denylist []string, n *normalize.Normalizer) *Chooser {
	if n == nil {
		n = normalize.Default()
	}
	c := &Chooser{norm: n, denylist: make(map[string]bool, len(denylist))}
	for _, d := range denylist {
		if key := n.Heavy(d); key != "" {
			c.denylist[key] = true
		}
	}
	return c
}

// FilenameTokens returns the uppercase, folded tokens of a file name with
// its extension removed
func (c *Chooser) FilenameTokens(filename string) map[string]bool {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	tokens := make(map[string]bool)
	for _, t := range c.norm.Tokens(base) {
		tokens[t] = true
	}
	return tokens
}

// Choose returns the candidate to use for a page. Candidates must be in
// discovery order. The result is always one of the candidates.
//
// A denylisted candidate is kept only when the filename names its surname.
// When every candidate is denylisted and none is named by the filename, the
// result is absent and the page stays unmatched.
func (c *Chooser) Choose(candidates []string, filename string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	tokens := c.FilenameTokens(filename)

	remaining := make([]string, 0, len(candidates))
	for _, name := range candidates {
		surname := c.surnameTokens(name)
		if c.denylist[strings.Join(surname, " ")] && !allPresent(surname, tokens) {
			continue
		}
		remaining = append(remaining, name)
	}
	if len(remaining) == 0 {
		return "", false
	}

	for _, name := range remaining {
		if allPresent(c.surnameTokens(name), tokens) {
			return name, true
		}
	}
	return remaining[0], true
}

func (c *Chooser) surnameTokens(name string) []string {
	if s, ok := variants.BuildWith(c.norm, name); ok {
		return s.SurnameTokens()
	}
	return c.norm.Tokens(name)
}

func allPresent(words []string, set map[string]bool) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !set[w] {
			return false
		}
	}
	return true
}
