// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"sort"
	"strings"

	"roster-stamp/internal/normalize"
	"roster-stamp/internal/variants"
)

// exactMatcher requires surname and given name as whole words of the
// light-normalized text. Both words anywhere on the page count as a hit.
// With caseSensitive the words must also agree in case.
type exactMatcher struct {
	names         []variants.Set
	caseSensitive bool
}

func (m *exactMatcher) Strategy() Strategy { return StrategyExact }

func (m *exactMatcher) words(text string) []string {
	if m.caseSensitive {
		return normalize.CaseWords(text)
	}
	return normalize.Words(text)
}

func (m *exactMatcher) Match(pageText, filename string) []Candidate {
	words := make(map[string]struct{})
	for _, w := range m.words(WithFilename(pageText, filename)) {
		words[w] = struct{}{}
	}

	var out []Candidate
	for _, s := range m.names {
		required := append(m.words(s.Surname), m.words(s.Given)...)
		if len(required) == 0 {
			continue
		}
		found := true
		for _, w := range required {
			if _, ok := words[w]; !ok {
				found = false
				break
			}
		}
		if found {
			out = append(out, Candidate{Name: s.Original, Method: MethodExact})
		}
	}
	return out
}

type fuzzyMatcher struct {
	names     []variants.Set
	norm      *normalize.Normalizer
	score     Scorer
	threshold float64
}

func (m *fuzzyMatcher) Strategy() Strategy { return StrategyFuzzy }

func (m *fuzzyMatcher) Match(pageText, filename string) []Candidate {
	words := m.norm.Tokens(WithFilename(pageText, filename))
	if len(words) == 0 {
		return nil
	}

	var out []Candidate
	for _, s := range m.names {
		surname := bestWindowScore(m.score, s.SurnameFolded, words)
		if surname < m.threshold {
			continue
		}
		given := bestWindowScore(m.score, s.GivenFolded, words)
		if given < m.threshold {
			continue
		}
		combined := (surname + given) / 2
		out = append(out, Candidate{Name: s.Original, Method: MethodFuzzy, Score: &combined})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Score > *out[j].Score
	})
	return out
}

// bestWindowScore compares target against every run of page words with the
// same word count as target and returns the highest score.
func bestWindowScore(score Scorer, target string, words []string) float64 {
	size := len(strings.Fields(target))
	if size == 0 || size > len(words) {
		return 0
	}

	best := 0.0
	for i := 0; i+size <= len(words); i++ {
		window := words[i]
		if size > 1 {
			window = strings.Join(words[i:i+size], " ")
		}
		if s := score(target, window); s > best {
			best = s
			if best >= 100 {
				break
			}
		}
	}
	return best
}

// robustMatcher looks for the joined name in the fully normalized page and
// in a copy with all spaces removed, which tolerates OCR that splits or
// merges words inside a name.
type robustMatcher struct {
	names []variants.Set
	norm  *normalize.Normalizer
}

func (m *robustMatcher) Strategy() Strategy { return StrategyRobust }

func (m *robustMatcher) Match(pageText, filename string) []Candidate {
	spaced := m.norm.Heavy(WithFilename(pageText, filename))
	if spaced == "" {
		return nil
	}
	stripped := strings.ReplaceAll(spaced, " ", "")

	var out []Candidate
	for _, s := range m.names {
		if containsName(spaced, stripped, s.JoinedFolded) || containsName(spaced, stripped, s.ReversedFolded) {
			out = append(out, Candidate{Name: s.Original, Method: MethodRobust})
		}
	}
	return out
}

func containsName(spaced, stripped, form string) bool {
	if strings.TrimSpace(form) == "" {
		return false
	}
	if strings.Contains(spaced, form) {
		return true
	}
	return strings.Contains(stripped, strings.ReplaceAll(form, " ", ""))
}
