// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"sort"
	"unicode/utf8"

	agnivade "github.com/agnivade/levenshtein"
	"github.com/hbollon/go-edlib"
	lev "github.com/texttheater/golang-levenshtein/levenshtein"
)

// Scorer returns the similarity of two strings on a 0-100 scale
type Scorer func(a, b string) float64

// DefaultScorer is the indel ratio: substitutions cost two edits, so a
// single dropped letter in a seven-letter name still scores above 90.
const DefaultScorer = "ratio"

var scorers = map[string]Scorer{
	"ratio":        indelRatio,
	"levenshtein":  levenshteinRatio,
	"jaro-winkler": jaroWinkler,
}

// LookupScorer returns the registered scorer with the given name
func LookupScorer(name string) (Scorer, bool) {
	s, ok := scorers[name]
	return s, ok
}

// ScorerNames lists the registered scorer names in sorted order
func ScorerNames() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func indelRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	return 100 * lev.RatioForStrings([]rune(a), []rune(b), lev.DefaultOptions)
}

func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	d := agnivade.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

func jaroWinkler(a, b string) float64 {
	return 100 * float64(edlib.JaroWinklerSimilarity(a, b))
}
