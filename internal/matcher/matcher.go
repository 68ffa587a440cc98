// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"errors"
	"fmt"
	"strings"

	"roster-stamp/internal/normalize"
	"roster-stamp/internal/variants"
)

// Strategy selects how roster names are accepted against page text
type Strategy string

const (
	StrategyExact  Strategy = "exact"
	StrategyFuzzy  Strategy = "fuzzy"
	StrategyRobust Strategy = "robust"
)

// Method records which strategy accepted a page's name
type Method string

const (
	MethodExact  Method = "exact"
	MethodFuzzy  Method = "fuzzy"
	MethodRobust Method = "robust"
	MethodNone   Method = "none"
)

// DefaultThreshold is the minimum fuzzy ratio for both name parts
const DefaultThreshold = 90.0

// FilenamePrefix starts the synthetic first line added to every page text
const FilenamePrefix = "__FILENAME__: "

// ErrUnknownStrategy is returned for strategy names outside exact, fuzzy and robust
var ErrUnknownStrategy = errors.New("unknown matching strategy")

// Candidate is one roster name accepted on a page
type Candidate struct {
	Name   string
	Method Method
	Score  *float64
}

// Matcher accepts roster names against the text of a single page. A page
// may yield several candidates; ties are left to the caller.
type Matcher interface {
	Match(pageText, filename string) []Candidate
	Strategy() Strategy
}

// Options configures matcher construction
type Options struct {
	// Scorer names the fuzzy similarity function; empty means DefaultScorer
	Scorer     string
	Threshold  float64
	Normalizer *normalize.Normalizer
	// CaseSensitive makes the exact strategy compare words without
	// uppercasing; fuzzy and robust always compare folded text
	CaseSensitive bool
}

// Resolution describes the strategy that will actually run
type Resolution struct {
	Requested Strategy
	Effective Strategy
	Scorer    string
	Warning   string
}

// ParseStrategy converts a configuration value to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyExact:
		return StrategyExact, nil
	case StrategyFuzzy:
		return StrategyFuzzy, nil
	case StrategyRobust:
		return StrategyRobust, nil
	}
	return "", fmt.Errorf("%w: %q (expected exact, fuzzy or robust)", ErrUnknownStrategy, s)
}

// Resolve checks whether the requested strategy can run. A fuzzy request
// whose scorer is not registered falls back to exact with a warning.
func Resolve(requested Strategy, scorerName string) (Resolution, Scorer) {
	res := Resolution{Requested: requested, Effective: requested}
	if requested != StrategyFuzzy {
		return res, nil
	}

	if scorerName == "" {
		scorerName = DefaultScorer
	}
	res.Scorer = scorerName

	scorer, ok := LookupScorer(scorerName)
	if !ok {
		res.Effective = StrategyExact
		res.Warning = fmt.Sprintf("fuzzy scorer %q is not available (known: %s); falling back to exact matching",
			scorerName, strings.Join(ScorerNames(), ", "))
		return res, nil
	}
	return res, scorer
}

// New builds a matcher for the given roster names. Names with fewer than
// two tokens are skipped. The returned Resolution carries any downgrade
// warning, which callers must surface.
func New(requested Strategy, names []string, opts Options) (Matcher, Resolution, error) {
	if _, err := ParseStrategy(string(requested)); err != nil {
		return nil, Resolution{}, err
	}
	res, scorer := Resolve(requested, opts.Scorer)
	return Build(res, scorer, names, opts), res, nil
}

// Build creates the matcher for a strategy already checked by Resolve, so
// a batch resolves once and builds one matcher per candidate list. A fuzzy
// resolution without a scorer builds an exact matcher.
func Build(res Resolution, scorer Scorer, names []string, opts Options) Matcher {
	n := opts.Normalizer
	if n == nil {
		n = normalize.Default()
	}

	sets := make([]variants.Set, 0, len(names))
	for _, name := range names {
		if s, ok := variants.BuildWith(n, name); ok {
			sets = append(sets, s)
		}
	}

	switch {
	case res.Effective == StrategyFuzzy && scorer != nil:
		threshold := opts.Threshold
		if threshold <= 0 {
			threshold = DefaultThreshold
		}
		return &fuzzyMatcher{names: sets, norm: n, score: scorer, threshold: threshold}
	case res.Effective == StrategyRobust:
		return &robustMatcher{names: sets, norm: n}
	default:
		return &exactMatcher{names: sets, caseSensitive: opts.CaseSensitive}
	}
}

// WithFilename prefixes page text with the synthetic filename line so
// filename tokens take part in matching like body text.
func WithFilename(pageText, filename string) string {
	return FilenamePrefix + filename + "\n" + pageText
}

// Names returns the accepted names in order
func Names(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Name
	}
	return out
}
