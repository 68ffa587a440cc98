// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package variants

import (
	"strings"

	"roster-stamp/internal/normalize"
)

// Set holds the textual forms under which one roster name may appear in
// page text. Token 0 of the name is the surname, token 1 the given name;
// further tokens are ignored.
type Set struct {
	Original string

	Surname string
	Given   string

	SurnameLight  string
	GivenLight    string
	SurnameFolded string
	GivenFolded   string

	Joined         string // "SURNAME GIVEN"
	JoinedFolded   string
	Reversed       string // "GIVEN SURNAME"
	ReversedFolded string
	Comma          string // "SURNAME,GIVEN"

	GivenAbbrev   string // "GIVEN S."
	SurnameAbbrev string // "G. SURNAME"
}

// Build derives the variant set for fullName. It reports false when the
// name has fewer than two whitespace-separated tokens.
func Build(fullName string) (Set, bool) {
	return BuildWith(normalize.Default(), fullName)
}

// BuildWith derives the variant set using a specific normalizer
func BuildWith(n *normalize.Normalizer, fullName string) (Set, bool) {
	tokens := strings.Fields(fullName)
	if len(tokens) < 2 {
		return Set{}, false
	}
	surname, given := tokens[0], tokens[1]

	s := Set{
		Original:      fullName,
		Surname:       surname,
		Given:         given,
		SurnameLight:  normalize.Light(surname),
		GivenLight:    normalize.Light(given),
		SurnameFolded: n.Heavy(surname),
		GivenFolded:   n.Heavy(given),
	}

	s.Joined = s.SurnameLight + " " + s.GivenLight
	s.Reversed = s.GivenLight + " " + s.SurnameLight
	s.JoinedFolded = strings.TrimSpace(s.SurnameFolded + " " + s.GivenFolded)
	s.ReversedFolded = strings.TrimSpace(s.GivenFolded + " " + s.SurnameFolded)
	s.Comma = s.SurnameLight + "," + s.GivenLight
	s.GivenAbbrev = s.GivenLight + " " + initial(s.SurnameLight) + "."
	s.SurnameAbbrev = initial(s.GivenLight) + ". " + s.SurnameLight

	return s, true
}

// Forms returns every distinct non-empty form, original first
func (s Set) Forms() []string {
	all := []string{
		s.Original,
		s.SurnameLight, s.SurnameFolded,
		s.GivenLight, s.GivenFolded,
		s.Joined, s.JoinedFolded,
		s.Reversed, s.ReversedFolded,
		s.Comma,
		s.GivenAbbrev, s.SurnameAbbrev,
	}

	seen := make(map[string]bool, len(all))
	forms := make([]string, 0, len(all))
	for _, f := range all {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		forms = append(forms, f)
	}
	return forms
}

// SurnameTokens returns the folded surname split into words. A double
// surname such as Müller-Lüdenscheid yields two tokens.
func (s Set) SurnameTokens() []string {
	return strings.Fields(s.SurnameFolded)
}

func initial(word string) string {
	for _, r := range word {
		return string(r)
	}
	return ""
}
