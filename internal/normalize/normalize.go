// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldTable maps single runes to their ASCII spelling before Unicode
// decomposition runs. Decomposition alone leaves ß untouched and turns ä
// into a plain a, which is not how German names are transliterated.
type FoldTable map[rune]string

// GermanFold is the default fold table.
func GermanFold() FoldTable {
	return FoldTable{
		'ä': "ae", 'ö': "oe", 'ü': "ue", 'ß': "ss",
		'Ä': "AE", 'Ö': "OE", 'Ü': "UE", 'ẞ': "SS",
	}
}

// Normalizer canonicalizes text for name comparison
type Normalizer struct {
	fold FoldTable
}

// New creates a normalizer with the given fold table. A nil table disables
// letter substitution and leaves only Unicode decomposition.
func New(fold FoldTable) *Normalizer {
	copied := make(FoldTable, len(fold))
	for k, v := range fold {
		copied[k] = v
	}
	return &Normalizer{fold: copied}
}

var defaultNormalizer = New(GermanFold())

// Default returns the normalizer backed by the German fold table
func Default() *Normalizer {
	return defaultNormalizer
}

// Heavy folds, decomposes, strips marks and punctuation, and uppercases.
// Heavy(Heavy(s)) == Heavy(s) for every s.
func (n *Normalizer) Heavy(text string) string {
	if text == "" {
		return ""
	}

	folded := n.Fold(text)

	// Uppercasing can yield decomposable runes again, so decompose twice.
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(unicode.ToUpper),
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
	)
	decomposed, _, err := transform.String(t, folded)
	if err != nil {
		decomposed = strings.ToUpper(folded)
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSpace := false
	for _, r := range decomposed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Fold applies only the letter substitution table. Text is composed to NFC
// first so a decomposed u+U+0308 folds like ü.
func (n *Normalizer) Fold(text string) string {
	if len(n.fold) == 0 {
		return text
	}
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if repl, ok := n.fold[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Light collapses whitespace and uppercases. Diacritics are kept, composed
// to NFC.
func Light(text string) string {
	return strings.ToUpper(Collapse(text))
}

// Collapse composes text to NFC and collapses whitespace, keeping case
func Collapse(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// Words splits light-normalized text into whole words. Hyphens and
// apostrophes inside a word are kept so double surnames survive.
func Words(text string) []string {
	return splitWords(Light(text))
}

// CaseWords is Words without uppercasing
func CaseWords(text string) []string {
	return splitWords(Collapse(text))
}

func splitWords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-'")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '-' || r == '\''
}

// Heavy normalizes with the default German fold table
func Heavy(text string) string {
	return defaultNormalizer.Heavy(text)
}

// Tokens returns the heavy-normalized words of text
func (n *Normalizer) Tokens(text string) []string {
	return strings.Fields(n.Heavy(text))
}
