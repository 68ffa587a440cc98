// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"reflect"
	"testing"
)

func TestHeavy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"double surname", "Müller-Lüdenscheid", "MUELLER LUEDENSCHEID"},
		{"sharp s", "Straße", "STRASSE"},
		{"capital umlaut", "ÖZTÜRK", "OEZTUERK"},
		{"accent stripped", "José Hernández", "JOSE HERNANDEZ"},
		{"ligature", "ﬁscher", "FISCHER"},
		{"punctuation runs", "  Schmidt,,  Anna!! ", "SCHMIDT ANNA"},
		{"line breaks", "MUEL\nLER\tTHOMAS", "MUEL LER THOMAS"},
		{"digits kept", "Tour_17-KW12.pdf", "TOUR 17 KW12 PDF"},
		{"only punctuation", "--- ..", ""},
		{"decomposed umlaut", "Mu\u0308ller", "MUELLER"},
		{"decomposed umlaut after sharp s", "Stra\u00dfe Go\u0308tz", "STRASSE GOETZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Heavy(tt.input); got != tt.want {
				t.Errorf("Heavy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHeavy_Idempotent(t *testing.T) {
	inputs := []string{
		"Müller-Lüdenscheid",
		"ﬁscher ǰosef",
		"Ærøskøbing Straße",
		"  __FILENAME__: Tour_Mueller_KW12.pdf\nSCHMIDT ANNA Unterschrift ",
		"Ĳssel ǅemal",
	}
	for _, in := range inputs {
		once := Heavy(in)
		twice := Heavy(once)
		if once != twice {
			t.Errorf("Heavy not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestLight(t *testing.T) {
	if got := Light("  müller \n thomas "); got != "MÜLLER THOMAS" {
		t.Errorf("Light kept wrong form: %q", got)
	}
	if got := Light("mu\u0308ller"); got != "MÜLLER" {
		t.Errorf("Light should compose decomposed umlauts, got %q", got)
	}
	if got := Light(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestWords(t *testing.T) {
	got := Words("__FILENAME__: Tour_Mueller_KW12.pdf\nHerr Müller-Lüdenscheid, Thomas. 'Ok'")
	want := []string{"FILENAME", "TOUR", "MUELLER", "KW12", "PDF", "HERR", "MÜLLER-LÜDENSCHEID", "THOMAS", "OK"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestNormalizer_CustomFold(t *testing.T) {
	n := New(FoldTable{'ø': "oe", 'Ø': "OE"})
	if got := n.Heavy("Søren"); got != "SOEREN" {
		t.Errorf("custom fold: got %q", got)
	}
	// Without the German table ü only loses its mark.
	if got := n.Heavy("Müller"); got != "MULLER" {
		t.Errorf("expected decomposition fallback, got %q", got)
	}
}

func TestNormalizer_NilFold(t *testing.T) {
	n := New(nil)
	if got := n.Fold("Straße"); got != "Straße" {
		t.Errorf("nil fold table changed text: %q", got)
	}
}
