// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package disambiguate

import (
	"testing"
)

func TestChoose(t *testing.T) {
	c := NewChooser(DefaultDenylist, nil)

	tests := []struct {
		name       string
		candidates []string
		filename   string
		want       string
		wantOK     bool
	}{
		{"empty", nil, "Tour_Mueller.pdf", "", false},
		{"single", []string{"Schmidt Anna"}, "scan.pdf", "Schmidt Anna", true},
		{"shared surname falls back to first", []string{"Mueller Thomas", "Mueller Anna"}, "Tour_Mueller_KW12.pdf", "Mueller Thomas", true},
		{"filename surname wins", []string{"Schmidt Anna", "Mueller Thomas"}, "Tour_Mueller_KW12.pdf", "Mueller Thomas", true},
		{"umlaut folded in filename", []string{"Schmidt Anna", "Müller Thomas"}, "Tour-Müller.pdf", "Müller Thomas", true},
		{"extension ignored", []string{"Schmidt Anna", "Pdf Max"}, "scan.pdf", "Schmidt Anna", true},
		{"no filename evidence keeps order", []string{"Weber Jan", "Schmidt Anna"}, "scan_0001.pdf", "Weber Jan", true},
		{"denylisted surname dropped", []string{"Adler Klaus", "Schmidt Anna"}, "scan.pdf", "Schmidt Anna", true},
		{"denylist override by filename", []string{"Adler Klaus", "Schmidt Anna"}, "Adler_KW12.pdf", "Adler Klaus", true},
		{"only denylisted candidates", []string{"Adler Klaus"}, "scan.pdf", "", false},
		{"double surname needs all parts", []string{"Schmidt Anna", "Müller-Lüdenscheid Thomas"}, "Mueller_Luedenscheid.pdf", "Müller-Lüdenscheid Thomas", true},
		{"double surname partial", []string{"Schmidt Anna", "Müller-Lüdenscheid Thomas"}, "Mueller.pdf", "Schmidt Anna", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Choose(tt.candidates, tt.filename)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Choose(%v, %q) = (%q, %v), want (%q, %v)",
					tt.candidates, tt.filename, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestChoose_ResultIsAlwaysACandidate(t *testing.T) {
	c := NewChooser(nil, nil)
	candidates := []string{"Mueller Thomas", "Mueller Anna", "Schmidt Anna"}
	filenames := []string{"", "x.pdf", "Mueller.pdf", "Schmidt.pdf", "Anna.pdf", ".pdf"}

	for _, f := range filenames {
		got, ok := c.Choose(candidates, f)
		if !ok {
			t.Errorf("Choose with filename %q returned absent for non-empty candidates", f)
			continue
		}
		found := false
		for _, cand := range candidates {
			if cand == got {
				found = true
			}
		}
		if !found {
			t.Errorf("Choose returned %q which is not a candidate", got)
		}
	}
}

func TestChoose_CustomDenylist(t *testing.T) {
	c := NewChooser([]string{"weber", "  "}, nil)
	got, ok := c.Choose([]string{"Weber Jan", "Adler Klaus"}, "scan.pdf")
	if !ok || got != "Adler Klaus" {
		t.Errorf("expected Adler Klaus with custom denylist, got %q", got)
	}
}

func TestFilenameTokens(t *testing.T) {
	c := NewChooser(nil, nil)
	tokens := c.FilenameTokens("/tmp/in/Tour_Müller_KW12.pdf")
	for _, want := range []string{"TOUR", "MUELLER", "KW12"} {
		if !tokens[want] {
			t.Errorf("missing token %q in %v", want, tokens)
		}
	}
	if tokens["PDF"] {
		t.Error("extension must not be tokenized")
	}
}
