// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestStandardObserver_DebugWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityDebug, &buf)
	obs.SetRunID("run-1")

	done := obs.StartTiming("matcher", "match_page", "kw12.pdf")
	done(true, map[string]interface{}{"page": 3})

	var rec StandardObservabilityData
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec.Component != "matcher" || rec.Operation != "match_page" || rec.RunID != "run-1" || !rec.Success {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Metadata["page"] != float64(3) {
		t.Errorf("metadata not preserved: %v", rec.Metadata)
	}
}

func TestStandardObserver_QuietBelowDebug(t *testing.T) {
	for _, level := range []ObservabilityLevel{ObservabilityOff, ObservabilityMetrics} {
		var buf bytes.Buffer
		obs := NewStandardObserver(level, &buf)
		obs.StartTiming("pagetext", "extract", "a.pdf")(false, nil)
		obs.Warn("matcher", "downgraded")
		if buf.Len() != 0 {
			t.Errorf("level %d should not write, got %q", level, buf.String())
		}
	}
}

func TestStandardObserver_NilIsSafe(t *testing.T) {
	var obs *StandardObserver
	obs.SetRunID("x")
	obs.StartTiming("a", "b", "c")(true, nil)
	obs.Warn("a", "b")
	if obs.Level() != ObservabilityOff {
		t.Error("nil observer should report level off")
	}

	var dbg *DebugObserver
	dbg.StartStep("a", "b", "c")(true, "")
	dbg.LogDetail("a", "b")
	dbg.LogMetric("a", "b", 1)
}

func TestDebugObserver_Indentation(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)

	outer := d.StartStep("pipeline", "process_pdf", "kw12.pdf")
	d.LogDetail("pipeline", "target date 2024-03-04")
	inner := d.StartStep("matcher", "match_page", "kw12.pdf#0")
	d.LogMetric("matcher", "candidates", 2)
	inner(true, "Schmidt Anna")
	outer(false, "1 page error")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[2], "  🔄 matcher") {
		t.Errorf("inner step should be indented: %q", lines[2])
	}
	if !strings.HasPrefix(lines[5], "❌ pipeline: process_pdf failed") {
		t.Errorf("outer step should close unindented: %q", lines[5])
	}
	if d.StandardObserver.DebugObserver != d {
		t.Error("standard observer should reference its debug observer")
	}
}
