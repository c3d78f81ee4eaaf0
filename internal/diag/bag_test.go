package diag

import (
	"math"
	"testing"

	"sclint/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		added := b.Add(New(SevWarning, LintShortCircuit, span(0, uint32(i), uint32(i+1)), "w"))
		if want := i < 2; added != want {
			t.Errorf("Add #%d = %v, want %v", i, added, want)
		}
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if b.Add(nil) {
		t.Error("nil diagnostics must be rejected")
	}
}

func TestNewBagClamp(t *testing.T) {
	if got := NewBag(-5).Cap(); got != 0 {
		t.Errorf("negative limit clamped to %d, want 0", got)
	}
	if got := NewBag(1 << 20).Cap(); got != math.MaxUint16 {
		t.Errorf("large limit clamped to %d, want %d", got, math.MaxUint16)
	}
}

func TestBagSeverityQueries(t *testing.T) {
	b := NewBag(10)
	if b.HasErrors() || b.HasWarnings() {
		t.Fatal("empty bag has no errors or warnings")
	}
	b.Add(New(SevInfo, LintInfo, span(0, 0, 0), "info"))
	if b.HasWarnings() {
		t.Error("info is not a warning")
	}
	b.Add(New(SevWarning, LintShortCircuit, span(0, 0, 1), "w"))
	if !b.HasWarnings() || b.HasErrors() {
		t.Error("expected warnings without errors")
	}
	b.Add(New(SevError, IOLoadFileError, span(1, 0, 0), "e"))
	if !b.HasErrors() {
		t.Error("expected errors")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, LintShortCircuit, span(1, 0, 4), "second file"))
	b.Add(New(SevWarning, LintShortCircuit, span(0, 10, 14), "late"))
	b.Add(New(SevWarning, LintShortCircuit, span(0, 2, 6), "early"))
	b.Add(New(SevError, IOLoadFileError, span(0, 2, 6), "error first"))
	b.Add(New(SevWarning, LintShortCircuit, span(0, 10, 14), "late duplicate"))

	b.Sort()
	want := []string{"error first", "early", "late", "late duplicate", "second file"}
	for i, d := range b.Items() {
		if d.Message != want[i] {
			t.Errorf("item %d = %q, want %q", i, d.Message, want[i])
		}
	}

	b.Dedup()
	if b.Len() != 4 {
		t.Fatalf("Len() after Dedup = %d, want 4", b.Len())
	}
	for _, d := range b.Items() {
		if d.Message == "late duplicate" {
			t.Error("duplicate survived Dedup")
		}
	}
}

func TestBagMerge(t *testing.T) {
	a := NewBag(1)
	a.Add(New(SevWarning, LintShortCircuit, span(0, 0, 1), "a"))
	other := NewBag(5)
	other.Add(New(SevWarning, LintShortCircuit, span(1, 0, 1), "b"))
	other.Add(New(SevError, IOLoadFileError, span(2, 0, 0), "c"))

	a.Merge(other)
	a.Merge(nil)
	if a.Len() != 3 {
		t.Fatalf("Len() after Merge = %d, want 3", a.Len())
	}
	if !a.HasErrors() || !a.HasWarnings() {
		t.Error("merged bag must keep both severities")
	}
}

func TestReporters(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})

	r.Report(LintShortCircuit, SevWarning, span(0, 1, 2), "msg", nil)
	r.Report(LintShortCircuit, SevWarning, span(0, 1, 2), "msg", nil)
	NewReportBuilder(r, SevWarning, LintShortCircuit, span(0, 3, 4), "other").
		WithNote(span(0, 0, 1), "left operand").
		Emit()

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	if notes := b.Items()[1].Notes; len(notes) != 1 || notes[0].Msg != "left operand" {
		t.Errorf("unexpected notes %+v", notes)
	}

	builder := ReportError(BagReporter{}, IOLoadFileError, span(0, 0, 0), "x")
	builder.Emit()
	builder.Emit()
	if got := builder.Diagnostic(); got.Code != IOLoadFileError || got.Severity != SevError {
		t.Errorf("unexpected built diagnostic %+v", got)
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		code Code
		id   string
		rule string
	}{
		{LintShortCircuit, "SCL1001", "short-circuit-skip"},
		{IOLoadFileError, "IO4001", "IO4001"},
		{UnknownCode, "E0000", "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("ID() = %q, want %q", got, tt.id)
		}
		if got := tt.code.RuleName(); got != tt.rule {
			t.Errorf("RuleName() = %q, want %q", got, tt.rule)
		}
	}
	if !LintShortCircuit.IsRule() || IOLoadFileError.IsRule() {
		t.Error("IsRule mismatch")
	}
	if got := Code(9999).Title(); got != "Unknown error" {
		t.Errorf("Title() for unknown code = %q", got)
	}
	if SevWarning.LSP() != 2 || SevError.SarifLevel() != "error" || SevInfo.SarifLevel() != "note" {
		t.Error("severity mapping mismatch")
	}
}
