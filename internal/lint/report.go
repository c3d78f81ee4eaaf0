package lint

import (
	"fmt"

	"sclint/internal/diag"
	"sclint/internal/source"
)

// Span converts a finding range into a span of file.
func (f Finding) Span(file source.FileID) source.Span {
	return source.Span{File: file, Start: f.Range.StartOffset, End: f.Range.EndOffset}
}

// Diagnostic converts the finding into a diag.Diagnostic located in file.
// withNote attaches the enclosing logical expression as a note.
func (f Finding) Diagnostic(file source.FileID, withNote bool) *diag.Diagnostic {
	d := f.builder(nil, file, withNote).Diagnostic()
	return &d
}

// Report sends findings to r as diagnostics of file.
func Report(r diag.Reporter, file source.FileID, findings []Finding, withNotes bool) {
	for _, f := range findings {
		f.builder(r, file, withNotes).Emit()
	}
}

func (f Finding) builder(r diag.Reporter, file source.FileID, withNote bool) *diag.ReportBuilder {
	primary := f.Span(file)
	b := diag.NewReportBuilder(r, f.Severity, diag.LintShortCircuit, primary, f.Message)
	if withNote && f.Expr.Len() > 0 {
		b.WithNote(
			primary.Cover(source.Span{File: file, Start: f.Expr.StartOffset, End: f.Expr.EndOffset}),
			fmt.Sprintf("skipped when the left operand of %s already decides the result", f.Operator),
		)
	}
	return b
}
