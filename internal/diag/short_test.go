package diag

import (
	"testing"

	"sclint/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")

	userFile := fs.Add("/workspace/testdata/short/sample.js", []byte("a\nb\n"), 0)
	depFile := fs.Add("/workspace/node_modules/dep/index.js", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     LintShortCircuit,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevError,
			Code:     IOLoadFileError,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
		{
			Severity: SevWarning,
			Code:     LintShortCircuit,
			Message:  "dependency",
			Primary:  source.Span{File: depFile, Start: 0, End: 1},
		},
		nil,
	}

	tests := []struct {
		name  string
		notes bool
		want  string
	}{
		{
			name: "without notes",
			want: "node_modules/dep/index.js:1:1: warning SCL1001 dependency\n" +
				"testdata/short/sample.js:1:1: warning SCL1001 first line second\n" +
				"testdata/short/sample.js:2:1: error IO4001 another",
		},
		{
			name:  "with notes",
			notes: true,
			want: "node_modules/dep/index.js:1:1: warning SCL1001 dependency\n" +
				"testdata/short/sample.js:1:1: warning SCL1001 first line second\n" +
				"testdata/short/sample.js:2:1: error IO4001 another\n" +
				"testdata/short/sample.js:2:1: note SCL1001 note line",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatShortDiagnostics(diags, fs, tt.notes); got != tt.want {
				t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestFormatShortDiagnosticsEmpty(t *testing.T) {
	if got := FormatShortDiagnostics(nil, source.NewFileSet(), true); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := FormatShortDiagnostics([]*Diagnostic{{}}, nil, false); got != "" {
		t.Errorf("expected empty output without file set, got %q", got)
	}
}
