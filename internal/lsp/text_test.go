package lsp

import "testing"

func rangeAt(startLine, startChar, endLine, endChar int) *lspRange {
	return &lspRange{
		Start: position{Line: startLine, Character: startChar},
		End:   position{Line: endLine, Character: endChar},
	}
}

func TestApplyChanges(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		changes []textDocumentContentChangeEvent
		want    string
	}{
		{
			name:    "full replace",
			text:    "a && b;\n",
			changes: []textDocumentContentChangeEvent{{Text: "x || y();\n"}},
			want:    "x || y();\n",
		},
		{
			name:    "replace operand",
			text:    "a && b;\n",
			changes: []textDocumentContentChangeEvent{{Range: rangeAt(0, 5, 0, 6), Text: "f()"}},
			want:    "a && f();\n",
		},
		{
			name:    "insert on second line",
			text:    "let v;\nok;\n",
			changes: []textDocumentContentChangeEvent{{Range: rangeAt(1, 2, 1, 2), Text: " && run(v)"}},
			want:    "let v;\nok && run(v);\n",
		},
		{
			name:    "after surrogate pair",
			text:    "s = '😀' && b;",
			changes: []textDocumentContentChangeEvent{{Range: rangeAt(0, 12, 0, 13), Text: "g()"}},
			want:    "s = '😀' && g();",
		},
		{
			name: "sequential edits",
			text: "a;\n",
			changes: []textDocumentContentChangeEvent{
				{Range: rangeAt(0, 1, 0, 1), Text: " && b"},
				{Range: rangeAt(0, 5, 0, 6), Text: "c()"},
			},
			want: "a && c();\n",
		},
		{
			name:    "range past end clamps",
			text:    "a",
			changes: []textDocumentContentChangeEvent{{Range: rangeAt(5, 0, 9, 0), Text: " || f()"}},
			want:    "a || f()",
		},
		{
			name:    "reversed range inserts",
			text:    "ab",
			changes: []textDocumentContentChangeEvent{{Range: rangeAt(0, 2, 0, 1), Text: "!"}},
			want:    "ab!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyChanges(tt.text, tt.changes); got != tt.want {
				t.Errorf("applyChanges() = %q, want %q", got, tt.want)
			}
		})
	}
}
