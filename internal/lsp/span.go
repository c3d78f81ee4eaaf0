package lsp

import (
	"sclint/internal/source"
)

// documentFile wraps an editor buffer into a one-file set. The buffer is
// stored verbatim: LSP positions address the text the client holds.
func documentFile(name, text string) (*source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	return fs, fs.AddVirtual(name, []byte(text))
}

func toPosition(p source.UTF16Pos) position {
	return position{Line: p.Line, Character: p.Character}
}

func fromPosition(p position) source.UTF16Pos {
	return source.UTF16Pos{Line: p.Line, Character: p.Character}
}

func rangeForSpan(file *source.File, span source.Span) lspRange {
	if file == nil {
		return lspRange{}
	}
	return lspRange{
		Start: toPosition(file.UTF16Position(span.Start)),
		End:   toPosition(file.UTF16Position(span.End)),
	}
}
