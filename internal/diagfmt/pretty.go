package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sclint/internal/diag"
	"sclint/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, loc       *color.Color
	gutter, caret   *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.FgMagenta),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgYellow, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.loc, p.gutter, p.caret, p.note} {
		// глобальный color.NoColor смотрит на stdout, а писать можем куда угодно
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		file, ok := fs.Lookup(d.Primary.File)
		if !ok {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprintf("%s:%d:%d", formatPath(fs, file, opts.PathMode), start.Line, start.Col),
			p.severity(d.Severity).Sprint(d.Severity),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		writeSnippet(w, fs, file, d.Primary, opts, p)

		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			nfile, ok := fs.Lookup(note.Span.File)
			if !ok {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), note.Msg)
				continue
			}
			nstart, _ := fs.Resolve(note.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
				p.note.Sprint("note:"),
				formatPath(fs, nfile, opts.PathMode), nstart.Line, nstart.Col,
				note.Msg,
			)
			writeSnippet(w, fs, nfile, note.Span, PrettyOpts{Width: opts.Width}, p)
		}
	}
}

// writeSnippet печатает строку span'а (плюс Context строк вокруг) и подчёркивание.
// Многострочные span'ы подчёркиваются до конца первой строки.
func writeSnippet(w io.Writer, fs *source.FileSet, file *source.File, span source.Span, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0)) // #nosec G115 -- неотрицательный int8
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(start.Line+ctx, uint32(file.LineCount())) // #nosec G115 -- число строк ограничено размером файла

	gutterWidth := len(fmt.Sprint(last))
	blank := strings.Repeat(" ", gutterWidth)
	for ln := first; ln <= last; ln++ {
		line := file.GetLine(ln)
		fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprintf("%*d", gutterWidth, ln), p.gutter.Sprint("|"), clip(expandTabs(line), opts.Width))
		if ln != start.Line {
			continue
		}
		endCol := uint32(len(line)) + 1 // #nosec G115 -- строка не длиннее файла
		if end.Line == start.Line && end.Col < endCol {
			endCol = end.Col
		}
		pad, width := underline(line, start.Col, endCol)
		fmt.Fprintf(w, " %s %s %s%s\n", blank, p.gutter.Sprint("|"), strings.Repeat(" ", pad),
			p.caret.Sprint("^"+strings.Repeat("~", max(width-1, 0))))
	}
}

// underline возвращает отступ и ширину подчёркивания в колонках экрана для
// байтовых колонок [startCol, endCol) (1-based).
func underline(line string, startCol, endCol uint32) (pad, width int) {
	s := int(startCol) - 1
	e := int(endCol) - 1
	s = min(max(s, 0), len(line))
	e = min(max(e, s), len(line))
	pad = runewidth.StringWidth(expandTabs(line[:s]))
	width = max(runewidth.StringWidth(expandTabs(line[s:e])), 1)
	return pad, width
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}
