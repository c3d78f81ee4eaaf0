package source

import (
	"unicode/utf8"

	"fortio.org/safecast"
)

// UTF16Pos is a 0-based line and UTF-16 code unit column, the position
// encoding editors speak over LSP.
type UTF16Pos struct {
	Line      int
	Character int
}

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// UTF16Position converts a byte offset into an editor position.
func (f *File) UTF16Position(offset uint32) UTF16Pos {
	contentLen := safeUint32(len(f.Content))
	if offset > contentLen {
		offset = contentLen
	}
	lc := toLineCol(f.LineIdx, offset)
	lineStart := offset - (lc.Col - 1)

	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:offset])
		if off+safeUint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return UTF16Pos{Line: int(lc.Line) - 1, Character: units}
}

// OffsetForUTF16 converts an editor position into a byte offset. Positions
// past the end of a line clamp to the line end, past the last line to the
// end of the content.
func (f *File) OffsetForUTF16(pos UTF16Pos) uint32 {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	contentLen := safeUint32(len(f.Content))
	if pos.Line >= f.LineCount() {
		return contentLen
	}
	var lineStart uint32
	if pos.Line > 0 {
		lineStart = f.LineIdx[pos.Line-1] + 1
	}
	lineEnd := contentLen
	if pos.Line < len(f.LineIdx) {
		lineEnd = f.LineIdx[pos.Line]
	}

	units := 0
	off := lineStart
	for off < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRune(f.Content[off:lineEnd])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
	}
	return off
}
