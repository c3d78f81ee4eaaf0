package jsast

import "fmt"

// Position is a human-readable point in source text.
type Position struct {
	Line   uint32 // 1-based
	Column uint32 // 0-based, в байтах
}

// Range locates a node inside the text it was parsed from.
type Range struct {
	StartOffset uint32 // в байтах включительно
	EndOffset   uint32 // в байтах не включительно
	Start       Position
	End         Position
}

// Valid reports whether the range indexes text of length textLen.
func (r Range) Valid(textLen int) bool {
	if textLen < 0 || r.StartOffset > r.EndOffset {
		return false
	}
	return uint64(r.EndOffset) <= uint64(textLen)
}

// Len returns the byte length of the range.
func (r Range) Len() uint32 {
	if r.EndOffset < r.StartOffset {
		return 0
	}
	return r.EndOffset - r.StartOffset
}

// Slice returns the text covered by r, or false when r does not fit text.
func (r Range) Slice(text string) (string, bool) {
	if !r.Valid(len(text)) {
		return "", false
	}
	return text[r.StartOffset:r.EndOffset], true
}

// Contains reports whether other lies inside r.
func (r Range) Contains(other Range) bool {
	return r.StartOffset <= other.StartOffset && other.EndOffset <= r.EndOffset
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}
