package token

import "strings"

// Position represents a location in the source code.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// PositionAt computes the position of a byte offset within text.
// Offsets past the end of text are clamped to the end.
func PositionAt(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := offset - strings.LastIndexByte(prefix, '\n')
	return Position{Line: line, Column: col, Offset: offset}
}
