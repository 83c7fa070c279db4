package token

import (
	"errors"
	"fmt"
)

// ErrUnbalanced is returned by Bounds when delimiters do not pair up.
var ErrUnbalanced = errors.New("unbalanced delimiters")

// Bounds finds the first token equal to open at or after start and returns
// the index of the close token that brings the nesting depth back to zero.
//
// Only exact token contents count as delimiters, so the scan works for any
// open/close pair ("(" ")", "[" "]", "module" "endmodule").
func Bounds(toks []Token, open, close string, start int) (int, error) {
	if start < 0 || start >= len(toks) {
		return -1, fmt.Errorf("%w: start index %d out of range [0,%d)", ErrUnbalanced, start, len(toks))
	}

	i := Index(toks, open, start)
	if i < 0 {
		return -1, fmt.Errorf("%w: no %q at or after index %d", ErrUnbalanced, open, start)
	}

	depth := 0
	for ; i < len(toks); i++ {
		switch toks[i].Content {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q opened without matching %q", ErrUnbalanced, open, close)
}
