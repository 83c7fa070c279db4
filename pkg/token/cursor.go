package token

// Cursor walks an in-memory token slice.
type Cursor struct {
	toks []Token
	pos  int
}

// NewCursor returns a cursor positioned at the first token.
func NewCursor(toks []Token) *Cursor {
	return &Cursor{toks: toks}
}

// Peek returns the current token without advancing.
func (c *Cursor) Peek() (Token, bool) {
	if c.pos >= len(c.toks) {
		return Token{}, false
	}
	return c.toks[c.pos], true
}

// Next returns the current token and advances past it.
func (c *Cursor) Next() (Token, bool) {
	t, ok := c.Peek()
	if ok {
		c.pos++
	}
	return t, ok
}

// Done reports whether every token has been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.toks)
}

// Pos returns the index of the current token.
func (c *Cursor) Pos() int {
	return c.pos
}

// Until consumes tokens up to and including the first token whose content
// equals stop. The second result is false if the stream ended first; the
// consumed tokens are returned either way.
func (c *Cursor) Until(stop string) ([]Token, bool) {
	start := c.pos
	for c.pos < len(c.toks) {
		t := c.toks[c.pos]
		c.pos++
		if t.Content == stop {
			return c.toks[start:c.pos], true
		}
	}
	return c.toks[start:c.pos], false
}
