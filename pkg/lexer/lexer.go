// Package lexer turns Verilog source text into a lossless token stream.
//
// The lexer is a character-level state machine driven by a grammar.Grammar.
// It never drops input: whitespace and comments become tokens of their own,
// so token.Render of the result always reproduces the input exactly.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/grammar"
	"github.com/leapstack-labs/vinline/pkg/token"
)

type mode int

const (
	modeNormal mode = iota
	modeString
	modeLineComment
	modeBlockComment
)

// Lexer tokenizes source text under a grammar. A Lexer is stateless between
// calls and safe for concurrent use.
type Lexer struct {
	g *grammar.Grammar
}

// New creates a lexer for g.
func New(g *grammar.Grammar) *Lexer {
	return &Lexer{g: g}
}

// Grammar returns the grammar the lexer was built with.
func (l *Lexer) Grammar() *grammar.Grammar {
	return l.g
}

// scanner holds the state of one Tokenize call. The pending buffer is
// always the contiguous input slice input[start:pos].
type scanner struct {
	lx      *Lexer
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current char under examination
	start   int  // offset of the pending buffer
	mode    mode
	toks    []token.Token
}

// Tokenize splits text into classified tokens.
//
// An unterminated string or block comment, or any lexeme the grammar cannot
// classify, fails with a *core.LexError.
func (l *Lexer) Tokenize(text string) ([]token.Token, error) {
	s := &scanner{lx: l, input: text}
	for s.readChar() {
		if err := s.step(); err != nil {
			return nil, err
		}
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return s.toks, nil
}

// readChar advances to the next character. Returns false at end of input.
func (s *scanner) readChar() bool {
	if s.readPos >= len(s.input) {
		s.pos = len(s.input)
		return false
	}
	r, size := utf8.DecodeRuneInString(s.input[s.readPos:])
	s.ch = r
	s.pos = s.readPos
	s.readPos += size
	return true
}

// peekChar returns the character after ch without advancing.
func (s *scanner) peekChar() rune {
	if s.readPos >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.readPos:])
	return r
}

// buffer returns the pending text before ch.
func (s *scanner) buffer() string {
	return s.input[s.start:s.pos]
}

// emit appends input[s.start:end] as a token of kind and restarts the
// buffer at end. Empty slices are dropped.
func (s *scanner) emit(end int, kind token.Kind) {
	if end > s.start {
		s.toks = append(s.toks, token.New(s.input[s.start:end], kind))
	}
	s.start = end
}

// flush classifies input[s.start:end] and emits it.
func (s *scanner) flush(end int) error {
	text := s.input[s.start:end]
	if text == "" {
		return nil
	}
	kind, ok := s.lx.Classify(text)
	if !ok {
		return &core.LexError{Pos: token.PositionAt(s.input, s.start), Text: text}
	}
	s.emit(end, kind)
	return nil
}

func (s *scanner) step() error {
	switch s.mode {
	case modeLineComment:
		if s.ch == '\n' {
			s.emit(s.pos, token.Comment)
			s.emit(s.readPos, token.Whitespace)
			s.mode = modeNormal
		}
		return nil

	case modeBlockComment:
		text := s.input[s.start:s.readPos]
		if len(text) >= 4 && strings.HasSuffix(text, "*/") {
			s.emit(s.readPos, token.Comment)
			s.mode = modeNormal
		}
		return nil

	case modeString:
		if s.ch == '"' && !escaped(s.buffer()) {
			s.emit(s.readPos, token.String)
			s.mode = modeNormal
		}
		return nil
	}

	return s.stepNormal()
}

func (s *scanner) stepNormal() error {
	buf := s.buffer()
	g := s.lx.g

	switch {
	case (s.ch == '/' || s.ch == '*') && strings.HasSuffix(buf, "/"):
		// Comment opener: the prefix before "/" is its own token.
		if err := s.flush(s.pos - 1); err != nil {
			return err
		}
		if s.ch == '/' {
			s.mode = modeLineComment
		} else {
			s.mode = modeBlockComment
		}

	case s.ch == '"':
		if err := s.flush(s.pos); err != nil {
			return err
		}
		s.mode = modeString

	case unicode.IsSpace(s.ch):
		if err := s.flush(s.pos); err != nil {
			return err
		}
		s.emit(s.readPos, token.Whitespace)

	case g.IsOperatorChar(s.ch):
		if s.continuesNumber(buf) || g.Extends(buf, s.ch) {
			return nil
		}
		return s.flush(s.pos)

	case buf != "" && g.IsOperator(buf):
		return s.flush(s.pos)
	}
	return nil
}

// continuesNumber reports whether ch extends a literal in buf rather than
// starting an operator: the "." of 1.5, the sign of 2e-3 or a "?" digit
// of 4'b1?0.
func (s *scanner) continuesNumber(buf string) bool {
	switch s.ch {
	case '?':
		return basedPrefixRe.MatchString(buf)
	case '.':
		return isDigit(s.peekChar()) && intPrefixRe.MatchString(buf)
	case '+', '-':
		return isDigit(s.peekChar()) && exponentPrefixRe.MatchString(buf)
	}
	return false
}

func (s *scanner) finish() error {
	switch s.mode {
	case modeString, modeBlockComment:
		return &core.LexError{Pos: token.PositionAt(s.input, s.start), Text: s.input[s.start:]}
	case modeLineComment:
		s.emit(len(s.input), token.Comment)
		return nil
	}
	return s.flush(len(s.input))
}

// escaped reports whether a quote following buf is escaped, which is the
// case when buf ends in an odd number of backslashes.
func escaped(buf string) bool {
	n := 0
	for i := len(buf) - 1; i >= 0 && buf[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
