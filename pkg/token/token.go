// Package token defines the lexical tokens of the Verilog inliner.
//
// A token is a slice of source text tagged with one of a closed set of
// kinds. Tokens are lossless: concatenating the Content of any contiguous
// run of tokens reproduces the source text they were cut from, whitespace
// and comments included.
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	Whitespace Kind = iota
	Operator
	Keyword
	Identifier
	Comment
	Number
	SystemTask        // $display, $finish
	CompilerDirective // `timescale, `define
	String
)

// kindNames maps kinds to their display names.
var kindNames = map[Kind]string{
	Whitespace:        "whitespace",
	Operator:          "operator",
	Keyword:           "keyword",
	Identifier:        "identifier",
	Comment:           "comment",
	Number:            "number",
	SystemTask:        "system_task",
	CompilerDirective: "compiler_directive",
	String:            "string",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Token is a classified slice of source text.
type Token struct {
	Content string
	Kind    Kind
}

// New returns a token with the given content and kind.
func New(content string, kind Kind) Token {
	return Token{Content: content, Kind: kind}
}

// String returns the token content.
func (t Token) String() string {
	return t.Content
}

// Info returns a debug description of the token.
func (t Token) Info() string {
	return fmt.Sprintf("%-18s %q", t.Kind, t.Content)
}

// Is reports whether the token content equals s.
func (t Token) Is(s string) bool {
	return t.Content == s
}

// IsTrivia reports whether the token carries no syntax (whitespace or comment).
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// Render concatenates the content of toks.
func Render(toks []Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.Content)
	}
	return sb.String()
}

// Contents returns the content of every token, in order.
func Contents(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Content
	}
	return out
}

// WithoutTrivia returns toks with whitespace and comment tokens removed.
func WithoutTrivia(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if !t.IsTrivia() {
			out = append(out, t)
		}
	}
	return out
}

// Index returns the index of the first token at or after start whose
// content equals s, or -1.
func Index(toks []Token, s string, start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(toks); i++ {
		if toks[i].Content == s {
			return i
		}
	}
	return -1
}

// Clone returns a copy of toks that shares no backing array with it.
func Clone(toks []Token) []Token {
	if toks == nil {
		return nil
	}
	out := make([]Token, len(toks))
	copy(out, toks)
	return out
}
