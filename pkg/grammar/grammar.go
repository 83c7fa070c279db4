// Package grammar provides the lexical grammar tables that drive tokenization.
//
// A Grammar names the legal operators and reserved keywords of a language and
// records which multi-character operators may be built up one character at a
// time. The pair tables are keyed by the final character of an operator and
// map to the set of buffer contents that character may legally extend:
// "!=" is recorded as '=' -> {"!"} in the binary table and "<<<" as
// '<' -> {"<<"} in the ternary table.
//
// Grammars are immutable once built. Concrete grammars are either registered
// in the global registry (the builtin "verilog" grammar is registered at init)
// or loaded from a JSON or YAML file with Load.
package grammar

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidGrammar is returned when grammar tables are malformed.
var ErrInvalidGrammar = errors.New("invalid grammar")

type set map[string]struct{}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Grammar is an immutable set of tokenizer tables.
type Grammar struct {
	Name string

	operators set
	keywords  set

	// final character -> legal preceding buffer contents
	binaryPairs  map[rune]set
	ternaryPairs map[rune]set
}

// IsOperator reports whether s is an operator of the grammar.
func (g *Grammar) IsOperator(s string) bool {
	return g.operators.has(s)
}

// IsOperatorChar reports whether c on its own is an operator.
func (g *Grammar) IsOperatorChar(c rune) bool {
	return g.operators.has(string(c))
}

// IsKeyword reports whether s is a reserved keyword.
func (g *Grammar) IsKeyword(s string) bool {
	return g.keywords.has(s)
}

// Extends reports whether appending c to buffer forms a longer operator.
// The ternary table is consulted before the binary table.
func (g *Grammar) Extends(buffer string, c rune) bool {
	if preceding, ok := g.ternaryPairs[c]; ok && preceding.has(buffer) {
		return true
	}
	if preceding, ok := g.binaryPairs[c]; ok && preceding.has(buffer) {
		return true
	}
	return false
}

// Operators returns the operators of the grammar, sorted.
func (g *Grammar) Operators() []string {
	return g.operators.sorted()
}

// Keywords returns the keywords of the grammar, sorted.
func (g *Grammar) Keywords() []string {
	return g.keywords.sorted()
}

// Config returns the grammar tables in their serializable form.
func (g *Grammar) Config() Config {
	return Config{
		Operators:         g.Operators(),
		Keywords:          g.Keywords(),
		BinaryTokenPairs:  pairsConfig(g.binaryPairs),
		TernaryTokenPairs: pairsConfig(g.ternaryPairs),
	}
}

func pairsConfig(pairs map[rune]set) map[string][]string {
	out := make(map[string][]string, len(pairs))
	for c, preceding := range pairs {
		out[string(c)] = preceding.sorted()
	}
	return out
}

// Builder provides a fluent API for constructing grammars.
type Builder struct {
	g *Grammar
}

// NewGrammar starts building a grammar with the given name.
func NewGrammar(name string) *Builder {
	return &Builder{
		g: &Grammar{
			Name:         strings.ToLower(name),
			operators:    make(set),
			keywords:     make(set),
			binaryPairs:  make(map[rune]set),
			ternaryPairs: make(map[rune]set),
		},
	}
}

// Operators adds operator strings.
func (b *Builder) Operators(ops ...string) *Builder {
	for _, op := range ops {
		b.g.operators[op] = struct{}{}
	}
	return b
}

// Keywords adds reserved words.
func (b *Builder) Keywords(kws ...string) *Builder {
	for _, kw := range kws {
		b.g.keywords[kw] = struct{}{}
	}
	return b
}

// Binary records that final may extend each of the preceding buffers into
// a two-character operator.
func (b *Builder) Binary(final rune, preceding ...string) *Builder {
	addPairs(b.g.binaryPairs, final, preceding)
	return b
}

// Ternary records that final may extend each of the preceding buffers into
// a three-character operator.
func (b *Builder) Ternary(final rune, preceding ...string) *Builder {
	addPairs(b.g.ternaryPairs, final, preceding)
	return b
}

func addPairs(pairs map[rune]set, final rune, preceding []string) {
	s, ok := pairs[final]
	if !ok {
		s = make(set)
		pairs[final] = s
	}
	for _, p := range preceding {
		s[p] = struct{}{}
	}
}

// Build returns the constructed grammar.
func (b *Builder) Build() *Grammar {
	return b.g
}

// singleRune returns the only rune of s, or false if s is not exactly one rune.
func singleRune(s string) (rune, bool) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}
