package inliner

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// Style is the connection style of a port or parameter list.
type Style int

// List styles.
const (
	StyleEmpty      Style = iota // ()
	StyleNamed                   // .a(x), .b(y)
	StylePositional              // x, y
)

func (s Style) String() string {
	switch s {
	case StyleNamed:
		return "named"
	case StylePositional:
		return "positional"
	default:
		return "empty"
	}
}

// Connection is one element of a port or parameter list. Name is empty for
// positional elements; Expr is empty for a disconnected element.
type Connection struct {
	Name string
	Expr string
}

const (
	identPattern  = `[a-zA-Z_][a-zA-Z0-9_$]*`
	numberPattern = `[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9][0-9_]*)?` +
		`|([0-9][0-9_]*)?'[sS]?([bB][01xXzZ?_]+|[oO][0-7xXzZ?_]+|[dD][0-9xXzZ?_]+|[hH][0-9a-fA-FxXzZ?_]+)` +
		`|[xXzZ?]`
)

var (
	namedElemRe      = regexp.MustCompile(`(?s)^\.(` + identPattern + `)\((.*)\)$`)
	positionalElemRe = regexp.MustCompile(`^(` + identPattern + `|` + numberPattern + `)(\[[^\[\]]+\])*$`)
)

// ClassifyList decides whether a rendered list uses named or positional
// connections and returns its elements. Whitespace and comments must already
// be stripped from text. A list that is neither, or mixes both, fails with a
// *core.ListError.
func ClassifyList(text string) (Style, []Connection, error) {
	if text == "" {
		return StyleEmpty, nil, nil
	}

	elems, ok := splitTopLevel(text)
	if !ok {
		return StyleEmpty, nil, &core.ListError{Text: text}
	}

	conns := make([]Connection, 0, len(elems))
	named, positional := 0, 0
	for _, elem := range elems {
		if name, expr, ok := matchNamed(elem); ok {
			named++
			conns = append(conns, Connection{Name: name, Expr: expr})
			continue
		}
		if elem == "" || positionalElemRe.MatchString(elem) {
			positional++
			conns = append(conns, Connection{Expr: elem})
			continue
		}
		return StyleEmpty, nil, &core.ListError{Text: text}
	}

	switch {
	case named == len(elems):
		return StyleNamed, conns, nil
	case positional == len(elems) && !allEmpty(conns):
		return StylePositional, conns, nil
	}
	return StyleEmpty, nil, &core.ListError{Text: text}
}

// ClassifyTokens is ClassifyList over a token span, ignoring whitespace
// and comments.
func ClassifyTokens(toks []token.Token) (Style, []Connection, error) {
	return ClassifyList(compact(toks))
}

// separators never merge with a neighbouring token.
const separators = "()[]{},."

// compact renders toks without trivia. A single space stays where trivia
// sat between two operators or two words, so "x / /*c*/ y" becomes "x/ /y"
// rather than the line comment "x//y".
func compact(toks []token.Token) string {
	var sb strings.Builder
	var prev token.Token
	gap := false
	for _, t := range toks {
		if t.IsTrivia() {
			gap = sb.Len() > 0
			continue
		}
		if gap && keepApart(prev, t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Content)
		prev, gap = t, false
	}
	return sb.String()
}

func keepApart(a, b token.Token) bool {
	aOp, bOp := a.Kind == token.Operator, b.Kind == token.Operator
	switch {
	case aOp && bOp:
		return !strings.Contains(separators, a.Content) && !strings.Contains(separators, b.Content)
	case !aOp && !bOp:
		return true
	}
	return false
}

// matchNamed matches ".name(expr)" where the parenthesis opened after name
// is the one closing the element.
func matchNamed(elem string) (name, expr string, ok bool) {
	m := namedElemRe.FindStringSubmatch(elem)
	if m == nil {
		return "", "", false
	}
	depth := 0
	for _, r := range m[2] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", "", false
			}
		}
	}
	if depth != 0 {
		return "", "", false
	}
	return m[1], m[2], true
}

// splitTopLevel splits text at commas outside (), [], {} and strings.
// Reports false if the brackets do not balance.
func splitTopLevel(text string) ([]string, bool) {
	var elems []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				elems = append(elems, text[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 || inString {
		return nil, false
	}
	return append(elems, text[start:]), true
}

func allEmpty(conns []Connection) bool {
	for _, c := range conns {
		if strings.TrimSpace(c.Expr) != "" {
			return false
		}
	}
	return true
}
