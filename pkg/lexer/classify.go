package lexer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/leapstack-labs/vinline/pkg/token"
)

var (
	intPrefixRe      = regexp.MustCompile(`^[0-9][0-9_]*$`)
	exponentPrefixRe = regexp.MustCompile(`^[0-9][0-9_]*(\.[0-9][0-9_]*)?[eE]$`)
	basedPrefixRe    = regexp.MustCompile(`^([0-9][0-9_]*)?'[sS]?[bBoOdDhH][0-9a-fA-FxXzZ?_]*$`)

	decimalRe = regexp.MustCompile(`^[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9][0-9_]*)?$`)
	basedRe   = regexp.MustCompile(`^([0-9][0-9_]*)?'[sS]?([bB][01xXzZ?_]+|[oO][0-7xXzZ?_]+|[dD][0-9xXzZ?_]+|[hH][0-9a-fA-FxXzZ?_]+)$`)
	timeRe    = regexp.MustCompile(`^[0-9][0-9_]*(\.[0-9][0-9_]*)?(s|ms|us|ns|ps|fs)$`)

	lineCommentRe  = regexp.MustCompile(`^//[^\n]*$`)
	blockCommentRe = regexp.MustCompile(`(?s)^/\*.*\*/$`)
	stringRe       = regexp.MustCompile(`(?s)^".*"$`)
	identifierRe   = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_$]*|\\\S+)$`)
)

// Classify returns the kind of a complete lexeme. Rules are tried in a
// fixed order and the first match wins; ok is false if none match.
func (l *Lexer) Classify(s string) (kind token.Kind, ok bool) {
	switch {
	case s == "":
		return 0, false
	case l.g.IsKeyword(s):
		return token.Keyword, true
	case l.g.IsOperator(s):
		return token.Operator, true
	case isNumber(s):
		return token.Number, true
	case lineCommentRe.MatchString(s) || blockCommentRe.MatchString(s):
		return token.Comment, true
	case strings.HasPrefix(s, "`"):
		return token.CompilerDirective, true
	case strings.HasPrefix(s, "$"):
		return token.SystemTask, true
	case stringRe.MatchString(s):
		return token.String, true
	case isSpace(s):
		return token.Whitespace, true
	case identifierRe.MatchString(s):
		return token.Identifier, true
	}
	return 0, false
}

// isNumber matches decimal, real, based and time literals. A lone "?" is
// the don't-care digit; lone x and z are left to the identifier rule.
func isNumber(s string) bool {
	return s == "?" || decimalRe.MatchString(s) || basedRe.MatchString(s) || timeRe.MatchString(s)
}

func isSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
