package inliner

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// netTypes may follow a direction keyword, in which case the direction is
// dropped rather than replaced.
var netTypes = map[string]bool{
	"wire": true, "tri": true, "tri0": true, "tri1": true, "triand": true,
	"trior": true, "trireg": true, "wand": true, "wor": true,
	"supply0": true, "supply1": true, "uwire": true,
}

// Directives that name a macro, or that take the rest of their line.
var (
	macroDirectives = map[string]bool{
		"`ifdef": true, "`ifndef": true, "`elsif": true, "`undef": true, "`define": true,
	}
	lineDirectives = map[string]bool{
		"`define": true, "`timescale": true, "`include": true,
		"`default_nettype": true, "`line": true,
	}
	bareDirectives = map[string]bool{
		"`else": true, "`endif": true, "`resetall": true,
		"`celldefine": true, "`endcelldefine": true,
	}
)

// blockEnds can open a ";"-delimited statement without being part of it.
var blockEnds = map[string]bool{
	"end": true, "endcase": true, "endfunction": true, "endtask": true,
	"endgenerate": true, "endspecify": true,
}

type outputDecl struct {
	name   string
	indent string
}

// rewriter turns a renamed callee body into an inline fragment.
type rewriter struct {
	in     *Inliner
	callee *core.Module
	rn     *renamer
	params map[string]string // renamed parameter -> value
	ports  map[string]string // renamed port -> connection

	outputs []outputDecl
}

// rewrite turns body, the renamed callee body, into the expansion.
func (in *Inliner) rewrite(callee *core.Module, rn *renamer, body []token.Token, params, ports map[string]string) ([]token.Token, error) {
	rw := &rewriter{in: in, callee: callee, rn: rn, params: params, ports: ports}

	for i := len(body) - 1; i >= 0; i-- {
		if body[i].Kind == token.Keyword && body[i].Content == "endmodule" {
			body = body[:i]
			break
		}
	}

	var out []token.Token
	subDepth := 0 // function/task nesting
	start := 0
	for i, t := range body {
		if t.Kind == token.Keyword {
			switch t.Content {
			case "function", "task":
				subDepth++
			case "endfunction", "endtask":
				subDepth--
			}
		}
		if t.Kind != token.Operator || t.Content != ";" {
			continue
		}

		stmt := body[start : i+1]
		start = i + 1
		if subDepth > 0 {
			out = append(out, stmt...)
			continue
		}
		rewritten, err := rw.statement(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten...)
	}
	out = append(out, body[start:]...)

	for _, o := range rw.outputs {
		conn := ports[o.name]
		if conn == "" {
			continue
		}
		toks, err := in.lx.Tokenize(fmt.Sprintf("\n%sassign %s = %s;", o.indent, conn, o.name))
		if err != nil {
			return nil, fmt.Errorf("connecting output %s: %w", rn.original(o.name), err)
		}
		out = append(out, toks...)
	}

	return append(out, token.New("\n", token.Whitespace)), nil
}

// statement rewrites one ";"-terminated statement. Comments and whitespace
// keep their positions; only declaration keywords and parameter values are
// touched, and input connections are appended after the statement.
func (rw *rewriter) statement(stmt []token.Token) ([]token.Token, error) {
	k := declStart(stmt)
	if k < 0 || stmt[k].Kind != token.Keyword {
		return stmt, nil
	}

	switch stmt[k].Content {
	case "inout":
		return nil, &core.UnsupportedError{
			Construct: "inout",
			Detail:    fmt.Sprintf("port %s of module %s", rw.originals(declaredNames(stmt, k+1)), rw.callee.Name),
		}

	case "input":
		out := redeclare(stmt, k, false)
		indent := indentOf(stmt, k)
		for _, name := range declaredNames(stmt, k+1) {
			conn := rw.ports[name]
			if conn == "" {
				continue
			}
			toks, err := rw.in.lx.Tokenize(fmt.Sprintf("\n%sassign %s = %s;", indent, name, conn))
			if err != nil {
				return nil, fmt.Errorf("connecting input %s: %w", rw.rn.original(name), err)
			}
			out = append(out, toks...)
		}
		return out, nil

	case "output":
		indent := indentOf(stmt, k)
		for _, name := range declaredNames(stmt, k+1) {
			rw.outputs = append(rw.outputs, outputDecl{name: name, indent: indent})
		}
		return redeclare(stmt, k, true), nil

	case "parameter":
		return rw.parameter(stmt, k)
	}
	return stmt, nil
}

// parameter substitutes an overridden parameter value.
func (rw *rewriter) parameter(stmt []token.Token, k int) ([]token.Token, error) {
	if len(rw.params) == 0 {
		return stmt, nil
	}
	names := declaredNames(stmt, k+1)
	if len(names) > 1 {
		return nil, &core.UnsupportedError{
			Construct: "multi-name parameter declaration",
			Detail:    fmt.Sprintf("parameters %s of module %s", rw.originals(names), rw.callee.Name),
		}
	}
	if len(names) == 0 {
		return stmt, nil
	}
	value, ok := rw.params[names[0]]
	if !ok {
		return stmt, nil
	}

	eq := topLevelIndex(stmt, "=", k+1)
	if eq < 0 {
		return stmt, nil
	}
	first := nextSignificant(stmt, eq+1)
	last := len(stmt) - 2 // before ";"
	for last > first && stmt[last].IsTrivia() {
		last--
	}
	if first < 0 || first > last {
		return stmt, nil
	}

	toks, err := rw.in.lx.Tokenize(value)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", rw.rn.original(names[0]), err)
	}

	out := make([]token.Token, 0, len(stmt)-(last-first+1)+len(toks))
	out = append(out, stmt[:first]...)
	out = append(out, toks...)
	out = append(out, stmt[last+1:]...)
	return out, nil
}

func (rw *rewriter) originals(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = rw.rn.original(n)
	}
	return strings.Join(out, ", ")
}

// redeclare turns the direction keyword at k into a net declaration. When a
// net type (or reg, for outputs) already follows, the direction keyword and
// the whitespace after it are dropped; otherwise it becomes "wire".
func redeclare(stmt []token.Token, k int, output bool) []token.Token {
	next := nextSignificant(stmt, k+1)
	if next >= 0 && stmt[next].Kind == token.Keyword &&
		(netTypes[stmt[next].Content] || (output && stmt[next].Content == "reg")) {
		j := k + 1
		for j < len(stmt) && stmt[j].Kind == token.Whitespace {
			j++
		}
		out := make([]token.Token, 0, len(stmt)-(j-k))
		out = append(out, stmt[:k]...)
		return append(out, stmt[j:]...)
	}

	out := token.Clone(stmt)
	out[k] = token.New("wire", token.Keyword)
	return out
}

// declStart returns the index of the first significant token of stmt,
// skipping block-closing keywords left over from the previous statement
// and compiler directives such as `ifdef FOO that precede a declaration.
func declStart(stmt []token.Token) int {
	for i := 0; i < len(stmt); i++ {
		t := stmt[i]
		switch {
		case t.IsTrivia(), t.Kind == token.Keyword && blockEnds[t.Content]:
			continue
		case t.Kind == token.CompilerDirective && lineDirectives[t.Content]:
			i = lineEnd(stmt, i)
			continue
		case t.Kind == token.CompilerDirective && macroDirectives[t.Content]:
			if arg := macroArg(stmt, i); arg >= 0 {
				i = arg
			}
			continue
		case t.Kind == token.CompilerDirective && bareDirectives[t.Content]:
			continue
		}
		return i
	}
	return -1
}

// macroArg returns the index of the macro name following the directive at
// i on the same line, or -1.
func macroArg(toks []token.Token, i int) int {
	if !macroDirectives[toks[i].Content] {
		return -1
	}
	for j := i + 1; j < len(toks); j++ {
		t := toks[j]
		switch {
		case t.Kind == token.Whitespace && t.Content != "\n":
			continue
		case t.Kind == token.Identifier:
			return j
		}
		return -1
	}
	return -1
}

// lineEnd returns the index of the newline ending the line of toks[i], or
// the last index.
func lineEnd(toks []token.Token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Content == "\n" {
			return j
		}
	}
	return len(toks) - 1
}

// declaredNames returns the identifiers a declaration introduces: those
// outside brackets and not part of an initializer.
func declaredNames(stmt []token.Token, from int) []string {
	var names []string
	depth := 0
	inInit := false
	for _, t := range stmt[from:] {
		switch {
		case t.Is("(") || t.Is("[") || t.Is("{"):
			depth++
		case t.Is(")") || t.Is("]") || t.Is("}"):
			depth--
		case depth == 0 && t.Is("="):
			inInit = true
		case depth == 0 && t.Is(","):
			inInit = false
		case depth == 0 && !inInit && t.Kind == token.Identifier:
			names = append(names, t.Content)
		}
	}
	return names
}

// indentOf returns the whitespace between the start of the line and the
// token at k, or "" if anything else precedes it on that line.
func indentOf(stmt []token.Token, k int) string {
	var sb strings.Builder
	j := k - 1
	for ; j >= 0; j-- {
		t := stmt[j]
		if t.Content == "\n" {
			break
		}
		if t.Kind != token.Whitespace {
			return ""
		}
	}
	for _, t := range stmt[j+1 : k] {
		sb.WriteString(t.Content)
	}
	return sb.String()
}

func topLevelIndex(stmt []token.Token, s string, from int) int {
	depth := 0
	for i := from; i < len(stmt); i++ {
		switch t := stmt[i]; {
		case t.Is("(") || t.Is("[") || t.Is("{"):
			depth++
		case t.Is(")") || t.Is("]") || t.Is("}"):
			depth--
		case depth == 0 && t.Is(s):
			return i
		}
	}
	return -1
}
