package inliner

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// instantiation is a parsed module instantiation statement.
type instantiation struct {
	module   string
	instance string
	params   []token.Token // inside #( ... ), nil when absent
	ports    []token.Token // inside ( ... )
}

// parseInstantiation splits stmt, which starts at the module name and ends
// with ";", into its parts.
func parseInstantiation(stmt []token.Token) (*instantiation, error) {
	if len(stmt) == 0 {
		return nil, fmt.Errorf("%w: empty statement", core.ErrUnterminatedInstantiation)
	}
	inst := &instantiation{module: stmt[0].Content}
	if !stmt[len(stmt)-1].Is(";") {
		return nil, fmt.Errorf("%w: %s instantiation %q has no ';'", core.ErrUnterminatedInstantiation, inst.module, token.Render(stmt))
	}

	i := nextSignificant(stmt, 1)
	if i >= 0 && stmt[i].Is("#") {
		open := nextSignificant(stmt, i+1)
		if open < 0 || !stmt[open].Is("(") {
			return nil, &core.ListError{Text: token.Render(stmt)}
		}
		end, err := token.Bounds(stmt, "(", ")", open)
		if err != nil {
			return nil, fmt.Errorf("parameter list of %s: %w", inst.module, err)
		}
		inst.params = stmt[open+1 : end]
		i = nextSignificant(stmt, end+1)
	}

	if i < 0 || stmt[i].Kind != token.Identifier {
		return nil, &core.UnsupportedError{
			Construct: "unnamed instance",
			Detail:    token.Render(stmt),
		}
	}
	inst.instance = stmt[i].Content

	open := nextSignificant(stmt, i+1)
	if open < 0 {
		return nil, &core.ListError{Text: token.Render(stmt)}
	}
	if stmt[open].Is("[") {
		return nil, &core.UnsupportedError{Construct: "instance array", Detail: inst.instance}
	}
	if !stmt[open].Is("(") {
		return nil, &core.ListError{Text: token.Render(stmt)}
	}
	end, err := token.Bounds(stmt, "(", ")", open)
	if err != nil {
		return nil, fmt.Errorf("port list of %s: %w", inst.instance, err)
	}
	inst.ports = stmt[open+1 : end]

	after := nextSignificant(stmt, end+1)
	switch {
	case after >= 0 && stmt[after].Is(","):
		return nil, &core.UnsupportedError{
			Construct: "multiple instances in one statement",
			Detail:    token.Render(stmt),
		}
	case after < 0 || !stmt[after].Is(";"):
		return nil, &core.ListError{Text: token.Render(stmt)}
	}

	return inst, nil
}

// Resolve expands one instantiation statement of callee into the tokens
// that replace it. callee must already be fully inlined.
//
// The expansion is the callee body with every identifier renamed to
// _<instance>_<name> (see renamer), input declarations turned into wires driven by their
// connections, output declarations turned into wires or regs, parameter
// values substituted and one trailing assignment per connected output.
func (in *Inliner) Resolve(callee *core.Module, stmt []token.Token) ([]token.Token, error) {
	return in.resolve(callee, stmt, nil)
}

// resolve is Resolve within a caller scope. Every name the expansion
// introduces is added to taken.
func (in *Inliner) resolve(callee *core.Module, stmt []token.Token, taken map[string]bool) ([]token.Token, error) {
	if err := checkHeader(callee); err != nil {
		return nil, err
	}

	inst, err := parseInstantiation(stmt)
	if err != nil {
		return nil, err
	}

	params, err := assignments(callee, inst.params, callee.Parameters, false)
	if err != nil {
		return nil, err
	}
	ports, err := assignments(callee, inst.ports, callee.Ports, true)
	if err != nil {
		return nil, err
	}

	rn := newRenamer(inst.instance, taken)
	body := rn.body(callee.Body)
	return in.rewrite(callee, rn, body, rn.keys(params), rn.keys(ports))
}

// assignments builds the declared-name -> connection map for a list.
// Positional lists are zipped against declared and truncated to the
// shorter of the two.
func assignments(callee *core.Module, list []token.Token, declared []string, strict bool) (map[string]string, error) {
	style, conns, err := ClassifyTokens(list)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(conns))
	switch style {
	case StyleNamed:
		for _, c := range conns {
			if strict && !callee.HasPort(c.Name) {
				return nil, fmt.Errorf("%w: module %s has no port %q", core.ErrMalformedAssignmentList, callee.Name, c.Name)
			}
			out[c.Name] = c.Expr
		}
	case StylePositional:
		n := min(len(conns), len(declared))
		for i := range n {
			out[declared[i]] = conns[i].Expr
		}
	}
	return out, nil
}

// checkHeader rejects headers whose declarations live in the header itself.
func checkHeader(callee *core.Module) error {
	for i, t := range callee.Header {
		if t.Kind != token.Keyword {
			if t.Is("#") {
				if next := nextSignificant(callee.Header, i+1); next >= 0 && callee.Header[next].Is("(") {
					return &core.UnsupportedError{Construct: "parameter port list", Detail: "module " + callee.Name}
				}
			}
			continue
		}
		switch t.Content {
		case "input", "output", "inout":
			return &core.UnsupportedError{Construct: "ANSI-style port declaration", Detail: "module " + callee.Name}
		}
	}
	return nil
}

// renamer maps callee names into the caller's scope as _<instance>_<name>.
// A name already taken in the caller gets a numeric suffix, so instances
// "a" and "a_b" cannot both produce _a_b_c.
type renamer struct {
	prefix string
	taken  map[string]bool
	names  map[string]string // callee name -> caller name
	orig   map[string]string
}

func newRenamer(instance string, taken map[string]bool) *renamer {
	if taken == nil {
		taken = make(map[string]bool)
	}
	return &renamer{
		prefix: "_" + instance + "_",
		taken:  taken,
		names:  make(map[string]string),
		orig:   make(map[string]string),
	}
}

func (r *renamer) name(n string) string {
	if s, ok := r.names[n]; ok {
		return s
	}
	s := r.prefix + n
	for i := 1; r.taken[s]; i++ {
		s = fmt.Sprintf("%s%s_%d", r.prefix, n, i)
	}
	r.taken[s] = true
	r.names[n] = s
	r.orig[s] = n
	return s
}

func (r *renamer) original(n string) string {
	if o, ok := r.orig[n]; ok {
		return o
	}
	return strings.TrimPrefix(n, r.prefix)
}

// keys renames the keys of m in sorted order so suffixes are stable.
func (r *renamer) keys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out[r.name(k)] = m[k]
	}
	return out
}

// body returns a copy of toks with every identifier renamed, except macro
// names given to compiler directives.
func (r *renamer) body(toks []token.Token) []token.Token {
	out := token.Clone(toks)
	macro := -1
	for i := range out {
		switch {
		case out[i].Kind == token.CompilerDirective:
			macro = macroArg(out, i)
		case i == macro:
		case out[i].Kind == token.Identifier:
			out[i].Content = r.name(out[i].Content)
		}
	}
	return out
}

// identifiers returns the set of identifier names in the given spans.
func identifiers(spans ...[]token.Token) map[string]bool {
	names := make(map[string]bool)
	for _, toks := range spans {
		for _, t := range toks {
			if t.Kind == token.Identifier {
				names[t.Content] = true
			}
		}
	}
	return names
}

func nextSignificant(toks []token.Token, from int) int {
	for i := from; i < len(toks); i++ {
		if !toks[i].IsTrivia() {
			return i
		}
	}
	return -1
}
