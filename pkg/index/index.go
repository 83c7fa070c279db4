// Package index partitions a token stream into module records.
package index

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// Index captures every module definition in toks. Tokens outside module
// definitions (directives, comments between modules) are not kept.
func Index(toks []token.Token) (*core.Registry, error) {
	return IndexFile("", toks)
}

// IndexFile is Index with the source path recorded on every module.
func IndexFile(file string, toks []token.Token) (*core.Registry, error) {
	reg := core.NewRegistry()

	for i := 0; i < len(toks); i++ {
		if !isKeyword(toks[i], "module") {
			continue
		}

		end, err := capture(toks, i)
		if err != nil {
			return nil, err
		}

		m, err := build(toks[i : end+1])
		if err != nil {
			return nil, err
		}
		m.File = file

		if err := reg.Add(m); err != nil {
			return nil, err
		}
		i = end
	}

	return reg, nil
}

// capture returns the index of the endmodule that closes the module opened
// at start. Nested module keywords deepen the count.
func capture(toks []token.Token, start int) (int, error) {
	depth := 0
	for i := start; i < len(toks); i++ {
		switch {
		case isKeyword(toks[i], "module"):
			depth++
		case isKeyword(toks[i], "endmodule"):
			depth--
		}
		if depth == 0 {
			return i, nil
		}
	}

	name := "<unnamed>"
	for _, t := range toks[start:] {
		if t.Kind == token.Identifier {
			name = t.Content
			break
		}
	}
	line := strings.Count(token.Render(toks[:start]), "\n") + 1
	return -1, fmt.Errorf("%w: module %s (line %d) has no matching endmodule", core.ErrUnterminatedModule, name, line)
}

// build splits a captured module into header and body and extracts its
// name, ports and parameters.
func build(toks []token.Token) (*core.Module, error) {
	split := headerEnd(toks)
	if split < 0 {
		return nil, fmt.Errorf("%w: module header is missing its ';'", core.ErrUnterminatedModule)
	}

	header := token.Clone(toks[:split+1])
	body := token.Clone(toks[split+1:])

	name := ""
	for _, t := range header {
		if t.Kind == token.Identifier {
			name = t.Content
			break
		}
	}
	if name == "" {
		return nil, fmt.Errorf("module header %q has no name", token.Render(header))
	}

	ports, err := Ports(header)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}

	return &core.Module{
		Name:       name,
		Header:     header,
		Body:       body,
		Ports:      ports,
		Parameters: Parameters(body),
	}, nil
}

// headerEnd returns the index of the first ";" outside parentheses.
func headerEnd(toks []token.Token) int {
	depth := 0
	for i, t := range toks {
		if t.Kind != token.Operator {
			continue
		}
		switch t.Content {
		case "(":
			depth++
		case ")":
			depth--
		case ";":
			if depth <= 0 {
				return i
			}
		}
	}
	return -1
}

// Ports returns the identifiers of the header's port list in declaration
// order. Range expressions and a leading #(...) parameter port list are
// skipped. A header without a port list has no ports.
func Ports(header []token.Token) ([]string, error) {
	open := token.Index(header, "(", 0)
	if open < 0 {
		return nil, nil
	}
	if prev := prevSignificant(header, open); prev >= 0 && header[prev].Is("#") {
		paramsEnd, err := token.Bounds(header, "(", ")", open)
		if err != nil {
			return nil, err
		}
		open = token.Index(header, "(", paramsEnd+1)
		if open < 0 {
			return nil, nil
		}
	}

	end, err := token.Bounds(header, "(", ")", open)
	if err != nil {
		return nil, err
	}

	return identifiers(header[open+1 : end]), nil
}

// Parameters returns the name declared by each parameter statement in
// body. Only the first name of a multi-name statement is recorded.
func Parameters(body []token.Token) []string {
	var params []string
	seen := make(map[string]bool)

	for i, t := range body {
		if !isKeyword(t, "parameter") {
			continue
		}
		depth := 0
		for _, next := range body[i+1:] {
			if next.Is(";") {
				break
			}
			if next.Is("[") {
				depth++
				continue
			}
			if next.Is("]") {
				depth--
				continue
			}
			if next.Kind == token.Identifier && depth == 0 {
				if !seen[next.Content] {
					seen[next.Content] = true
					params = append(params, next.Content)
				}
				break
			}
		}
	}
	return params
}

// identifiers collects identifier tokens outside [...] without repeats.
func identifiers(toks []token.Token) []string {
	var out []string
	seen := make(map[string]bool)
	depth := 0
	for _, t := range toks {
		switch {
		case t.Is("["):
			depth++
		case t.Is("]"):
			depth--
		case t.Kind == token.Identifier && depth == 0 && !seen[t.Content]:
			seen[t.Content] = true
			out = append(out, t.Content)
		}
	}
	return out
}

func prevSignificant(toks []token.Token, i int) int {
	for j := i - 1; j >= 0; j-- {
		if !toks[j].IsTrivia() {
			return j
		}
	}
	return -1
}

func isKeyword(t token.Token, kw string) bool {
	return t.Kind == token.Keyword && t.Content == kw
}
