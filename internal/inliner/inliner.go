// Package inliner flattens module instantiations into their callers.
//
// The pipeline is tokenize, index, graph, order and inline. A Design holds
// every stage of one source file; InlineAll (or InlineFor) fills its Inlined
// registry strictly in dependency order so that each module is expanded
// from callees that are already fully inlined.
package inliner

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/vinline/internal/dag"
	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/grammar"
	"github.com/leapstack-labs/vinline/pkg/index"
	"github.com/leapstack-labs/vinline/pkg/lexer"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// Inliner runs the inlining pipeline under one grammar.
type Inliner struct {
	lx     *lexer.Lexer
	logger *slog.Logger
}

// Config holds inliner configuration.
type Config struct {
	// Grammar drives tokenization (optional, uses grammar.Default() if nil)
	Grammar *grammar.Grammar
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an inliner.
func New(cfg Config) *Inliner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := cfg.Grammar
	if g == nil {
		g = grammar.Default()
	}
	return &Inliner{lx: lexer.New(g), logger: logger}
}

// Lexer returns the lexer the inliner tokenizes with.
func (in *Inliner) Lexer() *lexer.Lexer {
	return in.lx
}

// Design is one parsed source file and its inlined modules.
type Design struct {
	File    string
	Tokens  []token.Token
	Modules *core.Registry // as indexed, declaration order
	Graph   *dag.Graph
	Inlined *core.Registry // inline order, filled by InlineAll/InlineFor
}

// Load reads and parses a source file.
func (in *Inliner) Load(path string) (*Design, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return in.Parse(path, string(data))
}

// Parse tokenizes and indexes src and builds its reference graph.
func (in *Inliner) Parse(file, src string) (*Design, error) {
	toks, err := in.lx.Tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(file), err)
	}

	mods, err := index.IndexFile(file, toks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(file), err)
	}
	in.logger.Debug("indexing complete", "file", file, "tokens", len(toks), "modules", mods.Len())

	g := dag.Build(mods)
	in.logger.Debug("reference graph built", "modules", g.NodeCount(), "edges", g.EdgeCount())

	return &Design{
		File:    file,
		Tokens:  toks,
		Modules: mods,
		Graph:   g,
		Inlined: core.NewRegistry(),
	}, nil
}

// InlineAll inlines every module of d.
func (in *Inliner) InlineAll(ctx context.Context, d *Design) error {
	return in.inline(ctx, d, d.Graph)
}

// InlineFor inlines the named modules and everything they instantiate.
// Modules outside that closure are left alone, so a cycle elsewhere in the
// file does not block them.
func (in *Inliner) InlineFor(ctx context.Context, d *Design, names ...string) error {
	if _, err := d.Modules.Lookup(names...); err != nil {
		return err
	}
	return in.inline(ctx, d, d.Graph.Subgraph(d.Graph.Closure(names...)))
}

func (in *Inliner) inline(ctx context.Context, d *Design, g *dag.Graph) error {
	order, err := g.Order()
	if err != nil {
		return err
	}
	in.logger.Debug("inline order", "order", order)

	d.Inlined = core.NewRegistry()
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, _ := d.Modules.Get(name)
		if len(g.Callees(name)) == 0 {
			// leaves are registered as indexed
			if err := d.Inlined.Add(m); err != nil {
				return err
			}
			continue
		}

		inlined, count, err := in.InlineModule(m, d.Inlined)
		if err != nil {
			return &core.InlineError{Module: name, File: m.File, Err: err}
		}
		if err := d.Inlined.Add(inlined); err != nil {
			return err
		}
		in.logger.Debug("inlined module", "module", name, "instances", count)
	}

	in.logger.Info("inlining complete", "file", d.File, "modules", d.Inlined.Len())
	return nil
}

// InlineModule replaces every instantiation in m of a module present in
// inlined with its expansion. It returns the new module and the number of
// instantiations expanded; m itself is not modified.
func (in *Inliner) InlineModule(m *core.Module, inlined *core.Registry) (*core.Module, int, error) {
	var body []token.Token
	count := 0
	taken := identifiers(m.Header, m.Body)

	cur := token.NewCursor(m.Body)
	for !cur.Done() {
		t, _ := cur.Next()
		if t.Kind != token.Identifier || t.Content == m.Name {
			body = append(body, t)
			continue
		}
		callee, ok := inlined.Get(t.Content)
		if !ok {
			body = append(body, t)
			continue
		}

		rest, ok := cur.Until(";")
		stmt := make([]token.Token, 0, len(rest)+1)
		stmt = append(append(stmt, t), rest...)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", core.ErrUnterminatedInstantiation, token.Render(stmt))
		}

		expanded, err := in.resolve(callee, stmt, taken)
		if err != nil {
			return nil, 0, err
		}
		body = append(body, expanded...)
		count++
	}

	return m.WithBody(body), count, nil
}

func displayName(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}
