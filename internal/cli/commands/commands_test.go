package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/vinline/internal/cli/config"
	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/internal/cli/testutil"
	"github.com/leapstack-labs/vinline/internal/inliner"
	fixtures "github.com/leapstack-labs/vinline/internal/testutil"
	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/grammar"
	"github.com/leapstack-labs/vinline/pkg/lexer"
)

// newTestContext builds a command context around a test renderer.
func newTestContext(t *testing.T, tr *testutil.TestRenderer, mutate func(*config.Config)) *CommandContext {
	t.Helper()
	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}
	logger := fixtures.NewTestLogger(t)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Grammar:  grammar.Default(),
		Inliner:  inliner.New(inliner.Config{Logger: logger}),
		Renderer: tr.Renderer,
	}
}

func TestNewInlineCommand(t *testing.T) {
	cmd := NewInlineCommand()

	assert.Equal(t, "inline <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"top", "out", "stdout", "watch", "watch-debounce"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "t", cmd.Flags().Lookup("top").Shorthand)
	assert.Equal(t, "o", cmd.Flags().Lookup("out").Shorthand)
}

func TestNewJobsCommand(t *testing.T) {
	cmd := NewJobsCommand()

	assert.Equal(t, "jobs <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("parallel"))
}

func TestNewModulesCommand(t *testing.T) {
	cmd := NewModulesCommand()

	assert.Equal(t, "modules <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.Equal(t, "ls", cmd.Aliases[0], "modules command should have 'ls' alias")
}

func TestNewGraphCommand(t *testing.T) {
	cmd := NewGraphCommand()

	assert.Equal(t, "graph <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("top"))
}

func TestNewTokensCommand(t *testing.T) {
	cmd := NewTokensCommand()

	assert.Equal(t, "tokens <file>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("skip-trivia"))
}

func TestRunInline_Stdout(t *testing.T) {
	path := fixtures.WriteVerilog(t, "and.v", fixtures.AndTop)
	tr := testutil.NewTestRendererMarkdown()
	cc := newTestContext(t, tr, func(c *config.Config) { c.Top = []string{"TOP"} })

	err := runInline(context.Background(), cc, path, &InlineOptions{Stdout: true})
	require.NoError(t, err)

	assert.Equal(t, fixtures.AndTopInlined+"\n", tr.Output())
}

func TestRunInline_WritesFile(t *testing.T) {
	path := fixtures.WriteVerilog(t, "adder.v", fixtures.Hierarchy)
	out := filepath.Join(t.TempDir(), "build", "flat.v")
	tr := testutil.NewTestRendererMarkdown()
	cc := newTestContext(t, tr, func(c *config.Config) { c.Out = out })

	err := runInline(context.Background(), cc, path, &InlineOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	for _, name := range []string{"AND2", "XOR2", "HALF", "TOP"} {
		assert.Contains(t, text, "module "+name+"(")
	}
	assert.NotContains(t, text, "HALF h0")

	testutil.AssertContains(t, tr.Output(), "Inlined 4 modules")
	testutil.AssertOutputMode(t, tr, output.ModeMarkdown)
}

func TestRunInline_JSON(t *testing.T) {
	path := fixtures.WriteVerilog(t, "adder.v", fixtures.Hierarchy)
	out := filepath.Join(t.TempDir(), "top.v")
	tr := testutil.NewTestRendererJSON()
	cc := newTestContext(t, tr, func(c *config.Config) {
		c.Out = out
		c.Top = []string{"TOP"}
	})

	require.NoError(t, runInline(context.Background(), cc, path, &InlineOptions{}))

	var got output.InlineOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.Equal(t, path, got.File)
	assert.Equal(t, out, got.Output)
	assert.Equal(t, []string{"TOP"}, got.Modules)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "module HALF")
}

func TestRunInline_Errors(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()

	cyclic := fixtures.WriteVerilog(t, "cyclic.v", fixtures.Cyclic)
	cc := newTestContext(t, tr, func(c *config.Config) { c.Out = filepath.Join(t.TempDir(), "o.v") })
	err := runInline(context.Background(), cc, cyclic, &InlineOptions{})
	assert.ErrorIs(t, err, core.ErrDependencyCycle)

	// C is outside the cycle
	cc.Cfg.Top = []string{"C"}
	require.NoError(t, runInline(context.Background(), cc, cyclic, &InlineOptions{Stdout: true}))
	assert.Contains(t, tr.Output(), "module C(")

	cc.Cfg.Top = []string{"MISSING"}
	err = runInline(context.Background(), cc, cyclic, &InlineOptions{})
	assert.ErrorIs(t, err, core.ErrUnknownModule)

	err = runInline(context.Background(), cc, filepath.Join(t.TempDir(), "none.v"), &InlineOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunJobs(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	tr := testutil.NewTestRendererJSON()
	cc := newTestContext(t, tr, func(c *config.Config) { c.Parallel = 2 })

	require.NoError(t, runJobs(context.Background(), cc, filepath.Join(dir, "jobs.json")))

	var got output.JobsOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, 0, got.Failed)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "TOP", got.Results[0].Module)
	assert.Equal(t, "flat_", got.Results[0].Prefix)
	assert.True(t, got.Results[0].OK)
	assert.Positive(t, got.Results[0].Bytes)

	top, err := os.ReadFile(filepath.Join(dir, "out", "top.v"))
	require.NoError(t, err)
	assert.Contains(t, string(top), "module flat_TOP(")

	half, err := os.ReadFile(filepath.Join(dir, "out", "half.v"))
	require.NoError(t, err)
	assert.Contains(t, string(half), "module HALF(")
}

func TestRunJobs_Failure(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	jobsFile := filepath.Join(dir, "mixed.json")
	require.NoError(t, os.WriteFile(jobsFile, []byte(`[
	{"input_path": "rtl/adder.v", "module": "HALF", "output_path": "out/half.v"},
	{"input_path": "rtl/adder.v", "module": "NOPE", "output_path": "out/nope.v"}
]`), 0600))

	tr := testutil.NewTestRendererMarkdown()
	cc := newTestContext(t, tr, nil)

	err := runJobs(context.Background(), cc, jobsFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 jobs failed")
	assert.ErrorIs(t, err, core.ErrUnknownModule)

	testutil.AssertValidMarkdown(t, tr.Output())
	testutil.AssertContains(t, tr.Output(), "| HALF |")
	testutil.AssertContains(t, tr.Output(), "failed")
	testutil.AssertContains(t, tr.ErrorOutput(), "error: NOPE")
	testutil.AssertOutputMode(t, tr, output.ModeMarkdown)

	_, statErr := os.Stat(filepath.Join(dir, "out", "half.v"))
	assert.NoError(t, statErr, "successful job should still write its output")
}

func TestRenderModules(t *testing.T) {
	in := inliner.New(inliner.Config{})
	d, err := in.Parse("adder.v", fixtures.Hierarchy)
	require.NoError(t, err)

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		require.NoError(t, renderModules(tr.Renderer, d))

		testutil.AssertValidMarkdown(t, tr.Output())
		testutil.AssertContains(t, tr.Output(), "# Modules")
		testutil.AssertContains(t, tr.Output(), "| HALF | a, b, s, c | - | XOR2, AND2 | TOP |")
		testutil.AssertContains(t, tr.Output(), "| AND2 | a, b, o | - | - | HALF |")
	})

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRendererText()
		require.NoError(t, renderModules(tr.Renderer, d))
		testutil.AssertContains(t, tr.Output(), "XOR2, AND2")
		testutil.AssertContains(t, tr.Output(), "a, b, s, c")
		testutil.AssertNotContains(t, tr.Output(), "| HALF |")
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		require.NoError(t, renderModules(tr.Renderer, d))

		var got output.ModulesOutput
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		require.Len(t, got.Modules, 4)
		assert.Equal(t, "TOP", got.Modules[3].Name)
		assert.Equal(t, []string{"HALF"}, got.Modules[3].Instantiates)
		assert.Equal(t, []string{}, got.Modules[3].InstantiatedBy)
		assert.Equal(t, []string{"p", "q", "r", "s0", "c0", "s1", "c1"}, got.Modules[3].Ports)
	})

	t.Run("empty", func(t *testing.T) {
		empty, err := in.Parse("empty.v", "// nothing here\n")
		require.NoError(t, err)

		tr := testutil.NewTestRendererMarkdown()
		require.NoError(t, renderModules(tr.Renderer, empty))
		testutil.AssertContains(t, tr.ErrorOutput(), "no modules found")
	})
}

func TestRenderGraph(t *testing.T) {
	in := inliner.New(inliner.Config{})
	d, err := in.Parse("adder.v", fixtures.Hierarchy)
	require.NoError(t, err)

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		require.NoError(t, renderGraph(tr.Renderer, d.Graph))

		out := tr.Output()
		testutil.AssertValidMarkdown(t, out)
		testutil.AssertContains(t, out, "## Level 0 (Leaves)")
		testutil.AssertContains(t, out, "- AND2\n  - instantiated by: HALF\n")
		testutil.AssertContains(t, out, "- HALF\n  - instantiates: XOR2, AND2\n  - instantiated by: TOP\n")
		testutil.AssertContains(t, out, "## Level 2")
		testutil.AssertContains(t, out, "- **Total Modules:** 4")
		testutil.AssertContains(t, out, "- **Total Edges:** 3")
	})

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRendererText()
		require.NoError(t, renderGraph(tr.Renderer, d.Graph))
		testutil.AssertContains(t, tr.Output(), "Level 1:")
		testutil.AssertContains(t, tr.Output(), "Total: 4 modules, 3 instantiation edges")
	})

	t.Run("json closure", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		g := d.Graph.Subgraph(d.Graph.Closure("HALF"))
		require.NoError(t, renderGraph(tr.Renderer, g))

		var got output.GraphOutput
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		assert.Equal(t, 3, got.TotalModules)
		assert.Equal(t, 2, got.TotalEdges)
		require.Len(t, got.Levels, 2)
		assert.Equal(t, "AND2", got.Levels[0].Modules[0].Name)
		assert.Equal(t, "XOR2", got.Levels[0].Modules[1].Name)
		assert.Equal(t, []string{"XOR2", "AND2"}, got.Levels[1].Modules[0].Instantiates)
		assert.Equal(t, []string{}, got.Levels[1].Modules[0].InstantiatedBy)
	})

	t.Run("cycle", func(t *testing.T) {
		cyclic, err := in.Parse("cyclic.v", fixtures.Cyclic)
		require.NoError(t, err)

		tr := testutil.NewTestRendererMarkdown()
		err = renderGraph(tr.Renderer, cyclic.Graph)
		var cycleErr *core.CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"A", "B"}, cycleErr.Modules)
	})
}

func TestTokenInfos(t *testing.T) {
	toks, err := lexer.New(grammar.Default()).Tokenize("module M;\n  endmodule")
	require.NoError(t, err)

	infos := tokenInfos(toks, true)
	require.Len(t, infos, 4)
	assert.Equal(t, output.TokenInfo{Kind: "keyword", Content: "module", Line: 1, Column: 1}, infos[0])
	assert.Equal(t, output.TokenInfo{Kind: "identifier", Content: "M", Line: 1, Column: 8}, infos[1])
	assert.Equal(t, output.TokenInfo{Kind: "operator", Content: ";", Line: 1, Column: 9}, infos[2])
	assert.Equal(t, output.TokenInfo{Kind: "keyword", Content: "endmodule", Line: 2, Column: 3}, infos[3])

	all := tokenInfos(toks, false)
	assert.Greater(t, len(all), len(infos))
}

func TestRenderTokens(t *testing.T) {
	infos := []output.TokenInfo{{Kind: "keyword", Content: "module", Line: 1, Column: 1}}

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderTokens(tr.Renderer, infos))
	testutil.AssertValidMarkdown(t, tr.Output())
	testutil.AssertContains(t, tr.Output(), `keyword            "module"`)

	tr = testutil.NewTestRendererText()
	require.NoError(t, renderTokens(tr.Renderer, infos))
	testutil.AssertContains(t, tr.Output(), "1 tokens")
}

func TestGrammarCommand(t *testing.T) {
	config.ResetConfig()
	t.Chdir(t.TempDir())

	t.Run("json", func(t *testing.T) {
		cmd := NewGrammarCommand()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs([]string{"--format", "json"})
		require.NoError(t, cmd.Execute())

		cfg, err := grammar.Parse(buf.Bytes(), true)
		require.NoError(t, err)
		assert.Contains(t, cfg.Keywords, "module")
		assert.Contains(t, cfg.Operators, ";")
	})

	t.Run("yaml round trip", func(t *testing.T) {
		cmd := NewGrammarCommand()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())

		cfg, err := grammar.Parse(buf.Bytes(), false)
		require.NoError(t, err)
		g, err := grammar.FromConfig("copy", cfg)
		require.NoError(t, err)
		assert.Equal(t, grammar.Default().Keywords(), g.Keywords())
	})

	t.Run("list", func(t *testing.T) {
		cmd := NewGrammarCommand()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"--list"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "verilog")
	})

	t.Run("bad format", func(t *testing.T) {
		cmd := NewGrammarCommand()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--format", "toml"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})
}

func TestLoadGrammar(t *testing.T) {
	logger := fixtures.NewTestLogger(t)

	t.Run("missing default file falls back", func(t *testing.T) {
		t.Chdir(t.TempDir())
		g, err := loadGrammar(config.Defaults(), logger)
		require.NoError(t, err)
		assert.Same(t, grammar.Default(), g)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Grammar = filepath.Join(t.TempDir(), "custom.yaml")
		_, err := loadGrammar(cfg, logger)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown builtin", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Grammar = ""
		cfg.GrammarName = "vhdl"
		_, err := loadGrammar(cfg, logger)
		assert.ErrorIs(t, err, grammar.ErrGrammarRequired)
		assert.Contains(t, err.Error(), "verilog")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiny.yaml")
		require.NoError(t, os.WriteFile(path, []byte("operators: [\";\"]\nkeywords: [module, endmodule]\n"), 0600))
		cfg := config.Defaults()
		cfg.Grammar = path
		g, err := loadGrammar(cfg, logger)
		require.NoError(t, err)
		assert.Equal(t, []string{"endmodule", "module"}, g.Keywords())
	})
}
