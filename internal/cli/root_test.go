package cli

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
	fixtures "github.com/leapstack-labs/vinline/internal/testutil"
	"github.com/leapstack-labs/vinline/pkg/core"
)

// run executes the root command in dir and returns stdout and stderr.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Chdir(dir)

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"inline", "jobs", "modules", "graph", "tokens", "grammar", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "grammar", "grammar-name", "verbose", "log-format", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestInline_Stdout(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "and.v"), fixtures.AndTop)

	out, _, err := run(t, dir, "inline", "and.v", "--top", "TOP", "--stdout")
	require.NoError(t, err)
	assert.Equal(t, fixtures.AndTopInlined+"\n", out)
}

func TestInline_OutPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "and.v"), fixtures.AndTop)
	writeFile(t, filepath.Join(dir, "vinline.yaml"), "out: from_file.v\ntop: [TOP]\n")

	_, _, err := run(t, dir, "inline", "and.v")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "from_file.v"))

	t.Setenv("VINLINE_OUT", "from_env.v")
	_, _, err = run(t, dir, "inline", "and.v")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "from_env.v"))

	out, _, err := run(t, dir, "inline", "and.v", "-o", "build/from_flag.v", "--output", "json")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "build", "from_flag.v"))
	require.NoError(t, err)
	assert.Equal(t, fixtures.AndTopInlined+"\n", string(data))

	var got output.InlineOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "build/from_flag.v", got.Output)
	assert.Equal(t, []string{"TOP"}, got.Modules)
}

func TestInline_GrammarFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "and.v"), fixtures.AndTop)
	// no "&" operator, so AND2's assign cannot be tokenized
	writeFile(t, filepath.Join(dir, "config.json"), `{
  "operators": ["(", ")", ";", ",", ".", "="],
  "keywords": ["module", "endmodule", "input", "output", "assign", "wire"]
}`)

	_, _, err := run(t, dir, "inline", "and.v", "--stdout")
	assert.ErrorIs(t, err, core.ErrUnclassifiableToken)

	// an explicitly named grammar file must exist
	_, _, err = run(t, dir, "inline", "and.v", "--stdout", "--grammar", "missing.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// without config.json the built-in grammar is used
	require.NoError(t, os.Remove(filepath.Join(dir, "config.json")))
	_, _, err = run(t, dir, "inline", "and.v", "--stdout")
	assert.NoError(t, err)
}

func TestInline_Cycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cyclic.v"), fixtures.Cyclic)

	_, _, err := run(t, dir, "inline", "cyclic.v", "--stdout")
	var cycleErr *core.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"A", "B", "A"}, cycleErr.Path)

	out, _, err := run(t, dir, "inline", "cyclic.v", "--stdout", "-t", "C")
	require.NoError(t, err)
	assert.Contains(t, out, "assign o = ~i;")
}

func TestJobs(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, errOut, err := run(t, dir, "jobs", "jobs.json", "--parallel", "1", "--log-format", "json")
	require.NoError(t, err)

	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
	testutil.AssertContains(t, out, "# Jobs")
	testutil.AssertContains(t, out, "| TOP |")
	testutil.AssertContains(t, errOut, `"msg":"jobs complete"`)
	assert.FileExists(t, filepath.Join(dir, "out", "top.v"))
	assert.FileExists(t, filepath.Join(dir, "out", "half.v"))
}

func TestModulesAndGraph(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "adder.v"), fixtures.Hierarchy)

	out, _, err := run(t, dir, "modules", "adder.v", "--output", "json")
	require.NoError(t, err)
	var mods output.ModulesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &mods))
	require.Len(t, mods.Modules, 4)

	out, _, err = run(t, dir, "graph", "adder.v", "--top", "HALF")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "## Level 1")
	testutil.AssertNotContains(t, out, "TOP")

	_, _, err = run(t, dir, "graph", "adder.v", "--top", "NOPE")
	assert.ErrorIs(t, err, core.ErrUnknownModule)
}

func TestTokens(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "m.v"), "module M;\nendmodule\n")

	out, _, err := run(t, dir, "tokens", "m.v", "--skip-trivia", "--output", "json")
	require.NoError(t, err)

	var toks []output.TokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &toks))
	require.Len(t, toks, 4)
	assert.Equal(t, "endmodule", toks[3].Content)
	assert.Equal(t, 2, toks[3].Line)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "m.v"), "module M;\nendmodule\n")

	_, _, err := run(t, dir, "modules", "m.v", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestVerboseLogging(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "and.v"), fixtures.AndTop)
	writeFile(t, filepath.Join(dir, "vinline.yaml"), "out: flat.v\n")

	_, errOut, err := run(t, dir, "inline", "and.v", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "using config file")
	assert.Contains(t, errOut, "inlined module")
}

func TestCompletion(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "vinline")
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig(context.Background())
	assert.Equal(t, config.DefaultOut, cfg.Out)
	assert.NotNil(t, GetRenderer(context.Background()))
}
