package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/pkg/token"
	"github.com/spf13/cobra"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var skipTrivia bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a file",
		Long: `Tokenize a file with the configured grammar and print one token per
line with its position and kind. Useful when checking a grammar file
against real sources.`,
		Example: `  vinline tokens design.v
  vinline tokens design.v --skip-trivia
  vinline tokens design.v --grammar my_grammar.yaml --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read source file: %w", err)
			}
			toks, err := cc.Inliner.Lexer().Tokenize(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return renderTokens(cc.Renderer, tokenInfos(toks, skipTrivia))
		},
	}

	cmd.Flags().BoolVar(&skipTrivia, "skip-trivia", false, "Omit whitespace and comment tokens")

	return cmd
}

// tokenInfos attaches the start position of each token.
func tokenInfos(toks []token.Token, skipTrivia bool) []output.TokenInfo {
	infos := make([]output.TokenInfo, 0, len(toks))
	line, col := 1, 1
	for _, t := range toks {
		if !skipTrivia || !t.IsTrivia() {
			infos = append(infos, output.TokenInfo{
				Kind:    t.Kind.String(),
				Content: t.Content,
				Line:    line,
				Column:  col,
			})
		}
		if n := strings.Count(t.Content, "\n"); n > 0 {
			line += n
			col = len(t.Content) - strings.LastIndexByte(t.Content, '\n')
		} else {
			col += len(t.Content)
		}
	}
	return infos
}

func renderTokens(r *output.Renderer, infos []output.TokenInfo) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	lines := make([]string, len(infos))
	for i, t := range infos {
		lines[i] = fmt.Sprintf("%4d:%-4d %-18s %q", t.Line, t.Column, t.Kind, t.Content)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatCodeBlock("", strings.Join(lines, "\n")))
		return nil
	}
	for _, l := range lines {
		r.Println(l)
	}
	r.Println(r.Muted(fmt.Sprintf("%d tokens", len(infos))))
	return nil
}
