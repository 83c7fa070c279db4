package commands

import (
	"fmt"

	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/pkg/grammar"
	"github.com/spf13/cobra"
)

// NewGrammarCommand creates the grammar command.
func NewGrammarCommand() *cobra.Command {
	var (
		format string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the grammar tables in use",
		Long: `Print the operator, keyword and token pair tables the tokenizer runs
with, after resolving --grammar and --grammar-name. The output is a valid
grammar file and can be edited and passed back with --grammar.

With --list the names of the built-in grammars are printed instead.`,
		Example: `  # Start a custom grammar from the built-in one
  vinline grammar --format yaml > my_grammar.yaml

  vinline grammar --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				return renderGrammarList(getRenderer(cmd))
			}

			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			asJSON := false
			switch format {
			case "json":
				asJSON = true
			case "yaml", "yml":
			default:
				return fmt.Errorf("unknown format %q (use yaml or json)", format)
			}

			data, err := cc.Grammar.Marshal(asJSON)
			if err != nil {
				return fmt.Errorf("failed to encode grammar: %w", err)
			}
			cc.Renderer.Printf("%s", data)
			if asJSON {
				cc.Renderer.Println("")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Grammar file format (yaml|json)")
	cmd.Flags().BoolVar(&list, "list", false, "List the built-in grammars")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func renderGrammarList(r *output.Renderer) error {
	names := grammar.List()
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(names)
	}
	for _, name := range names {
		r.Println(name)
	}
	return nil
}

// getRenderer builds a renderer for commands that need no grammar.
func getRenderer(cmd *cobra.Command) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(getConfig().OutputFormat))
}
