package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/vinline/internal/cli/config"
	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/internal/inliner"
	"github.com/leapstack-labs/vinline/pkg/grammar"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Grammar  *grammar.Grammar
	Inliner  *inliner.Inliner
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a grammar, inliner and
// renderer built from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	g, err := loadGrammar(cfg, logger)
	if err != nil {
		return nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Grammar:  g,
		Inliner:  inliner.New(inliner.Config{Grammar: g, Logger: logger}),
		Renderer: r,
	}, nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}

// loadGrammar reads the configured grammar file. A missing default file
// falls back to the registered grammar named by grammar_name; a missing
// file named explicitly is an error.
func loadGrammar(cfg *config.Config, logger *slog.Logger) (*grammar.Grammar, error) {
	if cfg.Grammar != "" {
		g, err := grammar.Load(cfg.Grammar)
		switch {
		case err == nil:
			logger.Debug("grammar loaded", "file", cfg.Grammar,
				"operators", len(g.Operators()), "keywords", len(g.Keywords()))
			return g, nil
		case !errors.Is(err, os.ErrNotExist) || cfg.Grammar != config.DefaultGrammarFile:
			return nil, err
		}
	}

	g, ok := grammar.Get(cfg.GrammarName)
	if !ok {
		return nil, fmt.Errorf("%w: no grammar file and no builtin grammar %q (available: %s)",
			grammar.ErrGrammarRequired, cfg.GrammarName, strings.Join(grammar.List(), ", "))
	}
	logger.Debug("using builtin grammar", "name", g.Name)
	return g, nil
}
