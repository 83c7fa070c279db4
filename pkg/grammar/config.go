package grammar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file form of a grammar.
//
// Unknown keys are ignored so that grammar files written for other tools
// (for example with a comment_bounds entry) still load.
type Config struct {
	Operators         []string            `json:"operators" yaml:"operators"`
	Keywords          []string            `json:"keywords" yaml:"keywords"`
	BinaryTokenPairs  map[string][]string `json:"binary_token_pairs" yaml:"binary_token_pairs"`
	TernaryTokenPairs map[string][]string `json:"ternary_token_pairs" yaml:"ternary_token_pairs"`
}

// FromConfig validates cfg and builds a grammar from it.
func FromConfig(name string, cfg Config) (*Grammar, error) {
	if len(cfg.Operators) == 0 && len(cfg.Keywords) == 0 {
		return nil, fmt.Errorf("%w: %s: no operators or keywords", ErrInvalidGrammar, name)
	}

	b := NewGrammar(name).
		Operators(cfg.Operators...).
		Keywords(cfg.Keywords...)

	for _, key := range sortedKeys(cfg.BinaryTokenPairs) {
		final, ok := singleRune(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s: binary_token_pairs key %q must be one character", ErrInvalidGrammar, name, key)
		}
		b.Binary(final, cfg.BinaryTokenPairs[key]...)
	}
	for _, key := range sortedKeys(cfg.TernaryTokenPairs) {
		final, ok := singleRune(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s: ternary_token_pairs key %q must be one character", ErrInvalidGrammar, name, key)
		}
		b.Ternary(final, cfg.TernaryTokenPairs[key]...)
	}

	return b.Build(), nil
}

// Load reads a grammar from a JSON or YAML file. Files ending in .json are
// decoded as JSON, everything else as YAML. The grammar is named after the
// file's base name.
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}

	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)

	cfg, err := Parse(data, strings.EqualFold(ext, ".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse grammar file %s: %w", path, err)
	}
	return FromConfig(name, cfg)
}

// Parse decodes grammar tables from JSON (asJSON) or YAML.
func Parse(data []byte, asJSON bool) (Config, error) {
	var cfg Config
	if asJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the grammar tables as YAML, or as indented JSON when
// asJSON is set.
func (g *Grammar) Marshal(asJSON bool) ([]byte, error) {
	cfg := g.Config()
	if asJSON {
		return json.MarshalIndent(cfg, "", "  ")
	}
	return yaml.Marshal(cfg)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
