// Package config provides configuration management for the vinline CLI.
//
// Values are layered with koanf: built-in defaults, then vinline.yaml (or
// the file named by --config), then VINLINE_* environment variables, then
// explicitly set flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	// Grammar is the grammar table file (JSON or YAML)
	Grammar string `koanf:"grammar"`
	// GrammarName selects a registered grammar when Grammar does not exist
	GrammarName string `koanf:"grammar_name"`
	// Out is the output file of the inline command
	Out string `koanf:"out"`
	// Top restricts inlining to these modules and their dependencies
	Top           []string      `koanf:"top"`
	Verbose       bool          `koanf:"verbose"`
	LogFormat     string        `koanf:"log_format"`
	OutputFormat  string        `koanf:"output"`
	Parallel      int           `koanf:"parallel"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
}

// Default configuration values.
const (
	DefaultGrammarFile   = "config.json"
	DefaultGrammarName   = "verilog"
	DefaultOut           = "out.v"
	DefaultLogFormat     = "text"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultParallel      = 4
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Grammar:       DefaultGrammarFile,
		GrammarName:   DefaultGrammarName,
		Out:           DefaultOut,
		LogFormat:     DefaultLogFormat,
		OutputFormat:  DefaultOutput,
		Parallel:      DefaultParallel,
		WatchDebounce: DefaultWatchDebounce,
	}
}
