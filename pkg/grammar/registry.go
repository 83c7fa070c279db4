package grammar

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Grammar registry
var (
	grammarsMu  sync.RWMutex
	grammars    = make(map[string]*Grammar)
	defaultName = "verilog"
)

// ErrGrammarRequired is returned when a grammar is required but not provided.
var ErrGrammarRequired = errors.New("grammar is required")

// Get returns a grammar by name.
func Get(name string) (*Grammar, bool) {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()
	g, ok := grammars[strings.ToLower(name)]
	return g, ok
}

// Register registers a grammar in the global registry.
func Register(g *Grammar) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()
	grammars[strings.ToLower(g.Name)] = g
}

// List returns all registered grammar names (sorted).
func List() []string {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDefault changes the name returned by Default.
func SetDefault(name string) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()
	defaultName = strings.ToLower(name)
}

// Default returns the default grammar, or nil if it is not registered.
func Default() *Grammar {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()
	return grammars[defaultName]
}
