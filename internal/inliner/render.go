package inliner

import (
	"strings"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// Render concatenates the named modules of reg, separated by a blank line.
// With no names every module is rendered in registry order.
func Render(reg *core.Registry, names ...string) (string, error) {
	var mods []*core.Module
	if len(names) == 0 {
		mods = reg.Modules()
	} else {
		var err error
		if mods, err = reg.Lookup(names...); err != nil {
			return "", err
		}
	}

	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = m.String()
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

// RenderModule renders one module, renaming its declaration to prefix+name.
// An empty prefix renders the module as is.
func RenderModule(m *core.Module, prefix string) string {
	if prefix == "" {
		return m.String() + "\n"
	}

	header := token.Clone(m.Header)
	for i, t := range header {
		if t.Kind == token.Identifier {
			header[i].Content = prefix + t.Content
			break
		}
	}
	return token.Render(header) + m.BodyText() + "\n"
}
