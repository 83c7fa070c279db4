package core

import (
	"slices"

	"github.com/leapstack-labs/vinline/pkg/token"
)

// Module is one module definition cut out of a token stream.
//
// Header holds the tokens from the module keyword through the first
// top-level ";". Body holds the rest, through the matching endmodule.
// A Module is never edited once indexed; inlining produces a new record
// with WithBody.
type Module struct {
	// Name is the first identifier of the header
	Name string
	// File is the source path the module was indexed from, if any
	File string
	// Header tokens (module ... ;)
	Header []token.Token
	// Body tokens (... endmodule)
	Body []token.Token
	// Ports in header declaration order
	Ports []string
	// Parameters in body declaration order
	Parameters []string
}

// HeaderText renders the header tokens.
func (m *Module) HeaderText() string {
	return token.Render(m.Header)
}

// BodyText renders the body tokens.
func (m *Module) BodyText() string {
	return token.Render(m.Body)
}

// String renders the whole module definition.
func (m *Module) String() string {
	return m.HeaderText() + m.BodyText()
}

// HasPort reports whether name is a declared port.
func (m *Module) HasPort(name string) bool {
	return slices.Contains(m.Ports, name)
}

// HasParameter reports whether name is a declared parameter.
func (m *Module) HasParameter(name string) bool {
	return slices.Contains(m.Parameters, name)
}

// WithBody returns a copy of m with its body replaced. The receiver is
// left untouched.
func (m *Module) WithBody(body []token.Token) *Module {
	return &Module{
		Name:       m.Name,
		File:       m.File,
		Header:     token.Clone(m.Header),
		Body:       body,
		Ports:      slices.Clone(m.Ports),
		Parameters: slices.Clone(m.Parameters),
	}
}
