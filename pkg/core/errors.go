package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/vinline/pkg/token"
)

// Sentinel errors. Every error produced by the inliner wraps one of these.
var (
	// ErrUnterminatedModule means a module keyword had no matching endmodule.
	ErrUnterminatedModule = errors.New("unterminated module")
	// ErrUnterminatedInstantiation means an instantiation never reached its ";".
	ErrUnterminatedInstantiation = errors.New("unterminated instantiation")
	// ErrUnclassifiableToken means a lexeme matched no grammar rule.
	ErrUnclassifiableToken = errors.New("unclassifiable token")
	// ErrMalformedAssignmentList means a port or parameter list is neither named nor positional.
	ErrMalformedAssignmentList = errors.New("malformed assignment list")
	// ErrDependencyCycle means modules instantiate each other.
	ErrDependencyCycle = errors.New("dependency cycle")
	// ErrUnsupportedConstruct means valid input the inliner does not handle.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	// ErrDuplicateModule means a module name is defined twice.
	ErrDuplicateModule = errors.New("duplicate module")
	// ErrUnknownModule means a requested module does not exist.
	ErrUnknownModule = errors.New("unknown module")
)

// LexError reports a lexeme the grammar cannot classify.
type LexError struct {
	Pos  token.Position
	Text string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s %q", e.Pos.Line, e.Pos.Column, ErrUnclassifiableToken, e.Text)
}

// Unwrap returns ErrUnclassifiableToken.
func (e *LexError) Unwrap() error {
	return ErrUnclassifiableToken
}

// CycleError reports modules that cannot be ordered.
type CycleError struct {
	// Modules left in the graph when no leaf remained, in declaration order
	Modules []string
	// Path is one concrete cycle, first element repeated at the end
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s", ErrDependencyCycle, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("%s among modules: %s", ErrDependencyCycle, strings.Join(e.Modules, ", "))
}

// Unwrap returns ErrDependencyCycle.
func (e *CycleError) Unwrap() error {
	return ErrDependencyCycle
}

// InlineError tags a failure with the module being inlined.
type InlineError struct {
	Module string
	File   string
	Err    error
}

func (e *InlineError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("inlining module %s (%s): %v", e.Module, e.File, e.Err)
	}
	return fmt.Sprintf("inlining module %s: %v", e.Module, e.Err)
}

// Unwrap returns the underlying error.
func (e *InlineError) Unwrap() error {
	return e.Err
}

// ListError reports a port or parameter list that matches no list grammar.
type ListError struct {
	Text string
}

func (e *ListError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMalformedAssignmentList, e.Text)
}

// Unwrap returns ErrMalformedAssignmentList.
func (e *ListError) Unwrap() error {
	return ErrMalformedAssignmentList
}

// UnsupportedError reports a construct the inliner refuses to transform.
type UnsupportedError struct {
	Construct string
	Detail    string
}

func (e *UnsupportedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", ErrUnsupportedConstruct, e.Construct, e.Detail)
	}
	return fmt.Sprintf("%s: %s", ErrUnsupportedConstruct, e.Construct)
}

// Unwrap returns ErrUnsupportedConstruct.
func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupportedConstruct
}
