package inliner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/vinline/pkg/core"
)

func TestClassifyList(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		style Style
		conns []Connection
	}{
		{
			name:  "empty",
			text:  "",
			style: StyleEmpty,
		},
		{
			name:  "positional",
			text:  "clk,rst,data",
			style: StylePositional,
			conns: []Connection{{Expr: "clk"}, {Expr: "rst"}, {Expr: "data"}},
		},
		{
			name:  "named",
			text:  ".clk(c),.rst(r)",
			style: StyleNamed,
			conns: []Connection{{Name: "clk", Expr: "c"}, {Name: "rst", Expr: "r"}},
		},
		{
			name:  "named with nested expressions",
			text:  ".a(f(x)),.b({c,d})",
			style: StyleNamed,
			conns: []Connection{{Name: "a", Expr: "f(x)"}, {Name: "b", Expr: "{c,d}"}},
		},
		{
			name:  "named disconnected",
			text:  ".a(x),.o()",
			style: StyleNamed,
			conns: []Connection{{Name: "a", Expr: "x"}, {Name: "o", Expr: ""}},
		},
		{
			name:  "positional subscripts and numbers",
			text:  "data[3:0],8'hFF,1'b0,bus[1][2]",
			style: StylePositional,
			conns: []Connection{{Expr: "data[3:0]"}, {Expr: "8'hFF"}, {Expr: "1'b0"}, {Expr: "bus[1][2]"}},
		},
		{
			name:  "positional gap",
			text:  "a,,c",
			style: StylePositional,
			conns: []Connection{{Expr: "a"}, {Expr: ""}, {Expr: "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style, conns, err := ClassifyList(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.style, style)
			assert.Equal(t, tt.conns, conns)
		})
	}
}

func TestClassifyList_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"mixed", ".a(x),y"},
		{"mixed positional first", "x,.b(y)"},
		{"expression", "a+b"},
		{"unbalanced", ".a(x"},
		{"stray close", "a)"},
		{"only gaps", ",,"},
		{"named without parens", ".a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ClassifyList(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrMalformedAssignmentList)

			var le *core.ListError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.text, le.Text)
		})
	}
}

func TestClassifyTokens_IgnoresTrivia(t *testing.T) {
	toks := lex(t, ".a( x ), /* b */ .b(y)\n")

	style, conns, err := ClassifyTokens(toks)
	require.NoError(t, err)
	assert.Equal(t, StyleNamed, style)
	assert.Equal(t, []Connection{{Name: "a", Expr: "x"}, {Name: "b", Expr: "y"}}, conns)
}

func TestClassifyTokens_TriviaBetweenOperators(t *testing.T) {
	style, conns, err := ClassifyTokens(lex(t, ".a(x / /*c*/ y), .b(p /* q */ + q), .c( - -1 )"))
	require.NoError(t, err)
	assert.Equal(t, StyleNamed, style)
	assert.Equal(t, []Connection{
		{Name: "a", Expr: "x/ /y"},
		{Name: "b", Expr: "p+q"},
		{Name: "c", Expr: "- -1"},
	}, conns)

	// two words cannot be a single positional element
	_, _, err = ClassifyTokens(lex(t, "a /* b */ c, d"))
	assert.ErrorIs(t, err, core.ErrMalformedAssignmentList)
}

func TestStyle_String(t *testing.T) {
	assert.Equal(t, "empty", StyleEmpty.String())
	assert.Equal(t, "named", StyleNamed.String())
	assert.Equal(t, "positional", StylePositional.String())
}
