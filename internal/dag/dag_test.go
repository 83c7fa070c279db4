package dag

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/grammar"
	"github.com/leapstack-labs/vinline/pkg/index"
	"github.com/leapstack-labs/vinline/pkg/lexer"
)

// chain builds a graph from caller -> callee pairs.
func chain(nodes []string, edges [][2]string) *Graph {
	g := NewGraph()
	for _, n := range nodes {
		g.AddNode(n, nil)
	}
	for _, e := range edges {
		_ = g.AddEdge(e[1], e[0])
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("top", nil)
	g.AddNode("mid", nil)
	g.AddNode("leaf", nil)

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	// top instantiates mid
	if err := g.AddEdge("mid", "top"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// mid instantiates leaf
	if err := g.AddEdge("leaf", "mid"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent caller node")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent callee node")
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := chain([]string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}
}

func TestGraph_CallersAndCallees(t *testing.T) {
	g := chain([]string{"top", "a", "b"}, [][2]string{{"top", "a"}, {"top", "b"}, {"a", "b"}})

	if got := g.Callees("top"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("callees of top = %v", got)
	}
	if got := g.Callers("b"); !reflect.DeepEqual(got, []string{"top", "a"}) {
		t.Errorf("callers of b = %v", got)
	}
	if got := g.Tops(); !reflect.DeepEqual(got, []string{"top"}) {
		t.Errorf("tops = %v", got)
	}
	if got := g.Leaves(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("leaves = %v", got)
	}
}

func TestGraph_Order_Simple(t *testing.T) {
	g := chain([]string{"top", "mid", "leaf"}, [][2]string{{"top", "mid"}, {"mid", "leaf"}})

	order, err := g.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"leaf", "mid", "top"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestGraph_Order_Diamond(t *testing.T) {
	//     top
	//    /   \
	//   l     r
	//    \   /
	//     base
	g := chain(
		[]string{"top", "l", "r", "base"},
		[][2]string{{"top", "l"}, {"top", "r"}, {"l", "base"}, {"r", "base"}},
	)

	order, err := g.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	for _, id := range order {
		for _, callee := range g.Callees(id) {
			if pos[callee] >= pos[id] {
				t.Errorf("%s ordered before its callee %s: %v", id, callee, order)
			}
		}
	}
	if len(order) != 4 {
		t.Errorf("expected 4 modules, got %v", order)
	}
}

func TestGraph_Levels(t *testing.T) {
	g := chain(
		[]string{"top", "l", "r", "base", "lonely"},
		[][2]string{{"top", "l"}, {"top", "r"}, {"l", "base"}, {"r", "base"}},
	)

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"base", "lonely"}, {"l", "r"}, {"top"}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %v, want %v", levels, want)
	}
}

func TestGraph_Order_Cycle(t *testing.T) {
	g := chain([]string{"top", "a", "b", "leaf"}, [][2]string{
		{"top", "a"}, {"a", "b"}, {"b", "a"}, {"b", "leaf"},
	})

	_, err := g.Order()
	if !errors.Is(err, core.ErrDependencyCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}

	var cycleErr *core.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *core.CycleError, got %T", err)
	}
	if want := []string{"top", "a", "b"}; !reflect.DeepEqual(cycleErr.Modules, want) {
		t.Errorf("modules = %v, want %v", cycleErr.Modules, want)
	}
	if want := []string{"a", "b", "a"}; !reflect.DeepEqual(cycleErr.Path, want) {
		t.Errorf("path = %v, want %v", cycleErr.Path, want)
	}
}

func TestGraph_Order_SelfReference(t *testing.T) {
	g := chain([]string{"r"}, [][2]string{{"r", "r"}})

	_, err := g.Order()
	var cycleErr *core.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *core.CycleError, got %v", err)
	}
	if want := []string{"r", "r"}; !reflect.DeepEqual(cycleErr.Path, want) {
		t.Errorf("path = %v, want %v", cycleErr.Path, want)
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g := chain([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	if hasCycle, path := g.HasCycle(); hasCycle {
		t.Errorf("unexpected cycle: %v", path)
	}
}

func TestGraph_Closure(t *testing.T) {
	g := chain(
		[]string{"top", "other", "mid", "leaf", "unused"},
		[][2]string{{"top", "mid"}, {"mid", "leaf"}, {"other", "leaf"}},
	)

	if got, want := g.Closure("top"), []string{"top", "mid", "leaf"}; !reflect.DeepEqual(got, want) {
		t.Errorf("closure = %v, want %v", got, want)
	}
	if got, want := g.Closure("other", "missing"), []string{"other", "leaf"}; !reflect.DeepEqual(got, want) {
		t.Errorf("closure = %v, want %v", got, want)
	}
	if got, want := g.Dependents("leaf"), []string{"top", "other", "mid", "leaf"}; !reflect.DeepEqual(got, want) {
		t.Errorf("dependents = %v, want %v", got, want)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := chain([]string{"top", "mid", "leaf"}, [][2]string{{"top", "mid"}, {"mid", "leaf"}})

	sub := g.Subgraph([]string{"leaf", "mid"})
	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", sub.EdgeCount())
	}
	if _, ok := sub.GetNode("top"); ok {
		t.Error("top should not be in subgraph")
	}
}

func TestBuild(t *testing.T) {
	src := `module AND2(a, b, o);
  input a, b; output o;
  assign o = a & b;
endmodule
module HALF(x, y, s, c);
  input x, y; output s, c;
  AND2 g0(.a(x), .b(y), .o(c));
  assign s = x ^ y;
endmodule
module TOP(p, q, r);
  input p, q; output r;
  wire unused;
  HALF h0(p, q, r, unused);
  AND2 g1(p, q, unused);
endmodule
`
	toks, err := lexer.New(grammar.Default()).Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	reg, err := index.Index(toks)
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	g := Build(reg)
	if got, want := g.Callees("TOP"), []string{"HALF", "AND2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("callees of TOP = %v, want %v", got, want)
	}
	if got := g.Callees("AND2"); len(got) != 0 {
		t.Errorf("AND2 should be a leaf, got %v", got)
	}

	order, err := g.Order()
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if want := []string{"AND2", "HALF", "TOP"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	node, ok := g.GetNode("HALF")
	if !ok || node.Module == nil || node.Module.Name != "HALF" {
		t.Errorf("HALF node should carry its module, got %+v", node)
	}
}
