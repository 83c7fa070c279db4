// Package dag provides the module reference graph.
// It supports cycle detection, leaf-first inline ordering and closure queries.
package dag

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/vinline/pkg/core"
	"github.com/leapstack-labs/vinline/pkg/token"
)

// Node represents a module in the graph.
type Node struct {
	// ID is the module name
	ID string
	// Module is the indexed module, nil for bare nodes
	Module *core.Module
}

// Graph records which modules instantiate which.
//
// Node order is insertion order, which Build makes declaration order, so
// every query below is deterministic.
type Graph struct {
	order   []string
	nodes   map[string]*Node
	callers map[string][]string // callee -> modules instantiating it
	callees map[string][]string // caller -> modules it instantiates
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		callers: make(map[string][]string),
		callees: make(map[string][]string),
	}
}

// Build scans every module body for identifiers naming a module of reg and
// records an edge for each. A module naming itself gets a self edge, which
// Order reports as a cycle.
func Build(reg *core.Registry) *Graph {
	g := NewGraph()
	for _, m := range reg.Modules() {
		g.AddNode(m.Name, m)
	}
	for _, m := range reg.Modules() {
		for _, t := range m.Body {
			if t.Kind == token.Identifier && reg.Has(t.Content) {
				_ = g.AddEdge(t.Content, m.Name)
			}
		}
	}
	return g
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string, m *core.Module) {
	if node, exists := g.nodes[id]; exists {
		node.Module = m
		return
	}
	g.nodes[id] = &Node{ID: id, Module: m}
	g.order = append(g.order, id)
	g.callers[id] = []string{}
	g.callees[id] = []string{}
}

// AddEdge records that caller instantiates callee.
func (g *Graph) AddEdge(callee, caller string) error {
	if _, exists := g.nodes[callee]; !exists {
		return fmt.Errorf("callee node %q does not exist", callee)
	}
	if _, exists := g.nodes[caller]; !exists {
		return fmt.Errorf("caller node %q does not exist", caller)
	}

	// Add edge (avoid duplicates)
	if !slices.Contains(g.callers[callee], caller) {
		g.callers[callee] = append(g.callers[callee], caller)
	}
	if !slices.Contains(g.callees[caller], callee) {
		g.callees[caller] = append(g.callees[caller], callee)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Callees returns the modules id instantiates.
func (g *Graph) Callees(id string) []string {
	return g.callees[id]
}

// Callers returns the modules that instantiate id.
func (g *Graph) Callers(id string) []string {
	return g.callers[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, callees := range g.callees {
		count += len(callees)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path in instantiation direction (first module repeated at the end).
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string) // Track the path for error reporting

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, calleeID := range g.callees[id] {
			if !visited[calleeID] {
				path[calleeID] = id
				if dfs(calleeID) {
					return true
				}
			} else if recStack[calleeID] {
				// Found cycle, reconstruct path
				cyclePath = []string{calleeID}
				for curr := id; curr != calleeID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{calleeID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// Levels groups modules by inline round. Level 0 holds the modules that
// instantiate nothing; each later level holds the modules whose callees all
// sit in earlier levels. Within a level, insertion order is kept.
//
// Levels are found by repeatedly stripping leaves. If a round finds no leaf
// while modules remain, the rest are returned in a *core.CycleError.
func (g *Graph) Levels() ([][]string, error) {
	remaining := make(map[string]map[string]bool, len(g.nodes))
	for id, callees := range g.callees {
		set := make(map[string]bool, len(callees))
		for _, c := range callees {
			set[c] = true
		}
		remaining[id] = set
	}

	var levels [][]string
	pending := slices.Clone(g.order)

	for len(pending) > 0 {
		var leaves, rest []string
		for _, id := range pending {
			if len(remaining[id]) == 0 {
				leaves = append(leaves, id)
			} else {
				rest = append(rest, id)
			}
		}

		if len(leaves) == 0 {
			_, path := g.Subgraph(rest).HasCycle()
			return nil, &core.CycleError{Modules: rest, Path: path}
		}

		for _, id := range rest {
			for _, leaf := range leaves {
				delete(remaining[id], leaf)
			}
		}
		levels = append(levels, leaves)
		pending = rest
	}

	return levels, nil
}

// Order returns every module such that each appears after all modules it
// instantiates (callees before callers).
func (g *Graph) Order() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.order))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// Closure returns the given modules plus everything they transitively
// instantiate, in insertion order. Unknown IDs are ignored.
func (g *Graph) Closure(ids ...string) []string {
	marked := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if marked[id] {
			return
		}
		marked[id] = true
		for _, calleeID := range g.callees[id] {
			mark(calleeID)
		}
	}

	for _, id := range ids {
		if _, exists := g.nodes[id]; exists {
			mark(id)
		}
	}

	return g.filter(marked)
}

// Dependents returns the given modules plus every module that transitively
// instantiates one of them, in insertion order.
func (g *Graph) Dependents(ids ...string) []string {
	marked := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if marked[id] {
			return
		}
		marked[id] = true
		for _, callerID := range g.callers[id] {
			mark(callerID)
		}
	}

	for _, id := range ids {
		if _, exists := g.nodes[id]; exists {
			mark(id)
		}
	}

	return g.filter(marked)
}

// Tops returns modules no other module instantiates.
func (g *Graph) Tops() []string {
	var tops []string
	for _, id := range g.order {
		if len(g.callers[id]) == 0 {
			tops = append(tops, id)
		}
	}
	return tops
}

// Leaves returns modules that instantiate nothing.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.callees[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Subgraph returns a new graph containing only the specified nodes and their edges.
func (g *Graph) Subgraph(ids []string) *Graph {
	subgraph := NewGraph()
	nodeSet := make(map[string]bool)

	for _, id := range g.order {
		if slices.Contains(ids, id) {
			nodeSet[id] = true
			subgraph.AddNode(id, g.nodes[id].Module)
		}
	}

	// Add edges between included nodes
	for _, id := range subgraph.order {
		for _, calleeID := range g.callees[id] {
			if nodeSet[calleeID] {
				_ = subgraph.AddEdge(calleeID, id)
			}
		}
	}

	return subgraph
}

func (g *Graph) filter(marked map[string]bool) []string {
	result := make([]string, 0, len(marked))
	for _, id := range g.order {
		if marked[id] {
			result = append(result, id)
		}
	}
	return result
}
