// Package depgraph models "X depends on Y" edges over comparable keys and runs
// the build-time health checks on them: cycle detection, missing-node
// detection and topological ordering.
//
// Node insertion order is preserved and drives every traversal, so results
// are deterministic for a given registration sequence.
package depgraph

// Edge is a dependency edge. Optional edges never count as missing.
type Edge[K comparable] struct {
	To       K
	Optional bool
}

// Graph is a directed dependency graph. The zero value is not usable; call New.
type Graph[K comparable] struct {
	order []K
	edges map[K][]Edge[K]
}

// New returns an empty graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{edges: map[K][]Edge[K]{}}
}

// AddNode registers a node with its outgoing edges.
// Re-adding a node replaces its edges but keeps its original position.
func (g *Graph[K]) AddNode(n K, deps ...Edge[K]) *Graph[K] {
	if _, ok := g.edges[n]; !ok {
		g.order = append(g.order, n)
	}
	cp := make([]Edge[K], len(deps))
	copy(cp, deps)
	g.edges[n] = cp
	return g
}

// Has reports whether n was added as a node.
func (g *Graph[K]) Has(n K) bool {
	_, ok := g.edges[n]
	return ok
}

// Nodes returns nodes in insertion order.
func (g *Graph[K]) Nodes() []K {
	out := make([]K, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns the outgoing edges of n.
func (g *Graph[K]) Edges(n K) []Edge[K] {
	out := make([]Edge[K], len(g.edges[n]))
	copy(out, g.edges[n])
	return out
}

// Missing is a required edge whose target is not a node.
type Missing[K comparable] struct {
	From K
	To   K
}

// Missing returns every required edge pointing at an unknown node,
// in node insertion order then edge order.
func (g *Graph[K]) Missing() []Missing[K] {
	var out []Missing[K]
	for _, n := range g.order {
		for _, e := range g.edges[n] {
			if e.Optional {
				continue
			}
			if _, ok := g.edges[e.To]; !ok {
				out = append(out, Missing[K]{From: n, To: e.To})
			}
		}
	}
	return out
}

type mark uint8

const (
	unvisited mark = iota
	inProgress
	complete
)

// FindCycle runs a depth-first search rooted at every node, in insertion
// order, and returns the first cycle found as a path whose first and last
// elements are the same node. It returns nil for an acyclic graph.
//
// Edges to unknown nodes are ignored here; see Missing.
func (g *Graph[K]) FindCycle() []K {
	marks := make(map[K]mark, len(g.order))
	var stack []K

	var visit func(n K) []K
	visit = func(n K) []K {
		marks[n] = inProgress
		stack = append(stack, n)
		for _, e := range g.edges[n] {
			if _, ok := g.edges[e.To]; !ok {
				continue
			}
			switch marks[e.To] {
			case inProgress:
				return cyclePath(stack, e.To)
			case unvisited:
				if c := visit(e.To); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		marks[n] = complete
		return nil
	}

	for _, n := range g.order {
		if marks[n] != unvisited {
			continue
		}
		if c := visit(n); c != nil {
			return c
		}
	}
	return nil
}

func cyclePath[K comparable](stack []K, start K) []K {
	for i := range stack {
		if stack[i] == start {
			out := make([]K, 0, len(stack)-i+1)
			out = append(out, stack[i:]...)
			return append(out, start)
		}
	}
	return []K{start, start}
}

// TopoOrder returns nodes so that every node comes after its dependencies.
// ok is false when the graph has a cycle.
func (g *Graph[K]) TopoOrder() (order []K, ok bool) {
	if g.FindCycle() != nil {
		return nil, false
	}
	seen := make(map[K]bool, len(g.order))
	var visit func(n K)
	visit = func(n K) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, e := range g.edges[n] {
			if _, known := g.edges[e.To]; known {
				visit(e.To)
			}
		}
		order = append(order, n)
	}
	for _, n := range g.order {
		visit(n)
	}
	return order, true
}
