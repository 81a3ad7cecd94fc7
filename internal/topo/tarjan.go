package topo

import "github.com/rfuzzo/plox/internal/graph"

// SCC is one strongly connected component of the ordering graph.
type SCC struct {
	Nodes []int
}

// Tarjan computes the non-trivial strongly connected components of g (two
// or more nodes, or one node with a self-edge) using Tarjan's algorithm;
// single-node components without a self-edge are not returned.
// Components are returned in the order their root is popped,
// which is a reverse topological order of the condensation graph.
func Tarjan(g *graph.Graph) []SCC {
	n := g.N()
	t := &tarjanState{
		g:        g,
		index:    make([]int, n),
		lowlink:  make([]int, n),
		onStack:  make([]bool, n),
		visited:  make([]bool, n),
		nextIdx:  0,
	}
	for v := 0; v < n; v++ {
		if !t.visited[v] {
			t.strongConnect(v)
		}
	}
	return t.sccs
}

type tarjanState struct {
	g       *graph.Graph
	index   []int
	lowlink []int
	onStack []bool
	visited []bool
	nextIdx int
	stack   []int
	sccs    []SCC
}

// strongConnect is the standard Tarjan recursion; plugin inventories are
// small enough (thousands, not millions, of nodes) that recursion depth is
// not a concern here.
func (t *tarjanState) strongConnect(v int) {
	t.index[v] = t.nextIdx
	t.lowlink[v] = t.nextIdx
	t.nextIdx++
	t.visited[v] = true
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Successors(v) {
		if !t.visited[w] {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []int
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 || t.hasSelfEdge(comp[0]) {
			t.sccs = append(t.sccs, SCC{Nodes: comp})
		}
	}
}

func (t *tarjanState) hasSelfEdge(v int) bool {
	for _, w := range t.g.Successors(v) {
		if w == v {
			return true
		}
	}
	return false
}
