// Package graph implements the ordering graph: a directed graph over
// plugin indices with edge provenance, used by the topo sorters and the
// cycle reporter. Nodes are addressed by small integer indices assigned
// from the plugin inventory's load order rather than by string, so the
// sorter's inner loop never rehashes a filename.
package graph

import "github.com/rfuzzo/plox/internal/rules"

// Edge is a single "before" constraint: From must load before To. Rules
// lists every rule that asserted this edge, in the order each was seen.
type Edge struct {
	From, To int
	Rules    []rules.Pos
}

// Graph is the ordering graph. Nodes are plugin indices 0..N-1 matching
// the inventory's load-order positions; isolated plugins still get a node
// so the sorter sees the full universe.
type Graph struct {
	n    int
	adj  [][]int      // adj[u] = deduplicated list of v such that u->v, in insertion order
	edge map[[2]int]*Edge
}

// SelfEdgeError reports that a rule asserted a plugin must load before
// itself.
type SelfEdgeError struct {
	Node int
	Rule rules.Pos
}

func (e *SelfEdgeError) Error() string {
	return "graph: self-edge asserted by rule at " + e.Rule.String()
}

// New creates an empty ordering graph over n plugin nodes (0..n-1).
func New(n int) *Graph {
	return &Graph{
		n:    n,
		adj:  make([][]int, n),
		edge: make(map[[2]int]*Edge),
	}
}

// N returns the number of nodes.
func (g *Graph) N() int { return g.n }

// AddEdge asserts from must load before to, attributing the edge to rule.
// A self-edge is reported but not fatal to the caller; it is simply not
// added to the graph, since a plugin trivially loads before itself.
func (g *Graph) AddEdge(from, to int, rule rules.Pos) error {
	if from == to {
		return &SelfEdgeError{Node: from, Rule: rule}
	}
	key := [2]int{from, to}
	if e, ok := g.edge[key]; ok {
		e.Rules = append(e.Rules, rule)
		return nil
	}
	e := &Edge{From: from, To: to, Rules: []rules.Pos{rule}}
	g.edge[key] = e
	g.adj[from] = append(g.adj[from], to)
	return nil
}

// Successors returns the nodes that must load after node.
func (g *Graph) Successors(node int) []int { return g.adj[node] }

// Edges returns every edge in the graph, in no particular order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edge))
	for _, e := range g.edge {
		out = append(out, e)
	}
	return out
}

// EdgeBetween returns the edge from->to, if one exists.
func (g *Graph) EdgeBetween(from, to int) (*Edge, bool) {
	e, ok := g.edge[[2]int{from, to}]
	return e, ok
}

// PredecessorMap builds, for every node, the set of nodes that must load
// before it. It is computed once per sort run (O(E)) rather than per
// node, since the stable sorter's scan needs it repeatedly.
func (g *Graph) PredecessorMap() map[int]map[int]bool {
	preds := make(map[int]map[int]bool, g.n)
	for u := 0; u < g.n; u++ {
		for _, v := range g.adj[u] {
			if preds[v] == nil {
				preds[v] = make(map[int]bool)
			}
			preds[v][u] = true
		}
	}
	return preds
}
