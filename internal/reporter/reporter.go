// Package reporter turns a cycle in the ordering graph into a
// human-readable report: the plugins in each strongly connected
// component, the rules whose edges closed the cycle, and an optional
// Graphviz DOT serialization for visual inspection.
package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rfuzzo/plox/internal/graph"
	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rules"
	"github.com/rfuzzo/plox/internal/topo"
)

// CycleEdge is one "must load before" edge whose endpoints both lie
// inside the same strongly connected component.
type CycleEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Cycle describes one strongly connected component blocking a sort.
type Cycle struct {
	Plugins []string    `json:"plugins"`
	Rules   []rules.Pos `json:"rules"`

	// Edges are the actual intra-SCC "from must load before to" edges, so
	// DOT() can draw the real cycle instead of an illustrative ring.
	Edges []CycleEdge `json:"edges"`
}

// Report is the full cycle report for a failed sort.
type Report struct {
	Cycles []Cycle `json:"cycles"`
}

// Build runs Tarjan's algorithm over g and names the plugins and rule
// provenance for every non-trivial strongly connected component.
func Build(g *graph.Graph, inv *plugin.Inventory) Report {
	sccs := topo.Tarjan(g)
	names := inv.Names()

	report := Report{}
	for _, scc := range sccs {
		inSCC := make(map[int]bool, len(scc.Nodes))
		for _, n := range scc.Nodes {
			inSCC[n] = true
		}

		plugins := make([]string, 0, len(scc.Nodes))
		for _, n := range scc.Nodes {
			plugins = append(plugins, names[n])
		}
		sort.Strings(plugins)

		var provenance []rules.Pos
		var edges []CycleEdge
		seen := make(map[rules.Pos]bool)
		for _, n := range scc.Nodes {
			for _, e := range g.Edges() {
				if e.From != n || !inSCC[e.To] {
					continue
				}
				edges = append(edges, CycleEdge{From: names[e.From], To: names[e.To]})
				for _, p := range e.Rules {
					if !seen[p] {
						seen[p] = true
						provenance = append(provenance, p)
					}
				}
			}
		}
		sort.Slice(provenance, func(i, j int) bool {
			if provenance[i].File != provenance[j].File {
				return provenance[i].File < provenance[j].File
			}
			return provenance[i].Line < provenance[j].Line
		})
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].From != edges[j].From {
				return edges[i].From < edges[j].From
			}
			return edges[i].To < edges[j].To
		})

		report.Cycles = append(report.Cycles, Cycle{Plugins: plugins, Rules: provenance, Edges: edges})
	}
	return report
}

// Text renders a report as plain lines suitable for CLI/log output.
func (r Report) Text() string {
	var sb strings.Builder
	for i, c := range r.Cycles {
		fmt.Fprintf(&sb, "ORDER-CYCLE %d: %s\n", i+1, strings.Join(c.Plugins, " -> "))
		for _, p := range c.Rules {
			fmt.Fprintf(&sb, "  caused by rule at %s\n", p)
		}
	}
	return sb.String()
}

// DOT renders a single cycle as a Graphviz digraph, in the same style as
// a dependency-graph exporter: sanitized node names, rankdir=LR, the
// cycle's actual intra-SCC edges (already deduplicated and sorted by
// Build), deterministic output.
func (c Cycle) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph cycle {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, p := range c.Plugins {
		sb.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\"];\n", sanitizeName(p), p))
	}
	sb.WriteString("\n")
	for _, e := range c.Edges {
		sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", sanitizeName(e.From), sanitizeName(e.To)))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
