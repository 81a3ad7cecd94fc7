// Package topo implements PLOX's two topological sorters (stable and
// unstable) and the Tarjan strongly-connected-components cycle detector
// they fall back to on failure.
package topo

import (
	"fmt"

	"github.com/rfuzzo/plox/internal/graph"
)

// CycleError is returned when a sorter cannot produce a total order
// because the constraint graph contains a cycle. Use Report (package
// reporter) for the human-readable SCC breakdown.
type CycleError struct {
	// Iterations is how many passes the stable sorter made before giving up;
	// zero when the error comes from Unstable.
	Iterations int
}

func (e *CycleError) Error() string {
	if e.Iterations == 0 {
		return "topo: constraint graph contains a cycle"
	}
	return fmt.Sprintf("topo: no fixed point after %d passes, constraint graph likely contains a cycle", e.Iterations)
}

// maxPassMultiplier bounds the stable sorter's iteration count at n*n*c
// passes before it gives up and assumes a cycle.
const maxPassMultiplier = 4

// Stable produces a permutation of 0..n-1 (n = g.N()) that respects every
// edge in g, while preserving the relative order of any two nodes with no
// path between them in either direction — the "minimal perturbation"
// sort. It repeatedly scans the working sequence left to right and, for
// each node, pulls forward any later node that must precede it, until a
// full pass makes no further moves.
func Stable(g *graph.Graph) ([]int, error) {
	n := g.N()
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	if n == 0 {
		return seq, nil
	}

	preds := g.PredecessorMap()
	maxPasses := n*n*maxPassMultiplier + 1

	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for i := 0; i < len(seq); i++ {
			x := seq[i]
			mustPrecedeX := preds[x]
			if len(mustPrecedeX) == 0 {
				continue
			}
			// posX tracks where x currently sits as predecessors found
			// further right get rotated in immediately before it, each
			// landing in the order they were encountered.
			posX := i
			for j := posX + 1; j < len(seq); j++ {
				if mustPrecedeX[seq[j]] {
					y := seq[j]
					copy(seq[posX+1:j+1], seq[posX:j])
					seq[posX] = y
					posX++
					moved = true
				}
			}
		}
		if !moved {
			return seq, nil
		}
	}
	return nil, &CycleError{Iterations: maxPasses}
}
