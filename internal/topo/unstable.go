package topo

import (
	"container/heap"

	"github.com/rfuzzo/plox/internal/graph"
)

// intHeap is a min-heap of plugin indices, used to break ties among
// "ready" nodes (no remaining predecessors) by original inventory
// position — the earliest plugin in the user's order is emitted first.
type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Unstable produces a topological order via Kahn's algorithm. Among nodes
// with no remaining predecessors, the node with the smallest original
// inventory index is emitted first. It is faster than Stable
// (O((V+E) log V)) but perturbs the user's original order more when edges
// span distant plugins.
func Unstable(g *graph.Graph) ([]int, error) {
	n := g.N()
	inDegree := make([]int, n)
	for _, e := range g.Edges() {
		inDegree[e.To]++
	}

	ready := &intHeap{}
	heap.Init(ready)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, n)
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		order = append(order, u)
		for _, v := range g.Successors(u) {
			inDegree[v]--
			if inDegree[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}

	if len(order) != n {
		return nil, &CycleError{Iterations: 0}
	}
	return order, nil
}
