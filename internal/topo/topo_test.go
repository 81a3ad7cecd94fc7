package topo

import (
	"reflect"
	"testing"

	"github.com/rfuzzo/plox/internal/graph"
	"github.com/rfuzzo/plox/internal/rules"
)

func pos(line int) rules.Pos { return rules.Pos{File: "t.txt", Line: line} }

func TestStable_TwoPluginOrder(t *testing.T) {
	// Inventory [B, A]; rule forces A before B. Expect [A, B].
	g := graph.New(2)
	if err := g.AddEdge(1, 0, pos(1)); err != nil { // A(1) -> B(0)
		t.Fatal(err)
	}
	got, err := Stable(g)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("got %v, want [1 0] (A before B)", got)
	}
}

func TestStable_ChainWithIrrelevantMiddle(t *testing.T) {
	// Inventory [A, X, B, Y, C] = indices [0,1,2,3,4].
	// Rule: A before B before C, already satisfied; X, Y unconstrained.
	g := graph.New(5)
	g.AddEdge(0, 2, pos(1)) // A -> B
	g.AddEdge(2, 4, pos(1)) // B -> C

	got, err := Stable(g)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v (already satisfied order preserved)", got, want)
	}
}

func TestStable_MultiplePredecessorsPreserveRelativeOrder(t *testing.T) {
	// Inventory [C, A, B]; both A and B must precede C; A appears before B
	// in the original order and that relative order should be kept.
	g := graph.New(3)
	g.AddEdge(1, 0, pos(1)) // A(1) -> C(0)
	g.AddEdge(2, 0, pos(2)) // B(2) -> C(0)

	got, err := Stable(g)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 0}) {
		t.Errorf("got %v, want [1 2 0] (A, B, C)", got)
	}
}

func TestStable_DetectsCycle(t *testing.T) {
	g := graph.New(2)
	g.AddEdge(0, 1, pos(1))
	g.AddEdge(1, 0, pos(2))

	_, err := Stable(g)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	var cycleErr *CycleError
	if !asCycleError(err, &cycleErr) {
		t.Errorf("error %v is not a *CycleError", err)
	}
}

func asCycleError(err error, target **CycleError) bool {
	ce, ok := err.(*CycleError)
	if ok {
		*target = ce
	}
	return ok
}

func TestUnstable_RespectsEdgesAndTieBreaksByIndex(t *testing.T) {
	g := graph.New(4)
	g.AddEdge(3, 1, pos(1)) // node 3 must precede node 1

	got, err := Unstable(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %v, want a permutation of 4 nodes", got)
	}
	posOf := func(node int) int {
		for i, v := range got {
			if v == node {
				return i
			}
		}
		return -1
	}
	if posOf(3) >= posOf(1) {
		t.Errorf("expected node 3 before node 1 in %v", got)
	}
}

func TestUnstable_DetectsCycle(t *testing.T) {
	g := graph.New(3)
	g.AddEdge(0, 1, pos(1))
	g.AddEdge(1, 2, pos(1))
	g.AddEdge(2, 0, pos(1))

	if _, err := Unstable(g); err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestTarjan_FindsCycle(t *testing.T) {
	g := graph.New(3)
	g.AddEdge(0, 1, pos(1))
	g.AddEdge(1, 0, pos(2))
	g.AddEdge(1, 2, pos(3))

	sccs := Tarjan(g)
	if len(sccs) != 1 {
		t.Fatalf("got %d SCCs, want 1: %+v", len(sccs), sccs)
	}
	nodes := sccs[0].Nodes
	if len(nodes) != 2 {
		t.Fatalf("SCC nodes = %v, want 2 members", nodes)
	}
	has := map[int]bool{nodes[0]: true, nodes[1]: true}
	if !has[0] || !has[1] {
		t.Errorf("SCC = %v, want {0, 1}", nodes)
	}
}

func TestTarjan_AcyclicHasNoSCCs(t *testing.T) {
	g := graph.New(3)
	g.AddEdge(0, 1, pos(1))
	g.AddEdge(1, 2, pos(1))

	if sccs := Tarjan(g); len(sccs) != 0 {
		t.Errorf("got %+v, want no non-trivial SCCs", sccs)
	}
}
