package engine

import (
	"errors"
	"fmt"

	"github.com/rfuzzo/plox/internal/apply"
	"github.com/rfuzzo/plox/internal/message"
	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/reporter"
	"github.com/rfuzzo/plox/internal/rules"
	"github.com/rfuzzo/plox/internal/topo"
)

// Sorter selects which topological sorter a Result is produced with.
type Sorter string

const (
	SorterStable   Sorter = "stable"
	SorterUnstable Sorter = "unstable"
)

// Result is the outcome of one sort run.
type Result struct {
	// Order is the computed load order, when sorting succeeded.
	Order []string

	// Messages holds every note/conflict/requires/patch message the rules
	// fired, regardless of whether sorting itself succeeded.
	Messages *message.Set

	// Cycles is populated only when sorting failed because the ordering
	// graph contains a cycle.
	Cycles *reporter.Report
}

// Run applies ruleset to inv and produces a new load order with the
// requested sorter. On a cycle, Result.Order is nil, Result.Cycles
// describes the strongly connected components blocking the sort, and the
// returned error wraps topo.CycleError.
func Run(ruleset []rules.Rule, inv *plugin.Inventory, sorter Sorter) (*Result, error) {
	applied := apply.Apply(ruleset, inv)

	var order []int
	var err error
	switch sorter {
	case SorterUnstable:
		order, err = topo.Unstable(applied.Graph)
	default:
		order, err = topo.Stable(applied.Graph)
	}

	if err != nil {
		var cycleErr *topo.CycleError
		if errors.As(err, &cycleErr) {
			report := reporter.Build(applied.Graph, inv)
			return &Result{Messages: applied.Messages, Cycles: &report}, fmt.Errorf("engine: %w", err)
		}
		return nil, fmt.Errorf("engine: sort: %w", err)
	}

	names := inv.Names()
	ordered := make([]string, len(order))
	for i, idx := range order {
		ordered[i] = names[idx]
	}

	return &Result{Order: ordered, Messages: applied.Messages}, nil
}
