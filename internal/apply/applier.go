// Package apply walks a parsed rule set against an inventory, asking the
// evaluator which rules fire, and produces the ordering graph's edges
// plus the deterministic message set a caller reports to the user.
package apply

import (
	"fmt"

	"github.com/rfuzzo/plox/internal/eval"
	"github.com/rfuzzo/plox/internal/graph"
	"github.com/rfuzzo/plox/internal/message"
	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rules"
)

// Result is everything the applier produced from one rule set against one
// inventory: the ordering graph ready for a sorter, and the messages
// (notes, conflicts, requires, patches) the rules fired.
type Result struct {
	Graph    *graph.Graph
	Messages *message.Set
}

// Apply runs every rule in order against inv, accumulating edges into a
// fresh ordering graph and messages into a fresh message set. Rules are
// processed in the order given — callers are responsible for concatenating
// multiple rule files in the order they should take effect, since message
// emission order follows rule-source order (and, within a rule, predicate
// order).
func Apply(ruleset []rules.Rule, inv *plugin.Inventory) *Result {
	g := graph.New(inv.Len())
	msgs := message.NewSet()

	for _, r := range ruleset {
		switch r.Kind {
		case rules.KindOrder:
			applyOrder(r, inv, g)
		case rules.KindNote:
			applyNote(r, inv, msgs)
		case rules.KindConflict:
			applyConflict(r, inv, msgs)
		case rules.KindRequires:
			applyRequires(r, inv, msgs)
		case rules.KindPatch:
			applyPatch(r, inv, msgs)
		}
	}

	return &Result{Graph: g, Messages: msgs}
}

func applyOrder(r rules.Rule, inv *plugin.Inventory, g *graph.Graph) {
	present := make([]string, 0, len(r.Chain))
	for _, name := range r.Chain {
		if inv.Has(name) {
			present = append(present, name)
		}
	}
	for i := 0; i+1 < len(present); i++ {
		from := inv.IndexOf(present[i])
		to := inv.IndexOf(present[i+1])
		// A self-edge here means the same plugin appears twice in the
		// chain with nothing distinguishing the two occurrences; the
		// graph rejects it and the caller can surface that via Edges'
		// absence rather than a hard failure.
		_ = g.AddEdge(from, to, r.Pos)
	}
}

func applyNote(r rules.Rule, inv *plugin.Inventory, msgs *message.Set) {
	if len(r.Exprs) != 1 {
		return
	}
	if eval.Eval(r.Exprs[0], inv) {
		msgs.Add(message.New(message.KindNote, r.Message, r.Pos, involvedPlugins(r.Exprs[0])...))
	}
}

func applyConflict(r rules.Rule, inv *plugin.Inventory, msgs *message.Set) {
	fired := 0
	var involved []string
	for _, e := range r.Exprs {
		if eval.Eval(e, inv) {
			fired++
			involved = append(involved, involvedPlugins(e)...)
		}
	}
	if fired >= 2 {
		msgs.Add(message.New(message.KindConflict, r.Message, r.Pos, involved...))
	}
}

func applyRequires(r rules.Rule, inv *plugin.Inventory, msgs *message.Set) {
	if len(r.Exprs) != 2 {
		return
	}
	target, dep := r.Exprs[0], r.Exprs[1]
	if eval.Eval(target, inv) && !eval.Eval(dep, inv) {
		plugins := append(involvedPlugins(target), involvedPlugins(dep)...)
		msgs.Add(message.New(message.KindRequires, r.Message, r.Pos, plugins...))
	}
}

func applyPatch(r rules.Rule, inv *plugin.Inventory, msgs *message.Set) {
	if len(r.Chain) < 2 {
		return
	}
	patchPlugin := r.Chain[0]
	required := r.Chain[1:]

	patchPresent := inv.Has(patchPlugin)
	var missing, extraneous []string
	for _, req := range required {
		if !inv.Has(req) {
			missing = append(missing, req)
		}
	}
	if patchPresent && len(missing) > 0 {
		text := fmt.Sprintf("%s (missing: %v)", r.Message, missing)
		msgs.Add(message.New(message.KindPatch, text, r.Pos, append([]string{patchPlugin}, missing...)...))
		return
	}
	if !patchPresent {
		for _, req := range required {
			if inv.Has(req) {
				extraneous = append(extraneous, req)
			}
		}
		if len(extraneous) > 0 {
			text := fmt.Sprintf("%s (patch %s not installed, but requires it: %v)", r.Message, patchPlugin, extraneous)
			msgs.Add(message.New(message.KindPatch, text, r.Pos, append([]string{patchPlugin}, extraneous...)...))
		}
	}
}

// involvedPlugins flattens an expression tree's leaf plugin references, in
// left-to-right order, for attaching to an emitted message.
func involvedPlugins(e rules.Expr) []string {
	switch e := e.(type) {
	case rules.Atomic:
		return []string{e.Plugin}
	case rules.All:
		var out []string
		for _, sub := range e.Exprs {
			out = append(out, involvedPlugins(sub)...)
		}
		return out
	case rules.Any:
		var out []string
		for _, sub := range e.Exprs {
			out = append(out, involvedPlugins(sub)...)
		}
		return out
	case rules.Not:
		return involvedPlugins(e.Expr)
	case rules.Desc:
		return []string{e.Plugin}
	case rules.Ver:
		return []string{e.Plugin}
	case rules.Size:
		return []string{e.Plugin}
	default:
		return nil
	}
}
