// Package eval evaluates rule predicate expressions against a plugin
// inventory. Evaluation is pure: it only ever reads the inventory.
package eval

import (
	"fmt"

	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rules"
)

// Eval reports whether expr holds against inv.
func Eval(expr rules.Expr, inv *plugin.Inventory) bool {
	switch e := expr.(type) {
	case rules.Atomic:
		return inv.Has(e.Plugin)
	case rules.All:
		for _, sub := range e.Exprs {
			if !Eval(sub, inv) {
				return false
			}
		}
		return true
	case rules.Any:
		for _, sub := range e.Exprs {
			if Eval(sub, inv) {
				return true
			}
		}
		return false
	case rules.Not:
		return !Eval(e.Expr, inv)
	case rules.Desc:
		rec, ok := inv.Get(e.Plugin)
		if !ok || rec.Description == "" {
			return false
		}
		matched := e.Compiled.MatchString(rec.Description)
		if e.Negate {
			return ok && !matched
		}
		return matched
	case rules.Ver:
		rec, ok := inv.Get(e.Plugin)
		if !ok || rec.Version == nil {
			return false
		}
		want, err := plugin.ParseVersion(e.Version)
		if err != nil {
			return false
		}
		cmp := rec.Version.Compare(want)
		switch e.Op {
		case rules.OpLT:
			return cmp < 0
		case rules.OpGT:
			return cmp > 0
		default:
			return cmp == 0
		}
	case rules.Size:
		rec, ok := inv.Get(e.Plugin)
		if !ok || rec.Size == nil {
			return false
		}
		eq := *rec.Size == e.Bytes
		if e.Negate {
			return !eq
		}
		return eq
	default:
		panic(fmt.Sprintf("eval: unhandled expression type %T", expr))
	}
}
