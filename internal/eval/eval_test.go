package eval

import (
	"testing"

	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rules"
)

func mustVersion(t *testing.T, s string) *plugin.Version {
	t.Helper()
	v, err := plugin.ParseVersion(s)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", s, err)
	}
	return v
}

func TestEval_Atomic(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "A.esp"}})
	if !Eval(rules.Atomic{Plugin: "a.esp"}, inv) {
		t.Error("expected Atomic(A.esp) to be true (case-insensitive)")
	}
	if Eval(rules.Atomic{Plugin: "B.esp"}, inv) {
		t.Error("expected Atomic(B.esp) to be false")
	}
}

func TestEval_AllAnyNot(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "A.esp"}, {Name: "B.esp"}})

	all := rules.All{Exprs: []rules.Expr{rules.Atomic{Plugin: "A.esp"}, rules.Atomic{Plugin: "C.esp"}}}
	if Eval(all, inv) {
		t.Error("ALL with a missing plugin should be false")
	}

	any := rules.Any{Exprs: []rules.Expr{rules.Atomic{Plugin: "C.esp"}, rules.Atomic{Plugin: "B.esp"}}}
	if !Eval(any, inv) {
		t.Error("ANY with one present plugin should be true")
	}

	not := rules.Not{Expr: rules.Atomic{Plugin: "C.esp"}}
	if !Eval(not, inv) {
		t.Error("NOT(absent) should be true")
	}
}

func TestEval_Desc(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "A.esp", Description: "fixes the old bug"}})
	expr, err := compileDesc(t, "old", "A.esp", false)
	if err != nil {
		t.Fatal(err)
	}
	if !Eval(expr, inv) {
		t.Error("expected DESC match to be true")
	}
	if Eval(rules.Atomic{Plugin: "B.esp"}, inv) {
		t.Error("sanity check failed")
	}
}

func TestEval_Ver(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "mod.esp", Version: mustVersion(t, "1.5.3")}})

	lt := rules.Ver{Plugin: "mod.esp", Op: rules.OpLT, Version: "2.0.0"}
	if !Eval(lt, inv) {
		t.Error("1.5.3 < 2.0.0 should be true")
	}
	gt := rules.Ver{Plugin: "mod.esp", Op: rules.OpGT, Version: "2.0.0"}
	if Eval(gt, inv) {
		t.Error("1.5.3 > 2.0.0 should be false")
	}
}

func sizePtr(n int64) *int64 { return &n }

func TestEval_Size(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "A.esp", Size: sizePtr(1024)}})
	if !Eval(rules.Size{Plugin: "A.esp", Bytes: 1024}, inv) {
		t.Error("expected exact size match")
	}
	if !Eval(rules.Size{Plugin: "A.esp", Bytes: 2048, Negate: true}, inv) {
		t.Error("expected negated size mismatch to be true")
	}
}

func compileDesc(t *testing.T, pattern, plug string, negate bool) (rules.Expr, error) {
	t.Helper()
	keyword := "DESC"
	if negate {
		keyword = "DESC!"
	}
	parsed, err := rules.Parse("t", "[Note]\nmsg\n["+keyword+"/"+pattern+"/ "+plug+"]\n")
	if err != nil {
		return nil, err
	}
	return parsed[0].Exprs[0], nil
}
