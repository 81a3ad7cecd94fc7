package apply

import (
	"testing"

	"github.com/rfuzzo/plox/internal/message"
	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rules"
	"github.com/rfuzzo/plox/internal/topo"
)

func mustParse(t *testing.T, text string) []rules.Rule {
	t.Helper()
	r, err := rules.Parse("t.txt", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func TestApply_TwoPluginOrder(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "B.esp"}, {Name: "A.esp"}})
	ruleset := mustParse(t, "[Order]\nA.esp\nB.esp\n")

	result := Apply(ruleset, inv)
	order, err := topo.Stable(result.Graph)
	if err != nil {
		t.Fatal(err)
	}
	names := inv.Names()
	got := []string{names[order[0]], names[order[1]]}
	if got[0] != "A.esp" || got[1] != "B.esp" {
		t.Errorf("got order %v, want [A.esp B.esp]", got)
	}
}

func TestApply_ConflictFires(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "mod1.esp"}, {Name: "mod2.esp"}})
	ruleset := mustParse(t, "[Conflict]\nmods conflict\nmod1.esp\nmod2.esp\n")

	result := Apply(ruleset, inv)
	if result.Messages.Len() != 1 {
		t.Fatalf("got %d messages, want 1", result.Messages.Len())
	}
	msg := result.Messages.Messages()[0]
	if msg.Kind != message.KindConflict {
		t.Errorf("Kind = %v, want Conflict", msg.Kind)
	}
}

func TestApply_NoteDoesNotFire(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "A.esp"}})
	ruleset := mustParse(t, "[Note]\nmsg\n[ALL A.esp B.esp]\n")

	result := Apply(ruleset, inv)
	if result.Messages.Len() != 0 {
		t.Errorf("got %d messages, want 0 (ALL with a missing plugin)", result.Messages.Len())
	}
}

func TestApply_Requires(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "Needs.esp"}})
	ruleset := mustParse(t, "[Requires]\nNeeds.esp needs Dep.esp\nNeeds.esp\nDep.esp\n")

	result := Apply(ruleset, inv)
	if result.Messages.Len() != 1 {
		t.Fatalf("got %d messages, want 1", result.Messages.Len())
	}
	if result.Messages.Messages()[0].Kind != message.KindRequires {
		t.Errorf("Kind = %v, want Requires", result.Messages.Messages()[0].Kind)
	}
}

func TestApply_PatchReportsMissingRequirement(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "Patch.esp"}, {Name: "Req1.esp"}})
	ruleset := mustParse(t, "[Patch]\nneeds both\nPatch.esp\nReq1.esp\nReq2.esp\n")

	result := Apply(ruleset, inv)
	if result.Messages.Len() != 1 {
		t.Fatalf("got %d messages, want 1", result.Messages.Len())
	}
	if result.Messages.Messages()[0].Kind != message.KindPatch {
		t.Errorf("Kind = %v, want Patch", result.Messages.Messages()[0].Kind)
	}
}

func TestApply_OrderSkipsAbsentPlugins(t *testing.T) {
	inv := plugin.NewInventory([]plugin.Record{{Name: "A.esp"}, {Name: "C.esp"}})
	ruleset := mustParse(t, "[Order]\nA.esp\nB.esp\nC.esp\n")

	result := Apply(ruleset, inv)
	edges := result.Graph.Edges()
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1 (A->C, B dropped since absent)", len(edges))
	}
	if edges[0].From != inv.IndexOf("A.esp") || edges[0].To != inv.IndexOf("C.esp") {
		t.Errorf("edge = %+v, want A.esp -> C.esp", edges[0])
	}
}

func TestApply_VersionPredicate(t *testing.T) {
	older := plugin.Record{Name: "mod.esp"}
	v, err := plugin.ParseVersion("1.5.3")
	if err != nil {
		t.Fatal(err)
	}
	older.Version = v
	inv := plugin.NewInventory([]plugin.Record{older})
	ruleset := mustParse(t, "[Note]\noutdated\n[VER < 2.0.0 mod.esp]\n")

	result := Apply(ruleset, inv)
	if result.Messages.Len() != 1 {
		t.Fatalf("got %d messages, want 1 (1.5.3 < 2.0.0)", result.Messages.Len())
	}
}
