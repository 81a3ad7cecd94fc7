package message

import (
	"testing"

	"github.com/rfuzzo/plox/internal/rules"
)

func TestSet_StatsAndOrder(t *testing.T) {
	set := NewSet()
	pos := rules.Pos{File: "base.txt", Line: 10}
	set.Add(New(KindNote, "a note", pos, "A.esp"))
	set.Add(New(KindConflict, "a conflict", pos, "A.esp", "B.esp"))
	set.Add(New(KindParseError, "bad rule", pos))

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
	msgs := set.Messages()
	if msgs[0].Kind != KindNote || msgs[1].Kind != KindConflict || msgs[2].Kind != KindParseError {
		t.Errorf("messages out of insertion order: %+v", msgs)
	}

	stats := set.Stats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.BySeverity[SeverityError] != 1 || stats.BySeverity[SeverityWarning] != 1 || stats.BySeverity[SeverityInfo] != 1 {
		t.Errorf("BySeverity = %+v", stats.BySeverity)
	}
	if stats.AffectedPlugins != 2 {
		t.Errorf("AffectedPlugins = %d, want 2", stats.AffectedPlugins)
	}
}

func TestSet_ForPlugin(t *testing.T) {
	set := NewSet()
	pos := rules.Pos{File: "base.txt", Line: 1}
	set.Add(New(KindConflict, "c1", pos, "A.esp", "B.esp"))
	set.Add(New(KindNote, "n1", pos, "C.esp"))

	got := set.ForPlugin("A.esp")
	if len(got) != 1 || got[0].Text != "c1" {
		t.Errorf("ForPlugin(A.esp) = %+v", got)
	}
	if len(set.ForPlugin("Z.esp")) != 0 {
		t.Error("expected no messages for an unreferenced plugin")
	}
}
