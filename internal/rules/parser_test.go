package rules

import (
	"strings"
	"testing"
)

func TestParse_Order(t *testing.T) {
	text := "[Order]\nA.esp\nB.esp\nC.esp\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rules, want 1", len(got))
	}
	r := got[0]
	if r.Kind != KindOrder {
		t.Errorf("Kind = %v, want Order", r.Kind)
	}
	want := []string{"A.esp", "B.esp", "C.esp"}
	if len(r.Chain) != len(want) {
		t.Fatalf("Chain = %v, want %v", r.Chain, want)
	}
	for i := range want {
		if r.Chain[i] != want[i] {
			t.Errorf("Chain[%d] = %q, want %q", i, r.Chain[i], want[i])
		}
	}
}

func TestParse_Note(t *testing.T) {
	text := "[Note]\nThis is a note.\nA.esp\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 1 || got[0].Kind != KindNote {
		t.Fatalf("got %+v, want one Note rule", got)
	}
	if got[0].Message != "This is a note." {
		t.Errorf("Message = %q", got[0].Message)
	}
	atom, ok := got[0].Exprs[0].(Atomic)
	if !ok || atom.Plugin != "A.esp" {
		t.Errorf("Exprs[0] = %#v, want Atomic{A.esp}", got[0].Exprs[0])
	}
}

func TestParse_ConflictWithAllAny(t *testing.T) {
	text := "[Conflict]\nmod1 and mod2 conflict\n[ALL A.esp B.esp]\n[ANY C.esp D.esp]\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rules, want 1", len(got))
	}
	r := got[0]
	if len(r.Exprs) != 2 {
		t.Fatalf("Exprs = %+v, want 2 entries", r.Exprs)
	}
	if _, ok := r.Exprs[0].(All); !ok {
		t.Errorf("Exprs[0] = %#v, want All", r.Exprs[0])
	}
	if _, ok := r.Exprs[1].(Any); !ok {
		t.Errorf("Exprs[1] = %#v, want Any", r.Exprs[1])
	}
}

func TestParse_Requires(t *testing.T) {
	text := "[Requires]\nNeeds a patch\nA.esp\n[NOT B.esp]\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	r := got[0]
	if r.Kind != KindRequires || len(r.Exprs) != 2 {
		t.Fatalf("got %+v", r)
	}
	if _, ok := r.Exprs[1].(Not); !ok {
		t.Errorf("Exprs[1] = %#v, want Not", r.Exprs[1])
	}
}

func TestParse_Desc(t *testing.T) {
	text := "[Note]\nOutdated description check\n[DESC/old version/ A.esp]\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	desc, ok := got[0].Exprs[0].(Desc)
	if !ok {
		t.Fatalf("Exprs[0] = %#v, want Desc", got[0].Exprs[0])
	}
	if desc.Pattern != "old version" || desc.Plugin != "A.esp" || desc.Negate {
		t.Errorf("Desc = %+v", desc)
	}
	if !desc.Compiled.MatchString("this has old version text") {
		t.Errorf("compiled regex did not match expected text")
	}
}

func TestParse_Ver(t *testing.T) {
	text := "[Note]\noutdated\n[VER < 2.0.0 mod.esp]\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	ver, ok := got[0].Exprs[0].(Ver)
	if !ok {
		t.Fatalf("Exprs[0] = %#v, want Ver", got[0].Exprs[0])
	}
	if ver.Op != OpLT || ver.Version != "2.0.0" || ver.Plugin != "mod.esp" {
		t.Errorf("Ver = %+v", ver)
	}
}

func TestParse_Size(t *testing.T) {
	text := "[Note]\nwrong size\n[SIZE! 1024 A.esp]\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	size, ok := got[0].Exprs[0].(Size)
	if !ok || !size.Negate || size.Bytes != 1024 || size.Plugin != "A.esp" {
		t.Errorf("Size = %+v, ok=%v", size, ok)
	}
}

func TestParse_Patch(t *testing.T) {
	text := "[Patch]\nNeeds all three\nPatch.esp\nReq1.esp\nReq2.esp\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	r := got[0]
	if r.Kind != KindPatch || len(r.Chain) != 3 {
		t.Fatalf("got %+v", r)
	}
	if r.Chain[0] != "Patch.esp" {
		t.Errorf("Chain[0] = %q, want Patch.esp", r.Chain[0])
	}
}

func TestParse_RecoversFromBadRule(t *testing.T) {
	text := "[Order]\nA.esp\nB.esp\n\n[Note]\nbad bracket\n[ALL A.esp\n\n[Order]\nX.esp\nY.esp\n"
	got, err := Parse("test.txt", text)
	if err == nil {
		t.Fatal("expected a diagnostic error for the malformed ALL predicate")
	}
	if len(got) != 2 {
		t.Fatalf("got %d rules, want 2 (the good ones either side of the bad rule): %+v", len(got), got)
	}
	if got[0].Kind != KindOrder || got[1].Kind != KindOrder {
		t.Errorf("expected both surviving rules to be Order rules, got %v and %v", got[0].Kind, got[1].Kind)
	}
	if !strings.Contains(err.Error(), "test.txt") {
		t.Errorf("diagnostic %q missing file provenance", err.Error())
	}
}

func TestParse_CommentsIgnored(t *testing.T) {
	text := "; this is a header comment\n[Order]\n; inline comment\nA.esp\nB.esp\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 1 || len(got[0].Chain) != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestParse_CaseInsensitiveKeywords(t *testing.T) {
	text := "[order]\nA.esp\nB.esp\n"
	got, err := Parse("test.txt", text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 1 || got[0].Kind != KindOrder {
		t.Fatalf("got %+v, want one case-insensitively recognized Order rule", got)
	}
}
