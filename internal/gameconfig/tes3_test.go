package gameconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMorrowindINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Morrowind.ini")
	content := "[General]\nSomeSetting=1\n\n[Game Files]\nGameFile0=Morrowind.esm\nGameFile1=Tribunal.esm\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadMorrowindINI(path)
	if err != nil {
		t.Fatalf("ReadMorrowindINI: %v", err)
	}
	want := []string{"Morrowind.esm", "Tribunal.esm"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWriteMorrowindINI_PreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Morrowind.ini")
	original := "[General]\nSomeSetting=1\n\n[Game Files]\nGameFile0=B.esp\nGameFile1=A.esp\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteMorrowindINI(path, []string{"A.esp", "B.esp"}, ""); err != nil {
		t.Fatalf("WriteMorrowindINI: %v", err)
	}

	got, err := ReadMorrowindINI(path)
	if err != nil {
		t.Fatalf("ReadMorrowindINI: %v", err)
	}
	if len(got) != 2 || got[0] != "A.esp" || got[1] != "B.esp" {
		t.Errorf("got %v, want [A.esp B.esp]", got)
	}

	raw, _ := os.ReadFile(path)
	if !contains(string(raw), "[General]") || !contains(string(raw), "SomeSetting=1") {
		t.Errorf("expected [General] section preserved, got:\n%s", raw)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
