package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rfuzzo/plox/internal/rules"
)

func TestCache_PutGetRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	c, err := New(Config{DBPath: filepath.Join(tempDir, "rules.db")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ruleset, err := rules.Parse("base.txt", "[Order]\nA.esp\nB.esp\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	ctx := context.Background()
	key := Key("base.txt", 123, 456, []byte("[Order]\nA.esp\nB.esp\n"))

	if _, err := c.Get(ctx, key); err != ErrNotFound {
		t.Fatalf("Get before Put: err = %v, want ErrNotFound", err)
	}

	if err := c.Put(ctx, key, "base.txt", ruleset, 1000); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if len(got) != 1 || got[0].Kind != rules.KindOrder || len(got[0].Chain) != 2 {
		t.Errorf("got %+v, want the original Order rule", got)
	}
}

func TestCache_DifferentContentDifferentKey(t *testing.T) {
	k1 := Key("base.txt", 10, 100, []byte("v1"))
	k2 := Key("base.txt", 10, 100, []byte("v2"))
	if k1 == k2 {
		t.Error("expected different content to produce different cache keys")
	}
}

func TestCache_InvalidateFile(t *testing.T) {
	tempDir := t.TempDir()
	c, err := New(Config{DBPath: filepath.Join(tempDir, "rules.db")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	ruleset, _ := rules.Parse("base.txt", "[Order]\nA.esp\nB.esp\n")
	key := Key("base.txt", 1, 1, []byte("x"))
	if err := c.Put(ctx, key, "base.txt", ruleset, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.InvalidateFile(ctx, "base.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, key); err != ErrNotFound {
		t.Errorf("Get after InvalidateFile: err = %v, want ErrNotFound", err)
	}
}
