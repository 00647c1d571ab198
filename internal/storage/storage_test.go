package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/opeo/pkg/treeir"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<program name="app.Main">
  <o base="method" name="main"><o base="seq"><o base="opcode" name="RETURN"/></o></o>
</program>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStorageAll(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "b", "Main.xmir"), sampleDoc)
	writeFile(t, filepath.Join(in, "a.xmir"), sampleDoc)
	writeFile(t, filepath.Join(in, "notes.txt"), "ignored")

	s := &FileStorage{Input: in, Extension: ".xmir"}
	entries, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Relative != "a.xmir" {
		t.Errorf("first entry = %q, want a.xmir", entries[0].Relative)
	}
	if entries[1].Relative != filepath.Join("b", "Main.xmir") {
		t.Errorf("second entry = %q, want b/Main.xmir", entries[1].Relative)
	}
	if entries[0].Doc.Name != "app.Main" {
		t.Errorf("doc name = %q, want app.Main", entries[0].Doc.Name)
	}
}

func TestFileStorageAllErrors(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "bad.xmir"), "<program><o base=")
	s := &FileStorage{Input: in, Extension: ".xmir"}
	if _, err := s.All(context.Background()); err == nil {
		t.Error("All should fail on a malformed document")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.All(ctx); err == nil {
		t.Error("All should fail on a cancelled context")
	}

	if _, err := (&FileStorage{}).All(context.Background()); err == nil {
		t.Error("All without input should fail")
	}
}

func TestFileStorageSave(t *testing.T) {
	out := t.TempDir()
	s := &FileStorage{Output: out, Extension: ".xmir"}
	doc := &treeir.Document{Name: "app.Main", Nodes: []*treeir.Node{treeir.New("method").WithName("main")}}

	rel := filepath.Join("deep", "Main.xmir")
	if err := s.Save(Entry{Relative: rel, Doc: doc}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back := &FileStorage{Input: out, Extension: ".xmir"}
	entries, err := back.All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Relative != rel {
		t.Fatalf("entries = %+v, want one at %s", entries, rel)
	}
	if got := entries[0].Doc.Nodes[0].Name; got != "main" {
		t.Errorf("method name = %q, want main", got)
	}

	if err := (&FileStorage{}).Save(Entry{Relative: "x", Doc: doc}); err == nil {
		t.Error("Save without output should fail")
	}
}

func TestDiscard(t *testing.T) {
	var s Storage = Discard{}
	if err := s.Save(Entry{Relative: "x"}); err != nil {
		t.Errorf("Save = %v, want nil", err)
	}
	entries, err := s.All(context.Background())
	if err != nil || len(entries) != 0 {
		t.Errorf("All = %v, %v, want empty", entries, err)
	}
}
