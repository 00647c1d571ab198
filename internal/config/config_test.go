package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[decompiler]
counting = false

[compiler]
passthrough = ["frame", "line"]

[batch]
extension = ".xml"
workers = 3
supported = ["IINC"]
report = "outcomes.db"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Decompiler.Counting {
		t.Error("counting = true, want false")
	}
	if len(c.Compiler.Passthrough) != 2 || c.Compiler.Passthrough[1] != "line" {
		t.Errorf("passthrough = %v, want [frame line]", c.Compiler.Passthrough)
	}
	if c.Batch.Extension != ".xml" {
		t.Errorf("extension = %q, want .xml", c.Batch.Extension)
	}
	if c.WorkerCount() != 3 {
		t.Errorf("workers = %d, want 3", c.WorkerCount())
	}
	if len(c.Batch.Supported) != 1 || c.Batch.Supported[0] != "IINC" {
		t.Errorf("supported = %v, want [IINC]", c.Batch.Supported)
	}
	if want := filepath.Join(c.Dir, "outcomes.db"); c.Batch.Report != want {
		t.Errorf("report = %q, want %q", c.Batch.Report, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Decompiler.Counting {
		t.Error("counting should default to true")
	}
	if len(c.Compiler.Passthrough) != 1 || c.Compiler.Passthrough[0] != "frame" {
		t.Errorf("passthrough = %v, want [frame]", c.Compiler.Passthrough)
	}
	if c.Batch.Extension != ".xmir" {
		t.Errorf("extension = %q, want .xmir", c.Batch.Extension)
	}
	if c.WorkerCount() != runtime.GOMAXPROCS(0) {
		t.Errorf("workers = %d, want GOMAXPROCS", c.WorkerCount())
	}
	if c.Batch.Report != "" {
		t.Errorf("report = %q, want empty", c.Batch.Report)
	}
}

func TestDefaultMatchesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d := Default()
	if d.Decompiler.Counting != loaded.Decompiler.Counting ||
		d.Batch.Extension != loaded.Batch.Extension ||
		len(d.Compiler.Passthrough) != len(loaded.Compiler.Passthrough) {
		t.Errorf("Default() = %+v, want %+v", d, loaded)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[decompiler\ncounting = true"},
		{"unknown key", "[batch]\nthreads = 4"},
		{"wrong type", "[batch]\nworkers = \"many\""},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		writeConfig(t, dir, tt.content)
		if _, err := Load(dir); err == nil {
			t.Errorf("%s: Load should fail", tt.name)
		}
	}

	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of a directory without opeo.toml should fail")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[batch]\nworkers = 2\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if c.Batch.Workers != 2 {
		t.Errorf("workers = %d, want 2", c.Batch.Workers)
	}
}
