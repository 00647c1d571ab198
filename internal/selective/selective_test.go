package selective

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/opeo/internal/storage"
	"github.com/chazu/opeo/pkg/decompiler"
	"github.com/chazu/opeo/pkg/treeir"
	"github.com/chazu/opeo/pkg/wire"
)

const simpleDoc = `<program name="app.Simple">
  <o base="method" name="main">
    <o base="seq">
      <o base="opcode" name="ICONST_2"/>
      <o base="opcode" name="ISTORE"><o base="int" data="1"/></o>
      <o base="opcode" name="RETURN"/>
    </o>
  </o>
</program>`

const iincDoc = `<program name="app.Loop">
  <o base="method" name="main">
    <o base="seq">
      <o base="opcode" name="IINC-3"><o base="int" data="1"/><o base="int" data="1"/></o>
      <o base="opcode" name="RETURN"/>
    </o>
  </o>
</program>`

const tryDoc = `<program name="app.Try">
  <o base="method" name="main">
    <o base="seq"><o base="opcode" name="RETURN"/></o>
    <o base="tuple" name="trycatchblocks"><o base="tuple"/></o>
  </o>
</program>`

// memory is an in-memory storage.
type memory struct {
	mu      sync.Mutex
	entries []storage.Entry
	saved   map[string]*treeir.Document
	files   map[string][]byte
}

func newMemory(t *testing.T, docs map[string]string) *memory {
	t.Helper()
	m := &memory{saved: make(map[string]*treeir.Document), files: make(map[string][]byte)}
	for rel, text := range docs {
		doc, err := treeir.ParseBytes([]byte(text))
		if err != nil {
			t.Fatalf("ParseBytes(%s) failed: %v", rel, err)
		}
		m.entries = append(m.entries, storage.Entry{Relative: rel, Doc: doc})
	}
	return m
}

func (m *memory) All(context.Context) ([]storage.Entry, error) { return m.entries, nil }

func (m *memory) Save(e storage.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[e.Relative] = e.Doc
	return nil
}

func (m *memory) WriteFile(rel string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[rel] = data
	return nil
}

func firstBase(doc *treeir.Document) string {
	return treeir.Body(treeir.Methods(doc)[0]).Children[0].Base
}

func TestSelectiveDecompile(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t, map[string]string{
		"Simple.xmir": simpleDoc,
		"Loop.xmir":   iincDoc,
		"Try.xmir":    tryDoc,
	})
	modified := newMemory(t, nil)
	report, err := storage.OpenReport(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("OpenReport failed: %v", err)
	}
	defer report.Close()

	d := &Decompiler{Storage: store, Modified: modified, Workers: 2, Report: report}
	stats, err := d.Decompile(ctx)
	if err != nil {
		t.Fatalf("Decompile failed: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 2 || stats.Failed != 0 {
		t.Errorf("stats = %s", stats)
	}

	if len(store.saved) != 3 {
		t.Errorf("saved %d entries, want all 3", len(store.saved))
	}
	if got := firstBase(store.saved["Simple.xmir"]); got != "write-local" {
		t.Errorf("Simple.xmir starts with %q, want write-local", got)
	}
	if got := firstBase(store.saved["Loop.xmir"]); got != "opcode" {
		t.Errorf("Loop.xmir starts with %q, want the untouched opcode", got)
	}
	if _, ok := modified.saved["Simple.xmir"]; !ok || len(modified.saved) != 1 {
		t.Errorf("modified = %v, want only Simple.xmir", modified.saved)
	}

	outcomes, err := report.Outcomes(ctx)
	if err != nil {
		t.Fatalf("Outcomes failed: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Path != "Loop.xmir" || !strings.Contains(outcomes[0].Reason, "IINC") {
		t.Errorf("Loop outcome = %+v", outcomes[0])
	}
}

func TestSelectiveDecompileExtraSupported(t *testing.T) {
	supported, err := SupportedFrom([]string{"iinc"})
	if err != nil {
		t.Fatalf("SupportedFrom failed: %v", err)
	}
	store := newMemory(t, map[string]string{"Loop.xmir": iincDoc})
	d := &Decompiler{Storage: store, Supported: supported, Options: decompiler.Options{Counting: true}}
	stats, err := d.Decompile(context.Background())
	if err != nil {
		t.Fatalf("Decompile failed: %v", err)
	}
	if stats.Processed != 1 {
		t.Errorf("stats = %s, want IINC document decompiled", stats)
	}

	if _, err := SupportedFrom([]string{"NOT_AN_OPCODE"}); err == nil {
		t.Error("SupportedFrom should reject unknown names")
	}
}

func TestUnsupported(t *testing.T) {
	supported := decompiler.AllAgents().Supported()
	tests := []struct {
		name       string
		doc        string
		opcodes    []string
		trycatches int
	}{
		{"supported", simpleDoc, nil, 0},
		{"iinc", iincDoc, []string{"IINC"}, 0},
		{"try", tryDoc, nil, 1},
	}
	for _, tt := range tests {
		doc, err := treeir.ParseBytes([]byte(tt.doc))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		opcodes, trycatches := Unsupported(doc, supported)
		if strings.Join(opcodes, " ") != strings.Join(tt.opcodes, " ") {
			t.Errorf("%s: opcodes = %v, want %v", tt.name, opcodes, tt.opcodes)
		}
		if trycatches != tt.trycatches {
			t.Errorf("%s: try-catch blocks = %d, want %d", tt.name, trycatches, tt.trycatches)
		}
	}
}

func TestSelectiveRoundTripOnDisk(t *testing.T) {
	ctx := context.Background()
	in, mid, out := t.TempDir(), t.TempDir(), t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "Simple.xmir"), []byte(simpleDoc), 0644); err != nil {
		t.Fatal(err)
	}

	d := &Decompiler{Storage: &storage.FileStorage{Input: in, Output: mid, Extension: ".xmir"}}
	if _, err := d.Decompile(ctx); err != nil {
		t.Fatalf("Decompile failed: %v", err)
	}

	sink := &storage.FileStorage{Input: mid, Output: out, Extension: ".xmir"}
	c := &Compiler{Storage: sink, Binary: sink}
	stats, err := c.Compile(ctx)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if stats.Processed != 1 {
		t.Errorf("stats = %s", stats)
	}

	entries, err := (&storage.FileStorage{Input: out, Extension: ".xmir"}).All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	names := treeir.OpcodeNames(treeir.Body(treeir.Methods(entries[0].Doc)[0]))
	if got := strings.Join(names, " "); got != "ICONST_2 ISTORE RETURN" {
		t.Errorf("round trip = %s, want ICONST_2 ISTORE RETURN", got)
	}

	data, err := os.ReadFile(filepath.Join(out, "Simple.cbor"))
	if err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	bundle, err := wire.UnmarshalBundle(data)
	if err != nil {
		t.Fatalf("UnmarshalBundle failed: %v", err)
	}
	if bundle.Class != "app.Simple" || len(bundle.Methods[0].Instructions) != 3 {
		t.Errorf("bundle = %+v", bundle)
	}
}

func TestSelectiveCompileStopsOnError(t *testing.T) {
	store := newMemory(t, map[string]string{
		"Bad.xmir": `<program><o base="method"><o base="seq"><o base="mystery"/></o></o></program>`,
	})
	c := &Compiler{Storage: store}
	stats, err := c.Compile(context.Background())
	if err == nil {
		t.Fatal("Compile should fail")
	}
	if stats.Failed != 1 {
		t.Errorf("stats = %s, want one failure", stats)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d entries, want none", len(store.saved))
	}
}
