package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/opeo/pkg/compiler"
	"github.com/chazu/opeo/pkg/treeir"
	"github.com/chazu/opeo/pkg/wire"
)

const helloDoc = `<program name="app.Hello">
  <o base="method" name="main">
    <o base="seq">
      <o base=".println" scope="descriptor=(Ljava/lang/String;)V|name=println|owner=java/io/PrintStream|type=method">
        <o base="get-static" scope="descriptor=Ljava/io/PrintStream;|name=out|owner=java/lang/System|type=static"/>
        <o base="string" data="hello"/>
      </o>
      <o base="frame"/>
      <o base="opcode" name="RETURN"/>
    </o>
  </o>
</program>`

func TestDisassembleDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Hello.xmir")
	if err := os.WriteFile(path, []byte(helloDoc), 0644); err != nil {
		t.Fatal(err)
	}
	listing, err := disassemble(path, compiler.Options{})
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	for _, want := range []string{"app.Hello.main", "GETSTATIC", "INVOKEVIRTUAL", "RETURN"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing does not mention %s:\n%s", want, listing)
		}
	}
}

func TestDisassembleBundle(t *testing.T) {
	doc, err := treeir.ParseBytes([]byte(helloDoc))
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := compiler.Bundle(doc, compiler.Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := wire.MarshalBundle(bundle)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "Hello.cbor")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	listing, err := disassemble(path, compiler.Options{})
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	if !strings.Contains(listing, "LDC") {
		t.Errorf("listing does not mention LDC:\n%s", listing)
	}
}

func TestDisassembleMissingFile(t *testing.T) {
	if _, err := disassemble(filepath.Join(t.TempDir(), "none.xmir"), compiler.Options{}); err == nil {
		t.Error("disassemble should fail on a missing file")
	}
}
