package compiler

import (
	"testing"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
	"github.com/chazu/opeo/pkg/wire"
)

const decompiledDoc = `<program name="app.Hello">
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
  <o base="method" name="abstractOne"/>
</program>`

func parseDoc(t *testing.T) *treeir.Document {
	t.Helper()
	doc, err := treeir.ParseBytes([]byte(decompiledDoc))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	return doc
}

func TestDocument(t *testing.T) {
	doc := parseDoc(t)
	out, err := Document(doc, Options{})
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	body := treeir.Body(treeir.Methods(out)[0])
	names := treeir.OpcodeNames(body)
	want := []string{"GETSTATIC", "LDC", "INVOKEVIRTUAL", "RETURN"}
	if len(names) != len(want) {
		t.Fatalf("opcodes = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("opcode %d = %s, want %s", i, names[i], want[i])
		}
	}
	if body.Find("frame") == nil {
		t.Error("frame node was not passed through")
	}
	if treeir.Body(treeir.Methods(doc)[0]).Children[0].Base != ".println" {
		t.Error("input document was modified")
	}
}

func TestBundle(t *testing.T) {
	b, err := Bundle(parseDoc(t), Options{})
	if err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}
	if b.Class != "app.Hello" || len(b.Methods) != 1 {
		t.Fatalf("bundle = %+v", b)
	}

	data, err := wire.MarshalBundle(b)
	if err != nil {
		t.Fatalf("MarshalBundle failed: %v", err)
	}
	back, err := wire.UnmarshalBundle(data)
	if err != nil {
		t.Fatalf("UnmarshalBundle failed: %v", err)
	}
	instructions, err := back.Methods[0].Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(instructions) != 4 || instructions[3].Opcode != jvm.RETURN {
		t.Errorf("instructions = %v", instructions)
	}
}

func TestDocumentReportsMethod(t *testing.T) {
	doc := parseDoc(t)
	treeir.Body(treeir.Methods(doc)[0]).Children[0].Scope = ""
	if _, err := Document(doc, Options{}); err == nil {
		t.Error("Document should fail on a member without attributes")
	}
}
