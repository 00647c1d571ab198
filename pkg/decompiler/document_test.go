package decompiler

import (
	"strings"
	"testing"

	"github.com/chazu/opeo/pkg/treeir"
)

const helloDoc = `<program name="app.Hello">
  <o base="class" name="Hello">
    <o base="method" name="main">
      <o base="seq">
        <o base="opcode" name="GETSTATIC">
          <o base="string" data="java/lang/System"/>
          <o base="string" data="out"/>
          <o base="string" data="Ljava/io/PrintStream;"/>
        </o>
        <o base="opcode" name="LDC"><o base="string" data="hello"/></o>
        <o base="opcode" name="INVOKEVIRTUAL">
          <o base="string" data="java/io/PrintStream"/>
          <o base="string" data="println"/>
          <o base="string" data="(Ljava/lang/String;)V"/>
        </o>
        <o base="opcode" name="RETURN"/>
      </o>
    </o>
    <o base="method" name="abstractOne"/>
  </o>
</program>`

func TestDocument(t *testing.T) {
	doc, err := treeir.ParseBytes([]byte(helloDoc))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	out, err := New(Options{}).Document(doc)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	body := treeir.Body(treeir.Methods(out)[0])
	if len(body.Children) != 2 {
		t.Fatalf("body has %d nodes, want call and return: %s", len(body.Children), body)
	}
	if got := body.Children[0].Base; got != ".println" {
		t.Errorf("first node = %q, want .println", got)
	}
	if got := body.Children[1].Name; got != "RETURN" {
		t.Errorf("second node = %q, want RETURN", got)
	}

	original := treeir.Body(treeir.Methods(doc)[0])
	if len(original.Children) != 4 {
		t.Errorf("input document was modified: %s", original)
	}
}

func TestDocumentDropsFrames(t *testing.T) {
	doc, err := treeir.ParseBytes([]byte(strings.Replace(helloDoc,
		`<o base="opcode" name="RETURN"/>`, `<o base="frame"/><o base="opcode" name="RETURN"/>`, 1)))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	out, err := New(Options{}).Document(doc)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	body := treeir.Body(treeir.Methods(out)[0])
	if len(body.Children) != 2 || body.Find("frame") != nil {
		t.Errorf("body = %s, want call and return without the frame", body)
	}
}

func TestDocumentRejectsUnknownBodyNodes(t *testing.T) {
	doc, err := treeir.ParseBytes([]byte(strings.Replace(helloDoc,
		`<o base="opcode" name="RETURN"/>`, `<o base="frame"/><o base="opcode" name="RETURN"/>`, 1)))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	if _, err := New(Options{Passthrough: []string{}}).Document(doc); err == nil {
		t.Error("Document should reject a frame that is not declared passthrough")
	}
}
