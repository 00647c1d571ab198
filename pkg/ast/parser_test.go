package ast

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

func mustNode(t *testing.T, text string) *treeir.Node {
	t.Helper()
	n, err := treeir.ParseNode(text)
	if err != nil {
		t.Fatalf("ParseNode(%s) failed: %v", text, err)
	}
	return n
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"unknown base", `<o base="bogus"/>`, "bogus"},
		{"missing base", `<o name="x"/>`, "without base"},
		{"unknown reference", `<o base="ref-d9"/>`, "unknown reference"},
		{"missing descriptor", `<o base=".foo" scope="name=foo|type=method"><o base="$"/></o>`, "missing descriptor"},
		{"member name mismatch", `<o base=".foo" scope="descriptor=()V|name=bar|type=method"><o base="$"/></o>`, "does not match"},
		{"unknown member kind", `<o base=".x" scope="descriptor=I|name=x|owner=A|type=weird"><o base="$"/></o>`, "unknown kind"},
		{"bad slot", `<o base="local-x" scope="descriptor=I|type=local"/>`, "bad slot"},
		{"untyped local", `<o base="local-1" scope="type=local"/>`, "without type"},
		{"arity", `<o base="plus" scope="descriptor=I"><o base="int" data="1"/></o>`, "number of children"},
		{"unknown opcode", `<o base="opcode" name="FOO"/>`, "unknown opcode"},
		{"bad counter", `<o base="opcode" name="IADD-x"/>`, "bad counter"},
		{"bad operand", `<o base="opcode" name="BIPUSH"><o base="int" data="x"/></o>`, "BIPUSH"},
		{"bad literal", `<o base="int" data="abc"/>`, "int"},
		{"unnamed duplicate", `<o base="duplicated"><o base="int" data="1"/></o>`, "missing name"},
		{"if without target", `<o base="if-gt"><o base="int" data="1"/><o base="int" data="1"/></o>`, "jump target"},
		{"unknown comparison", `<o base="if-sometimes"><o base="label" data="l"/></o>`, "unknown comparison"},
		{"bad return", `<o base="return" name="RETURN"><o base="int" data="1"/></o>`, "bad return"},
		{"bad array type", `<o base="new-array"><o base="int" data="1"/><o base="int" data="1"/></o>`, "expected type"},
		{"bad field receiver", `<o base="write-field" scope="descriptor=I|name=a|owner=App|type=field"><o base="$"/><o base="int" data="1"/></o>`, "not a field retrieval"},
		{"nested error", `<o base="seq"><o base="int" data="1"/><o base="nope"/></o>`, "nope"},
	}

	for _, tt := range tests {
		_, err := NewParser().Parse(mustNode(t, tt.xml))
		if err == nil {
			t.Errorf("%s: expected an error", tt.name)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: error %v does not wrap ErrMalformed", tt.name, err)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestParseResolvesReferences(t *testing.T) {
	node := mustNode(t, `<o base="seq">
	  <o base="duplicated" name="d1"><o base="int" data="7"/></o>
	  <o base="pop"><o base="ref-d1"/></o>
	</o>`)

	parsed, err := NewParser().Parse(node)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := parsed.(*Root)
	dup, ok := root.Children[0].(*Duplicate)
	if !ok {
		t.Fatalf("first child is %T, want *Duplicate", root.Children[0])
	}
	ref := root.Children[1].(*Popped).Value.(*Reference)
	if ref.Target != dup {
		t.Error("reference does not resolve to the registered duplicate")
	}

	instructions, err := Compile(root)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	var names []string
	for _, in := range instructions {
		names = append(names, in.Name())
	}
	if got := strings.Join(names, " "); got != "BIPUSH DUP POP" {
		t.Errorf("lowered to %q, want %q", got, "BIPUSH DUP POP")
	}
}

func TestReferenceTableIsPerParser(t *testing.T) {
	p := NewParser()
	if _, err := p.Parse(mustNode(t, `<o base="duplicated" name="d1"><o base="$"/></o>`)); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := p.Parse(mustNode(t, `<o base="duplicated" name="d1"><o base="$"/></o>`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("registering d1 twice: error = %v, want ErrMalformed", err)
	}
	if _, err := NewParser().Parse(mustNode(t, `<o base="ref-d1"/>`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("fresh parser resolved d1: error = %v", err)
	}
}

func TestParseDispatchesMemberKinds(t *testing.T) {
	tests := []struct {
		xml  string
		want Node
	}{
		{`<o base=".a" scope="descriptor=I|name=a|owner=App|type=field"><o base="$"/></o>`, &InstanceField{}},
		{`<o base=".bar" scope="descriptor=()V|name=bar|owner=A|type=method"><o base="$"/></o>`, &Invocation{}},
		{`<o base=".size" scope="descriptor=()I|name=size|owner=java/util/List|type=interface"><o base="$"/></o>`, &InterfaceInvocation{}},
		{`<o base=".valueOf" scope="descriptor=(I)Ljava/lang/Integer;|name=valueOf|owner=java/lang/Integer|type=static"><o base="int" data="2"/></o>`, &StaticInvocation{}},
		{`<o base=".run" scope="descriptor=()Ljava/lang/Runnable;|name=run|type=dynamic"><o base="bootstrap"><o base="handle" data="6,A,b,()V,false"/></o></o>`, &DynamicInvocation{}},
	}
	for _, tt := range tests {
		got, err := NewParser().Parse(mustNode(t, tt.xml))
		if err != nil {
			t.Errorf("Parse(%s) failed: %v", tt.xml, err)
			continue
		}
		if reflect.TypeOf(got) != reflect.TypeOf(tt.want) {
			t.Errorf("Parse(%s) = %T, want %T", tt.xml, got, tt.want)
		}
	}
}

func TestPassthroughBases(t *testing.T) {
	frame := `<o base="frame" name="f1"><o base="anything" data="x"/></o>`
	n, err := NewParser(DefaultPassthrough...).Parse(mustNode(t, frame))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	raw, ok := n.(*RawXml)
	if !ok {
		t.Fatalf("Parse returned %T, want *RawXml", n)
	}
	if !raw.ToXmir().Equal(mustNode(t, frame)) {
		t.Errorf("raw node changed: %s", raw.ToXmir())
	}
	ops, err := raw.Opcodes()
	if err != nil || len(ops) != 1 || ops[0] != raw {
		t.Errorf("raw node should lower to itself, got %v, %v", ops, err)
	}

	if _, err := NewParser().Parse(mustNode(t, frame)); !errors.Is(err, ErrMalformed) {
		t.Errorf("frame without passthrough: error = %v, want ErrMalformed", err)
	}
}

func TestParseOpcodeWithCounter(t *testing.T) {
	n, err := NewParser().Parse(mustNode(t, `<o base="opcode" name="INVOKEVIRTUAL-12">
	  <o base="string" data="A"/><o base="string" data="bar"/><o base="string" data="()V"/>
	</o>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	op := n.(*Opcode)
	if op.Code != jvm.INVOKEVIRTUAL || op.Counter != 12 {
		t.Errorf("parsed %s counter %d, want INVOKEVIRTUAL counter 12", op.Code, op.Counter)
	}
	if len(op.Operands) != 3 || op.Operands[1] != "bar" {
		t.Errorf("operands = %v", op.Operands)
	}
}

func TestParseMintsAnonymousLabel(t *testing.T) {
	n, err := NewParser().Parse(mustNode(t, `<o base="label"/>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if l, ok := n.(*Label); !ok || l.ID == "" {
		t.Errorf("parsed %v, want a label with a minted identity", n)
	}
}
