package wire

import (
	"bytes"
	"testing"

	"github.com/chazu/opeo/pkg/jvm"
)

func sampleBody() []jvm.Instruction {
	return []jvm.Instruction{
		jvm.NewInstruction(jvm.NOP),
		jvm.NewInstruction(jvm.GETSTATIC, "java/lang/System", "out", "Ljava/io/PrintStream;"),
		jvm.NewInstruction(jvm.LDC, 2.5),
		jvm.NewInstruction(jvm.LDC, "\u0001 and \xff"),
		jvm.NewInstruction(jvm.LDC, int64(7)),
		jvm.NewInstruction(jvm.LDC, jvm.ObjectType("java/lang/String")),
		jvm.NewInstruction(jvm.ILOAD, 1),
		jvm.NewInstruction(jvm.IFNE, jvm.Label("L1")),
		jvm.LabelInstruction("L1"),
		jvm.NewInstruction(jvm.RETURN),
	}
}

func TestBundle_CBORRoundTrip(t *testing.T) {
	m, err := NewMethod("main", "([Ljava/lang/String;)V", sampleBody())
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	b := &Bundle{Class: "app/Main", Methods: []Method{m}}

	data, err := MarshalBundle(b)
	if err != nil {
		t.Fatalf("MarshalBundle: %v", err)
	}
	got, err := UnmarshalBundle(data)
	if err != nil {
		t.Fatalf("UnmarshalBundle: %v", err)
	}

	if got.Class != b.Class {
		t.Errorf("Class: got %q, want %q", got.Class, b.Class)
	}
	if len(got.Methods) != 1 || got.Methods[0].Descriptor != m.Descriptor {
		t.Fatalf("Methods mismatch: %+v", got.Methods)
	}
	decoded, err := got.Methods[0].Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := sampleBody()
	if len(decoded) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(decoded), len(want))
	}
	for i := range want {
		if decoded[i].String() != want[i].String() {
			t.Errorf("instruction %d: got %s, want %s", i, decoded[i], want[i])
		}
	}
	if got := decoded[3].Operands[0]; got != "\u0001 and \xff" {
		t.Errorf("string operand = %q, want it byte-exact", got)
	}
	if _, ok := decoded[4].Operands[0].(int64); !ok {
		t.Errorf("long operand decoded as %T", decoded[4].Operands[0])
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	m, err := NewMethod("run", "()V", sampleBody())
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	first, err := MarshalMethods([]Method{m})
	if err != nil {
		t.Fatalf("MarshalMethods: %v", err)
	}
	second, err := MarshalMethods([]Method{m})
	if err != nil {
		t.Fatalf("MarshalMethods: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("encoding is not deterministic")
	}

	methods, err := UnmarshalMethods(first)
	if err != nil {
		t.Fatalf("UnmarshalMethods: %v", err)
	}
	if len(methods) != 1 || methods[0].Name != "run" {
		t.Errorf("UnmarshalMethods = %+v", methods)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		m    Method
	}{
		{"unknown opcode", Method{Name: "m", Instructions: []Instruction{{Opcode: 0xFE}}}},
		{"bad operand", Method{Name: "m", Instructions: []Instruction{{Opcode: uint8(jvm.BIPUSH), Operands: []Operand{{Kind: "int", Text: []byte("x")}}}}}},
	}
	for _, tt := range tests {
		if _, err := tt.m.Decode(); err == nil {
			t.Errorf("%s: Decode should fail", tt.name)
		}
	}
	if _, err := UnmarshalBundle([]byte{0xff, 0x00}); err == nil {
		t.Error("UnmarshalBundle should reject garbage")
	}
}

func TestNewMethodRejectsUnencodableOperand(t *testing.T) {
	_, err := NewMethod("m", "()V", []jvm.Instruction{jvm.NewInstruction(jvm.LDC, struct{}{})})
	if err == nil {
		t.Error("NewMethod should reject an unknown operand type")
	}
}
