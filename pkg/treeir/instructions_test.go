package treeir

import (
	"testing"

	"github.com/chazu/opeo/pkg/jvm"
)

func TestInstructionsRoundTrip(t *testing.T) {
	program := []jvm.Instruction{
		jvm.NewInstruction(jvm.GETSTATIC, "java/lang/System", "out", "Ljava/io/PrintStream;"),
		jvm.NewInstruction(jvm.LDC, "hi"),
		jvm.NewInstruction(jvm.ILOAD, 1),
		jvm.NewInstruction(jvm.IFEQ, jvm.Label("end")),
		jvm.LabelInstruction("end"),
		jvm.NewInstruction(jvm.RETURN),
	}
	nodes, err := FromInstructions(program)
	if err != nil {
		t.Fatalf("FromInstructions failed: %v", err)
	}
	back, err := Instructions(nodes)
	if err != nil {
		t.Fatalf("Instructions failed: %v", err)
	}
	if len(back) != len(program) {
		t.Fatalf("got %d instructions, want %d", len(back), len(program))
	}
	for i := range program {
		if back[i].String() != program[i].String() {
			t.Errorf("instruction %d = %s, want %s", i, back[i], program[i])
		}
	}
}

func TestInstructionsAcceptCountedNames(t *testing.T) {
	got, err := Instructions([]*Node{New(BaseOpcode).WithName("RETURN-41")})
	if err != nil {
		t.Fatalf("Instructions failed: %v", err)
	}
	if got[0].Opcode != jvm.RETURN {
		t.Errorf("opcode = %s, want RETURN", got[0].Opcode)
	}
}

func TestInstructionsRejectTrees(t *testing.T) {
	tests := [][]*Node{
		{New("plus")},
		{New(BaseOpcode).WithName("NOPE")},
		{New(BaseOpcode, New("bytes").WithData("00")).WithName("LDC")},
	}
	for _, body := range tests {
		if _, err := Instructions(body); err == nil {
			t.Errorf("Instructions(%v) should fail", body)
		}
	}
}

func TestInstructionsMintAnonymousLabels(t *testing.T) {
	got, err := Instructions([]*Node{New(BaseLabel), New(BaseLabel), New(BaseOpcode).WithName("RETURN")})
	if err != nil {
		t.Fatalf("Instructions failed: %v", err)
	}
	if !got[0].IsLabel() || got[0].Label == "" {
		t.Fatalf("first instruction = %s, want a minted label", got[0])
	}
	if got[0].Label == got[1].Label {
		t.Errorf("anonymous labels share identity %q", got[0].Label)
	}
}
