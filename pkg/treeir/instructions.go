package treeir

import (
	"fmt"

	"github.com/chazu/opeo/pkg/jvm"
)

// Instructions converts a body of opcode and label nodes into flat
// instructions. Any other node is an error. A label node without data
// gets a freshly minted identity.
func Instructions(body []*Node) ([]jvm.Instruction, error) {
	out := make([]jvm.Instruction, 0, len(body))
	for i, n := range body {
		switch n.Base {
		case BaseLabel:
			id := jvm.Label(n.Data)
			if id == "" {
				id = jvm.NewLabel()
			}
			out = append(out, jvm.LabelInstruction(id))
		case BaseOpcode:
			op, ok := jvm.OpcodeByName(n.Name)
			if !ok {
				return nil, fmt.Errorf("treeir: node %d: unknown opcode %q", i, n.Name)
			}
			operands := make([]any, len(n.Children))
			for k, c := range n.Children {
				v, err := jvm.DecodeOperand(c.Base, c.Data)
				if err != nil {
					return nil, fmt.Errorf("treeir: node %d (%s): %w", i, n.Name, err)
				}
				operands[k] = v
			}
			out = append(out, jvm.NewInstruction(op, operands...))
		default:
			return nil, fmt.Errorf("treeir: node %d: %q is not an instruction", i, n.Base)
		}
	}
	return out, nil
}

// FromInstructions is the inverse of Instructions.
func FromInstructions(instructions []jvm.Instruction) ([]*Node, error) {
	out := make([]*Node, 0, len(instructions))
	for _, in := range instructions {
		if in.IsLabel() {
			out = append(out, New(BaseLabel).WithData(string(in.Label)))
			continue
		}
		n := New(BaseOpcode).WithName(in.Opcode.String())
		for _, operand := range in.Operands {
			kind, text, err := jvm.EncodeOperand(operand)
			if err != nil {
				return nil, fmt.Errorf("treeir: %s: %w", in.Opcode, err)
			}
			n.Children = append(n.Children, New(kind).WithData(text))
		}
		out = append(out, n)
	}
	return out, nil
}
