package ast

import (
	"fmt"

	"github.com/chazu/opeo/pkg/jvm"
)

// Flatten converts lowered primitives to instructions. RawXml nodes carry
// no instruction and are skipped.
func Flatten(primitives []Node) ([]jvm.Instruction, error) {
	out := make([]jvm.Instruction, 0, len(primitives))
	for _, p := range primitives {
		switch n := p.(type) {
		case *Opcode:
			out = append(out, n.Instruction())
		case *Label:
			out = append(out, jvm.LabelInstruction(n.ID))
		case *RawXml:
		default:
			return nil, fmt.Errorf("ast: %T is not a primitive node", p)
		}
	}
	return out, nil
}

// Compile lowers nodes and flattens the result.
func Compile(nodes ...Node) ([]jvm.Instruction, error) {
	primitives, err := lower(nodes)
	if err != nil {
		return nil, err
	}
	return Flatten(primitives)
}

// Simulate returns the net stack effect of an instruction sequence.
func Simulate(instructions []jvm.Instruction) (int, error) {
	depth := 0
	for _, in := range instructions {
		delta, err := in.StackDelta()
		if err != nil {
			return 0, err
		}
		depth += delta
	}
	return depth, nil
}

// StackEffect lowers n and returns the net number of values it leaves on
// the operand stack.
func StackEffect(n Node) (int, error) {
	instructions, err := Compile(n)
	if err != nil {
		return 0, err
	}
	return Simulate(instructions)
}
