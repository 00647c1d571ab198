package jvm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of a method body.
func Disassemble(instructions []Instruction) string {
	return DisassembleWithName("", instructions)
}

// DisassembleWithName returns a human-readable listing with a name header.
func DisassembleWithName(name string, instructions []Instruction) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}

	labels := 0
	for _, in := range instructions {
		if in.IsLabel() {
			labels++
		}
	}
	sb.WriteString(fmt.Sprintf("; %d instructions, %d labels\n", len(instructions)-labels, labels))

	depth := 0
	known := true
	offset := 0
	for _, in := range instructions {
		if in.IsLabel() {
			sb.WriteString(fmt.Sprintf("%s:\n", in.Label))
			continue
		}
		line := disassembleInstruction(in)
		if known {
			if delta, err := in.StackDelta(); err == nil {
				depth += delta
			} else {
				known = false
			}
		}
		if known {
			sb.WriteString(fmt.Sprintf("%04d  %-40s ; stack %d\n", offset, line, depth))
		} else {
			sb.WriteString(fmt.Sprintf("%04d  %s\n", offset, line))
		}
		offset++
	}

	return sb.String()
}

// disassembleInstruction formats a single instruction.
func disassembleInstruction(in Instruction) string {
	name := in.Opcode.String()
	switch {
	case in.Opcode == GETFIELD || in.Opcode == PUTFIELD ||
		in.Opcode == GETSTATIC || in.Opcode == PUTSTATIC:
		owner, _ := in.Operand(0).(string)
		field, _ := in.Operand(1).(string)
		desc, _ := in.Operand(2).(string)
		return fmt.Sprintf("%-16s %s.%s : %s", name, owner, field, desc)
	case in.Opcode.IsInvoke() && in.Opcode != INVOKEDYNAMIC:
		owner, _ := in.Operand(0).(string)
		method, _ := in.Operand(1).(string)
		desc, _ := in.Operand(2).(string)
		return fmt.Sprintf("%-16s %s.%s%s", name, owner, method, desc)
	case in.Opcode.IsConditionalJump() || in.Opcode == GOTO:
		if target, ok := in.Operand(0).(Label); ok {
			return fmt.Sprintf("%-16s -> %s", name, target)
		}
	}
	if len(in.Operands) == 0 {
		return name
	}
	parts := make([]string, len(in.Operands))
	for i, op := range in.Operands {
		parts[i] = formatOperand(op)
	}
	return fmt.Sprintf("%-16s %s", name, strings.Join(parts, " "))
}
