package jvm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Label identifies a jump target inside one method body.
type Label string

// NewLabel mints a fresh, globally unique label identity.
func NewLabel() Label {
	return Label(uuid.NewString())
}

// Handle is a method handle constant, used as the bootstrap method of
// INVOKEDYNAMIC and as an LDC operand.
type Handle struct {
	Tag        int
	Owner      string
	Name       string
	Descriptor string
	Interface  bool
}

func (h Handle) String() string {
	return fmt.Sprintf("%s.%s%s (%d)", h.Owner, h.Name, h.Descriptor, h.Tag)
}

// Instruction is one entry of a flat method body: either an opcode with
// its operands, or a label marker carrying only an identity.
// Instructions are values; constructors copy the operand slice.
type Instruction struct {
	Opcode   Opcode
	Operands []any
	Label    Label
}

// NewInstruction creates an opcode instruction.
func NewInstruction(op Opcode, operands ...any) Instruction {
	return Instruction{Opcode: op, Operands: append([]any(nil), operands...)}
}

// LabelInstruction creates a label marker.
func LabelInstruction(l Label) Instruction {
	return Instruction{Label: l}
}

// IsLabel reports whether the instruction is a label marker.
func (i Instruction) IsLabel() bool {
	return i.Label != ""
}

// Operand returns the operand at index, or nil when out of range.
func (i Instruction) Operand(index int) any {
	if index < 0 || index >= len(i.Operands) {
		return nil
	}
	return i.Operands[index]
}

// Name returns the simplified opcode name, or "LABEL" for label markers.
func (i Instruction) Name() string {
	if i.IsLabel() {
		return "LABEL"
	}
	return i.Opcode.String()
}

func (i Instruction) String() string {
	if i.IsLabel() {
		return fmt.Sprintf("%s:", i.Label)
	}
	if len(i.Operands) == 0 {
		return i.Opcode.String()
	}
	parts := make([]string, len(i.Operands))
	for k, op := range i.Operands {
		parts[k] = formatOperand(op)
	}
	return i.Opcode.String() + " " + strings.Join(parts, " ")
}

// StackDelta returns the net number of values the instruction leaves on the
// operand stack. Invocations are resolved through their descriptor operand.
func (i Instruction) StackDelta() (int, error) {
	if i.IsLabel() {
		return 0, nil
	}
	info, ok := opcodeInfoTable[i.Opcode]
	if !ok {
		return 0, fmt.Errorf("jvm: unknown opcode 0x%02X", byte(i.Opcode))
	}
	if info.StackPop >= 0 && info.StackPush >= 0 {
		return info.StackPush - info.StackPop, nil
	}
	switch {
	case i.Opcode.IsInvoke():
		descIndex := 2
		if i.Opcode == INVOKEDYNAMIC {
			descIndex = 1
		}
		desc, ok := i.Operand(descIndex).(string)
		if !ok {
			return 0, fmt.Errorf("jvm: %s without descriptor operand", i.Opcode)
		}
		args, err := MethodArgumentTypes(desc)
		if err != nil {
			return 0, err
		}
		ret, err := MethodReturnType(desc)
		if err != nil {
			return 0, err
		}
		delta := -len(args)
		if i.Opcode != INVOKESTATIC && i.Opcode != INVOKEDYNAMIC {
			delta--
		}
		if ret.Sort() != SortVoid {
			delta++
		}
		return delta, nil
	case i.Opcode == MULTIANEWARRAY:
		dims, ok := i.Operand(1).(int)
		if !ok {
			return 0, fmt.Errorf("jvm: MULTIANEWARRAY without dimensions operand")
		}
		return 1 - dims, nil
	default:
		return 0, fmt.Errorf("jvm: stack effect of %s depends on value categories", i.Opcode)
	}
}

func formatOperand(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case Label:
		return "@" + string(x)
	default:
		return fmt.Sprint(x)
	}
}
