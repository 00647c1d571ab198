// Package wire encodes compiled method bodies as canonical CBOR bundles.
// A bundle is deterministic: the same class always encodes to the same
// bytes, so bundles can be hashed and compared.
package wire

import (
	"fmt"

	"github.com/chazu/opeo/pkg/jvm"
)

// Operand is one instruction operand in the operand codec's text form.
// Text is a byte string so that string constants which are not valid
// UTF-8 survive decoding.
type Operand struct {
	Kind string `cbor:"1,keyasint"`
	Text []byte `cbor:"2,keyasint"`
}

// Instruction is either an opcode with operands or a label marker.
type Instruction struct {
	Opcode   uint8     `cbor:"1,keyasint,omitempty"`
	Label    string    `cbor:"2,keyasint,omitempty"`
	Operands []Operand `cbor:"3,keyasint,omitempty"`
}

// Method is a named, flat method body.
type Method struct {
	Name         string        `cbor:"1,keyasint"`
	Descriptor   string        `cbor:"2,keyasint,omitempty"`
	Instructions []Instruction `cbor:"3,keyasint"`
}

// Bundle holds the compiled methods of one class.
type Bundle struct {
	Class   string   `cbor:"1,keyasint"`
	Methods []Method `cbor:"2,keyasint"`
}

// NewMethod encodes instructions into a wire method.
func NewMethod(name, descriptor string, instructions []jvm.Instruction) (Method, error) {
	m := Method{Name: name, Descriptor: descriptor, Instructions: make([]Instruction, 0, len(instructions))}
	for _, in := range instructions {
		if in.IsLabel() {
			m.Instructions = append(m.Instructions, Instruction{Label: string(in.Label)})
			continue
		}
		w := Instruction{Opcode: uint8(in.Opcode)}
		for _, v := range in.Operands {
			kind, text, err := jvm.EncodeOperand(v)
			if err != nil {
				return Method{}, fmt.Errorf("wire: %s: %s: %w", name, in.Opcode, err)
			}
			w.Operands = append(w.Operands, Operand{Kind: kind, Text: []byte(text)})
		}
		m.Instructions = append(m.Instructions, w)
	}
	return m, nil
}

// Decode restores the method's instructions.
func (m Method) Decode() ([]jvm.Instruction, error) {
	out := make([]jvm.Instruction, 0, len(m.Instructions))
	for i, w := range m.Instructions {
		if w.Label != "" {
			out = append(out, jvm.LabelInstruction(jvm.Label(w.Label)))
			continue
		}
		op := jvm.Opcode(w.Opcode)
		if !op.Known() {
			return nil, fmt.Errorf("wire: %s: instruction %d: unknown opcode 0x%02X", m.Name, i, w.Opcode)
		}
		operands := make([]any, len(w.Operands))
		for k, o := range w.Operands {
			v, err := jvm.DecodeOperand(o.Kind, string(o.Text))
			if err != nil {
				return nil, fmt.Errorf("wire: %s: instruction %d: %w", m.Name, i, err)
			}
			operands[k] = v
		}
		out = append(out, jvm.NewInstruction(op, operands...))
	}
	return out, nil
}
