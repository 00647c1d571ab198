package ast

import (
	"strconv"
	"strings"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// LocalVariable reads a local slot of a declared type.
type LocalVariable struct {
	Slot int
	Typ  jvm.Type
}

func NewLocalVariable(slot int, typ jvm.Type) *LocalVariable {
	return &LocalVariable{Slot: slot, Typ: typ}
}

func (v *LocalVariable) Type() (jvm.Type, error) {
	return v.Typ, nil
}

func (v *LocalVariable) ToXmir() *treeir.Node {
	attrs := Attributes{}.WithDescriptor(v.Typ.Descriptor()).WithKind(KindLocal)
	return treeir.New(prefixLocal + strconv.Itoa(v.Slot)).WithScope(attrs.String())
}

func (v *LocalVariable) Opcodes() ([]Node, error) {
	return []Node{v.Load()}, nil
}

// Load returns the load instruction for the slot.
func (v *LocalVariable) Load() *Opcode {
	return NewOpcode(loadOpcode(v.Typ), v.Slot)
}

// Store returns the store instruction for the slot.
func (v *LocalVariable) Store() *Opcode {
	return NewOpcode(storeOpcode(v.Typ), v.Slot)
}

// loadOpcode maps every type to a load instruction. Sub-int primitives use
// ILOAD; references, arrays and anything else use ALOAD.
func loadOpcode(t jvm.Type) jvm.Opcode {
	switch t.Sort() {
	case jvm.SortInt, jvm.SortBoolean, jvm.SortByte, jvm.SortChar, jvm.SortShort:
		return jvm.ILOAD
	case jvm.SortLong:
		return jvm.LLOAD
	case jvm.SortFloat:
		return jvm.FLOAD
	case jvm.SortDouble:
		return jvm.DLOAD
	default:
		return jvm.ALOAD
	}
}

func storeOpcode(t jvm.Type) jvm.Opcode {
	switch t.Sort() {
	case jvm.SortInt, jvm.SortBoolean, jvm.SortByte, jvm.SortChar, jvm.SortShort:
		return jvm.ISTORE
	case jvm.SortLong:
		return jvm.LSTORE
	case jvm.SortFloat:
		return jvm.FSTORE
	case jvm.SortDouble:
		return jvm.DSTORE
	default:
		return jvm.ASTORE
	}
}

// LoadType returns the type a load or store opcode implies.
func LoadType(op jvm.Opcode) jvm.Type {
	switch op {
	case jvm.ILOAD, jvm.ISTORE:
		return jvm.IntType
	case jvm.LLOAD, jvm.LSTORE:
		return jvm.LongType
	case jvm.FLOAD, jvm.FSTORE:
		return jvm.FloatType
	case jvm.DLOAD, jvm.DSTORE:
		return jvm.DoubleType
	default:
		return jvm.ObjectRoot
	}
}

func parseLocal(n *treeir.Node) (*LocalVariable, error) {
	slot, err := strconv.Atoi(strings.TrimPrefix(n.Base, prefixLocal))
	if err != nil || slot < 0 {
		return nil, malformed(n.Base, "bad slot")
	}
	attrs, err := ParseAttributes(n.Scope)
	if err != nil {
		return nil, malformed(n.Base, "%v", err)
	}
	desc, err := attrs.Descriptor()
	if err != nil {
		return nil, malformed(n.Base, "local variable without type")
	}
	typ, err := jvm.ParseType(desc)
	if err != nil {
		return nil, malformed(n.Base, "%v", err)
	}
	return NewLocalVariable(slot, typ), nil
}

// VariableAssignment stores a value into a local slot.
type VariableAssignment struct {
	Local *LocalVariable
	Value Node
}

func (a *VariableAssignment) ToXmir() *treeir.Node {
	return treeir.New(baseWriteLocal, a.Local.ToXmir(), a.Value.ToXmir())
}

func (a *VariableAssignment) Opcodes() ([]Node, error) {
	return lower([]Node{a.Value}, a.Local.Store())
}

// This is the receiver, local slot 0.
type This struct{}

func (This) Type() (jvm.Type, error) { return jvm.ObjectRoot, nil }

func (This) ToXmir() *treeir.Node { return treeir.New(baseThis) }

func (This) Opcodes() ([]Node, error) {
	return []Node{NewOpcode(jvm.ALOAD, 0)}, nil
}
