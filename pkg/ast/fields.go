package ast

import (
	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

func fieldType(attrs Attributes) (jvm.Type, error) {
	desc, err := attrs.Descriptor()
	if err != nil {
		return jvm.Type{}, err
	}
	return jvm.ParseType(desc)
}

// ClassField reads a static field.
type ClassField struct {
	Attrs Attributes
}

func (f *ClassField) Type() (jvm.Type, error) { return fieldType(f.Attrs) }

func (f *ClassField) ToXmir() *treeir.Node {
	return treeir.New(baseGetStatic).WithScope(f.Attrs.String())
}

func (f *ClassField) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.GETSTATIC, f.Attrs)
	if err != nil {
		return nil, err
	}
	return []Node{op}, nil
}

// InstanceField reads a field of the object Target evaluates to.
type InstanceField struct {
	Target Node
	Attrs  Attributes
}

func NewInstanceField(target Node, owner, name, descriptor string) *InstanceField {
	return &InstanceField{Target: target, Attrs: Member(KindField, owner, name, descriptor)}
}

func (f *InstanceField) Type() (jvm.Type, error) { return fieldType(f.Attrs) }

func (f *InstanceField) ToXmir() *treeir.Node {
	return treeir.New(prefixMember+f.Attrs.Name(), f.Target.ToXmir()).WithScope(f.Attrs.String())
}

func (f *InstanceField) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.GETFIELD, f.Attrs)
	if err != nil {
		return nil, err
	}
	return lower([]Node{f.Target}, op)
}

// FieldRetrieval is the "get-field" form of an instance field read. It is
// also the shape of the receiver slot of a FieldAssignment.
type FieldRetrieval struct {
	Target Node
	Attrs  Attributes
}

func (f *FieldRetrieval) Type() (jvm.Type, error) { return fieldType(f.Attrs) }

func (f *FieldRetrieval) ToXmir() *treeir.Node {
	return treeir.New(baseGetField, f.Target.ToXmir()).WithScope(f.Attrs.String())
}

func (f *FieldRetrieval) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.GETFIELD, f.Attrs)
	if err != nil {
		return nil, err
	}
	return lower([]Node{f.Target}, op)
}

// FieldAssignment writes Value into a field of Target.
type FieldAssignment struct {
	Target Node
	Value  Node
	Attrs  Attributes
}

func (f *FieldAssignment) ToXmir() *treeir.Node {
	receiver := &FieldRetrieval{Target: f.Target, Attrs: f.Attrs}
	return treeir.New(baseWriteField, receiver.ToXmir(), f.Value.ToXmir()).WithScope(f.Attrs.String())
}

func (f *FieldAssignment) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.PUTFIELD, f.Attrs)
	if err != nil {
		return nil, err
	}
	return lower([]Node{f.Target, f.Value}, op)
}

// StaticFieldAssignment writes Value into a static field.
type StaticFieldAssignment struct {
	Value Node
	Attrs Attributes
}

func (f *StaticFieldAssignment) ToXmir() *treeir.Node {
	return treeir.New(baseWriteStat, f.Value.ToXmir()).WithScope(f.Attrs.String())
}

func (f *StaticFieldAssignment) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.PUTSTATIC, f.Attrs)
	if err != nil {
		return nil, err
	}
	return lower([]Node{f.Value}, op)
}
