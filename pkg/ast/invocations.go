package ast

import (
	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

const constructorName = "<init>"

func returnType(attrs Attributes) (jvm.Type, error) {
	desc, err := attrs.Descriptor()
	if err != nil {
		return jvm.Type{}, err
	}
	return jvm.MethodReturnType(desc)
}

// memberOp builds a field or method instruction from attrs.
func memberOp(op jvm.Opcode, attrs Attributes) (*Opcode, error) {
	operands, err := attrs.operands()
	if err != nil {
		return nil, err
	}
	return NewOpcode(op, operands...), nil
}

func member(attrs Attributes, children ...*treeir.Node) *treeir.Node {
	return treeir.New(prefixMember+attrs.Name(), children...).WithScope(attrs.String())
}

// Constructor creates and initializes an object: NEW, DUP, arguments,
// INVOKESPECIAL <init>.
type Constructor struct {
	Class jvm.Type
	Attrs Attributes
	Args  []Node
}

// NewConstructor builds a constructor call of class with descriptor.
func NewConstructor(class jvm.Type, descriptor string, args ...Node) *Constructor {
	return &Constructor{
		Class: class,
		Attrs: Member(KindMethod, class.InternalName(), constructorName, descriptor),
		Args:  args,
	}
}

func (c *Constructor) Type() (jvm.Type, error) { return c.Class, nil }

func (c *Constructor) ToXmir() *treeir.Node {
	n := treeir.New(baseNew, typeNode(c.Class)).WithScope(c.Attrs.String())
	n.Children = append(n.Children, serialize(c.Args)...)
	return n
}

func (c *Constructor) Opcodes() ([]Node, error) {
	call, err := memberOp(jvm.INVOKESPECIAL, c.Attrs)
	if err != nil {
		return nil, err
	}
	args, err := lower(c.Args, call)
	if err != nil {
		return nil, err
	}
	return append([]Node{NewOpcode(jvm.NEW, c.Class.InternalName()), NewOpcode(jvm.DUP)}, args...), nil
}

// Invocation is a virtual method call on Target.
type Invocation struct {
	Target Node
	Attrs  Attributes
	Args   []Node
}

func (i *Invocation) Type() (jvm.Type, error) { return returnType(i.Attrs) }

func (i *Invocation) ToXmir() *treeir.Node {
	return member(i.Attrs, append([]*treeir.Node{i.Target.ToXmir()}, serialize(i.Args)...)...)
}

func (i *Invocation) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.INVOKEVIRTUAL, i.Attrs)
	if err != nil {
		return nil, err
	}
	return lower(append([]Node{i.Target}, i.Args...), op)
}

// InterfaceInvocation is an interface method call on Target.
type InterfaceInvocation struct {
	Target Node
	Attrs  Attributes
	Args   []Node
}

func (i *InterfaceInvocation) Type() (jvm.Type, error) { return returnType(i.Attrs) }

func (i *InterfaceInvocation) ToXmir() *treeir.Node {
	return member(i.Attrs, append([]*treeir.Node{i.Target.ToXmir()}, serialize(i.Args)...)...)
}

func (i *InterfaceInvocation) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.INVOKEINTERFACE, i.Attrs)
	if err != nil {
		return nil, err
	}
	return lower(append([]Node{i.Target}, i.Args...), op)
}

// StaticInvocation is a static method call.
type StaticInvocation struct {
	Attrs Attributes
	Args  []Node
}

func (i *StaticInvocation) Type() (jvm.Type, error) { return returnType(i.Attrs) }

func (i *StaticInvocation) ToXmir() *treeir.Node {
	return member(i.Attrs, serialize(i.Args)...)
}

func (i *StaticInvocation) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.INVOKESTATIC, i.Attrs)
	if err != nil {
		return nil, err
	}
	return lower(i.Args, op)
}

// DynamicInvocation is an invokedynamic call site. Attrs carry the call
// site name and descriptor; Bootstrap and BootstrapArgs the linkage.
type DynamicInvocation struct {
	Attrs         Attributes
	Bootstrap     jvm.Handle
	BootstrapArgs []any
	Args          []Node
}

func (i *DynamicInvocation) Type() (jvm.Type, error) { return returnType(i.Attrs) }

func (i *DynamicInvocation) ToXmir() *treeir.Node {
	bsm := treeir.New(baseBootstrap, operandNode(i.Bootstrap))
	for _, a := range i.BootstrapArgs {
		bsm.Children = append(bsm.Children, operandNode(a))
	}
	return member(i.Attrs, append([]*treeir.Node{bsm}, serialize(i.Args)...)...)
}

func (i *DynamicInvocation) Opcodes() ([]Node, error) {
	desc, err := i.Attrs.Descriptor()
	if err != nil {
		return nil, err
	}
	operands := append([]any{i.Attrs.Name(), desc, i.Bootstrap}, i.BootstrapArgs...)
	return lower(i.Args, NewOpcode(jvm.INVOKEDYNAMIC, operands...))
}

// Super is an INVOKESPECIAL that is not part of an object construction: a
// superclass constructor call, or a private or super method call.
type Super struct {
	Instance Node
	Attrs    Attributes
	Args     []Node
}

func (s *Super) Type() (jvm.Type, error) { return returnType(s.Attrs) }

func (s *Super) ToXmir() *treeir.Node {
	n := treeir.New(baseSuper, s.Instance.ToXmir()).WithScope(s.Attrs.String())
	n.Children = append(n.Children, serialize(s.Args)...)
	return n
}

func (s *Super) Opcodes() ([]Node, error) {
	op, err := memberOp(jvm.INVOKESPECIAL, s.Attrs)
	if err != nil {
		return nil, err
	}
	return lower(append([]Node{s.Instance}, s.Args...), op)
}
