package ast

import (
	"fmt"
	"strings"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// ClassName is a class literal, LDC of a type.
type ClassName struct {
	Class jvm.Type
}

func (c *ClassName) Type() (jvm.Type, error) { return jvm.ObjectType("java/lang/Class"), nil }

func (c *ClassName) ToXmir() *treeir.Node {
	return treeir.New(baseClassName).WithData(c.Class.Descriptor())
}

func (c *ClassName) Opcodes() ([]Node, error) {
	return []Node{NewOpcode(jvm.LDC, c.Class)}, nil
}

// NewAddress is an allocated but not yet initialized object.
type NewAddress struct {
	Class jvm.Type
}

func (a *NewAddress) Type() (jvm.Type, error) { return a.Class, nil }

func (a *NewAddress) ToXmir() *treeir.Node {
	return treeir.New(baseNewAddress).WithData(a.Class.Descriptor())
}

func (a *NewAddress) Opcodes() ([]Node, error) {
	return []Node{NewOpcode(jvm.NEW, a.Class.InternalName())}, nil
}

// Duplicate evaluates Inner and duplicates the result. The copy is
// consumed through the Reference carrying the same name, so a Duplicate
// and its Reference together stand for the two values DUP leaves behind.
type Duplicate struct {
	Name  string
	Inner Node
}

func (d *Duplicate) Type() (jvm.Type, error) { return typeOf(d.Inner) }

func (d *Duplicate) ToXmir() *treeir.Node {
	return treeir.New(baseDuplicated, d.Inner.ToXmir()).WithName(d.Name)
}

func (d *Duplicate) Opcodes() ([]Node, error) {
	return lower([]Node{d.Inner}, NewOpcode(jvm.DUP))
}

// Reference is the second use of a Duplicate. It lowers to nothing: the
// value is already on the stack.
type Reference struct {
	Target *Duplicate
}

func (r *Reference) Type() (jvm.Type, error) { return r.Target.Type() }

func (r *Reference) ToXmir() *treeir.Node {
	return treeir.New(prefixRef + r.Target.Name)
}

func (r *Reference) Opcodes() ([]Node, error) { return nil, nil }

// Popped evaluates Value and discards it.
type Popped struct {
	Value Node
}

func (p *Popped) ToXmir() *treeir.Node {
	return treeir.New(basePop, p.Value.ToXmir())
}

func (p *Popped) Opcodes() ([]Node, error) {
	op := jvm.POP
	if t, err := typeOf(p.Value); err == nil && t.Size() == 2 {
		op = jvm.POP2
	}
	return lower([]Node{p.Value}, NewOpcode(op))
}

// If jumps to Target when the comparison of Operands holds.
type If struct {
	Cmp      jvm.Opcode
	Target   *Label
	Operands []Node
}

// comparisonName maps IFGT to "gt" and IF_ICMPLT to "icmplt".
func comparisonName(op jvm.Opcode) string {
	name := strings.ToLower(op.String())
	name = strings.TrimPrefix(name, "if_")
	return strings.TrimPrefix(name, "if")
}

func comparisonOpcode(name string) (jvm.Opcode, bool) {
	full := "IF" + strings.ToUpper(name)
	if strings.HasPrefix(name, "icmp") || strings.HasPrefix(name, "acmp") {
		full = "IF_" + strings.ToUpper(name)
	}
	op, ok := jvm.OpcodeByName(full)
	if !ok || !op.IsConditionalJump() {
		return 0, false
	}
	return op, true
}

func (i *If) ToXmir() *treeir.Node {
	n := treeir.New(prefixIf+comparisonName(i.Cmp), i.Target.ToXmir())
	n.Children = append(n.Children, serialize(i.Operands)...)
	return n
}

func (i *If) Opcodes() ([]Node, error) {
	return lower(i.Operands, NewOpcode(i.Cmp, i.Target.ID))
}

// Return leaves the method with Value.
type Return struct {
	Code  jvm.Opcode
	Value Node
}

func (r *Return) ToXmir() *treeir.Node {
	return treeir.New(baseReturn, r.Value.ToXmir()).WithName(r.Code.String())
}

func (r *Return) Opcodes() ([]Node, error) {
	if !r.Code.IsReturn() || r.Code == jvm.RETURN {
		return nil, fmt.Errorf("ast: %s does not return a value: %w", r.Code, ErrMalformed)
	}
	return lower([]Node{r.Value}, NewOpcode(r.Code))
}

// Root is the top-level sequence of a method body.
type Root struct {
	Children []Node
}

func (r *Root) ToXmir() *treeir.Node {
	return treeir.New(baseSeq, serialize(r.Children)...)
}

func (r *Root) Opcodes() ([]Node, error) {
	return lower(r.Children)
}
