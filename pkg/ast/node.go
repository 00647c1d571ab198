// Package ast is the tree model shared by the decompiler and the compiler.
//
// Every node serializes to the tree IR (ToXmir) and lowers to a flat
// sequence of primitive nodes (Opcodes). Lowering is post-order: operands
// are emitted before the operation that consumes them.
package ast

import (
	"errors"
	"fmt"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// ErrMalformed is wrapped by every error caused by bad tree-IR input or by
// a node that lacks information required for lowering.
var ErrMalformed = errors.New("malformed tree")

// Node is an AST node.
type Node interface {
	// ToXmir serializes the node to the tree IR.
	ToXmir() *treeir.Node
	// Opcodes lowers the node to primitive *Opcode, *Label and *RawXml nodes.
	Opcodes() ([]Node, error)
}

// Typed is implemented by nodes that produce a value of a static type.
type Typed interface {
	Type() (jvm.Type, error)
}

// IsValue reports whether n stands for a value on the operand stack.
// Statements, labels and passthrough opcodes that push nothing are not
// values and must never be taken as operands.
func IsValue(n Node) bool {
	switch v := n.(type) {
	case nil, *Label, *RawXml, *VariableAssignment, *FieldAssignment,
		*StaticFieldAssignment, *Popped, *If, *Return:
		return false
	case *Opcode:
		return v.pushes()
	}
	typed, ok := n.(Typed)
	if !ok {
		return false
	}
	t, err := typed.Type()
	return err == nil && t.Sort() != jvm.SortVoid
}

func malformed(base, format string, args ...any) error {
	return fmt.Errorf("ast: %s: %s: %w", base, fmt.Sprintf(format, args...), ErrMalformed)
}

// lower concatenates the lowering of each node followed by tail.
func lower(nodes []Node, tail ...Node) ([]Node, error) {
	var out []Node
	for _, n := range nodes {
		ops, err := n.Opcodes()
		if err != nil {
			return nil, err
		}
		out = append(out, ops...)
	}
	return append(out, tail...), nil
}

func serialize(nodes []Node) []*treeir.Node {
	out := make([]*treeir.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.ToXmir()
	}
	return out
}

// typeOf returns the static type of n, failing for untyped nodes.
func typeOf(n Node) (jvm.Type, error) {
	t, ok := n.(Typed)
	if !ok {
		return jvm.Type{}, fmt.Errorf("ast: %T has no static type: %w", n, ErrMalformed)
	}
	return t.Type()
}

func typeNode(t jvm.Type) *treeir.Node {
	return treeir.New(baseType).WithData(t.Descriptor())
}
