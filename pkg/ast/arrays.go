package ast

import (
	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// ArrayConstructor allocates a reference array of Size elements.
type ArrayConstructor struct {
	Size    Node
	Element jvm.Type
}

func (a *ArrayConstructor) Type() (jvm.Type, error) {
	return jvm.ArrayOf(a.Element), nil
}

func (a *ArrayConstructor) ToXmir() *treeir.Node {
	return treeir.New(baseNewArray, typeNode(a.Element), a.Size.ToXmir())
}

func (a *ArrayConstructor) Opcodes() ([]Node, error) {
	return lower([]Node{a.Size}, NewOpcode(jvm.ANEWARRAY, a.Element.InternalName()))
}

// StoreArray writes Value at Index of Array. When Array is an array
// literal (an ArrayConstructor, possibly already filled by other
// StoreArray nodes) the array reference is duplicated first, so the node
// yields the array; otherwise it is a statement.
type StoreArray struct {
	Array Node
	Index Node
	Value Node
}

// Literal reports whether the node continues an array literal.
func (s *StoreArray) Literal() bool {
	switch a := s.Array.(type) {
	case *ArrayConstructor:
		return true
	case *StoreArray:
		return a.Literal()
	}
	return false
}

func (s *StoreArray) Type() (jvm.Type, error) {
	if !s.Literal() {
		return jvm.Type{}, malformed(baseWriteArray, "array store is a statement")
	}
	return typeOf(s.Array)
}

func (s *StoreArray) ToXmir() *treeir.Node {
	return treeir.New(baseWriteArray, s.Array.ToXmir(), s.Index.ToXmir(), s.Value.ToXmir())
}

func (s *StoreArray) Opcodes() ([]Node, error) {
	array, err := s.Array.Opcodes()
	if err != nil {
		return nil, err
	}
	if s.Literal() {
		array = append(array, NewOpcode(jvm.DUP))
	}
	rest, err := lower([]Node{s.Index, s.Value}, NewOpcode(jvm.AASTORE))
	if err != nil {
		return nil, err
	}
	return append(array, rest...), nil
}
