package compiler

import (
	"fmt"

	"github.com/chazu/opeo/pkg/treeir"
	"github.com/chazu/opeo/pkg/wire"
)

// Document compiles every method body of doc back to opcode nodes and
// returns a modified copy.
func Document(doc *treeir.Document, opts Options) (*treeir.Document, error) {
	out := doc.Clone()
	for _, method := range treeir.Methods(out) {
		body := treeir.Body(method)
		if body == nil {
			continue
		}
		nodes, err := Compile(body.Children, opts)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", method.Name, err)
		}
		body.Children = nodes
	}
	return out, nil
}

// Bundle compiles every method body of doc into a wire bundle. Passthrough
// nodes carry no instruction and are left out.
func Bundle(doc *treeir.Document, opts Options) (*wire.Bundle, error) {
	b := &wire.Bundle{Class: doc.Name}
	for _, method := range treeir.Methods(doc) {
		body := treeir.Body(method)
		if body == nil {
			continue
		}
		instructions, err := Instructions(body.Children, opts)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", method.Name, err)
		}
		m, err := wire.NewMethod(method.Name, method.Scope, instructions)
		if err != nil {
			return nil, err
		}
		b.Methods = append(b.Methods, m)
	}
	return b, nil
}
