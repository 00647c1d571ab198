// Package compiler lowers tree-IR method bodies back to primitive opcode
// nodes.
package compiler

import (
	"fmt"

	"github.com/chazu/opeo/pkg/ast"
	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// Options configure compilation.
type Options struct {
	// Passthrough lists bases copied to the output unparsed. Nil means
	// ast.DefaultPassthrough.
	Passthrough []string
}

func (o Options) passthrough() []string {
	if o.Passthrough == nil {
		return ast.DefaultPassthrough
	}
	return o.Passthrough
}

// Compile parses nodes and lowers them to one primitive tree node per
// instruction. Duplicate names are shared across all nodes of one call.
func Compile(nodes []*treeir.Node, opts Options) ([]*treeir.Node, error) {
	parser := ast.NewParser(opts.passthrough()...)
	var out []*treeir.Node
	for _, n := range nodes {
		parsed, err := parser.Parse(n)
		if err != nil {
			return nil, fmt.Errorf("compiler: %w", err)
		}
		primitives, err := parsed.Opcodes()
		if err != nil {
			return nil, fmt.Errorf("compiler: lower %s: %w", n.Base, err)
		}
		for _, p := range primitives {
			out = append(out, p.ToXmir())
		}
	}
	return out, nil
}

// CompileBody compiles the children of a method body into a new body.
func CompileBody(body *treeir.Node, opts Options) (*treeir.Node, error) {
	nodes, err := Compile(body.Children, opts)
	if err != nil {
		return nil, err
	}
	return treeir.New(treeir.BaseSeq, nodes...), nil
}

// Instructions compiles nodes straight to flat instructions. Passthrough
// nodes carry no instruction and are dropped.
func Instructions(nodes []*treeir.Node, opts Options) ([]jvm.Instruction, error) {
	parser := ast.NewParser(opts.passthrough()...)
	parsed, err := parser.ParseAll(nodes)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	instructions, err := ast.Compile(parsed...)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	return instructions, nil
}
