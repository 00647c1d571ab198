// Package decompiler reconstructs expression trees from flat JVM
// instruction sequences.
//
// A Decompiler walks the instructions with a symbolic operand stack that
// holds AST nodes instead of runtime values. For every instruction the
// first appropriate agent of the registry consumes it and rewrites the top
// of the stack; instructions no agent understands become passthrough
// opcode nodes. Pops always take the top of the stack, so lowering the
// result reproduces the input order.
package decompiler

import (
	"fmt"

	"github.com/chazu/opeo/pkg/ast"
	"github.com/chazu/opeo/pkg/jvm"
)

// Decompiler runs the agent registry over method bodies. A Decompiler
// holds no per-call state and may be shared.
type Decompiler struct {
	agents   Agents
	fallback Agent
	opts     Options
}

// New creates a decompiler with the standard registry.
func New(opts Options) *Decompiler {
	return &Decompiler{agents: AllAgents(), fallback: unimplementedAgent{}, opts: opts}
}

// Decompile is a shorthand for New(opts).Decompile(instructions).
func Decompile(instructions []jvm.Instruction, opts Options) (*ast.Root, error) {
	return New(opts).Decompile(instructions)
}

// Decompile turns one method body into a Root whose children are the
// symbolic stack, bottom first.
func (d *Decompiler) Decompile(instructions []jvm.Instruction) (*ast.Root, error) {
	for i, in := range instructions {
		if err := validate(in); err != nil {
			return nil, fmt.Errorf("decompiler: instruction %d: %w", i, err)
		}
	}

	s := NewState(instructions, d.opts)
	for s.HasMore() {
		before := s.Remaining()
		agent := d.agents.First(s)
		if agent == nil {
			agent = d.fallback
		}
		in := s.Current()
		if err := agent.Handle(s); err != nil {
			return nil, fmt.Errorf("decompiler: %s at %d: %w", in, s.Position(), err)
		}
		if s.Remaining() >= before {
			return nil, fmt.Errorf("decompiler: agent %v did not consume %s", agent, in)
		}
	}
	return &ast.Root{Children: s.Stack().Nodes()}, nil
}

// validate rejects operands the tree IR cannot carry.
func validate(in jvm.Instruction) error {
	if in.IsLabel() {
		return nil
	}
	for _, operand := range in.Operands {
		if _, _, err := jvm.EncodeOperand(operand); err != nil {
			return err
		}
	}
	return nil
}
