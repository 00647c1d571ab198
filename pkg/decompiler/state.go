package decompiler

import (
	"errors"
	"fmt"

	"github.com/chazu/opeo/pkg/ast"
	"github.com/chazu/opeo/pkg/jvm"
)

// ErrStackUnderflow is returned when an instruction needs more values than
// the symbolic stack holds. It signals malformed input.
var ErrStackUnderflow = errors.New("operand stack underflow")

// Options control the shape of the decompiled tree.
type Options struct {
	// Counting gives every passthrough opcode a unique counter suffix.
	Counting bool
	// Passthrough lists body node bases that Document drops before
	// decompiling, such as stack map frames. Nil means
	// ast.DefaultPassthrough.
	Passthrough []string
}

func (o Options) passthrough() []string {
	if o.Passthrough == nil {
		return ast.DefaultPassthrough
	}
	return o.Passthrough
}

// OperandStack is the symbolic stack. It holds AST nodes; the top is the
// last element.
type OperandStack struct {
	nodes []ast.Node
}

// Push pushes nodes in order.
func (s *OperandStack) Push(nodes ...ast.Node) {
	s.nodes = append(s.nodes, nodes...)
}

// Pop removes the top node.
func (s *OperandStack) Pop() (ast.Node, error) {
	nodes, err := s.PopN(1)
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// PopN removes the top n nodes and returns them bottom first, which is the
// order operands are passed in.
func (s *OperandStack) PopN(n int) ([]ast.Node, error) {
	if n > len(s.nodes) {
		return nil, fmt.Errorf("%w: need %d values, have %d", ErrStackUnderflow, n, len(s.nodes))
	}
	start := len(s.nodes) - n
	out := make([]ast.Node, n)
	copy(out, s.nodes[start:])
	s.nodes = s.nodes[:start]
	return out, nil
}

// Peek returns the node depth positions below the top (0 is the top), or
// nil when the stack is not that deep.
func (s *OperandStack) Peek(depth int) ast.Node {
	i := len(s.nodes) - 1 - depth
	if depth < 0 || i < 0 {
		return nil
	}
	return s.nodes[i]
}

// Values reports whether the top n nodes are values, looking no deeper
// than the stack goes. A short stack is left for the agent to report as
// underflow.
func (s *OperandStack) Values(n int) bool {
	for depth := 0; depth < n && depth < len(s.nodes); depth++ {
		if !ast.IsValue(s.Peek(depth)) {
			return false
		}
	}
	return true
}

// Len returns the number of nodes on the stack.
func (s *OperandStack) Len() int { return len(s.nodes) }

// Nodes returns a copy of the stack, bottom first.
func (s *OperandStack) Nodes() []ast.Node {
	return append([]ast.Node(nil), s.nodes...)
}

// State is the engine state of one decompilation.
type State struct {
	instructions []jvm.Instruction
	pos          int
	stack        OperandStack
	labels       map[jvm.Label]int
	duplicates   int
	counter      int64
	opts         Options
}

// NewState creates the state for one method body.
func NewState(instructions []jvm.Instruction, opts Options) *State {
	s := &State{
		instructions: instructions,
		labels:       make(map[jvm.Label]int),
		opts:         opts,
	}
	for i, in := range instructions {
		if in.IsLabel() {
			s.labels[in.Label] = i
		}
	}
	return s
}

// HasMore reports whether instructions remain.
func (s *State) HasMore() bool { return s.pos < len(s.instructions) }

// Remaining returns the number of instructions left.
func (s *State) Remaining() int { return len(s.instructions) - s.pos }

// Position returns the index of the current instruction.
func (s *State) Position() int { return s.pos }

// Current returns the current instruction. It must not be called when no
// instructions remain.
func (s *State) Current() jvm.Instruction { return s.instructions[s.pos] }

// Advance consumes the current instruction.
func (s *State) Advance() { s.pos++ }

// Stack returns the symbolic operand stack.
func (s *State) Stack() *OperandStack { return &s.stack }

// Forward reports whether l marks a position after the current instruction.
func (s *State) Forward(l jvm.Label) bool {
	i, ok := s.labels[l]
	return ok && i > s.pos
}

// nextCounter returns the suffix for the next passthrough opcode, or zero
// when counting is off. Counters start at 1 for every decompilation.
func (s *State) nextCounter() int64 {
	if !s.opts.Counting {
		return 0
	}
	s.counter++
	return s.counter
}

// nextName returns a fresh name for a Duplicate.
func (s *State) nextName() string {
	s.duplicates++
	return fmt.Sprintf("d%d", s.duplicates)
}
