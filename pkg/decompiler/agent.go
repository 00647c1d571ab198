package decompiler

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/chazu/opeo/pkg/jvm"
)

// Agent recognizes one family of instructions.
type Agent interface {
	// Supported returns the opcodes the agent understands.
	Supported() Supported
	// Appropriate reports whether the agent can handle the current state.
	Appropriate(s *State) bool
	// Handle consumes at least one instruction. It panics with
	// *IllegalAgentError when called while the agent is not appropriate.
	Handle(s *State) error
}

// IllegalAgentError reports an agent invoked against its own precondition.
// It indicates a defect in the agent registry, never bad input.
type IllegalAgentError struct {
	Agent       string
	Instruction jvm.Instruction
}

func (e *IllegalAgentError) Error() string {
	return fmt.Sprintf("decompiler: agent %s is not appropriate for %s", e.Agent, e.Instruction)
}

// Supported is a set of opcodes.
type Supported struct {
	set mapset.Set[jvm.Opcode]
}

// NewSupported creates a set of the given opcodes.
func NewSupported(ops ...jvm.Opcode) Supported {
	return Supported{set: mapset.NewThreadUnsafeSet(ops...)}
}

// Merge returns the union of two sets.
func (s Supported) Merge(o Supported) Supported {
	switch {
	case s.set == nil:
		return o
	case o.set == nil:
		return s
	}
	return Supported{set: s.set.Union(o.set)}
}

// Contains reports whether op is in the set.
func (s Supported) Contains(op jvm.Opcode) bool {
	return s.set != nil && s.set.Contains(op)
}

// Len returns the size of the set.
func (s Supported) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Cardinality()
}

// Names returns the sorted opcode names.
func (s Supported) Names() []string {
	if s.set == nil {
		return nil
	}
	names := make([]string, 0, s.set.Cardinality())
	for _, op := range s.set.ToSlice() {
		names = append(names, op.String())
	}
	sort.Strings(names)
	return names
}

// recognizer is an agent that fires only on its supported opcodes and,
// optionally, when accepts approves the state. When pops is set, the nodes
// it would consume must all be values.
type recognizer struct {
	name      string
	supported Supported
	accepts   func(*State) bool
	pops      func(*State) int
	handle    func(*State) error
}

// opcodes adapts handle into an agent narrowed to ops.
func opcodes(name string, handle func(*State) error, ops ...jvm.Opcode) *recognizer {
	return &recognizer{name: name, supported: NewSupported(ops...), handle: handle}
}

// when adds a state guard to the recognizer.
func (r *recognizer) when(accepts func(*State) bool) *recognizer {
	r.accepts = accepts
	return r
}

// taking declares how many stack nodes the handler pops.
func (r *recognizer) taking(pops func(*State) int) *recognizer {
	r.pops = pops
	return r
}

// fixed pops n nodes regardless of the instruction.
func fixed(n int) func(*State) int {
	return func(*State) int { return n }
}

func (r *recognizer) String() string { return r.name }

func (r *recognizer) Supported() Supported { return r.supported }

func (r *recognizer) Appropriate(s *State) bool {
	if !s.HasMore() {
		return false
	}
	in := s.Current()
	if in.IsLabel() || !r.supported.Contains(in.Opcode) {
		return false
	}
	if r.accepts != nil && !r.accepts(s) {
		return false
	}
	return r.pops == nil || s.Stack().Values(r.pops(s))
}

func (r *recognizer) Handle(s *State) error {
	if !r.Appropriate(s) {
		panic(illegal(r.name, s))
	}
	return r.handle(s)
}

func illegal(name string, s *State) *IllegalAgentError {
	e := &IllegalAgentError{Agent: name}
	if s.HasMore() {
		e.Instruction = s.Current()
	}
	return e
}

// Agents is an ordered agent registry; the first appropriate agent wins.
type Agents []Agent

// Supported returns the union of every agent's supported set.
func (a Agents) Supported() Supported {
	var all Supported
	for _, agent := range a {
		all = all.Merge(agent.Supported())
	}
	return all
}

// First returns the first appropriate agent, or nil.
func (a Agents) First(s *State) Agent {
	for _, agent := range a {
		if agent.Appropriate(s) {
			return agent
		}
	}
	return nil
}
