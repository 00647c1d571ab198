package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// Opcode is a raw instruction. It is both the output of lowering and the
// passthrough node the decompiler falls back to. A non-zero Counter is
// written as a suffix of the serialized name ("INVOKEVIRTUAL-12").
type Opcode struct {
	Code     jvm.Opcode
	Operands []any
	Counter  int64
}

// NewOpcode creates an opcode node without a counter suffix.
func NewOpcode(code jvm.Opcode, operands ...any) *Opcode {
	return &Opcode{Code: code, Operands: append([]any(nil), operands...)}
}

// FromInstruction wraps a non-label instruction. A zero counter leaves the
// name without suffix.
func FromInstruction(in jvm.Instruction, counter int64) *Opcode {
	op := NewOpcode(in.Opcode, in.Operands...)
	op.Counter = counter
	return op
}

// Instruction converts the node back to a flat instruction.
func (o *Opcode) Instruction() jvm.Instruction {
	return jvm.NewInstruction(o.Code, o.Operands...)
}

// pushes reports whether executing the opcode leaves a result on the stack.
func (o *Opcode) pushes() bool {
	if !o.Code.IsInvoke() {
		return jvm.GetOpcodeInfo(o.Code).StackPush > 0
	}
	descIndex := 2
	if o.Code == jvm.INVOKEDYNAMIC {
		descIndex = 1
	}
	if descIndex >= len(o.Operands) {
		return false
	}
	desc, ok := o.Operands[descIndex].(string)
	if !ok {
		return false
	}
	ret, err := jvm.MethodReturnType(desc)
	return err == nil && ret.Sort() != jvm.SortVoid
}

func (o *Opcode) name() string {
	if o.Counter > 0 {
		return fmt.Sprintf("%s-%d", o.Code, o.Counter)
	}
	return o.Code.String()
}

func (o *Opcode) ToXmir() *treeir.Node {
	n := treeir.New(baseOpcode).WithName(o.name())
	for _, operand := range o.Operands {
		n.Children = append(n.Children, operandNode(operand))
	}
	return n
}

func (o *Opcode) Opcodes() ([]Node, error) {
	return []Node{o}, nil
}

func (o *Opcode) String() string {
	return o.Instruction().String()
}

// operandNode encodes an operand; values outside the operand codec are
// rendered as strings.
func operandNode(v any) *treeir.Node {
	kind, text, err := jvm.EncodeOperand(v)
	if err != nil {
		return treeir.New(jvm.KindString).WithData(fmt.Sprint(v))
	}
	return treeir.New(kind).WithData(text)
}

func parseOperand(n *treeir.Node) (any, error) {
	v, err := jvm.DecodeOperand(n.Base, n.Data)
	if err != nil {
		return nil, fmt.Errorf("ast: operand: %w: %w", err, ErrMalformed)
	}
	return v, nil
}

func parseOpcodeName(name string) (jvm.Opcode, int64, error) {
	code, ok := jvm.OpcodeByName(name)
	if !ok {
		return 0, 0, malformed(baseOpcode, "unknown opcode %q", name)
	}
	var counter int64
	if _, suffix, found := strings.Cut(name, "-"); found {
		c, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil || c <= 0 {
			return 0, 0, malformed(baseOpcode, "bad counter in %q", name)
		}
		counter = c
	}
	return code, counter, nil
}

// Label marks a jump target.
type Label struct {
	ID jvm.Label
}

func NewLabel(id jvm.Label) *Label {
	return &Label{ID: id}
}

func (l *Label) ToXmir() *treeir.Node {
	return treeir.New(baseLabel).WithData(string(l.ID))
}

func (l *Label) Opcodes() ([]Node, error) {
	return []Node{l}, nil
}

// RawXml is a tree-IR node carried through compilation untouched.
type RawXml struct {
	Node *treeir.Node
}

func (r *RawXml) ToXmir() *treeir.Node {
	return r.Node.Clone()
}

func (r *RawXml) Opcodes() ([]Node, error) {
	return []Node{r}, nil
}

// Literal is a constant. Value is an int, int64, float32, float64, string
// or nil (the null reference).
type Literal struct {
	Value any
}

func NewLiteral(v any) *Literal {
	return &Literal{Value: v}
}

func (l *Literal) Type() (jvm.Type, error) {
	switch l.Value.(type) {
	case int:
		return jvm.IntType, nil
	case int64:
		return jvm.LongType, nil
	case float32:
		return jvm.FloatType, nil
	case float64:
		return jvm.DoubleType, nil
	case string:
		return jvm.StringType, nil
	case nil:
		return jvm.ObjectRoot, nil
	default:
		return jvm.Type{}, fmt.Errorf("ast: literal of unsupported type %T: %w", l.Value, ErrMalformed)
	}
}

func (l *Literal) base() string {
	switch l.Value.(type) {
	case int:
		return baseInt
	case int64:
		return baseLong
	case float32:
		return baseFloat
	case float64:
		return baseDouble
	case nil:
		return baseNull
	default:
		return baseString
	}
}

func (l *Literal) ToXmir() *treeir.Node {
	n := treeir.New(l.base())
	if l.Value != nil {
		_, text, _ := jvm.EncodeOperand(l.Value)
		n.Data = text
	}
	return n
}

func (l *Literal) Opcodes() ([]Node, error) {
	switch v := l.Value.(type) {
	case int:
		switch {
		case v >= -1 && v <= 5:
			return []Node{NewOpcode(jvm.ICONST_M1 + jvm.Opcode(v+1))}, nil
		case v >= -128 && v <= 127:
			return []Node{NewOpcode(jvm.BIPUSH, v)}, nil
		case v >= -32768 && v <= 32767:
			return []Node{NewOpcode(jvm.SIPUSH, v)}, nil
		}
		return []Node{NewOpcode(jvm.LDC, v)}, nil
	case int64:
		if v == 0 || v == 1 {
			return []Node{NewOpcode(jvm.LCONST_0 + jvm.Opcode(v))}, nil
		}
		return []Node{NewOpcode(jvm.LDC, v)}, nil
	case float32:
		if v == 1 || v == 2 || (v == 0 && !math.Signbit(float64(v))) {
			return []Node{NewOpcode(jvm.FCONST_0 + jvm.Opcode(v))}, nil
		}
		return []Node{NewOpcode(jvm.LDC, v)}, nil
	case float64:
		if v == 1 || (v == 0 && !math.Signbit(v)) {
			return []Node{NewOpcode(jvm.DCONST_0 + jvm.Opcode(v))}, nil
		}
		return []Node{NewOpcode(jvm.LDC, v)}, nil
	case string:
		return []Node{NewOpcode(jvm.LDC, v)}, nil
	case nil:
		return []Node{NewOpcode(jvm.ACONST_NULL)}, nil
	default:
		return nil, fmt.Errorf("ast: literal of unsupported type %T: %w", v, ErrMalformed)
	}
}

func parseLiteral(n *treeir.Node) (*Literal, error) {
	if n.Base == baseNull {
		return NewLiteral(nil), nil
	}
	kind := n.Base
	if kind == baseLong || kind == baseInt || kind == baseFloat || kind == baseDouble || kind == baseString {
		v, err := jvm.DecodeOperand(kind, n.Data)
		if err != nil {
			return nil, malformed(n.Base, "%v", err)
		}
		return NewLiteral(v), nil
	}
	return nil, malformed(n.Base, "not a literal")
}
