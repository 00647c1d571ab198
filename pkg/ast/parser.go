package ast

import (
	"fmt"
	"strings"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// DefaultPassthrough lists the bases the compiler copies through unparsed.
var DefaultPassthrough = []string{"frame"}

// shape is the closed set of tree-IR node forms.
type shape int

const (
	shapeUnknown shape = iota
	shapeOpcode
	shapeLabel
	shapeLiteral
	shapeLocal
	shapeWriteLocal
	shapeThis
	shapeGetStatic
	shapeMember
	shapeGetField
	shapeWriteField
	shapeWriteStatic
	shapeNewArray
	shapeWriteArray
	shapeNew
	shapeSuper
	shapeArithmetic
	shapeCast
	shapeCheckCast
	shapeClassName
	shapeNewAddress
	shapeDuplicated
	shapeRef
	shapePop
	shapeIf
	shapeReturn
	shapeSeq
)

func classify(base string) shape {
	switch base {
	case baseOpcode:
		return shapeOpcode
	case baseLabel:
		return shapeLabel
	case baseInt, baseLong, baseFloat, baseDouble, baseString, baseNull:
		return shapeLiteral
	case baseWriteLocal:
		return shapeWriteLocal
	case baseThis:
		return shapeThis
	case baseGetStatic:
		return shapeGetStatic
	case baseGetField:
		return shapeGetField
	case baseWriteField:
		return shapeWriteField
	case baseWriteStat:
		return shapeWriteStatic
	case baseNewArray:
		return shapeNewArray
	case baseWriteArray:
		return shapeWriteArray
	case baseNew:
		return shapeNew
	case baseSuper:
		return shapeSuper
	case basePlus, baseMinus, baseTimes:
		return shapeArithmetic
	case baseCast:
		return shapeCast
	case baseCheckCast:
		return shapeCheckCast
	case baseClassName:
		return shapeClassName
	case baseNewAddress:
		return shapeNewAddress
	case baseDuplicated:
		return shapeDuplicated
	case basePop:
		return shapePop
	case baseReturn:
		return shapeReturn
	case baseSeq:
		return shapeSeq
	}
	switch {
	case len(base) > len(prefixMember) && strings.HasPrefix(base, prefixMember):
		return shapeMember
	case strings.HasPrefix(base, prefixLocal):
		return shapeLocal
	case strings.HasPrefix(base, prefixRef):
		return shapeRef
	case strings.HasPrefix(base, prefixIf):
		return shapeIf
	}
	return shapeUnknown
}

// Parser turns tree-IR nodes into AST nodes. It keeps the names of
// Duplicate nodes seen so far, so one Parser must be used per method body.
type Parser struct {
	names       map[string]*Duplicate
	passthrough map[string]bool
}

// NewParser creates a parser that keeps nodes with the given bases as RawXml.
func NewParser(passthrough ...string) *Parser {
	p := &Parser{
		names:       make(map[string]*Duplicate),
		passthrough: make(map[string]bool, len(passthrough)),
	}
	for _, base := range passthrough {
		p.passthrough[base] = true
	}
	return p
}

// ParseAll parses a sequence of sibling nodes.
func (p *Parser) ParseAll(nodes []*treeir.Node) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		node, err := p.Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// Parse converts one tree-IR node, recursively.
func (p *Parser) Parse(n *treeir.Node) (Node, error) {
	if n == nil {
		return nil, fmt.Errorf("ast: nil node: %w", ErrMalformed)
	}
	if n.Base == "" {
		return nil, fmt.Errorf("ast: node without base %s: %w", n, ErrMalformed)
	}
	if p.passthrough[n.Base] {
		return &RawXml{Node: n.Clone()}, nil
	}

	switch classify(n.Base) {
	case shapeOpcode:
		return p.opcode(n)
	case shapeLabel:
		if n.Data == "" {
			// Nothing can jump to it.
			return NewLabel(jvm.NewLabel()), nil
		}
		return NewLabel(jvm.Label(n.Data)), nil
	case shapeLiteral:
		return parseLiteral(n)
	case shapeLocal:
		return parseLocal(n)
	case shapeWriteLocal:
		return p.writeLocal(n)
	case shapeThis:
		return &This{}, nil
	case shapeGetStatic:
		attrs, err := scope(n)
		if err != nil {
			return nil, err
		}
		return &ClassField{Attrs: attrs}, nil
	case shapeMember:
		return p.member(n)
	case shapeGetField:
		return p.getField(n)
	case shapeWriteField:
		return p.writeField(n)
	case shapeWriteStatic:
		return p.writeStatic(n)
	case shapeNewArray:
		return p.newArray(n)
	case shapeWriteArray:
		return p.writeArray(n)
	case shapeNew:
		return p.constructor(n)
	case shapeSuper:
		return p.super(n)
	case shapeArithmetic:
		return p.arithmetic(n)
	case shapeCast:
		return p.cast(n)
	case shapeCheckCast:
		return p.checkCast(n)
	case shapeClassName:
		typ, err := dataType(n)
		if err != nil {
			return nil, err
		}
		return &ClassName{Class: typ}, nil
	case shapeNewAddress:
		typ, err := dataType(n)
		if err != nil {
			return nil, err
		}
		return &NewAddress{Class: typ}, nil
	case shapeDuplicated:
		return p.duplicated(n)
	case shapeRef:
		return p.reference(n)
	case shapePop:
		if err := arity(n, 1, 1); err != nil {
			return nil, err
		}
		value, err := p.Parse(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &Popped{Value: value}, nil
	case shapeIf:
		return p.conditional(n)
	case shapeReturn:
		return p.ret(n)
	case shapeSeq:
		children, err := p.ParseAll(n.Children)
		if err != nil {
			return nil, err
		}
		return &Root{Children: children}, nil
	case shapeUnknown:
		return nil, malformed(n.Base, "unrecognized node")
	}
	panic(fmt.Sprintf("ast: unhandled shape for %q", n.Base))
}

func arity(n *treeir.Node, min, max int) error {
	if len(n.Children) < min || (max >= 0 && len(n.Children) > max) {
		return malformed(n.Base, "unexpected number of children %d", len(n.Children))
	}
	return nil
}

func scope(n *treeir.Node) (Attributes, error) {
	attrs, err := ParseAttributes(n.Scope)
	if err != nil {
		return Attributes{}, fmt.Errorf("ast: %s: %w", n.Base, err)
	}
	if !attrs.HasDescriptor() {
		return Attributes{}, malformed(n.Base, "missing descriptor in %q", n.Scope)
	}
	return attrs, nil
}

func dataType(n *treeir.Node) (jvm.Type, error) {
	typ, err := jvm.ParseType(n.Data)
	if err != nil {
		return jvm.Type{}, malformed(n.Base, "%v", err)
	}
	return typ, nil
}

// typeChild reads a <o base="type"> node.
func typeChild(parent, n *treeir.Node) (jvm.Type, error) {
	if n.Base != baseType {
		return jvm.Type{}, malformed(parent.Base, "expected type node, got %q", n.Base)
	}
	return dataType(n)
}

func (p *Parser) opcode(n *treeir.Node) (Node, error) {
	code, counter, err := parseOpcodeName(n.Name)
	if err != nil {
		return nil, err
	}
	op := &Opcode{Code: code, Counter: counter}
	for _, c := range n.Children {
		v, err := parseOperand(c)
		if err != nil {
			return nil, fmt.Errorf("ast: opcode %s: %w", n.Name, err)
		}
		op.Operands = append(op.Operands, v)
	}
	return op, nil
}

func (p *Parser) writeLocal(n *treeir.Node) (Node, error) {
	if err := arity(n, 2, 2); err != nil {
		return nil, err
	}
	if classify(n.Children[0].Base) != shapeLocal {
		return nil, malformed(n.Base, "target %q is not a local variable", n.Children[0].Base)
	}
	local, err := parseLocal(n.Children[0])
	if err != nil {
		return nil, err
	}
	value, err := p.Parse(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &VariableAssignment{Local: local, Value: value}, nil
}

func (p *Parser) member(n *treeir.Node) (Node, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimPrefix(n.Base, prefixMember); name != attrs.Name() {
		return nil, malformed(n.Base, "member name %q does not match attributes %q", name, n.Scope)
	}

	switch attrs.Kind() {
	case KindField:
		if err := arity(n, 1, 1); err != nil {
			return nil, err
		}
		target, err := p.Parse(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &InstanceField{Target: target, Attrs: attrs}, nil
	case KindMethod, KindInterface:
		if err := arity(n, 1, -1); err != nil {
			return nil, err
		}
		children, err := p.ParseAll(n.Children)
		if err != nil {
			return nil, err
		}
		if attrs.Kind() == KindInterface {
			return &InterfaceInvocation{Target: children[0], Attrs: attrs, Args: children[1:]}, nil
		}
		return &Invocation{Target: children[0], Attrs: attrs, Args: children[1:]}, nil
	case KindStatic:
		args, err := p.ParseAll(n.Children)
		if err != nil {
			return nil, err
		}
		return &StaticInvocation{Attrs: attrs, Args: args}, nil
	case KindDynamic:
		return p.dynamic(n, attrs)
	default:
		return nil, malformed(n.Base, "member of kind %q", attrs.Kind())
	}
}

func (p *Parser) dynamic(n *treeir.Node, attrs Attributes) (Node, error) {
	if err := arity(n, 1, -1); err != nil {
		return nil, err
	}
	bsm := n.Children[0]
	if bsm.Base != baseBootstrap || len(bsm.Children) == 0 {
		return nil, malformed(n.Base, "missing bootstrap method")
	}
	operands := make([]any, len(bsm.Children))
	for i, c := range bsm.Children {
		v, err := parseOperand(c)
		if err != nil {
			return nil, fmt.Errorf("ast: %s bootstrap: %w", n.Base, err)
		}
		operands[i] = v
	}
	handle, ok := operands[0].(jvm.Handle)
	if !ok {
		return nil, malformed(n.Base, "bootstrap method is not a handle")
	}
	args, err := p.ParseAll(n.Children[1:])
	if err != nil {
		return nil, err
	}
	return &DynamicInvocation{Attrs: attrs, Bootstrap: handle, BootstrapArgs: operands[1:], Args: args}, nil
}

func (p *Parser) getField(n *treeir.Node) (*FieldRetrieval, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if err := arity(n, 1, 1); err != nil {
		return nil, err
	}
	target, err := p.Parse(n.Children[0])
	if err != nil {
		return nil, err
	}
	return &FieldRetrieval{Target: target, Attrs: attrs}, nil
}

func (p *Parser) writeField(n *treeir.Node) (Node, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if err := arity(n, 2, 2); err != nil {
		return nil, err
	}
	if n.Children[0].Base != baseGetField {
		return nil, malformed(n.Base, "receiver %q is not a field retrieval", n.Children[0].Base)
	}
	receiver, err := p.getField(n.Children[0])
	if err != nil {
		return nil, err
	}
	value, err := p.Parse(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &FieldAssignment{Target: receiver.Target, Value: value, Attrs: attrs}, nil
}

func (p *Parser) writeStatic(n *treeir.Node) (Node, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if err := arity(n, 1, 1); err != nil {
		return nil, err
	}
	value, err := p.Parse(n.Children[0])
	if err != nil {
		return nil, err
	}
	return &StaticFieldAssignment{Value: value, Attrs: attrs}, nil
}

func (p *Parser) newArray(n *treeir.Node) (Node, error) {
	if err := arity(n, 2, 2); err != nil {
		return nil, err
	}
	elem, err := typeChild(n, n.Children[0])
	if err != nil {
		return nil, err
	}
	size, err := p.Parse(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &ArrayConstructor{Size: size, Element: elem}, nil
}

func (p *Parser) writeArray(n *treeir.Node) (Node, error) {
	if err := arity(n, 3, 3); err != nil {
		return nil, err
	}
	children, err := p.ParseAll(n.Children)
	if err != nil {
		return nil, err
	}
	return &StoreArray{Array: children[0], Index: children[1], Value: children[2]}, nil
}

func (p *Parser) constructor(n *treeir.Node) (Node, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if err := arity(n, 1, -1); err != nil {
		return nil, err
	}
	class, err := typeChild(n, n.Children[0])
	if err != nil {
		return nil, err
	}
	args, err := p.ParseAll(n.Children[1:])
	if err != nil {
		return nil, err
	}
	return &Constructor{Class: class, Attrs: attrs, Args: args}, nil
}

func (p *Parser) super(n *treeir.Node) (Node, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if err := arity(n, 1, -1); err != nil {
		return nil, err
	}
	children, err := p.ParseAll(n.Children)
	if err != nil {
		return nil, err
	}
	return &Super{Instance: children[0], Attrs: attrs, Args: children[1:]}, nil
}

func (p *Parser) arithmetic(n *treeir.Node) (Node, error) {
	attrs, err := scope(n)
	if err != nil {
		return nil, err
	}
	if err := arity(n, 2, 2); err != nil {
		return nil, err
	}
	children, err := p.ParseAll(n.Children)
	if err != nil {
		return nil, err
	}
	var op Operator
	for o, base := range operatorBases {
		if base == n.Base {
			op = Operator(o)
		}
	}
	return &Arithmetic{Op: op, Left: children[0], Right: children[1], Attrs: attrs}, nil
}

func (p *Parser) cast(n *treeir.Node) (Node, error) {
	if err := arity(n, 3, 3); err != nil {
		return nil, err
	}
	from, err := typeChild(n, n.Children[0])
	if err != nil {
		return nil, err
	}
	to, err := typeChild(n, n.Children[1])
	if err != nil {
		return nil, err
	}
	value, err := p.Parse(n.Children[2])
	if err != nil {
		return nil, err
	}
	return &Cast{From: from, To: to, Value: value}, nil
}

func (p *Parser) checkCast(n *treeir.Node) (Node, error) {
	if err := arity(n, 2, 2); err != nil {
		return nil, err
	}
	target, err := typeChild(n, n.Children[0])
	if err != nil {
		return nil, err
	}
	value, err := p.Parse(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &CheckCast{Target: target, Value: value}, nil
}

func (p *Parser) duplicated(n *treeir.Node) (Node, error) {
	if n.Name == "" {
		return nil, malformed(n.Base, "missing name")
	}
	if _, ok := p.names[n.Name]; ok {
		return nil, malformed(n.Base, "name %q registered twice", n.Name)
	}
	if err := arity(n, 1, 1); err != nil {
		return nil, err
	}
	inner, err := p.Parse(n.Children[0])
	if err != nil {
		return nil, err
	}
	d := &Duplicate{Name: n.Name, Inner: inner}
	p.names[n.Name] = d
	return d, nil
}

func (p *Parser) reference(n *treeir.Node) (Node, error) {
	name := strings.TrimPrefix(n.Base, prefixRef)
	d, ok := p.names[name]
	if !ok {
		return nil, malformed(n.Base, "unknown reference %q", name)
	}
	return &Reference{Target: d}, nil
}

func (p *Parser) conditional(n *treeir.Node) (Node, error) {
	cmp, ok := comparisonOpcode(strings.TrimPrefix(n.Base, prefixIf))
	if !ok {
		return nil, malformed(n.Base, "unknown comparison")
	}
	operands := jvm.GetOpcodeInfo(cmp).StackPop
	if err := arity(n, 1+operands, 1+operands); err != nil {
		return nil, err
	}
	if n.Children[0].Base != baseLabel || n.Children[0].Data == "" {
		return nil, malformed(n.Base, "missing jump target")
	}
	children, err := p.ParseAll(n.Children[1:])
	if err != nil {
		return nil, err
	}
	return &If{Cmp: cmp, Target: NewLabel(jvm.Label(n.Children[0].Data)), Operands: children}, nil
}

func (p *Parser) ret(n *treeir.Node) (Node, error) {
	code, ok := jvm.OpcodeByName(n.Name)
	if !ok || !code.IsReturn() || code == jvm.RETURN {
		return nil, malformed(n.Base, "bad return opcode %q", n.Name)
	}
	if err := arity(n, 1, 1); err != nil {
		return nil, err
	}
	value, err := p.Parse(n.Children[0])
	if err != nil {
		return nil, err
	}
	return &Return{Code: code, Value: value}, nil
}
