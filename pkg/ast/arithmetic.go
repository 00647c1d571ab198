package ast

import (
	"fmt"

	"github.com/chazu/opeo/pkg/jvm"
	"github.com/chazu/opeo/pkg/treeir"
)

// Operator is a binary arithmetic operator.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
)

var operatorBases = [...]string{Add: basePlus, Sub: baseMinus, Mul: baseTimes}

// operatorOpcodes is indexed by operator, then int/long/float/double.
var operatorOpcodes = [...][4]jvm.Opcode{
	Add: {jvm.IADD, jvm.LADD, jvm.FADD, jvm.DADD},
	Sub: {jvm.ISUB, jvm.LSUB, jvm.FSUB, jvm.DSUB},
	Mul: {jvm.IMUL, jvm.LMUL, jvm.FMUL, jvm.DMUL},
}

func (o Operator) String() string { return operatorBases[o] }

// Arithmetic is a binary operation whose Attrs carry the result type.
// Addition, Substraction and Multiplication are its three forms.
type Arithmetic struct {
	Op    Operator
	Left  Node
	Right Node
	Attrs Attributes
}

// Addition returns left + right of the given type.
func Addition(left, right Node, typ jvm.Type) *Arithmetic {
	return &Arithmetic{Op: Add, Left: left, Right: right, Attrs: Attributes{}.WithDescriptor(typ.Descriptor())}
}

// Substraction returns left - right of the given type.
func Substraction(left, right Node, typ jvm.Type) *Arithmetic {
	return &Arithmetic{Op: Sub, Left: left, Right: right, Attrs: Attributes{}.WithDescriptor(typ.Descriptor())}
}

// Multiplication returns left * right of the given type.
func Multiplication(left, right Node, typ jvm.Type) *Arithmetic {
	return &Arithmetic{Op: Mul, Left: left, Right: right, Attrs: Attributes{}.WithDescriptor(typ.Descriptor())}
}

// ArithmeticOf recognizes IADD..DMUL and returns the operator and operand type.
func ArithmeticOf(op jvm.Opcode) (Operator, jvm.Type, bool) {
	types := [4]jvm.Type{jvm.IntType, jvm.LongType, jvm.FloatType, jvm.DoubleType}
	for o, row := range operatorOpcodes {
		for k, code := range row {
			if code == op {
				return Operator(o), types[k], true
			}
		}
	}
	return 0, jvm.Type{}, false
}

func (a *Arithmetic) Type() (jvm.Type, error) {
	desc, err := a.Attrs.Descriptor()
	if err != nil {
		return jvm.Type{}, err
	}
	return jvm.ParseType(desc)
}

func (a *Arithmetic) ToXmir() *treeir.Node {
	return treeir.New(a.Op.String(), a.Left.ToXmir(), a.Right.ToXmir()).WithScope(a.Attrs.String())
}

func (a *Arithmetic) Opcodes() ([]Node, error) {
	typ, err := a.Type()
	if err != nil {
		return nil, err
	}
	var column int
	switch typ.Sort() {
	case jvm.SortInt, jvm.SortBoolean, jvm.SortByte, jvm.SortChar, jvm.SortShort:
		column = 0
	case jvm.SortLong:
		column = 1
	case jvm.SortFloat:
		column = 2
	case jvm.SortDouble:
		column = 3
	default:
		return nil, malformed(a.Op.String(), "no arithmetic on %s", typ)
	}
	return lower([]Node{a.Left, a.Right}, NewOpcode(operatorOpcodes[a.Op][column]))
}

// conversions maps (from, to) sorts to the primitive conversion opcodes.
var conversions = map[[2]jvm.Sort]jvm.Opcode{
	{jvm.SortInt, jvm.SortLong}:     jvm.I2L,
	{jvm.SortInt, jvm.SortFloat}:    jvm.I2F,
	{jvm.SortInt, jvm.SortDouble}:   jvm.I2D,
	{jvm.SortLong, jvm.SortInt}:     jvm.L2I,
	{jvm.SortLong, jvm.SortFloat}:   jvm.L2F,
	{jvm.SortLong, jvm.SortDouble}:  jvm.L2D,
	{jvm.SortFloat, jvm.SortInt}:    jvm.F2I,
	{jvm.SortFloat, jvm.SortLong}:   jvm.F2L,
	{jvm.SortFloat, jvm.SortDouble}: jvm.F2D,
	{jvm.SortDouble, jvm.SortInt}:   jvm.D2I,
	{jvm.SortDouble, jvm.SortLong}:  jvm.D2L,
	{jvm.SortDouble, jvm.SortFloat}: jvm.D2F,
	{jvm.SortInt, jvm.SortByte}:     jvm.I2B,
	{jvm.SortInt, jvm.SortChar}:     jvm.I2C,
	{jvm.SortInt, jvm.SortShort}:    jvm.I2S,
}

var primitives = map[jvm.Sort]jvm.Type{
	jvm.SortInt:    jvm.IntType,
	jvm.SortLong:   jvm.LongType,
	jvm.SortFloat:  jvm.FloatType,
	jvm.SortDouble: jvm.DoubleType,
	jvm.SortByte:   jvm.ByteType,
	jvm.SortChar:   jvm.CharType,
	jvm.SortShort:  jvm.ShortType,
}

// ConversionOf returns the source and target types of a conversion opcode.
func ConversionOf(op jvm.Opcode) (from, to jvm.Type, ok bool) {
	for pair, code := range conversions {
		if code == op {
			return primitives[pair[0]], primitives[pair[1]], true
		}
	}
	return jvm.Type{}, jvm.Type{}, false
}

// Cast is a primitive conversion.
type Cast struct {
	From  jvm.Type
	To    jvm.Type
	Value Node
}

func (c *Cast) Type() (jvm.Type, error) { return c.To, nil }

func (c *Cast) ToXmir() *treeir.Node {
	return treeir.New(baseCast, typeNode(c.From), typeNode(c.To), c.Value.ToXmir())
}

func (c *Cast) Opcodes() ([]Node, error) {
	op, ok := conversions[[2]jvm.Sort{c.From.Sort(), c.To.Sort()}]
	if !ok {
		return nil, fmt.Errorf("ast: no conversion from %s to %s: %w", c.From, c.To, ErrMalformed)
	}
	return lower([]Node{c.Value}, NewOpcode(op))
}

// CheckCast narrows a reference to Target.
type CheckCast struct {
	Target jvm.Type
	Value  Node
}

func (c *CheckCast) Type() (jvm.Type, error) { return c.Target, nil }

func (c *CheckCast) ToXmir() *treeir.Node {
	return treeir.New(baseCheckCast, typeNode(c.Target), c.Value.ToXmir())
}

func (c *CheckCast) Opcodes() ([]Node, error) {
	return lower([]Node{c.Value}, NewOpcode(jvm.CHECKCAST, c.Target.InternalName()))
}
