package decompiler

import (
	"github.com/chazu/opeo/pkg/ast"
	"github.com/chazu/opeo/pkg/jvm"
)

const constructorName = "<init>"

// AllAgents returns the registry in priority order.
func AllAgents() Agents {
	return Agents{
		labelAgent{},
		constantsAgent(),
		loadLocalAgent(),
		storeLocalAgent(),
		arithmeticAgent(),
		castAgent(),
		checkCastAgent(),
		newAgent(),
		dupAgent(),
		popAgent(),
		fieldsAgent(),
		arraysAgent(),
		constructorAgent(),
		superAgent(),
		invocationsAgent(),
		conditionalAgent(),
		returnAgent(),
	}
}

// SupportedOpcodeNames returns the names of every opcode the registry
// understands. Batch drivers use it to decide whether a method is eligible
// for decompilation.
func SupportedOpcodeNames() []string {
	return AllAgents().Supported().Names()
}

// labelAgent pushes label markers.
type labelAgent struct{}

func (labelAgent) Supported() Supported { return Supported{} }

func (labelAgent) Appropriate(s *State) bool {
	return s.HasMore() && s.Current().IsLabel()
}

func (a labelAgent) Handle(s *State) error {
	if !a.Appropriate(s) {
		panic(illegal("label", s))
	}
	s.Stack().Push(ast.NewLabel(s.Current().Label))
	s.Advance()
	return nil
}

// unimplementedAgent wraps whatever instruction is current as a
// passthrough node. It is the fallback when no registered agent applies.
type unimplementedAgent struct{}

func (unimplementedAgent) Supported() Supported { return Supported{} }

func (unimplementedAgent) Appropriate(s *State) bool { return s.HasMore() }

func (a unimplementedAgent) Handle(s *State) error {
	if !a.Appropriate(s) {
		panic(illegal("unimplemented", s))
	}
	in := s.Current()
	if in.IsLabel() {
		s.Stack().Push(ast.NewLabel(in.Label))
	} else {
		s.Stack().Push(ast.FromInstruction(in, s.nextCounter()))
	}
	s.Advance()
	return nil
}

// intOperand reports whether the current instruction's first operand is an int.
func intOperand(s *State) bool {
	_, ok := s.Current().Operand(0).(int)
	return ok
}

// stringOperand reports whether the current instruction's first operand is a string.
func stringOperand(s *State) bool {
	_, ok := s.Current().Operand(0).(string)
	return ok
}

// memberOperands returns owner, name and descriptor of a field or method
// instruction.
func memberOperands(in jvm.Instruction) (owner, name, desc string, ok bool) {
	owner, ok1 := in.Operand(0).(string)
	name, ok2 := in.Operand(1).(string)
	desc, ok3 := in.Operand(2).(string)
	return owner, name, desc, ok1 && ok2 && ok3
}

func hasMemberOperands(s *State) bool {
	_, _, _, ok := memberOperands(s.Current())
	return ok
}

// methodArity returns the number of arguments of the current invocation,
// or -1 when its descriptor is unusable.
func methodArity(in jvm.Instruction, descIndex int) int {
	desc, ok := in.Operand(descIndex).(string)
	if !ok {
		return -1
	}
	args, err := jvm.MethodArgumentTypes(desc)
	if err != nil {
		return -1
	}
	if _, err := jvm.MethodReturnType(desc); err != nil {
		return -1
	}
	return len(args)
}

func constantsAgent() Agent {
	return opcodes("constants", func(s *State) error {
		in := s.Current()
		var node ast.Node
		switch op := in.Opcode; {
		case op == jvm.ACONST_NULL:
			node = ast.NewLiteral(nil)
		case op >= jvm.ICONST_M1 && op <= jvm.ICONST_5:
			node = ast.NewLiteral(int(op) - int(jvm.ICONST_0))
		case op == jvm.LCONST_0 || op == jvm.LCONST_1:
			node = ast.NewLiteral(int64(op - jvm.LCONST_0))
		case op >= jvm.FCONST_0 && op <= jvm.FCONST_2:
			node = ast.NewLiteral(float32(op - jvm.FCONST_0))
		case op == jvm.DCONST_0 || op == jvm.DCONST_1:
			node = ast.NewLiteral(float64(op - jvm.DCONST_0))
		case op == jvm.BIPUSH || op == jvm.SIPUSH:
			node = ast.NewLiteral(in.Operand(0))
		default:
			if t, ok := in.Operand(0).(jvm.Type); ok {
				node = &ast.ClassName{Class: t}
			} else {
				node = ast.NewLiteral(in.Operand(0))
			}
		}
		s.Stack().Push(node)
		s.Advance()
		return nil
	},
		jvm.ACONST_NULL, jvm.ICONST_M1, jvm.ICONST_0, jvm.ICONST_1, jvm.ICONST_2,
		jvm.ICONST_3, jvm.ICONST_4, jvm.ICONST_5, jvm.LCONST_0, jvm.LCONST_1,
		jvm.FCONST_0, jvm.FCONST_1, jvm.FCONST_2, jvm.DCONST_0, jvm.DCONST_1,
		jvm.BIPUSH, jvm.SIPUSH, jvm.LDC,
	).when(func(s *State) bool {
		in := s.Current()
		switch in.Opcode {
		case jvm.BIPUSH, jvm.SIPUSH:
			return intOperand(s)
		case jvm.LDC:
			switch in.Operand(0).(type) {
			case int, int64, float32, float64, string, jvm.Type:
				return true
			}
			return false
		}
		return true
	})
}

func loadLocalAgent() Agent {
	return opcodes("load-local", func(s *State) error {
		in := s.Current()
		slot := in.Operand(0).(int)
		if in.Opcode == jvm.ALOAD && slot == 0 {
			s.Stack().Push(&ast.This{})
		} else {
			s.Stack().Push(ast.NewLocalVariable(slot, ast.LoadType(in.Opcode)))
		}
		s.Advance()
		return nil
	}, jvm.ILOAD, jvm.LLOAD, jvm.FLOAD, jvm.DLOAD, jvm.ALOAD).when(intOperand)
}

func storeLocalAgent() Agent {
	return opcodes("store-local", func(s *State) error {
		in := s.Current()
		value, err := s.Stack().Pop()
		if err != nil {
			return err
		}
		local := ast.NewLocalVariable(in.Operand(0).(int), ast.LoadType(in.Opcode))
		s.Stack().Push(&ast.VariableAssignment{Local: local, Value: value})
		s.Advance()
		return nil
	}, jvm.ISTORE, jvm.LSTORE, jvm.FSTORE, jvm.DSTORE, jvm.ASTORE).when(intOperand).taking(fixed(1))
}

func arithmeticAgent() Agent {
	return opcodes("arithmetic", func(s *State) error {
		op, typ, _ := ast.ArithmeticOf(s.Current().Opcode)
		operands, err := s.Stack().PopN(2)
		if err != nil {
			return err
		}
		var node *ast.Arithmetic
		switch op {
		case ast.Add:
			node = ast.Addition(operands[0], operands[1], typ)
		case ast.Sub:
			node = ast.Substraction(operands[0], operands[1], typ)
		default:
			node = ast.Multiplication(operands[0], operands[1], typ)
		}
		s.Stack().Push(node)
		s.Advance()
		return nil
	},
		jvm.IADD, jvm.LADD, jvm.FADD, jvm.DADD,
		jvm.ISUB, jvm.LSUB, jvm.FSUB, jvm.DSUB,
		jvm.IMUL, jvm.LMUL, jvm.FMUL, jvm.DMUL,
	).taking(fixed(2))
}

func castAgent() Agent {
	return opcodes("casts", func(s *State) error {
		from, to, _ := ast.ConversionOf(s.Current().Opcode)
		value, err := s.Stack().Pop()
		if err != nil {
			return err
		}
		s.Stack().Push(&ast.Cast{From: from, To: to, Value: value})
		s.Advance()
		return nil
	},
		jvm.I2L, jvm.I2F, jvm.I2D, jvm.L2I, jvm.L2F, jvm.L2D,
		jvm.F2I, jvm.F2L, jvm.F2D, jvm.D2I, jvm.D2L, jvm.D2F,
		jvm.I2B, jvm.I2C, jvm.I2S,
	).taking(fixed(1))
}

func checkCastAgent() Agent {
	return opcodes("checkcast", func(s *State) error {
		target := jvm.ObjectType(s.Current().Operand(0).(string))
		value, err := s.Stack().Pop()
		if err != nil {
			return err
		}
		s.Stack().Push(&ast.CheckCast{Target: target, Value: value})
		s.Advance()
		return nil
	}, jvm.CHECKCAST).when(stringOperand).taking(fixed(1))
}

func newAgent() Agent {
	return opcodes("new", func(s *State) error {
		s.Stack().Push(&ast.NewAddress{Class: jvm.ObjectType(s.Current().Operand(0).(string))})
		s.Advance()
		return nil
	}, jvm.NEW).when(stringOperand)
}

// dupAgent turns DUP into a Duplicate of the top value plus a Reference
// standing for the copy.
func dupAgent() Agent {
	return opcodes("dup", func(s *State) error {
		value, err := s.Stack().Pop()
		if err != nil {
			return err
		}
		dup := &ast.Duplicate{Name: s.nextName(), Inner: value}
		s.Stack().Push(dup, &ast.Reference{Target: dup})
		s.Advance()
		return nil
	}, jvm.DUP).taking(fixed(1))
}

// popAgent handles POP, and POP2 when the top is a single wide value.
func popAgent() Agent {
	return opcodes("pop", func(s *State) error {
		value, err := s.Stack().Pop()
		if err != nil {
			return err
		}
		s.Stack().Push(&ast.Popped{Value: value})
		s.Advance()
		return nil
	}, jvm.POP, jvm.POP2).when(func(s *State) bool {
		if s.Current().Opcode == jvm.POP {
			return true
		}
		typed, ok := s.Stack().Peek(0).(ast.Typed)
		if !ok {
			return false
		}
		t, err := typed.Type()
		return err == nil && t.Size() == 2
	}).taking(fixed(1))
}

func fieldsAgent() Agent {
	return opcodes("fields", func(s *State) error {
		in := s.Current()
		owner, name, desc, _ := memberOperands(in)
		stack := s.Stack()
		switch in.Opcode {
		case jvm.GETSTATIC:
			stack.Push(&ast.ClassField{Attrs: ast.Member(ast.KindStatic, owner, name, desc)})
		case jvm.GETFIELD:
			target, err := stack.Pop()
			if err != nil {
				return err
			}
			stack.Push(&ast.InstanceField{Target: target, Attrs: ast.Member(ast.KindField, owner, name, desc)})
		case jvm.PUTSTATIC:
			value, err := stack.Pop()
			if err != nil {
				return err
			}
			stack.Push(&ast.StaticFieldAssignment{Value: value, Attrs: ast.Member(ast.KindStatic, owner, name, desc)})
		case jvm.PUTFIELD:
			operands, err := stack.PopN(2)
			if err != nil {
				return err
			}
			stack.Push(&ast.FieldAssignment{
				Target: operands[0],
				Value:  operands[1],
				Attrs:  ast.Member(ast.KindField, owner, name, desc),
			})
		}
		s.Advance()
		return nil
	}, jvm.GETSTATIC, jvm.GETFIELD, jvm.PUTSTATIC, jvm.PUTFIELD).when(hasMemberOperands).taking(func(s *State) int {
		return jvm.GetOpcodeInfo(s.Current().Opcode).StackPop
	})
}

// arraysAgent handles ANEWARRAY and AASTORE. An AASTORE into the copy of a
// duplicated array literal folds the pair into one StoreArray that yields
// the array.
func arraysAgent() Agent {
	return opcodes("arrays", func(s *State) error {
		in := s.Current()
		stack := s.Stack()
		if in.Opcode == jvm.ANEWARRAY {
			size, err := stack.Pop()
			if err != nil {
				return err
			}
			stack.Push(&ast.ArrayConstructor{Size: size, Element: jvm.ObjectType(in.Operand(0).(string))})
			s.Advance()
			return nil
		}

		operands, err := stack.PopN(3)
		if err != nil {
			return err
		}
		array, index, value := operands[0], operands[1], operands[2]
		if ref, ok := array.(*ast.Reference); ok && stack.Peek(0) == ast.Node(ref.Target) && arrayLiteral(ref.Target.Inner) {
			if _, err := stack.Pop(); err != nil {
				return err
			}
			array = ref.Target.Inner
		}
		stack.Push(&ast.StoreArray{Array: array, Index: index, Value: value})
		s.Advance()
		return nil
	}, jvm.ANEWARRAY, jvm.AASTORE).when(func(s *State) bool {
		return s.Current().Opcode == jvm.AASTORE || stringOperand(s)
	}).taking(func(s *State) int {
		if s.Current().Opcode == jvm.AASTORE {
			return 3
		}
		return 1
	})
}

func arrayLiteral(n ast.Node) bool {
	switch a := n.(type) {
	case *ast.ArrayConstructor:
		return true
	case *ast.StoreArray:
		return a.Literal()
	}
	return false
}

// constructorAgent recognizes NEW, DUP, arguments, INVOKESPECIAL <init>:
// below the arguments lies the Reference of a Duplicate of a matching
// NewAddress, and the Duplicate itself directly under it.
func constructorAgent() Agent {
	return opcodes("constructor", func(s *State) error {
		in := s.Current()
		owner, _, desc, _ := memberOperands(in)
		stack := s.Stack()
		args, err := stack.PopN(methodArity(in, 2))
		if err != nil {
			return err
		}
		pair, err := stack.PopN(2)
		if err != nil {
			return err
		}
		class := pair[0].(*ast.Duplicate).Inner.(*ast.NewAddress).Class
		c := &ast.Constructor{Class: class, Attrs: ast.Member(ast.KindMethod, owner, constructorName, desc), Args: args}
		stack.Push(c)
		s.Advance()
		return nil
	}, jvm.INVOKESPECIAL).when(func(s *State) bool {
		in := s.Current()
		owner, name, _, ok := memberOperands(in)
		if !ok || name != constructorName {
			return false
		}
		n := methodArity(in, 2)
		if n < 0 {
			return false
		}
		ref, ok := s.Stack().Peek(n).(*ast.Reference)
		if !ok || s.Stack().Peek(n+1) != ast.Node(ref.Target) {
			return false
		}
		addr, ok := ref.Target.Inner.(*ast.NewAddress)
		return ok && addr.Class.InternalName() == owner
	}).taking(func(s *State) int {
		return methodArity(s.Current(), 2)
	})
}

// superAgent handles every other INVOKESPECIAL.
func superAgent() Agent {
	return opcodes("super", func(s *State) error {
		in := s.Current()
		owner, name, desc, _ := memberOperands(in)
		operands, err := s.Stack().PopN(methodArity(in, 2) + 1)
		if err != nil {
			return err
		}
		s.Stack().Push(&ast.Super{
			Instance: operands[0],
			Attrs:    ast.Member(ast.KindMethod, owner, name, desc),
			Args:     operands[1:],
		})
		s.Advance()
		return nil
	}, jvm.INVOKESPECIAL).when(func(s *State) bool {
		return hasMemberOperands(s) && methodArity(s.Current(), 2) >= 0
	}).taking(func(s *State) int {
		return methodArity(s.Current(), 2) + 1
	})
}

func invocationsAgent() Agent {
	return opcodes("invocations", func(s *State) error {
		in := s.Current()
		stack := s.Stack()
		if in.Opcode == jvm.INVOKEDYNAMIC {
			name := in.Operand(0).(string)
			desc := in.Operand(1).(string)
			args, err := stack.PopN(methodArity(in, 1))
			if err != nil {
				return err
			}
			stack.Push(&ast.DynamicInvocation{
				Attrs:         ast.Member(ast.KindDynamic, "", name, desc),
				Bootstrap:     in.Operand(2).(jvm.Handle),
				BootstrapArgs: append([]any(nil), in.Operands[3:]...),
				Args:          args,
			})
			s.Advance()
			return nil
		}

		owner, name, desc, _ := memberOperands(in)
		n := methodArity(in, 2)
		if in.Opcode == jvm.INVOKESTATIC {
			args, err := stack.PopN(n)
			if err != nil {
				return err
			}
			stack.Push(&ast.StaticInvocation{Attrs: ast.Member(ast.KindStatic, owner, name, desc), Args: args})
			s.Advance()
			return nil
		}

		operands, err := stack.PopN(n + 1)
		if err != nil {
			return err
		}
		if in.Opcode == jvm.INVOKEINTERFACE {
			stack.Push(&ast.InterfaceInvocation{
				Target: operands[0],
				Attrs:  ast.Member(ast.KindInterface, owner, name, desc),
				Args:   operands[1:],
			})
		} else {
			stack.Push(&ast.Invocation{
				Target: operands[0],
				Attrs:  ast.Member(ast.KindMethod, owner, name, desc),
				Args:   operands[1:],
			})
		}
		s.Advance()
		return nil
	}, jvm.INVOKEVIRTUAL, jvm.INVOKEINTERFACE, jvm.INVOKESTATIC, jvm.INVOKEDYNAMIC).when(func(s *State) bool {
		in := s.Current()
		if in.Opcode == jvm.INVOKEDYNAMIC {
			_, nameOK := in.Operand(0).(string)
			_, bsmOK := in.Operand(2).(jvm.Handle)
			return nameOK && bsmOK && methodArity(in, 1) >= 0
		}
		return hasMemberOperands(s) && methodArity(in, 2) >= 0
	}).taking(invocationPops)
}

// invocationPops counts the arguments of an invocation plus its receiver.
func invocationPops(s *State) int {
	in := s.Current()
	switch in.Opcode {
	case jvm.INVOKEDYNAMIC:
		return methodArity(in, 1)
	case jvm.INVOKESTATIC:
		return methodArity(in, 2)
	}
	return methodArity(in, 2) + 1
}

// conditionalAgent builds If nodes for forward jumps only.
func conditionalAgent() Agent {
	return opcodes("conditional", func(s *State) error {
		in := s.Current()
		operands, err := s.Stack().PopN(jvm.GetOpcodeInfo(in.Opcode).StackPop)
		if err != nil {
			return err
		}
		s.Stack().Push(&ast.If{Cmp: in.Opcode, Target: ast.NewLabel(in.Operand(0).(jvm.Label)), Operands: operands})
		s.Advance()
		return nil
	},
		jvm.IFEQ, jvm.IFNE, jvm.IFLT, jvm.IFGE, jvm.IFGT, jvm.IFLE,
		jvm.IF_ICMPEQ, jvm.IF_ICMPNE, jvm.IF_ICMPLT, jvm.IF_ICMPGE, jvm.IF_ICMPGT, jvm.IF_ICMPLE,
		jvm.IF_ACMPEQ, jvm.IF_ACMPNE, jvm.IFNULL, jvm.IFNONNULL,
	).when(func(s *State) bool {
		target, ok := s.Current().Operand(0).(jvm.Label)
		return ok && s.Forward(target)
	}).taking(func(s *State) int {
		return jvm.GetOpcodeInfo(s.Current().Opcode).StackPop
	})
}

// returnAgent wraps value returns; a bare RETURN stays a plain opcode.
func returnAgent() Agent {
	return opcodes("return", func(s *State) error {
		in := s.Current()
		if in.Opcode == jvm.RETURN {
			s.Stack().Push(ast.NewOpcode(jvm.RETURN))
			s.Advance()
			return nil
		}
		value, err := s.Stack().Pop()
		if err != nil {
			return err
		}
		s.Stack().Push(&ast.Return{Code: in.Opcode, Value: value})
		s.Advance()
		return nil
	}, jvm.IRETURN, jvm.LRETURN, jvm.FRETURN, jvm.DRETURN, jvm.ARETURN, jvm.RETURN).taking(func(s *State) int {
		if s.Current().Opcode == jvm.RETURN {
			return 0
		}
		return 1
	})
}
