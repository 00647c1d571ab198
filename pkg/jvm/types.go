package jvm

import (
	"fmt"
	"strings"
)

// Sort classifies a Type by its descriptor shape.
type Sort uint8

const (
	SortVoid Sort = iota
	SortBoolean
	SortChar
	SortByte
	SortShort
	SortInt
	SortFloat
	SortLong
	SortDouble
	SortArray
	SortObject
	SortMethod
)

// String returns a human-readable name for Sort.
func (s Sort) String() string {
	switch s {
	case SortVoid:
		return "void"
	case SortBoolean:
		return "boolean"
	case SortChar:
		return "char"
	case SortByte:
		return "byte"
	case SortShort:
		return "short"
	case SortInt:
		return "int"
	case SortFloat:
		return "float"
	case SortLong:
		return "long"
	case SortDouble:
		return "double"
	case SortArray:
		return "array"
	case SortObject:
		return "object"
	case SortMethod:
		return "method"
	default:
		return fmt.Sprintf("Sort(%d)", s)
	}
}

// Type is a JVM type identified by its descriptor ("I", "Ljava/lang/String;",
// "[I", "(I)V"). The zero value is invalid; use ParseType or the predefined
// types.
type Type struct {
	desc string
}

var (
	VoidType    = Type{"V"}
	BooleanType = Type{"Z"}
	CharType    = Type{"C"}
	ByteType    = Type{"B"}
	ShortType   = Type{"S"}
	IntType     = Type{"I"}
	FloatType   = Type{"F"}
	LongType    = Type{"J"}
	DoubleType  = Type{"D"}
	ObjectRoot  = Type{"Ljava/lang/Object;"}
	StringType  = Type{"Ljava/lang/String;"}
)

// ParseType validates a field or method descriptor and returns its Type.
func ParseType(desc string) (Type, error) {
	if desc == "" {
		return Type{}, fmt.Errorf("jvm: empty type descriptor")
	}
	if desc[0] == '(' {
		if _, _, err := splitMethod(desc); err != nil {
			return Type{}, err
		}
		return Type{desc}, nil
	}
	n, err := fieldLen(desc, 0)
	if err != nil {
		return Type{}, err
	}
	if n != len(desc) {
		return Type{}, fmt.Errorf("jvm: trailing characters in descriptor %q", desc)
	}
	return Type{desc}, nil
}

// ObjectType returns the type for an internal class name such as
// "java/lang/String". Array descriptors ("[I") are accepted as-is.
func ObjectType(internalName string) Type {
	if strings.HasPrefix(internalName, "[") {
		return Type{internalName}
	}
	return Type{"L" + internalName + ";"}
}

// ArrayOf returns the one-dimensional array type of elem.
func ArrayOf(elem Type) Type {
	return Type{"[" + elem.desc}
}

// Descriptor returns the type descriptor.
func (t Type) Descriptor() string { return t.desc }

// String returns the descriptor.
func (t Type) String() string { return t.desc }

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.desc == "" }

// Sort returns the descriptor category.
func (t Type) Sort() Sort {
	if t.desc == "" {
		return SortVoid
	}
	switch t.desc[0] {
	case 'V':
		return SortVoid
	case 'Z':
		return SortBoolean
	case 'C':
		return SortChar
	case 'B':
		return SortByte
	case 'S':
		return SortShort
	case 'I':
		return SortInt
	case 'F':
		return SortFloat
	case 'J':
		return SortLong
	case 'D':
		return SortDouble
	case '[':
		return SortArray
	case '(':
		return SortMethod
	default:
		return SortObject
	}
}

// Size returns the number of local slots a value of this type occupies.
func (t Type) Size() int {
	switch t.Sort() {
	case SortVoid:
		return 0
	case SortLong, SortDouble:
		return 2
	default:
		return 1
	}
}

// IsReference reports whether values of t are object or array references.
func (t Type) IsReference() bool {
	s := t.Sort()
	return s == SortObject || s == SortArray
}

// InternalName returns "java/lang/String" for "Ljava/lang/String;" and the
// descriptor itself for arrays and primitives.
func (t Type) InternalName() string {
	if t.Sort() == SortObject {
		return t.desc[1 : len(t.desc)-1]
	}
	return t.desc
}

// ElementType returns the component type of an array type.
func (t Type) ElementType() (Type, error) {
	if t.Sort() != SortArray {
		return Type{}, fmt.Errorf("jvm: %s is not an array type", t.desc)
	}
	return Type{t.desc[1:]}, nil
}

// MethodArgumentTypes returns the parameter types of a method descriptor.
func MethodArgumentTypes(desc string) ([]Type, error) {
	args, _, err := splitMethod(desc)
	return args, err
}

// MethodReturnType returns the return type of a method descriptor.
func MethodReturnType(desc string) (Type, error) {
	_, ret, err := splitMethod(desc)
	return ret, err
}

func splitMethod(desc string) ([]Type, Type, error) {
	if len(desc) < 3 || desc[0] != '(' {
		return nil, Type{}, fmt.Errorf("jvm: %q is not a method descriptor", desc)
	}
	var args []Type
	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldLen(desc, i)
		if err != nil {
			return nil, Type{}, err
		}
		args = append(args, Type{desc[i : i+n]})
		i += n
	}
	if i >= len(desc) {
		return nil, Type{}, fmt.Errorf("jvm: unterminated parameter list in %q", desc)
	}
	i++
	if i < len(desc) && desc[i] == 'V' && i+1 == len(desc) {
		return args, VoidType, nil
	}
	n, err := fieldLen(desc, i)
	if err != nil {
		return nil, Type{}, err
	}
	if i+n != len(desc) {
		return nil, Type{}, fmt.Errorf("jvm: trailing characters in descriptor %q", desc)
	}
	return args, Type{desc[i : i+n]}, nil
}

// fieldLen returns the length of the field descriptor starting at desc[i].
// Void is accepted only as a whole descriptor.
func fieldLen(desc string, i int) (int, error) {
	start := i
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i >= len(desc) {
		return 0, fmt.Errorf("jvm: truncated descriptor %q", desc)
	}
	switch desc[i] {
	case 'Z', 'C', 'B', 'S', 'I', 'F', 'J', 'D':
		return i - start + 1, nil
	case 'V':
		if start == 0 && i == 0 && len(desc) == 1 {
			return 1, nil
		}
		return 0, fmt.Errorf("jvm: void is not a value type in %q", desc)
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end <= 1 {
			return 0, fmt.Errorf("jvm: malformed class descriptor in %q", desc)
		}
		return i - start + end + 1, nil
	default:
		return 0, fmt.Errorf("jvm: unexpected %q in descriptor %q", desc[i], desc)
	}
}
