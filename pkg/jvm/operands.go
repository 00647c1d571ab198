package jvm

import (
	"fmt"
	"strconv"
	"strings"
)

// Operand kinds used by the textual and binary encodings.
const (
	KindInt    = "int"
	KindLong   = "long"
	KindFloat  = "float"
	KindDouble = "double"
	KindString = "string"
	KindBool   = "bool"
	KindLabel  = "label"
	KindType   = "type"
	KindHandle = "handle"
)

// EncodeOperand converts an instruction operand into a (kind, text) pair.
// The set of operand types is closed: int, int64, float32, float64, string,
// bool, Label, Type and Handle.
func EncodeOperand(v any) (kind, text string, err error) {
	switch x := v.(type) {
	case int:
		return KindInt, strconv.Itoa(x), nil
	case int64:
		return KindLong, strconv.FormatInt(x, 10), nil
	case float32:
		return KindFloat, strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return KindDouble, strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return KindString, x, nil
	case bool:
		return KindBool, strconv.FormatBool(x), nil
	case Label:
		return KindLabel, string(x), nil
	case Type:
		return KindType, x.Descriptor(), nil
	case Handle:
		return KindHandle, strings.Join([]string{
			strconv.Itoa(x.Tag), x.Owner, x.Name, x.Descriptor, strconv.FormatBool(x.Interface),
		}, ","), nil
	default:
		return "", "", fmt.Errorf("jvm: unsupported operand %v of type %T", v, v)
	}
}

// DecodeOperand is the inverse of EncodeOperand.
func DecodeOperand(kind, text string) (any, error) {
	switch kind {
	case KindInt:
		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("jvm: bad int operand %q: %w", text, err)
		}
		return v, nil
	case KindLong:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("jvm: bad long operand %q: %w", text, err)
		}
		return v, nil
	case KindFloat:
		v, err := parseFloat(text, 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	case KindDouble:
		return parseFloat(text, 64)
	case KindString:
		return text, nil
	case KindBool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("jvm: bad bool operand %q: %w", text, err)
		}
		return v, nil
	case KindLabel:
		if text == "" {
			return nil, fmt.Errorf("jvm: empty label operand")
		}
		return Label(text), nil
	case KindType:
		return ParseType(text)
	case KindHandle:
		parts := strings.Split(text, ",")
		if len(parts) != 5 {
			return nil, fmt.Errorf("jvm: bad handle operand %q", text)
		}
		tag, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("jvm: bad handle tag %q: %w", parts[0], err)
		}
		itf, err := strconv.ParseBool(parts[4])
		if err != nil {
			return nil, fmt.Errorf("jvm: bad handle interface flag %q: %w", parts[4], err)
		}
		return Handle{Tag: tag, Owner: parts[1], Name: parts[2], Descriptor: parts[3], Interface: itf}, nil
	default:
		return nil, fmt.Errorf("jvm: unknown operand kind %q", kind)
	}
}

// IsOperandKind reports whether kind names an operand encoding.
func IsOperandKind(kind string) bool {
	switch kind {
	case KindInt, KindLong, KindFloat, KindDouble, KindString, KindBool, KindLabel, KindType, KindHandle:
		return true
	}
	return false
}

func parseFloat(text string, bits int) (float64, error) {
	v, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return 0, fmt.Errorf("jvm: bad floating point operand %q: %w", text, err)
	}
	return v, nil
}
