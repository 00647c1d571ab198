package jvm

import (
	"fmt"
	"sort"
	"strings"
)

// Opcode represents a JVM bytecode instruction code.
// The set mirrors what a class-file reader such as ASM exposes: the short
// forms (ILOAD_0, LDC_W, ...) and WIDE are folded into their generic opcodes.
type Opcode byte

const (
	// ========================================================================
	// Constants (0x00-0x14)
	// ========================================================================

	NOP         Opcode = 0
	ACONST_NULL Opcode = 1
	ICONST_M1   Opcode = 2
	ICONST_0    Opcode = 3
	ICONST_1    Opcode = 4
	ICONST_2    Opcode = 5
	ICONST_3    Opcode = 6
	ICONST_4    Opcode = 7
	ICONST_5    Opcode = 8
	LCONST_0    Opcode = 9
	LCONST_1    Opcode = 10
	FCONST_0    Opcode = 11
	FCONST_1    Opcode = 12
	FCONST_2    Opcode = 13
	DCONST_0    Opcode = 14
	DCONST_1    Opcode = 15
	BIPUSH      Opcode = 16 // BIPUSH <int>
	SIPUSH      Opcode = 17 // SIPUSH <int>
	LDC         Opcode = 18 // LDC <int|long|float|double|string|type|handle>

	// ========================================================================
	// Loads (0x15-0x35)
	// ========================================================================

	ILOAD   Opcode = 21 // ILOAD <slot>
	LLOAD   Opcode = 22
	FLOAD   Opcode = 23
	DLOAD   Opcode = 24
	ALOAD   Opcode = 25
	IALOAD  Opcode = 46
	LALOAD  Opcode = 47
	FALOAD  Opcode = 48
	DALOAD  Opcode = 49
	AALOAD  Opcode = 50
	BALOAD  Opcode = 51
	CALOAD  Opcode = 52
	SALOAD  Opcode = 53

	// ========================================================================
	// Stores (0x36-0x56)
	// ========================================================================

	ISTORE  Opcode = 54 // ISTORE <slot>
	LSTORE  Opcode = 55
	FSTORE  Opcode = 56
	DSTORE  Opcode = 57
	ASTORE  Opcode = 58
	IASTORE Opcode = 79
	LASTORE Opcode = 80
	FASTORE Opcode = 81
	DASTORE Opcode = 82
	AASTORE Opcode = 83
	BASTORE Opcode = 84
	CASTORE Opcode = 85
	SASTORE Opcode = 86

	// ========================================================================
	// Stack manipulation (0x57-0x5F)
	// ========================================================================

	POP     Opcode = 87
	POP2    Opcode = 88
	DUP     Opcode = 89
	DUP_X1  Opcode = 90
	DUP_X2  Opcode = 91
	DUP2    Opcode = 92
	DUP2_X1 Opcode = 93
	DUP2_X2 Opcode = 94
	SWAP    Opcode = 95

	// ========================================================================
	// Arithmetic and logic (0x60-0x84)
	// ========================================================================

	IADD  Opcode = 96
	LADD  Opcode = 97
	FADD  Opcode = 98
	DADD  Opcode = 99
	ISUB  Opcode = 100
	LSUB  Opcode = 101
	FSUB  Opcode = 102
	DSUB  Opcode = 103
	IMUL  Opcode = 104
	LMUL  Opcode = 105
	FMUL  Opcode = 106
	DMUL  Opcode = 107
	IDIV  Opcode = 108
	LDIV  Opcode = 109
	FDIV  Opcode = 110
	DDIV  Opcode = 111
	IREM  Opcode = 112
	LREM  Opcode = 113
	FREM  Opcode = 114
	DREM  Opcode = 115
	INEG  Opcode = 116
	LNEG  Opcode = 117
	FNEG  Opcode = 118
	DNEG  Opcode = 119
	ISHL  Opcode = 120
	LSHL  Opcode = 121
	ISHR  Opcode = 122
	LSHR  Opcode = 123
	IUSHR Opcode = 124
	LUSHR Opcode = 125
	IAND  Opcode = 126
	LAND  Opcode = 127
	IOR   Opcode = 128
	LOR   Opcode = 129
	IXOR  Opcode = 130
	LXOR  Opcode = 131
	IINC  Opcode = 132 // IINC <slot> <delta>

	// ========================================================================
	// Conversions (0x85-0x93)
	// ========================================================================

	I2L Opcode = 133
	I2F Opcode = 134
	I2D Opcode = 135
	L2I Opcode = 136
	L2F Opcode = 137
	L2D Opcode = 138
	F2I Opcode = 139
	F2L Opcode = 140
	F2D Opcode = 141
	D2I Opcode = 142
	D2L Opcode = 143
	D2F Opcode = 144
	I2B Opcode = 145
	I2C Opcode = 146
	I2S Opcode = 147

	// ========================================================================
	// Comparisons and control flow (0x94-0xB1)
	// ========================================================================

	LCMP         Opcode = 148
	FCMPL        Opcode = 149
	FCMPG        Opcode = 150
	DCMPL        Opcode = 151
	DCMPG        Opcode = 152
	IFEQ         Opcode = 153 // IFEQ <label>
	IFNE         Opcode = 154
	IFLT         Opcode = 155
	IFGE         Opcode = 156
	IFGT         Opcode = 157
	IFLE         Opcode = 158
	IF_ICMPEQ    Opcode = 159
	IF_ICMPNE    Opcode = 160
	IF_ICMPLT    Opcode = 161
	IF_ICMPGE    Opcode = 162
	IF_ICMPGT    Opcode = 163
	IF_ICMPLE    Opcode = 164
	IF_ACMPEQ    Opcode = 165
	IF_ACMPNE    Opcode = 166
	GOTO         Opcode = 167
	JSR          Opcode = 168
	RET          Opcode = 169
	TABLESWITCH  Opcode = 170
	LOOKUPSWITCH Opcode = 171
	IRETURN      Opcode = 172
	LRETURN      Opcode = 173
	FRETURN      Opcode = 174
	DRETURN      Opcode = 175
	ARETURN      Opcode = 176
	RETURN       Opcode = 177

	// ========================================================================
	// Fields and invocations (0xB2-0xBA)
	// ========================================================================

	GETSTATIC       Opcode = 178 // GETSTATIC <owner> <name> <descriptor>
	PUTSTATIC       Opcode = 179
	GETFIELD        Opcode = 180
	PUTFIELD        Opcode = 181
	INVOKEVIRTUAL   Opcode = 182 // INVOKEVIRTUAL <owner> <name> <descriptor> [interface]
	INVOKESPECIAL   Opcode = 183
	INVOKESTATIC    Opcode = 184
	INVOKEINTERFACE Opcode = 185
	INVOKEDYNAMIC   Opcode = 186 // INVOKEDYNAMIC <name> <descriptor> <handle> <args...>

	// ========================================================================
	// Objects and arrays (0xBB-0xC7)
	// ========================================================================

	NEW            Opcode = 187 // NEW <type>
	NEWARRAY       Opcode = 188 // NEWARRAY <primitive type code>
	ANEWARRAY      Opcode = 189 // ANEWARRAY <type>
	ARRAYLENGTH    Opcode = 190
	ATHROW         Opcode = 191
	CHECKCAST      Opcode = 192 // CHECKCAST <type>
	INSTANCEOF     Opcode = 193
	MONITORENTER   Opcode = 194
	MONITOREXIT    Opcode = 195
	MULTIANEWARRAY Opcode = 197 // MULTIANEWARRAY <descriptor> <dimensions>
	IFNULL         Opcode = 198
	IFNONNULL      Opcode = 199
)

// OpcodeInfo provides metadata about each opcode.
// Stack effects count values rather than slots, so a long occupies one
// entry, the same way the decompiler's symbolic stack does.
type OpcodeInfo struct {
	Name      string // Human-readable name
	StackPop  int    // How many values popped from stack (-1 = variable)
	StackPush int    // How many values pushed to stack (-1 = variable)
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Constants
	NOP:         {"NOP", 0, 0},
	ACONST_NULL: {"ACONST_NULL", 0, 1},
	ICONST_M1:   {"ICONST_M1", 0, 1},
	ICONST_0:    {"ICONST_0", 0, 1},
	ICONST_1:    {"ICONST_1", 0, 1},
	ICONST_2:    {"ICONST_2", 0, 1},
	ICONST_3:    {"ICONST_3", 0, 1},
	ICONST_4:    {"ICONST_4", 0, 1},
	ICONST_5:    {"ICONST_5", 0, 1},
	LCONST_0:    {"LCONST_0", 0, 1},
	LCONST_1:    {"LCONST_1", 0, 1},
	FCONST_0:    {"FCONST_0", 0, 1},
	FCONST_1:    {"FCONST_1", 0, 1},
	FCONST_2:    {"FCONST_2", 0, 1},
	DCONST_0:    {"DCONST_0", 0, 1},
	DCONST_1:    {"DCONST_1", 0, 1},
	BIPUSH:      {"BIPUSH", 0, 1},
	SIPUSH:      {"SIPUSH", 0, 1},
	LDC:         {"LDC", 0, 1},

	// Loads
	ILOAD:  {"ILOAD", 0, 1},
	LLOAD:  {"LLOAD", 0, 1},
	FLOAD:  {"FLOAD", 0, 1},
	DLOAD:  {"DLOAD", 0, 1},
	ALOAD:  {"ALOAD", 0, 1},
	IALOAD: {"IALOAD", 2, 1},
	LALOAD: {"LALOAD", 2, 1},
	FALOAD: {"FALOAD", 2, 1},
	DALOAD: {"DALOAD", 2, 1},
	AALOAD: {"AALOAD", 2, 1},
	BALOAD: {"BALOAD", 2, 1},
	CALOAD: {"CALOAD", 2, 1},
	SALOAD: {"SALOAD", 2, 1},

	// Stores
	ISTORE:  {"ISTORE", 1, 0},
	LSTORE:  {"LSTORE", 1, 0},
	FSTORE:  {"FSTORE", 1, 0},
	DSTORE:  {"DSTORE", 1, 0},
	ASTORE:  {"ASTORE", 1, 0},
	IASTORE: {"IASTORE", 3, 0},
	LASTORE: {"LASTORE", 3, 0},
	FASTORE: {"FASTORE", 3, 0},
	DASTORE: {"DASTORE", 3, 0},
	AASTORE: {"AASTORE", 3, 0},
	BASTORE: {"BASTORE", 3, 0},
	CASTORE: {"CASTORE", 3, 0},
	SASTORE: {"SASTORE", 3, 0},

	// Stack manipulation. POP2 is only ever emitted for a single
	// category-2 value; the DUP2 family depends on value categories.
	POP:     {"POP", 1, 0},
	POP2:    {"POP2", 1, 0},
	DUP:     {"DUP", 1, 2},
	DUP_X1:  {"DUP_X1", 2, 3},
	DUP_X2:  {"DUP_X2", -1, -1},
	DUP2:    {"DUP2", -1, -1},
	DUP2_X1: {"DUP2_X1", -1, -1},
	DUP2_X2: {"DUP2_X2", -1, -1},
	SWAP:    {"SWAP", 2, 2},

	// Arithmetic
	IADD:  {"IADD", 2, 1},
	LADD:  {"LADD", 2, 1},
	FADD:  {"FADD", 2, 1},
	DADD:  {"DADD", 2, 1},
	ISUB:  {"ISUB", 2, 1},
	LSUB:  {"LSUB", 2, 1},
	FSUB:  {"FSUB", 2, 1},
	DSUB:  {"DSUB", 2, 1},
	IMUL:  {"IMUL", 2, 1},
	LMUL:  {"LMUL", 2, 1},
	FMUL:  {"FMUL", 2, 1},
	DMUL:  {"DMUL", 2, 1},
	IDIV:  {"IDIV", 2, 1},
	LDIV:  {"LDIV", 2, 1},
	FDIV:  {"FDIV", 2, 1},
	DDIV:  {"DDIV", 2, 1},
	IREM:  {"IREM", 2, 1},
	LREM:  {"LREM", 2, 1},
	FREM:  {"FREM", 2, 1},
	DREM:  {"DREM", 2, 1},
	INEG:  {"INEG", 1, 1},
	LNEG:  {"LNEG", 1, 1},
	FNEG:  {"FNEG", 1, 1},
	DNEG:  {"DNEG", 1, 1},
	ISHL:  {"ISHL", 2, 1},
	LSHL:  {"LSHL", 2, 1},
	ISHR:  {"ISHR", 2, 1},
	LSHR:  {"LSHR", 2, 1},
	IUSHR: {"IUSHR", 2, 1},
	LUSHR: {"LUSHR", 2, 1},
	IAND:  {"IAND", 2, 1},
	LAND:  {"LAND", 2, 1},
	IOR:   {"IOR", 2, 1},
	LOR:   {"LOR", 2, 1},
	IXOR:  {"IXOR", 2, 1},
	LXOR:  {"LXOR", 2, 1},
	IINC:  {"IINC", 0, 0},

	// Conversions
	I2L: {"I2L", 1, 1},
	I2F: {"I2F", 1, 1},
	I2D: {"I2D", 1, 1},
	L2I: {"L2I", 1, 1},
	L2F: {"L2F", 1, 1},
	L2D: {"L2D", 1, 1},
	F2I: {"F2I", 1, 1},
	F2L: {"F2L", 1, 1},
	F2D: {"F2D", 1, 1},
	D2I: {"D2I", 1, 1},
	D2L: {"D2L", 1, 1},
	D2F: {"D2F", 1, 1},
	I2B: {"I2B", 1, 1},
	I2C: {"I2C", 1, 1},
	I2S: {"I2S", 1, 1},

	// Comparisons and control flow
	LCMP:         {"LCMP", 2, 1},
	FCMPL:        {"FCMPL", 2, 1},
	FCMPG:        {"FCMPG", 2, 1},
	DCMPL:        {"DCMPL", 2, 1},
	DCMPG:        {"DCMPG", 2, 1},
	IFEQ:         {"IFEQ", 1, 0},
	IFNE:         {"IFNE", 1, 0},
	IFLT:         {"IFLT", 1, 0},
	IFGE:         {"IFGE", 1, 0},
	IFGT:         {"IFGT", 1, 0},
	IFLE:         {"IFLE", 1, 0},
	IF_ICMPEQ:    {"IF_ICMPEQ", 2, 0},
	IF_ICMPNE:    {"IF_ICMPNE", 2, 0},
	IF_ICMPLT:    {"IF_ICMPLT", 2, 0},
	IF_ICMPGE:    {"IF_ICMPGE", 2, 0},
	IF_ICMPGT:    {"IF_ICMPGT", 2, 0},
	IF_ICMPLE:    {"IF_ICMPLE", 2, 0},
	IF_ACMPEQ:    {"IF_ACMPEQ", 2, 0},
	IF_ACMPNE:    {"IF_ACMPNE", 2, 0},
	GOTO:         {"GOTO", 0, 0},
	JSR:          {"JSR", 0, 1},
	RET:          {"RET", 0, 0},
	TABLESWITCH:  {"TABLESWITCH", 1, 0},
	LOOKUPSWITCH: {"LOOKUPSWITCH", 1, 0},
	IRETURN:      {"IRETURN", 1, 0},
	LRETURN:      {"LRETURN", 1, 0},
	FRETURN:      {"FRETURN", 1, 0},
	DRETURN:      {"DRETURN", 1, 0},
	ARETURN:      {"ARETURN", 1, 0},
	RETURN:       {"RETURN", 0, 0},

	// Fields and invocations
	GETSTATIC:       {"GETSTATIC", 0, 1},
	PUTSTATIC:       {"PUTSTATIC", 1, 0},
	GETFIELD:        {"GETFIELD", 1, 1},
	PUTFIELD:        {"PUTFIELD", 2, 0},
	INVOKEVIRTUAL:   {"INVOKEVIRTUAL", -1, -1},
	INVOKESPECIAL:   {"INVOKESPECIAL", -1, -1},
	INVOKESTATIC:    {"INVOKESTATIC", -1, -1},
	INVOKEINTERFACE: {"INVOKEINTERFACE", -1, -1},
	INVOKEDYNAMIC:   {"INVOKEDYNAMIC", -1, -1},

	// Objects and arrays
	NEW:            {"NEW", 0, 1},
	NEWARRAY:       {"NEWARRAY", 1, 1},
	ANEWARRAY:      {"ANEWARRAY", 1, 1},
	ARRAYLENGTH:    {"ARRAYLENGTH", 1, 1},
	ATHROW:         {"ATHROW", 1, 0},
	CHECKCAST:      {"CHECKCAST", 1, 1},
	INSTANCEOF:     {"INSTANCEOF", 1, 1},
	MONITORENTER:   {"MONITORENTER", 1, 0},
	MONITOREXIT:    {"MONITOREXIT", 1, 0},
	MULTIANEWARRAY: {"MULTIANEWARRAY", -1, 1},
	IFNULL:         {"IFNULL", 1, 0},
	IFNONNULL:      {"IFNONNULL", 1, 0},
}

// opcodesByName is the reverse of opcodeInfoTable, built once.
var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// Unrecognized opcodes get a zero OpcodeInfo named "UNKNOWN(0xNN)".
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Known reports whether the opcode has metadata.
func (op Opcode) Known() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// OpcodeByName resolves an opcode from its name. The lookup is
// case-insensitive and ignores a "-<counter>" suffix, so both "iadd" and
// "IADD-17" resolve to IADD.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodesByName[strings.ToUpper(SimplifiedName(name))]
	return op, ok
}

// SimplifiedName strips the "-<counter>" suffix from an opcode node name.
func SimplifiedName(name string) string {
	if i := strings.IndexByte(name, '-'); i >= 0 {
		return name[:i]
	}
	return name
}

// IsConditionalJump returns true for the IFxx, IF_xCMPxx and IF[NON]NULL family.
func (op Opcode) IsConditionalJump() bool {
	return (op >= IFEQ && op <= IF_ACMPNE) || op == IFNULL || op == IFNONNULL
}

// IsReturn returns true if this opcode terminates the method.
func (op Opcode) IsReturn() bool {
	return op >= IRETURN && op <= RETURN
}

// IsInvoke returns true if this opcode is a method invocation.
func (op Opcode) IsInvoke() bool {
	return op >= INVOKEVIRTUAL && op <= INVOKEDYNAMIC
}

// AllOpcodes returns every defined opcode in ascending order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
