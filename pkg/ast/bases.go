package ast

// Tree-IR discriminators. Member accesses use "." followed by the member
// name, local variables "local-<slot>", back-references "ref-<name>" and
// conditionals "if-<comparison>".
const (
	baseOpcode     = "opcode"
	baseLabel      = "label"
	baseSeq        = "seq"
	baseType       = "type"
	baseThis       = "$"
	baseInt        = "int"
	baseLong       = "long"
	baseFloat      = "float"
	baseDouble     = "double"
	baseString     = "string"
	baseNull       = "null"
	baseWriteLocal = "write-local"
	baseGetStatic  = "get-static"
	baseGetField   = "get-field"
	baseWriteField = "write-field"
	baseWriteStat  = "write-static"
	baseNewArray   = "new-array"
	baseWriteArray = "write-array"
	baseNew        = "new"
	baseSuper      = "super"
	basePlus       = "plus"
	baseMinus      = "minus"
	baseTimes      = "times"
	baseCast       = "cast"
	baseCheckCast  = "checkcast"
	baseClassName  = "class-name"
	baseNewAddress = "new-address"
	baseDuplicated = "duplicated"
	basePop        = "pop"
	baseReturn     = "return"
	baseBootstrap  = "bootstrap"

	prefixMember = "."
	prefixLocal  = "local-"
	prefixRef    = "ref-"
	prefixIf     = "if-"
)
