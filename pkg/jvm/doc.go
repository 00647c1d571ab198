// Package jvm describes the flat side of the transformation: JVM opcodes,
// the instructions and label markers of a method body, type descriptors and
// the operand codec shared by the tree IR and the binary wire format.
//
// Instructions are plain values sourced from a class-file reader. Operands
// form a closed set of Go types:
//
//   - int, int64, float32, float64 for numeric constants, slots and counts
//   - string for owners, member names, descriptors and string constants
//   - bool for the interface flag of invocations
//   - Label for jump targets, Type for class constants, Handle for bootstrap methods
//
// Stack effects in the opcode table count values, not slots, matching the
// symbolic stack kept by the decompiler.
package jvm
