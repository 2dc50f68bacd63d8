// Package isa defines the shared instruction-set constants that the code
// generator, assembler, and VM all depend on: addressing-mode codes,
// opcode values, and the fixed memory map. Keeping them in one package
// guarantees the assembler and VM can never drift on what a byte means,
// grounded on original_source/util/AddressingModeConstants.h,
// original_source/VMMemoryMap.h, and the opcode set used throughout
// original_source/vm/SINVM.cpp.
package isa

// AddressingMode identifies how an instruction's operand bytes are
// interpreted.
type AddressingMode uint8

const (
	Absolute AddressingMode = 0x00
	XIndex   AddressingMode = 0x01
	YIndex   AddressingMode = 0x02
	Immediate AddressingMode = 0x03
	Indirect AddressingMode = 0x04

	IndirectIndexedX AddressingMode = 0x05 // (addr), x
	IndirectIndexedY AddressingMode = 0x06 // (addr), y

	IndexedIndirectX AddressingMode = 0x07 // (addr, x)
	IndexedIndirectY AddressingMode = 0x08 // (addr, y)

	RegA AddressingMode = 0x09
	RegB AddressingMode = 0x0A

	// Short modes operate on a single byte instead of a full word and
	// mirror their word counterparts at +0x10. There is no short form
	// of Indirect (0x14 is unused), matching the original constants.
	AbsoluteShort AddressingMode = 0x10
	XIndexShort   AddressingMode = 0x11
	YIndexShort   AddressingMode = 0x12
	ImmediateShort AddressingMode = 0x13

	IndirectIndexedXShort AddressingMode = 0x15
	IndirectIndexedYShort AddressingMode = 0x16

	IndexedIndirectXShort AddressingMode = 0x17
	IndexedIndirectYShort AddressingMode = 0x18
)

// IsShort reports whether m operates on a single byte rather than a
// full word.
func (m AddressingMode) IsShort() bool {
	return m >= AbsoluteShort
}

// Long returns the word-width counterpart of a short addressing mode
// (or m itself if it is already word-width).
func (m AddressingMode) Long() AddressingMode {
	if m.IsShort() {
		return m - 0x10
	}
	return m
}

// HasOperandBytes reports whether this mode carries operand bytes at
// all beyond the addressing-mode byte itself: RegA and RegB do not.
func (m AddressingMode) HasOperandBytes() bool {
	return m != RegA && m != RegB
}

// AllowsImmediate reports whether an instruction of the given category
// may legally use the immediate addressing mode. Store and bitshift
// instructions must write to a memory location or register, so a
// bare immediate value is not a valid destination for them.
func AllowsImmediate(mnemonic string) bool {
	switch mnemonic {
	case "STOREA", "STOREB", "STOREX", "STOREY",
		"LSR", "LSL", "ROR", "ROL":
		return false
	default:
		return true
	}
}

// String names the mode the way SINASM source would spell it, for
// diagnostics and disassembly.
func (m AddressingMode) String() string {
	switch m {
	case Absolute, AbsoluteShort:
		return "absolute"
	case XIndex, XIndexShort:
		return "x_index"
	case YIndex, YIndexShort:
		return "y_index"
	case Immediate, ImmediateShort:
		return "immediate"
	case Indirect:
		return "indirect"
	case IndirectIndexedX, IndirectIndexedXShort:
		return "indirect_indexed_x"
	case IndirectIndexedY, IndirectIndexedYShort:
		return "indirect_indexed_y"
	case IndexedIndirectX, IndexedIndirectXShort:
		return "indexed_indirect_x"
	case IndexedIndirectY, IndexedIndirectYShort:
		return "indexed_indirect_y"
	case RegA:
		return "reg_a"
	case RegB:
		return "reg_b"
	default:
		return "unknown"
	}
}
