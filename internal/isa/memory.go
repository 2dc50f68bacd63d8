package isa

// WordSize is the fixed word size, in bits, of this VM target (spec.md
// §2). objfile.File carries its own WordSize field for forward
// compatibility with other targets, but every producer in this repo
// (the assembler's default, the CLI's flag defaults, the version
// banner) is grounded on this one constant rather than a repeated
// literal.
const WordSize uint8 = 16

// Fixed memory layout, ported address for address from
// original_source/VMMemoryMap.h. The VM's address space is always
// 16 bits regardless of the object file's declared word size.
const (
	MemoryMin = 0x0000
	MemoryMax = 0xFFFF
	MemorySize = 0x10000

	// Heap: global/dynamic data occupies the bottom of memory.
	HeapStart    = 0x0000
	RSStart      = 0x0100 // @rs-declared globals begin here; zero page is reserved
	DynamicStart = 0x0400 // heap allocator hands out addresses from here

	BufferStart = 0x1400 // scratch input buffer for syscalls
	BufferEnd   = 0x17FF

	// Data stack: grows downward from Stack toward StackBottom.
	StackBottom = 0x1800
	Stack       = 0x23FF

	// Call stack: grows downward from CallStack toward CallStackBottom.
	CallStackBottom = 0x2400
	CallStack       = 0x25FF

	// Program image.
	PrgBottom = 0x2600
	PrgTop    = 0xF000

	// Command-line argument / environment area.
	Arg    = 0xF000
	ArgTop = 0xFFFF
)

// StatusFlag identifies one bit of the 8-bit STATUS register.
type StatusFlag uint8

// Flag bit positions, per spec.md §5 ("STATUS (8-bit flags
// N/V/U/H/I/F/Z/C)"), least significant bit first to match the
// original's is_flag_set('C') style char-indexed access.
const (
	FlagCarry     StatusFlag = 1 << 0 // C
	FlagZero      StatusFlag = 1 << 1 // Z
	FlagFloat     StatusFlag = 1 << 2 // F
	FlagInterrupt StatusFlag = 1 << 3 // I
	FlagHalt      StatusFlag = 1 << 4 // H
	FlagUndefined StatusFlag = 1 << 5 // U
	FlagOverflow  StatusFlag = 1 << 6 // V
	FlagNegative  StatusFlag = 1 << 7 // N
)

// AddressInRange reports whether addr is a legal VM memory address.
func AddressInRange(addr int) bool {
	return addr >= MemoryMin && addr <= MemoryMax
}
