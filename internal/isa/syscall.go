package isa

// Syscall identifies the operation requested by the SYSCALL opcode,
// dispatched on the value of register A (spec.md §4.5's "Syscalls").
type Syscall uint16

const (
	SyscallAllocate Syscall = iota
	SyscallFree
	SyscallReallocate
	SyscallPrintInt
	SyscallPrintString
	SyscallReadInput
	SyscallHalt
)
