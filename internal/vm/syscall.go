package vm

import (
	"bufio"
	"fmt"

	"sinc/internal/isa"
)

// executeSyscall dispatches on A, per spec.md §4.5. SYSCALL is a bare,
// operand-less opcode (internal/isa/opcode.go), so A can only ever hold
// the dispatch id at the moment it runs — it's unavailable as an
// argument register for whatever operation gets selected.
// SINVM.cpp's allocate_heap_memory/free_heap_memory/reallocate_heap_memory
// read REG_A/REG_B directly, a convention from before those routines
// were folded behind one generic SYSCALL opcode; it can't be mapped
// onto the current calling convention as-is. internal/codegen's
// compileFreeMemory is the one surviving grounded caller (evaluates
// the pointer into A, moves it to B with tab, then loads the free id
// into A), so every operation here generalizes its B-holds-the-address
// pattern, with X and Y as secondary argument registers:
//
//	allocate:     B = size (in), B = address (out, 0 on failure)
//	free:         B = start
//	reallocate:   B = start, X = new size, Y = error-if-not-found flag
//	              (nonzero); B = new address (out, 0 on failure)
//	print int:    B = value to print
//	print string: B = address, X = length
//	read input:   B = destination address, X = max length;
//	              B = bytes actually read (out)
//	halt:         B = exit code
func (vm *VM) executeSyscall() error {
	switch isa.Syscall(vm.A) {
	case isa.SyscallAllocate:
		vm.allocateHeapMemory()
	case isa.SyscallFree:
		return vm.freeHeapMemory()
	case isa.SyscallReallocate:
		vm.reallocateHeapMemory(vm.Y != 0)
	case isa.SyscallPrintInt:
		fmt.Fprintf(vm.Stdout, "%d", int16(vm.B))
	case isa.SyscallPrintString:
		vm.printString(vm.B, vm.X)
	case isa.SyscallReadInput:
		return vm.readInput()
	case isa.SyscallHalt:
		vm.exitCode = vm.B
		vm.setFlag(isa.FlagHalt)
	default:
		return vm.fault("VMError", "unknown syscall id %d", vm.A)
	}
	return nil
}

func (vm *VM) printString(addr, length uint16) {
	for i := uint16(0); i < length; i++ {
		vm.Stdout.Write([]byte{vm.Mem[wrapAddress(uint32(addr) + uint32(i))]})
	}
}

// readInput reads up to X bytes into the input buffer region starting
// at B, from Stdin, and leaves the count read in B.
func (vm *VM) readInput() error {
	dest, maxLen := vm.B, vm.X
	if vm.stdinReader == nil {
		vm.stdinReader = bufio.NewReader(vm.Stdin)
	}
	line, err := vm.stdinReader.ReadString('\n')
	if err != nil && line == "" {
		vm.B = 0
		return nil
	}
	n := uint16(len(line))
	if n > maxLen {
		n = maxLen
	}
	for i := uint16(0); i < n; i++ {
		vm.Mem[wrapAddress(uint32(dest)+uint32(i))] = line[i]
	}
	vm.B = n
	return nil
}
