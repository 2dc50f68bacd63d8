package vm

import "sinc/internal/isa"

// fetchByte reads the byte at PC and advances PC by one.
func (vm *VM) fetchByte() byte {
	b := vm.Mem[vm.PC]
	vm.PC++
	return b
}

// fetchWord reads a big-endian word starting at PC, per
// SINVM::get_data_of_wordsize, advancing PC to point at its last byte
// rather than one past it (Step's trailing PC++ lands one past it).
func (vm *VM) fetchWord() uint16 {
	hi := uint16(vm.fetchByte())
	lo := uint16(vm.Mem[vm.PC])
	return hi<<8 | lo
}

// stripShort splits an addressing-mode byte into its base mode and
// short-operand flag. It does not touch PC; callers position PC on the
// mode byte themselves, matching SINVM's habit of peeking a byte before
// deciding whether to advance past it.
func stripShort(mode isa.AddressingMode) (isa.AddressingMode, bool) {
	if mode.IsShort() {
		return mode.Long(), true
	}
	return mode, false
}

// loadOperand implements SINVM::execute_load. On entry PC points at the
// opcode byte itself (Step has only peeked it); loadOperand advances PC
// to the addressing-mode byte, resolves register-direct operands
// immediately, and otherwise advances to the operand word and reads it,
// ending with PC on the operand's last byte.
func (vm *VM) loadOperand() (uint16, error) {
	vm.PC++
	rawMode := isa.AddressingMode(vm.Mem[vm.PC])
	if rawMode == isa.RegB {
		return vm.B, nil
	}
	if rawMode == isa.RegA {
		return vm.A, nil
	}

	mode, short := stripShort(rawMode)
	vm.PC++
	data := vm.fetchWord()

	switch mode {
	case isa.Absolute:
		return vm.loadDataFromMemory(wrapAddress(uint32(data)), short), nil
	case isa.XIndex:
		return vm.loadDataFromMemory(wrapAddress(uint32(data)+uint32(vm.X)), short), nil
	case isa.YIndex:
		return vm.loadDataFromMemory(wrapAddress(uint32(data)+uint32(vm.Y)), short), nil
	case isa.Immediate:
		return data, nil
	case isa.Indirect:
		return vm.loadDataFromMemory(vm.loadWord(data), short), nil
	case isa.IndirectIndexedX:
		pointer := vm.loadWord(data)
		return vm.loadDataFromMemory(wrapAddress(uint32(pointer)+uint32(vm.X)), short), nil
	case isa.IndirectIndexedY:
		pointer := vm.loadWord(data)
		return vm.loadDataFromMemory(wrapAddress(uint32(pointer)+uint32(vm.Y)), short), nil
	case isa.IndexedIndirectX:
		pointer := vm.loadWord(wrapAddress(uint32(data) + uint32(vm.X)))
		return vm.loadDataFromMemory(pointer, short), nil
	case isa.IndexedIndirectY:
		pointer := vm.loadWord(wrapAddress(uint32(data) + uint32(vm.Y)))
		return vm.loadDataFromMemory(pointer, short), nil
	default:
		return 0, vm.fault("VMError", "unsupported load addressing mode %v", mode)
	}
}

// storeOperand implements SINVM::execute_store: register-A addressing
// and immediate addressing are rejected (spec.md §4.2); register-B
// addressing stores directly into B rather than through memory. PC
// bookkeeping mirrors loadOperand.
func (vm *VM) storeOperand(value uint16) error {
	vm.PC++
	rawMode := isa.AddressingMode(vm.Mem[vm.PC])
	if rawMode == isa.RegA {
		return vm.fault("VMError", "register-A addressing is invalid for a store instruction")
	}
	if rawMode == isa.RegB {
		vm.B = value
		return nil
	}

	mode, short := stripShort(rawMode)
	vm.PC++
	data := vm.fetchWord()

	switch mode {
	case isa.Absolute:
		return vm.storeDataInMemory(wrapAddress(uint32(data)), value, short)
	case isa.XIndex:
		return vm.storeDataInMemory(wrapAddress(uint32(data)+uint32(vm.X)), value, short)
	case isa.YIndex:
		return vm.storeDataInMemory(wrapAddress(uint32(data)+uint32(vm.Y)), value, short)
	case isa.Indirect:
		return vm.storeDataInMemory(vm.loadWord(data), value, short)
	case isa.IndirectIndexedX:
		pointer := vm.loadWord(data)
		return vm.storeDataInMemory(wrapAddress(uint32(pointer)+uint32(vm.X)), value, short)
	case isa.IndirectIndexedY:
		pointer := vm.loadWord(data)
		return vm.storeDataInMemory(wrapAddress(uint32(pointer)+uint32(vm.Y)), value, short)
	case isa.IndexedIndirectX:
		pointer := vm.loadWord(wrapAddress(uint32(data) + uint32(vm.X)))
		return vm.storeDataInMemory(pointer, value, short)
	case isa.IndexedIndirectY:
		pointer := vm.loadWord(wrapAddress(uint32(data) + uint32(vm.Y)))
		return vm.storeDataInMemory(pointer, value, short)
	case isa.Immediate:
		return vm.fault("VMError", "immediate addressing is invalid for a store instruction")
	default:
		return vm.fault("VMError", "unsupported store addressing mode %v", mode)
	}
}
