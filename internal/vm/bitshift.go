package vm

import "sinc/internal/isa"

// executeBitshift implements LSR/LSL/ROR/ROL, fixing the carry bugs
// SPEC_FULL.md's Open Questions record for SINVM::execute_bitshift.
// Here every addressing branch shares one path, operates on the full
// 16-bit effective address, ROL/ROR shift in the carry held before the
// instruction, and the bit shifted out always populates carry.
//
// Only absolute, x/y-indexed, indirect-indexed, and register-A
// addressing are valid for a bitshift, per spec.md §4.2.
func (vm *VM) executeBitshift(op isa.Opcode) error {
	vm.PC++
	rawMode := isa.AddressingMode(vm.Mem[vm.PC])
	if rawMode == isa.RegA {
		// Register-A bitshifts operate byte-wise on A's low byte (bit 7
		// is always the boundary bit), leaving the high byte untouched.
		low, carryOut := shiftByteOnce(op, byte(vm.A), vm.carrySet())
		vm.A = vm.A&0xFF00 | uint16(low)
		vm.setFlagIf(isa.FlagCarry, carryOut)
		vm.setFlagIf(isa.FlagZero, low == 0)
		vm.setFlagIf(isa.FlagNegative, low&0x80 != 0)
		return nil
	}

	mode, short := stripShort(rawMode)
	vm.PC++
	data := vm.fetchWord()

	var addr uint16
	switch mode {
	case isa.Absolute:
		addr = wrapAddress(uint32(data))
	case isa.XIndex:
		addr = wrapAddress(uint32(data) + uint32(vm.X))
	case isa.YIndex:
		addr = wrapAddress(uint32(data) + uint32(vm.Y))
	case isa.IndirectIndexedX:
		pointer := vm.loadWord(data)
		addr = wrapAddress(uint32(pointer) + uint32(vm.X))
	case isa.IndirectIndexedY:
		pointer := vm.loadWord(data)
		addr = wrapAddress(uint32(pointer) + uint32(vm.Y))
	default:
		return vm.fault("VMError", "unsupported bitshift addressing mode %v", mode)
	}

	if short {
		low, carryOut := shiftByteOnce(op, byte(vm.loadDataFromMemory(addr, true)), vm.carrySet())
		vm.setFlagIf(isa.FlagCarry, carryOut)
		vm.setFlagIf(isa.FlagZero, low == 0)
		vm.setFlagIf(isa.FlagNegative, low&0x80 != 0)
		return vm.storeDataInMemory(addr, uint16(low), true)
	}
	value := vm.loadDataFromMemory(addr, false)
	result, carryOut := shiftOnce(op, value, vm.carrySet())
	vm.applyShiftFlags(result, carryOut)
	return vm.storeDataInMemory(addr, result, false)
}

func shiftByteOnce(op isa.Opcode, value byte, carryIn bool) (result byte, carryOut bool) {
	switch op {
	case isa.LSR:
		return value >> 1, value&1 != 0
	case isa.LSL:
		return value << 1, value&0x80 != 0
	case isa.ROR:
		result = value >> 1
		if carryIn {
			result |= 0x80
		}
		return result, value&1 != 0
	case isa.ROL:
		result = value << 1
		if carryIn {
			result |= 1
		}
		return result, value&0x80 != 0
	default:
		return value, false
	}
}

func shiftOnce(op isa.Opcode, value uint16, carryIn bool) (result uint16, carryOut bool) {
	switch op {
	case isa.LSR:
		return value >> 1, value&1 != 0
	case isa.LSL:
		return value << 1, value&0x8000 != 0
	case isa.ROR:
		result = value >> 1
		if carryIn {
			result |= 0x8000
		}
		return result, value&1 != 0
	case isa.ROL:
		result = value << 1
		if carryIn {
			result |= 1
		}
		return result, value&0x8000 != 0
	default:
		return value, false
	}
}

func (vm *VM) applyShiftFlags(result uint16, carryOut bool) {
	vm.setFlagIf(isa.FlagCarry, carryOut)
	vm.setFlagIf(isa.FlagZero, result == 0)
	vm.setFlagIf(isa.FlagNegative, result&0x8000 != 0)
}
