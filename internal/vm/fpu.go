package vm

import (
	"math"

	"sinc/internal/isa"
)

// combineAB packs A (high 16 bits) and B (low 16 bits) into a 32-bit
// word, per FPU::combine_registers.
func (vm *VM) combineAB() uint32 {
	return uint32(vm.A)<<16 | uint32(vm.B)
}

func (vm *VM) splitToAB(v uint32) {
	vm.A = uint16(v >> 16)
	vm.B = uint16(v)
}

// decodeFloatOperand32 fetches the FPU right operand: either a 32-bit
// immediate (two consecutive words following the opcode) or two words
// popped off the data stack (low word popped first), per spec.md
// §4.5's "read as 32 bits from two consecutive stack pops or from a
// following literal".
func (vm *VM) decodeFloatOperand32() (uint32, error) {
	vm.PC++
	mode := isa.AddressingMode(vm.Mem[vm.PC])
	if mode == isa.Immediate {
		vm.PC++
		hi := vm.fetchWord()
		vm.PC++
		lo := vm.fetchWord()
		return uint32(hi)<<16 | uint32(lo), nil
	}
	lo, err := vm.popStack()
	if err != nil {
		return 0, err
	}
	hi, err := vm.popStack()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (vm *VM) singleFloatOp(op isa.Opcode) error {
	right, err := vm.decodeFloatOperand32()
	if err != nil {
		return err
	}
	left := vm.combineAB()
	leftF := math.Float32frombits(left)
	rightF := math.Float32frombits(right)

	switch op {
	case isa.FADDA:
		leftF += rightF
	case isa.FSUBA:
		leftF -= rightF
	case isa.FMULTA:
		leftF *= rightF
	case isa.FDIVA:
		if rightF == 0 {
			vm.setFlag(isa.FlagUndefined)
			return nil
		}
		leftF /= rightF
	}

	vm.setFlagIf(isa.FlagZero, leftF == 0)
	vm.setFlag(isa.FlagFloat)
	vm.splitToAB(math.Float32bits(leftF))
	return nil
}

// pack16 / unpack16 convert between a packed IEEE-754-binary16 half
// float and a float32, the Go analogue of the original's ad hoc
// half-precision unpack/repack helpers.
func unpack16(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h) & 0x3FF

	var bits uint32
	switch {
	case exp == 0:
		if frac == 0 {
			bits = sign << 31
		} else {
			// Subnormal half: normalize into a single-precision float.
			for frac&0x400 == 0 {
				frac <<= 1
				exp--
			}
			exp++
			frac &= 0x3FF
			bits = sign<<31 | (exp+112)<<23 | frac<<13
		}
	case exp == 0x1F:
		bits = sign<<31 | 0xFF<<23 | frac<<13
	default:
		bits = sign<<31 | (exp+112)<<23 | frac<<13
	}
	return math.Float32frombits(bits)
}

func pack16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23)&0xFF - 127 + 15
	frac := bits & 0x7FFFFF

	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1F:
		return sign | 0x7C00
	default:
		return sign | uint16(exp)<<10 | uint16(frac>>13)
	}
}

func (vm *VM) halfFloatOp(op isa.Opcode) error {
	rightRaw, err := vm.loadOperand()
	if err != nil {
		return err
	}
	leftF := unpack16(vm.A)
	rightF := unpack16(rightRaw)

	var single isa.Opcode
	switch op {
	case isa.HADDA:
		single = isa.FADDA
	case isa.HSUBA:
		single = isa.FSUBA
	case isa.HMULTA:
		single = isa.FMULTA
	case isa.HDIVA:
		single = isa.FDIVA
	}

	switch single {
	case isa.FADDA:
		leftF += rightF
	case isa.FSUBA:
		leftF -= rightF
	case isa.FMULTA:
		leftF *= rightF
	case isa.FDIVA:
		if rightF == 0 {
			vm.setFlag(isa.FlagUndefined)
			return nil
		}
		leftF /= rightF
	}

	vm.setFlagIf(isa.FlagZero, leftF == 0)
	vm.setFlag(isa.FlagFloat)
	vm.A = pack16(leftF)
	return nil
}
