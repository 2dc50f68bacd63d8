package vm

import "sinc/internal/isa"

// wrapAddress folds an out-of-range address back into [0, memory_size),
// per spec.md §4.5 ("out-of-range effective addresses wrap modulo
// memory_size"), matching SINVM::execute_load's repeated subtraction
// with a single modulo.
func wrapAddress(addr uint32) uint16 {
	return uint16(addr % isa.MemorySize)
}

func (vm *VM) loadByte(addr uint16) byte {
	return vm.Mem[addr]
}

func (vm *VM) storeByte(addr uint16, v byte) {
	vm.Mem[addr] = v
}

// loadWord reads a big-endian 16-bit word.
func (vm *VM) loadWord(addr uint16) uint16 {
	hi := uint16(vm.Mem[addr])
	lo := uint16(vm.Mem[wrapAddress(uint32(addr)+1)])
	return hi<<8 | lo
}

// storeWord writes a big-endian 16-bit word. Addresses 0x00 and 0x01
// are the null-pointer guard: any write there is fatal.
func (vm *VM) storeWord(addr uint16, v uint16) error {
	if addr == 0x00 || addr == 0x01 {
		return vm.fault("VMError", "write access violation: cannot write to $%04X", addr)
	}
	vm.Mem[addr] = byte(v >> 8)
	vm.Mem[wrapAddress(uint32(addr)+1)] = byte(v)
	return nil
}

func (vm *VM) storeShort(addr uint16, v uint16) error {
	if addr == 0x00 || addr == 0x01 {
		return vm.fault("VMError", "write access violation: cannot write to $%04X", addr)
	}
	vm.Mem[addr] = byte(v)
	return nil
}

func (vm *VM) loadDataFromMemory(addr uint16, short bool) uint16 {
	if short {
		return uint16(vm.loadByte(addr))
	}
	return vm.loadWord(addr)
}

func (vm *VM) storeDataInMemory(addr uint16, v uint16, short bool) error {
	if short {
		return vm.storeShort(addr, v)
	}
	return vm.storeWord(addr, v)
}
