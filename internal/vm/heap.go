package vm

import (
	"sort"

	"sinc/internal/isa"
)

// dynamicObject mirrors original_source/vm/DynamicObject.h.
type dynamicObject struct {
	start uint16
	size  uint16
}

// allocateHeapMemory implements spec.md §4.5's allocate algorithm: scan
// the object list in address order, maintaining a synthetic "previous"
// object seeded at (_HEAP_START, 0); place the new object in the first
// gap large enough, else after the last object if there's room before
// _HEAP_MAX. _HEAP_START itself isn't defined in the retrieved
// original_source/VMMemoryMap.h, but its doc comment says dynamic
// allocations start at 0x0400, so it's taken as an alias of
// _DYNAMIC_START (isa.DynamicStart) rather than the global-data
// section's own start (isa.HeapStart, 0x0000) — RS-declared globals
// and the zero page live below 0x0400 and are never heap-managed.
// Grounded on SINVM::allocate_heap_memory, corrected to use the actual
// gap size (`obj.start - (prev.start+prev.size)`) uniformly instead of
// the original's off-by-one gap check on the final segment. The
// original reads the size straight out of REG_A, but SYSCALL is a
// bare, operand-less opcode whose only argument register is A (see
// syscall.go), so A can't simultaneously hold the dispatch id and an
// operation's own argument; size is read from B instead, the one
// convention internal/codegen's compileFreeMemory actually confirms.
func (vm *VM) allocateHeapMemory() {
	size := vm.B
	prev := dynamicObject{start: isa.DynamicStart, size: 0}
	insertAt := len(vm.objects)
	placed := uint16(0)
	found := false

	for i, obj := range vm.objects {
		gap := obj.start - (prev.start + prev.size)
		if size <= gap {
			placed = prev.start + prev.size
			insertAt = i
			found = true
			break
		}
		prev = obj
	}

	if !found {
		gap := uint16(isa.BufferStart) - (prev.start + prev.size)
		if size <= gap {
			placed = prev.start + prev.size
			found = true
		}
	}

	if !found {
		vm.A = 0
		vm.B = 0
		return
	}

	vm.B = placed
	vm.objects = append(vm.objects, dynamicObject{})
	copy(vm.objects[insertAt+1:], vm.objects[insertAt:])
	vm.objects[insertAt] = dynamicObject{start: placed, size: size}
}

// freeHeapMemory implements SINVM::free_heap_memory: remove the object
// whose start equals B, or fault if there is none.
func (vm *VM) freeHeapMemory() error {
	for i, obj := range vm.objects {
		if obj.start == vm.B {
			vm.objects = append(vm.objects[:i], vm.objects[i+1:]...)
			return nil
		}
	}
	return vm.fault("VMError", "no heap object at $%04X to free", vm.B)
}

// reallocateHeapMemory implements SINVM::reallocate_heap_memory: B
// names the object being resized, X carries the requested new size (A
// is unavailable for the same reason it's unavailable to
// allocateHeapMemory — see its doc comment). Grow in place when the
// following object (or heap end) leaves enough slack, otherwise
// allocate fresh and copy. When no object starts at B,
// errorIfNotFound selects between the original's two behaviors: zero
// both registers, or fall through to a fresh allocation.
func (vm *VM) reallocateHeapMemory(errorIfNotFound bool) {
	start, newSize := vm.B, vm.X
	index := -1
	for i, obj := range vm.objects {
		if obj.start == start {
			index = i
			break
		}
	}

	if index < 0 {
		if errorIfNotFound {
			vm.A = 0
			vm.B = 0
			return
		}
		vm.B = newSize
		vm.allocateHeapMemory()
		return
	}

	target := vm.objects[index]

	var limit uint16
	if index+1 < len(vm.objects) {
		limit = vm.objects[index+1].start
	} else {
		limit = isa.BufferStart
	}

	if target.start+newSize <= limit {
		vm.objects[index].size = newSize
		vm.B = target.start
		return
	}

	oldStart, oldSize := target.start, target.size
	vm.objects = append(vm.objects[:index], vm.objects[index+1:]...)
	vm.B = newSize
	vm.allocateHeapMemory()
	if vm.B == 0 {
		return
	}
	copyLen := oldSize
	if newSize < copyLen {
		copyLen = newSize
	}
	for i := uint16(0); i < copyLen; i++ {
		vm.Mem[vm.B+i] = vm.Mem[oldStart+i]
	}
}

// sortedObjects returns the heap object list in address order, useful
// for tests that assert heap invariants (spec.md §8 property 5).
func (vm *VM) sortedObjects() []dynamicObject {
	out := append([]dynamicObject(nil), vm.objects...)
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}
