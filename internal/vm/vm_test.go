package vm

import (
	"bytes"
	"testing"

	"sinc/internal/isa"
)

// word appends a big-endian word to a byte program under construction,
// the same encoding internal/assemble's Pass 2 emits.
func word(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func newTestVM(image []byte) *VM {
	base := uint16(isa.PrgBottom)
	m := New(image, base, base)
	m.Stdout = &bytes.Buffer{}
	return m
}

// TestRunLoadImmediateHalts covers spec.md §8 scenario 1's shape: a
// LOADA immediate followed by HALT, checking that Step's trailing PC++
// lands cleanly on the next instruction and then past the end of the
// program once HALT sets the flag.
func TestRunLoadImmediateHalts(t *testing.T) {
	base := uint16(isa.PrgBottom)
	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(8)...)
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.A != 8 {
		t.Fatalf("A = %d, want 8", m.A)
	}
	wantPC := base + uint16(len(image))
	if m.PC != wantPC {
		t.Fatalf("PC = $%04X, want $%04X", m.PC, wantPC)
	}
}

// TestAddImmediateComputesSum exercises scenario 1's arithmetic: a
// value loaded into A, then added to with an immediate operand.
func TestAddImmediateComputesSum(t *testing.T) {
	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(5)...)
	image = append(image, byte(isa.ADDCA), byte(isa.Immediate))
	image = append(image, word(3)...)
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.A != 8 {
		t.Fatalf("A = %d, want 8", m.A)
	}
}

// TestSubcaOperandOrder locks in the documented ALU operand-order
// deviation: SUBCA computes operand-A (the decoded operand holds the
// source-level left value, A holds the right value).
func TestSubcaOperandOrder(t *testing.T) {
	image := []byte{}
	image = append(image, byte(isa.LOADB), byte(isa.Immediate))
	image = append(image, word(10)...)
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(4)...)
	image = append(image, byte(isa.SUBCA), byte(isa.RegB))
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.A != 6 {
		t.Fatalf("A = %d, want 6 (10-4)", m.A)
	}
}

// TestUnaryNegationSequence locks in the fixed lowering for unary
// negation from internal/codegen's evalUnary: loadb #0; subca b, which
// depends on the same operand-order convention as TestSubcaOperandOrder.
func TestUnaryNegationSequence(t *testing.T) {
	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(7)...)
	image = append(image, byte(isa.LOADB), byte(isa.Immediate))
	image = append(image, word(0)...)
	image = append(image, byte(isa.SUBCA), byte(isa.RegB))
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if int16(m.A) != -7 {
		t.Fatalf("A = %d, want -7", int16(m.A))
	}
}

// TestJsrRtsRoundTrip covers spec.md §8 property 6: after JSR L; ...;
// RTS, PC equals the address immediately following JSR's operand
// bytes, and CALL_SP returns to its pre-call value.
func TestJsrRtsRoundTrip(t *testing.T) {
	base := uint16(isa.PrgBottom)

	// base+0: JSR sub   (4 bytes: opcode, mode, word address)
	// base+4: HALT      (1 byte)
	// base+5: sub: RTS  (1 byte)
	sub := base + 5
	image := []byte{}
	image = append(image, byte(isa.JSR), byte(isa.Absolute))
	image = append(image, word(sub)...)
	image = append(image, byte(isa.HALT))
	image = append(image, byte(isa.RTS))

	m := newTestVM(image)
	wantCallSP := m.CallSP

	if err := m.Step(); err != nil { // JSR
		t.Fatalf("Step (JSR): %v", err)
	}
	if m.PC != sub {
		t.Fatalf("PC after JSR = $%04X, want $%04X (sub)", m.PC, sub)
	}
	if err := m.Step(); err != nil { // RTS
		t.Fatalf("Step (RTS): %v", err)
	}
	wantReturn := base + 4
	if m.PC != wantReturn {
		t.Fatalf("PC after RTS = $%04X, want $%04X (instruction after JSR)", m.PC, wantReturn)
	}
	if m.CallSP != wantCallSP {
		t.Fatalf("CallSP = $%04X, want $%04X (pre-call value)", m.CallSP, wantCallSP)
	}

	if err := m.Step(); err != nil { // HALT
		t.Fatalf("Step (HALT): %v", err)
	}
	if !m.halted() {
		t.Fatalf("expected halted after HALT")
	}
}

// TestBrneSkipsPayloadWhenNotTaken checks that the not-taken branch skips
// exactly the 3-byte addressing-mode+address payload and lands on the
// following instruction.
func TestBrneSkipsPayloadWhenNotTaken(t *testing.T) {
	base := uint16(isa.PrgBottom)
	target := base + 100 // far enough away that a wrong PC would be obviously wrong

	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(0)...)
	image = append(image, byte(isa.CMPA), byte(isa.Immediate))
	image = append(image, word(0)...)
	image = append(image, byte(isa.BRNE), byte(isa.Absolute)) // not taken: Z is set
	image = append(image, word(target)...)
	image = append(image, byte(isa.HALT)) // this is the instruction right after BRNE's payload

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !m.halted() {
		t.Fatalf("expected halted")
	}
	wantPC := base + uint16(len(image))
	if m.PC != wantPC {
		t.Fatalf("PC = $%04X, want $%04X", m.PC, wantPC)
	}
}

// TestBreqTakesBranch checks the taken-branch path lands exactly on
// the target address's own first instruction.
func TestBreqTakesBranch(t *testing.T) {
	base := uint16(isa.PrgBottom)

	// base+0..3: LOADA #0
	// base+4..7: CMPA #0
	// base+8..11: BREQ target
	// base+12: HALT (should be skipped)
	// target: LOADB #99 ; HALT
	target := base + 13
	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(0)...)
	image = append(image, byte(isa.CMPA), byte(isa.Immediate))
	image = append(image, word(0)...)
	image = append(image, byte(isa.BREQ), byte(isa.Absolute))
	image = append(image, word(target)...)
	image = append(image, byte(isa.HALT))
	image = append(image, byte(isa.LOADB), byte(isa.Immediate))
	image = append(image, word(99)...)
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.B != 99 {
		t.Fatalf("B = %d, want 99 (branch should have been taken)", m.B)
	}
}

// TestLslRegisterAIsByteWise locks in spec.md §8 scenario 5: LSL on
// register-A shifts only the low byte, carrying the vacated high bit
// out into Carry, rather than shifting the full 16-bit register.
func TestLslRegisterAIsByteWise(t *testing.T) {
	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(0x00FF)...)
	image = append(image, byte(isa.LSL), byte(isa.RegA))
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.A != 0x00FE {
		t.Fatalf("A = $%04X, want $00FE", m.A)
	}
	if !m.carrySet() {
		t.Fatalf("expected carry set")
	}
}

// TestStoreAbsoluteThenLoadXIndexed covers spec.md §8 scenario 4:
// storing to an absolute address and reading it back through an
// x-indexed load with X=0.
func TestStoreAbsoluteThenLoadXIndexed(t *testing.T) {
	const target = uint16(0x1000)
	image := []byte{}
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(0xABCD)...)
	image = append(image, byte(isa.STOREA), byte(isa.Absolute))
	image = append(image, word(target)...)
	image = append(image, byte(isa.LOADX), byte(isa.Immediate))
	image = append(image, word(0)...)
	image = append(image, byte(isa.LOADB), byte(isa.XIndex))
	image = append(image, word(target)...)
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.B != 0xABCD {
		t.Fatalf("B = $%04X, want $ABCD", m.B)
	}
}

// TestHeapAllocateFreeReallocate covers spec.md §8 scenario 3, using
// the B/X/Y register convention documented in internal/vm/syscall.go
// (A is reserved for the dispatch id since SYSCALL takes no operand).
func TestHeapAllocateFreeReallocate(t *testing.T) {
	m := newTestVM([]byte{byte(isa.HALT)})

	m.A = uint16(isa.SyscallAllocate)
	m.B = 16
	if err := m.executeSyscall(); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	firstAddr := m.B
	if firstAddr != isa.DynamicStart {
		t.Fatalf("first allocation at $%04X, want $%04X", firstAddr, isa.DynamicStart)
	}

	m.A = uint16(isa.SyscallFree)
	m.B = firstAddr
	if err := m.executeSyscall(); err != nil {
		t.Fatalf("free: %v", err)
	}
	if len(m.objects) != 0 {
		t.Fatalf("expected empty heap after free, got %v", m.objects)
	}

	// The object was just freed; with the error-if-not-found flag clear
	// (Y=0), reallocating its old start address falls through to a
	// fresh allocation, per SINVM::reallocate_heap_memory.
	m.A = uint16(isa.SyscallReallocate)
	m.B = firstAddr
	m.X = 32
	m.Y = 0
	if err := m.executeSyscall(); err != nil {
		t.Fatalf("reallocate: %v", err)
	}
	if m.B != isa.DynamicStart {
		t.Fatalf("reallocation placed at $%04X, want $%04X", m.B, isa.DynamicStart)
	}

	sorted := m.sortedObjects()
	if len(sorted) != 1 || sorted[0].start != isa.DynamicStart || sorted[0].size != 32 {
		t.Fatalf("heap list = %v, want [(%04X,32)]", sorted, isa.DynamicStart)
	}

	// With the flag set, a missing object zeroes both registers instead.
	m.A = uint16(isa.SyscallReallocate)
	m.B = firstAddr + 999
	m.X = 8
	m.Y = 1
	if err := m.executeSyscall(); err != nil {
		t.Fatalf("reallocate (error-if-not-found): %v", err)
	}
	if m.A != 0 || m.B != 0 {
		t.Fatalf("A,B = %d,%d, want 0,0 on error-if-not-found miss", m.A, m.B)
	}
}

// TestDivaOperandOrderAndZeroGuard covers the documented ALU
// operand-order fixup for division and the zero-divisor guard, which
// sets Undefined rather than faulting.
func TestDivaOperandOrderAndZeroGuard(t *testing.T) {
	image := []byte{}
	image = append(image, byte(isa.LOADB), byte(isa.Immediate))
	image = append(image, word(20)...)
	image = append(image, byte(isa.LOADA), byte(isa.Immediate))
	image = append(image, word(3)...)
	image = append(image, byte(isa.DIVA), byte(isa.RegB))
	image = append(image, byte(isa.HALT))

	m := newTestVM(image)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.A != 6 || m.B != 2 {
		t.Fatalf("A,B = %d,%d, want 6,2 (20/3)", m.A, m.B)
	}

	zeroImage := []byte{}
	zeroImage = append(zeroImage, byte(isa.LOADB), byte(isa.Immediate))
	zeroImage = append(zeroImage, word(20)...)
	zeroImage = append(zeroImage, byte(isa.LOADA), byte(isa.Immediate))
	zeroImage = append(zeroImage, word(0)...)
	zeroImage = append(zeroImage, byte(isa.DIVA), byte(isa.RegB))
	zeroImage = append(zeroImage, byte(isa.HALT))

	zm := newTestVM(zeroImage)
	if err := zm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if zm.Status&isa.FlagUndefined == 0 {
		t.Fatalf("expected Undefined flag set on division by zero")
	}
}
