// Package examples holds hand-written sinasm programs matching the
// literal end-to-end scenarios spec.md §8 names (1, 2, 4, 5, and
// universal invariant 6), and drives them through assemble, link, and
// vm the way `sinc build` would rather than through hand-built
// objfile.File or byte-slice fixtures the way the individual package
// test suites do. There is no parser in scope (spec.md §1), so these
// are text fixtures rather than parsed source.
package examples

// SumThenReturn implements scenario 1: `alloc int x: 5; x = x + 3;
// return x;` compiled and run halts with A = 8. This is a hand-reduced
// equivalent (loada, addca, halt), not codegen's output, which keeps x
// on the data stack; it is written directly here since no parser exists
// to produce it from source text.
const SumThenReturn = `
main:
	loada #5
	addca #3
	halt
`

// StoreAbsoluteLoadIndexed implements scenario 4: storing $ABCD at
// $1000 in absolute mode, then reading it back through an x-indexed
// load with X=0, landing in A.
const StoreAbsoluteLoadIndexed = `
main:
	loada #$ABCD
	storea $1000
	loadx #0
	loada $1000,x
	halt
`

// ShiftLeftSetsCarry implements scenario 5: LOADA #$FF; LSL A halts
// with A = $FE and the carry flag set.
const ShiftLeftSetsCarry = `
main:
	loada #$FF
	lsl a
	halt
`

// RecursiveFactorial implements scenario 2: a recursive factorial of 5
// halts with A = 120, CALL_SP = $25FF (its pre-call value, per
// isa.CallStack). n is carried across each recursive JSR on the data
// stack (pha/pla), never the call stack, so the JSR/RTS pairing alone
// governs CALL_SP; n-1 is computed with deca rather than subca to stay
// clear of subca's borrow-in operand-order convention, which the
// recursive step has no need for.
const RecursiveFactorial = `
main:
	loada #5
	jsr factorial
	halt
factorial:
	cmpa #1
	brgt recurse
	loada #1
	rts
recurse:
	pha
	deca
	jsr factorial
	tab
	pla
	multa b
	rts
`

// CallReturnRoundTrip implements the call/return invariant (universal
// invariant 6, not one of the six numbered literal scenarios): after JSR ... RTS, PC lands immediately after the call's
// operand bytes and CALL_SP returns to its pre-call value.
const CallReturnRoundTrip = `
main:
	jsr helper
	halt
helper:
	rts
`
