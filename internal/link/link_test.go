package link

import (
	"testing"

	"sinc/internal/isa"
	"sinc/internal/objfile"
)

func TestLinkSingleFilePatchesLocalRelocation(t *testing.T) {
	// jmp done; noop; done: halt
	// bytes: [JMP, mode, 0x00,0x00, NOOP, HALT]
	text := []byte{byte(mustLookup(t, "JMP")), byte(isa.Absolute), 0, 0, byte(mustLookup(t, "NOOP")), byte(mustLookup(t, "HALT"))}
	f := objfile.File{
		WordSize: 16,
		Symbols: []objfile.Symbol{
			{Name: "start", Value: 0, Width: 16, Class: objfile.ClassDefined},
			{Name: "done", Value: 5, Width: 16, Class: objfile.ClassDefined},
		},
		Relocations: []objfile.Relocation{{Address: 2, Name: "done"}},
		Text:        text,
	}

	result, err := Link([]objfile.File{f}, isa.PrgBottom)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	want := uint16(isa.PrgBottom + 5)
	got := uint16(result.Image[2])<<8 | uint16(result.Image[3])
	if got != want {
		t.Fatalf("expected patched address %#x, got %#x", want, got)
	}
}

func TestLinkUnresolvedExternalFails(t *testing.T) {
	f := objfile.File{
		Symbols:     []objfile.Symbol{{Name: "helper", Class: objfile.ClassUndefined}},
		Relocations: []objfile.Relocation{{Address: 0, Name: "helper"}},
		Text:        []byte{0, 0, 0, 0},
	}
	if _, err := Link([]objfile.File{f}, isa.PrgBottom); err == nil {
		t.Fatalf("expected unresolved-symbol error")
	}
}

func TestLinkDuplicateDefinedSymbolFails(t *testing.T) {
	a := objfile.File{
		Symbols: []objfile.Symbol{{Name: "main", Value: 0, Class: objfile.ClassDefined}},
		Text:    []byte{0},
	}
	b := objfile.File{
		Symbols: []objfile.Symbol{{Name: "main", Value: 0, Class: objfile.ClassDefined}},
		Text:    []byte{0},
	}
	if _, err := Link([]objfile.File{a, b}, isa.PrgBottom); err == nil {
		t.Fatalf("expected duplicate-symbol error")
	}
}

func TestLinkResolvesReferenceAcrossFiles(t *testing.T) {
	callee := objfile.File{
		Symbols: []objfile.Symbol{{Name: "helper", Value: 0, Class: objfile.ClassDefined}},
		Text:    []byte{byte(mustLookup(t, "RTS"))},
	}
	caller := objfile.File{
		Symbols:     []objfile.Symbol{{Name: "helper", Class: objfile.ClassUndefined}},
		Relocations: []objfile.Relocation{{Address: 2, Name: "helper"}},
		Text:        []byte{byte(mustLookup(t, "JSR")), byte(isa.Absolute), 0, 0},
	}

	result, err := Link([]objfile.File{caller, callee}, isa.PrgBottom)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	wantAddr := isa.PrgBottom + uint16(len(caller.Text))
	got := uint16(result.Image[2])<<8 | uint16(result.Image[3])
	if got != wantAddr {
		t.Fatalf("expected helper resolved to %#x, got %#x", wantAddr, got)
	}
}

func TestLinkImageTooLargeFails(t *testing.T) {
	big := make([]byte, int(isa.PrgTop)+1)
	f := objfile.File{Text: big}
	if _, err := Link([]objfile.File{f}, isa.PrgBottom); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func mustLookup(t *testing.T, mnemonic string) isa.Opcode {
	t.Helper()
	op, ok := isa.Lookup(mnemonic)
	if !ok {
		t.Fatalf("unknown mnemonic %q", mnemonic)
	}
	return op
}
