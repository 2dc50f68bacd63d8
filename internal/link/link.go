// Package link implements the linker described in spec.md §4.4: it
// consumes object files produced by internal/assemble and produces a
// single flat program image ready for internal/vm, resolving external
// references and offsetting relocatable addresses to their final
// placement, grounded on original_source/util/SinObjectFile.cpp's
// loader/linker pass.
package link

import (
	"fmt"

	"sinc/internal/isa"
	"sinc/internal/objfile"
)

// Error reports a fatal link failure.
type Error struct {
	Category string // "empty", "unresolved", "duplicate", "overflow"
	Symbol   string
	Msg      string
}

func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("linker: %s: %s (%s)", e.Category, e.Msg, e.Symbol)
	}
	return fmt.Sprintf("linker: %s: %s", e.Category, e.Msg)
}

// Result is the linker's output: a flat byte image ready to load into
// VM memory starting at Base, plus the resolved entry address.
type Result struct {
	Base  uint16
	Image []byte
	Entry uint16
}

// resolved records where a defined symbol ultimately landed in the
// merged image, in absolute address space.
type resolved struct {
	address uint16
	class   objfile.SymbolClass
}

// Link merges files in the given order into one image, placing the
// first file's start at base (normally isa.PrgBottom) and appending
// each subsequent file's .text immediately after the previous one's,
// per spec.md §4.4 steps 1-3, then patches every relocation in step 4.
func Link(files []objfile.File, base uint16) (Result, error) {
	if len(files) == 0 {
		return Result{}, &Error{Category: "empty", Msg: "no object files supplied"}
	}

	symtab := map[string]resolved{}

	// fileTextOffset[i] is where file i's .text begins in the merged
	// image, relative to base.
	fileTextOffset := make([]uint32, len(files))
	var image []byte

	for i, f := range files {
		fileTextOffset[i] = uint32(len(image))
		image = append(image, f.Text...)
	}

	// Step 1: offset D-class symbol values by their file's placement
	// address; detect duplicate D-class names across the whole link.
	for i, f := range files {
		for _, sym := range f.Symbols {
			if sym.Class != objfile.ClassDefined {
				continue
			}
			addr := base + uint16(fileTextOffset[i]) + sym.Value
			if prior, exists := symtab[sym.Name]; exists && prior.class == objfile.ClassDefined {
				return Result{}, &Error{Category: "duplicate", Symbol: sym.Name, Msg: "defined in more than one object file"}
			}
			symtab[sym.Name] = resolved{address: addr, class: objfile.ClassDefined}
		}
	}

	// Step 3: merge .data after all .text, offsetting C symbols by
	// their entry's position within the merged data section.
	for _, f := range files {
		for _, entry := range f.Data {
			startOfEntry := len(image)
			image = append(image, entry.Bytes...)
			entryAddr := base + uint16(startOfEntry)
			if _, exists := symtab[entry.Name]; !exists {
				symtab[entry.Name] = resolved{address: entryAddr, class: objfile.ClassConstant}
			}
		}
		for _, sym := range f.Symbols {
			if sym.Class != objfile.ClassConstant {
				continue
			}
			if _, exists := symtab[sym.Name]; !exists {
				// A @macro constant carries its literal value directly,
				// not an image address; record it verbatim so patched
				// operands still see the right number.
				symtab[sym.Name] = resolved{address: sym.Value, class: objfile.ClassConstant}
			}
		}
	}

	// Step 4: patch every relocation entry by looking up the resolved
	// symbol across all inputs.
	for i, f := range files {
		for _, rel := range f.Relocations {
			r, ok := symtab[rel.Name]
			if !ok {
				return Result{}, &Error{Category: "unresolved", Symbol: rel.Name, Msg: "referenced but never defined"}
			}
			patchAddr := fileTextOffset[i] + uint32(rel.Address)
			if int(patchAddr)+1 >= len(image) {
				return Result{}, &Error{Category: "overflow", Symbol: rel.Name, Msg: "relocation target outside merged image"}
			}
			image[patchAddr] = byte(r.address >> 8)
			image[patchAddr+1] = byte(r.address)
		}
	}

	if int(base)+len(image) > isa.PrgTop {
		return Result{}, &Error{Category: "overflow", Msg: fmt.Sprintf("linked image of %d bytes exceeds program region", len(image))}
	}

	entry, ok := symtab["main"]
	if !ok {
		entry = resolved{address: base}
	}

	return Result{Base: base, Image: image, Entry: entry.address}, nil
}
