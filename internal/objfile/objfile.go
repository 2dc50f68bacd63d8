// Package objfile encodes and decodes the "sinC" binary object-file
// format: the header, symbol table, relocation table, .text bytes, and
// data-entry table the assembler produces and the linker consumes.
// Field order and widths are ported exactly from
// original_source/util/SinObjectFile.cpp; on-disk integers are written
// with a fixed big-endian byte order chosen for the format itself
// (independent of the target VM's own endianness, which is recorded in
// the header per spec.md §4.3).
package objfile

// SymbolClass is the on-disk tag for an AssemblerSymbol's role.
type SymbolClass uint8

const (
	ClassUndefined  SymbolClass = 1 // U
	ClassDefined    SymbolClass = 2 // D
	ClassConstant   SymbolClass = 3 // C
	ClassRelocatable SymbolClass = 4 // R
	ClassMacro      SymbolClass = 5 // M
)

func (c SymbolClass) String() string {
	switch c {
	case ClassUndefined:
		return "U"
	case ClassDefined:
		return "D"
	case ClassConstant:
		return "C"
	case ClassRelocatable:
		return "R"
	case ClassMacro:
		return "M"
	default:
		return "?"
	}
}

// Symbol is one entry of the object file's symbol table.
type Symbol struct {
	Name  string
	Value uint16
	Width uint8
	Class SymbolClass
}

// Relocation records that the word at Address within .text is a
// reference to Name and must be patched once Name's final address is
// known.
type Relocation struct {
	Address uint16
	Name    string
}

// DataEntry is one named blob appended to .text as the object's .data
// section (constants introduced by @db).
type DataEntry struct {
	Name  string
	Bytes []byte
}

// Endianness distinguishes byte order tags carried in the header. Both
// tags are metadata: the codec writes and reads the file's multi-byte
// integer fields big-endian and its string-length prefixes
// little-endian whatever FileEndian says; VMEndian describes the target
// the .text bytes were assembled for.
type Endianness uint8

const (
	LittleEndian Endianness = 1
	BigEndian    Endianness = 2
)

const (
	Magic          = "sinC"
	SupportedVersion = 2
	TargetVMVersion  = 1
)

// File is the fully decoded contents of a .sinc object file.
type File struct {
	WordSize    uint8
	VMEndian    Endianness
	FileEndian  Endianness
	Version     uint8
	VMVersion   uint8
	EntryPoint  uint16

	Symbols     []Symbol
	Relocations []Relocation
	Text        []byte
	Data        []DataEntry
}
