// Package types describes the value types of the source language: a
// primary tag, an optional subtype (for pointers and arrays), an array
// length, and a set of symbol qualities.
package types

// Primary is the primary type tag.
type Primary uint8

const (
	None Primary = iota
	Int
	Float
	Bool
	String
	Ptr
	Void
	Array
	Struct
)

func (p Primary) String() string {
	switch p {
	case None:
		return "none"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Ptr:
		return "ptr"
	case Void:
		return "void"
	case Array:
		return "array"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// Quality is a symbol quality; a Type carries a set of these.
type Quality uint8

const (
	QualConst Quality = 1 << iota
	QualDynamic
	QualStatic
	QualSigned
	QualUnsigned
	QualLong
	QualShort
)

// Qualities is a bitset of Quality values.
type Qualities uint8

func (q Qualities) Has(quality Quality) bool { return q&Qualities(quality) != 0 }

func (q Qualities) With(quality Quality) Qualities { return q | Qualities(quality) }

// Type is a full type descriptor: a primary tag, an optional subtype
// (meaningful for Ptr and Array), an array length (meaningful for
// Array), a struct name (meaningful for Struct), and a set of qualities.
type Type struct {
	Primary     Primary
	Subtype     Primary
	ArrayLength int
	StructName  string
	Qualities   Qualities
}

// Word-size accounting: every primitive scalar (Int, Float, Bool, String,
// Ptr) occupies one 16-bit word on the data stack. Strings carry their
// address in one word (the length travels in register B, not the stack —
// spec.md §4.1's calling convention). Arrays occupy ElementCount*ElemSize
// words; structs are not laid out by this repository (see DESIGN.md).

// ElementSize returns the stack-word size of one element of the type,
// treating the type as if it were an array element (used for Array sizing).
func (t Type) ElementSize() int {
	if t.Subtype == String || t.Subtype == Ptr {
		return 2
	}
	return 1
}

// StackWords returns how many 16-bit words a value of this type occupies
// on the data stack.
func (t Type) StackWords() int {
	switch t.Primary {
	case Array:
		return t.ArrayLength * t.ElementSize()
	case Void, None:
		return 0
	default:
		return 1
	}
}

// Compatible implements spec.md §3's compatibility rule: two descriptors
// match iff primaries are equal and, for Array/Ptr, subtypes also match.
// CompatibleForWrite additionally rejects assigning a non-Const source into a
// Const destination (write-time only; the initial allocation of a Const
// symbol is not a "write" in this sense and is handled by the caller).
func (t Type) Compatible(other Type) bool {
	if t.Primary != other.Primary {
		return false
	}
	if t.Primary == Array || t.Primary == Ptr {
		return t.Subtype == other.Subtype
	}
	return true
}

// CompatibleForWrite is Compatible plus the Const-destination rule: a
// Const-qualified destination rejects a non-Const source.
func (t Type) CompatibleForWrite(source Type) bool {
	if !t.Compatible(source) {
		return false
	}
	if t.Qualities.Has(QualConst) && !source.Qualities.Has(QualConst) {
		return false
	}
	return true
}

// IsPrimitiveScalar reports whether the type is one that lives entirely
// in a register (Int, Float, Bool, String, Ptr) — the set spec.md's code
// generator and VM calling convention treat uniformly for returns.
func (t Type) IsPrimitiveScalar() bool {
	switch t.Primary {
	case Int, Float, Bool, String, Ptr:
		return true
	default:
		return false
	}
}
