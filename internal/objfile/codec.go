package objfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// codecOrder is the byte order the object file's own multi-byte fields
// are written and read in. This is independent of Endianness (which is
// header metadata describing the target VM/text bytes) — the codec
// itself always uses one fixed order so the header is unambiguous to
// parse before any target-specific interpretation begins.
var codecOrder = binary.BigEndian

// Encode serializes f as a .sinc object file.
func Encode(f File) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(Magic)
	buf.WriteByte(f.WordSize)
	buf.WriteByte(byte(f.VMEndian))
	buf.WriteByte(byte(f.FileEndian))
	buf.WriteByte(f.Version)
	buf.WriteByte(f.VMVersion)
	writeU16(&buf, f.EntryPoint)

	textLen, err := safecast.Conv[uint32](len(f.Text))
	if err != nil {
		return nil, fmt.Errorf("objfile: program too large to encode: %w", err)
	}
	writeU32(&buf, textLen)

	symCount, err := safecast.Conv[uint32](len(f.Symbols))
	if err != nil {
		return nil, fmt.Errorf("objfile: too many symbols to encode: %w", err)
	}
	writeU32(&buf, symCount)
	for _, sym := range f.Symbols {
		writeU16(&buf, sym.Value)
		buf.WriteByte(sym.Width)
		buf.WriteByte(byte(sym.Class))
		if err := writeString(&buf, sym.Name); err != nil {
			return nil, err
		}
	}

	relCount, err := safecast.Conv[uint32](len(f.Relocations))
	if err != nil {
		return nil, fmt.Errorf("objfile: too many relocations to encode: %w", err)
	}
	writeU32(&buf, relCount)
	for _, rel := range f.Relocations {
		writeU16(&buf, rel.Address)
		if err := writeString(&buf, rel.Name); err != nil {
			return nil, err
		}
	}

	buf.Write(f.Text)

	dataCount, err := safecast.Conv[uint32](len(f.Data))
	if err != nil {
		return nil, fmt.Errorf("objfile: too many data entries to encode: %w", err)
	}
	writeU32(&buf, dataCount)
	for _, entry := range f.Data {
		byteLen, err := safecast.Conv[uint16](len(entry.Bytes))
		if err != nil {
			return nil, fmt.Errorf("objfile: data entry %q too large to encode: %w", entry.Name, err)
		}
		writeU16(&buf, byteLen)
		if err := writeString(&buf, entry.Name); err != nil {
			return nil, err
		}
		buf.Write(entry.Bytes)
	}

	return buf.Bytes(), nil
}

// Decode parses a .sinc object file, per spec.md §4.3: invalid magic or
// an unsupported file version is a fatal load error.
func Decode(data []byte) (File, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return File{}, fmt.Errorf("objfile: %w", err)
	}
	if string(magic) != Magic {
		return File{}, fmt.Errorf("objfile: invalid magic number %q", magic)
	}

	var f File
	var err error
	if f.WordSize, err = readU8(r); err != nil {
		return File{}, err
	}
	vmEnd, err := readU8(r)
	if err != nil {
		return File{}, err
	}
	f.VMEndian = Endianness(vmEnd)
	fileEnd, err := readU8(r)
	if err != nil {
		return File{}, err
	}
	f.FileEndian = Endianness(fileEnd)
	if f.Version, err = readU8(r); err != nil {
		return File{}, err
	}
	if f.Version != SupportedVersion {
		return File{}, fmt.Errorf("objfile: unsupported file version %d", f.Version)
	}
	if f.VMVersion, err = readU8(r); err != nil {
		return File{}, err
	}
	if f.EntryPoint, err = readU16(r); err != nil {
		return File{}, err
	}

	textLen, err := readU32(r)
	if err != nil {
		return File{}, err
	}

	symCount, err := readU32(r)
	if err != nil {
		return File{}, err
	}
	f.Symbols = make([]Symbol, 0, symCount)
	for i := uint32(0); i < symCount; i++ {
		value, err := readU16(r)
		if err != nil {
			return File{}, err
		}
		width, err := readU8(r)
		if err != nil {
			return File{}, err
		}
		class, err := readU8(r)
		if err != nil {
			return File{}, err
		}
		if class < 1 || class > 5 {
			return File{}, fmt.Errorf("objfile: bad symbol class %d", class)
		}
		name, err := readString(r)
		if err != nil {
			return File{}, err
		}
		f.Symbols = append(f.Symbols, Symbol{Name: name, Value: value, Width: width, Class: SymbolClass(class)})
	}

	relCount, err := readU32(r)
	if err != nil {
		return File{}, err
	}
	f.Relocations = make([]Relocation, 0, relCount)
	for i := uint32(0); i < relCount; i++ {
		addr, err := readU16(r)
		if err != nil {
			return File{}, err
		}
		name, err := readString(r)
		if err != nil {
			return File{}, err
		}
		f.Relocations = append(f.Relocations, Relocation{Address: addr, Name: name})
	}

	f.Text = make([]byte, textLen)
	if _, err := io.ReadFull(r, f.Text); err != nil {
		return File{}, fmt.Errorf("objfile: reading .text: %w", err)
	}

	dataCount, err := readU32(r)
	if err != nil {
		return File{}, err
	}
	f.Data = make([]DataEntry, 0, dataCount)
	for i := uint32(0); i < dataCount; i++ {
		byteLen, err := readU16(r)
		if err != nil {
			return File{}, err
		}
		name, err := readString(r)
		if err != nil {
			return File{}, err
		}
		entryBytes := make([]byte, byteLen)
		if _, err := io.ReadFull(r, entryBytes); err != nil {
			return File{}, fmt.Errorf("objfile: reading data entry %q: %w", name, err)
		}
		f.Data = append(f.Data, DataEntry{Name: name, Bytes: entryBytes})
	}

	return f, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	codecOrder.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	codecOrder.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

// writeString writes a 16-bit length-prefixed string, per spec.md
// §4.3's "length in a 16-bit little-endian word" contract for names.
// The length prefix itself is written in the fixed little-endian order
// the original BinaryIO helper always used for lengths, independent of
// codecOrder.
func writeString(buf *bytes.Buffer, s string) error {
	n, err := safecast.Conv[uint16](len(s))
	if err != nil {
		return fmt.Errorf("objfile: string %q too long to encode: %w", s, err)
	}
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], n)
	buf.Write(tmp[:])
	buf.WriteString(s)
	return nil
}

func readU8(r *bytes.Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("objfile: %w", err)
	}
	return b, nil
}

func readU16(r *bytes.Reader) (uint16, error) {
	var tmp [2]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, fmt.Errorf("objfile: %w", err)
	}
	return codecOrder.Uint16(tmp[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, fmt.Errorf("objfile: %w", err)
	}
	return codecOrder.Uint32(tmp[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	var tmp [2]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return "", fmt.Errorf("objfile: %w", err)
	}
	n := binary.LittleEndian.Uint16(tmp[:])
	strBytes := make([]byte, n)
	if _, err := io.ReadFull(r, strBytes); err != nil {
		return "", fmt.Errorf("objfile: %w", err)
	}
	return string(strBytes), nil
}
