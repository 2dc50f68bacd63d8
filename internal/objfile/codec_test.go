package objfile

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := File{
		WordSize:   16,
		VMEndian:   BigEndian,
		FileEndian: LittleEndian,
		Version:    SupportedVersion,
		VMVersion:  TargetVMVersion,
		EntryPoint: 0x2600,
		Symbols: []Symbol{
			{Name: "main", Value: 0x2600, Width: 16, Class: ClassDefined},
			{Name: "counter", Value: 0x0100, Width: 16, Class: ClassRelocatable},
			{Name: "printf_like", Value: 0, Width: 16, Class: ClassUndefined},
		},
		Relocations: []Relocation{
			{Address: 4, Name: "counter"},
			{Address: 12, Name: "printf_like"},
		},
		Text: []byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00},
		Data: []DataEntry{
			{Name: "__str_hello", Bytes: []byte("hello\x00")},
		},
	}

	encoded, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(encoded[:4]) != Magic {
		t.Fatalf("expected magic prefix, got %q", encoded[:4])
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(f, decoded) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", f, decoded)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte("nope0000")); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	f := File{WordSize: 16, VMEndian: BigEndian, FileEndian: LittleEndian, Version: 99, VMVersion: 1}
	encoded, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(encoded); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}
