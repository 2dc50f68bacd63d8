package link

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// imageMagic tags a linked program image on disk, distinguishing it
// from a raw .sinc object file so `sinc run` fails fast on the wrong
// input rather than loading garbage into VM memory.
const imageMagic = "SinI"

// imageOrder matches objfile's codecOrder: one fixed byte order for the
// container format, independent of any endianness the payload itself
// describes.
var imageOrder = binary.BigEndian

// EncodeImage serializes a linker Result as a loadable program image:
// a small fixed header (base, entry) followed by the raw bytes Result
// itself has no room to carry once written to disk, then the image.
func EncodeImage(r Result) []byte {
	var buf bytes.Buffer
	buf.WriteString(imageMagic)
	writeU16(&buf, r.Base)
	writeU16(&buf, r.Entry)
	buf.Write(r.Image)
	return buf.Bytes()
}

// DecodeImage parses bytes produced by EncodeImage.
func DecodeImage(data []byte) (Result, error) {
	if len(data) < len(imageMagic)+4 {
		return Result{}, fmt.Errorf("link: image too short")
	}
	if string(data[:len(imageMagic)]) != imageMagic {
		return Result{}, fmt.Errorf("link: invalid image magic %q", data[:len(imageMagic)])
	}
	r := bytes.NewReader(data[len(imageMagic):])
	var base, entry uint16
	if err := binary.Read(r, imageOrder, &base); err != nil {
		return Result{}, fmt.Errorf("link: %w", err)
	}
	if err := binary.Read(r, imageOrder, &entry); err != nil {
		return Result{}, fmt.Errorf("link: %w", err)
	}
	image := make([]byte, r.Len())
	if _, err := io.ReadFull(r, image); err != nil {
		return Result{}, fmt.Errorf("link: %w", err)
	}
	return Result{Base: base, Entry: entry, Image: image}, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}
