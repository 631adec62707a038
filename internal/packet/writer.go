package packet

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/FireRedz/gulag/internal/constants"
)

// Writer builds bancho payload data.
// All multi-byte values are little-endian.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter creates an empty payload writer.
func NewWriter() *Writer {
	w := &Writer{}
	w.buf.Grow(64)
	return w
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(b byte) {
	w.buf.WriteByte(b)
}

// WriteUint16 writes a uint16 (2 bytes, LE).
func (w *Writer) WriteUint16(val uint16) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
}

// WriteInt32 writes an int32 (4 bytes, LE).
func (w *Writer) WriteInt32(val int32) {
	w.WriteUint32(uint32(val))
}

// WriteUint32 writes a uint32 (4 bytes, LE).
func (w *Writer) WriteUint32(val uint32) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
	w.buf.WriteByte(byte(val >> 16))
	w.buf.WriteByte(byte(val >> 24))
}

// WriteInt64 writes an int64 (8 bytes, LE).
func (w *Writer) WriteInt64(val int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(val))
	w.buf.Write(tmp[:])
}

// WriteFloat32 writes a float32 (4 bytes, LE, IEEE 754).
func (w *Writer) WriteFloat32(val float32) {
	w.WriteUint32(math.Float32bits(val))
}

// WriteString writes a bancho string: 0x00 for empty, otherwise 0x0b,
// ULEB128 length and UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	if len(s) == 0 {
		w.buf.WriteByte(0x00)
		return
	}

	w.buf.WriteByte(0x0b)
	n := len(s)
	for n > 0 {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
	}
	w.buf.WriteString(s)
}

// WriteI32List writes a u16 count followed by the int32 values.
func (w *Writer) WriteI32List(list []int32) {
	w.WriteUint16(uint16(len(list)))
	for _, v := range list {
		w.WriteInt32(v)
	}
}

// WriteRaw appends raw bytes without any framing.
func (w *Writer) WriteRaw(b []byte) {
	w.buf.Write(b)
}

// Frame prefixes the accumulated payload with the bancho frame header
// (u16 packet id, u8 pad, u32 length) and returns the full frame.
func (w *Writer) Frame(id uint16) []byte {
	payload := w.buf.Bytes()
	out := make([]byte, constants.FrameHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(out[0:], id)
	binary.LittleEndian.PutUint32(out[3:], uint32(len(payload)))
	copy(out[constants.FrameHeaderSize:], payload)
	return out
}
