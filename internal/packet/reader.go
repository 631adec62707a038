package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed is wrapped by every decode failure: truncated payloads,
// bad string flags, ULEB128 overruns. A malformed frame aborts the current
// frame only; world state is never mutated on the failure path.
var ErrMalformed = errors.New("malformed frame")

// Reader decodes bancho payload data.
// All multi-byte values are little-endian.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Skip advances the reader by n bytes (clamped to the end).
func (r *Reader) Skip(n int) {
	r.pos += n
	if r.pos > len(r.data) {
		r.pos = len(r.data)
	}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformed)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a uint16 (2 bytes, LE).
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadUint16: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformed)
	}
	val := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return val, nil
}

// ReadInt32 reads an int32 (4 bytes, LE).
func (r *Reader) ReadInt32() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt32: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformed)
	}
	val := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

// ReadUint32 reads a uint32 (4 bytes, LE).
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadInt32()
	return uint32(v), err
}

// ReadInt64 reads an int64 (8 bytes, LE).
func (r *Reader) ReadInt64() (int64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadInt64: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformed)
	}
	val := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return val, nil
}

// ReadFloat32 reads a float32 (4 bytes, LE).
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// readULEB128 reads an unsigned LEB128 value (string length prefix).
func (r *Reader) readULEB128() (int, error) {
	var val, shift uint
	for {
		if r.pos >= len(r.data) {
			return 0, fmt.Errorf("readULEB128: unexpected end of data: %w", ErrMalformed)
		}
		b := r.data[r.pos]
		r.pos++
		val |= uint(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 35 {
			return 0, fmt.Errorf("readULEB128: length prefix too long: %w", ErrMalformed)
		}
	}
	return int(val), nil
}

// ReadString reads a bancho string: one existence byte (0x00 = empty,
// 0x0b = present), then ULEB128 length and UTF-8 bytes.
func (r *Reader) ReadString() (string, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return "", err
	}

	switch flag {
	case 0x00:
		return "", nil
	case 0x0b:
	default:
		return "", fmt.Errorf("ReadString: bad existence flag 0x%02x: %w", flag, ErrMalformed)
	}

	length, err := r.readULEB128()
	if err != nil {
		return "", err
	}
	if r.pos+length > len(r.data) {
		return "", fmt.Errorf("ReadString: declared length %d exceeds remaining %d: %w", length, r.Remaining(), ErrMalformed)
	}

	s := string(r.data[r.pos : r.pos+length])
	r.pos += length
	return s, nil
}

// ReadI32List reads a u16 count followed by that many int32s.
func (r *Reader) ReadI32List() ([]int32, error) {
	count, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	list := make([]int32, 0, count)
	for range int(count) {
		v, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

// ReadRemaining consumes and returns every unread byte.
func (r *Reader) ReadRemaining() []byte {
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

// ReadBytes reads n bytes as a subslice of the underlying data (zero-copy).
// The caller must not mutate the result without copying.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d: %w", n, ErrMalformed)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d): %w", r.pos, n, len(r.data), ErrMalformed)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
