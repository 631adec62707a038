package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/FireRedz/gulag/internal/constants"
)

// FrameReader iterates the frames of a request body.
// Usage:
//
//	fr := packet.NewFrameReader(body)
//	for fr.Next() {
//		handle(fr.ID(), fr.Payload())
//	}
//	if err := fr.Err(); err != nil { ... }
type FrameReader struct {
	data []byte
	pos  int

	id      uint16
	payload []byte
	err     error
}

// NewFrameReader creates a frame iterator over body.
func NewFrameReader(body []byte) *FrameReader {
	return &FrameReader{data: body}
}

// Next advances to the next frame. It returns false at the end of the
// body or on a malformed header; check Err afterwards.
func (fr *FrameReader) Next() bool {
	if fr.err != nil || fr.pos >= len(fr.data) {
		return false
	}

	if len(fr.data)-fr.pos < constants.FrameHeaderSize {
		fr.err = fmt.Errorf("frame header: %d trailing bytes: %w", len(fr.data)-fr.pos, ErrMalformed)
		return false
	}

	fr.id = binary.LittleEndian.Uint16(fr.data[fr.pos:])
	length := int(binary.LittleEndian.Uint32(fr.data[fr.pos+3:]))
	fr.pos += constants.FrameHeaderSize

	if length > len(fr.data)-fr.pos {
		fr.err = fmt.Errorf("frame %d: declared length %d exceeds remaining %d: %w",
			fr.id, length, len(fr.data)-fr.pos, ErrMalformed)
		return false
	}

	fr.payload = fr.data[fr.pos : fr.pos+length]
	fr.pos += length
	return true
}

// ID returns the packet id of the current frame.
func (fr *FrameReader) ID() uint16 {
	return fr.id
}

// Payload returns a reader bound to the current frame's payload.
// Handlers may ignore trailing bytes or the whole frame.
func (fr *FrameReader) Payload() *Reader {
	return NewReader(fr.payload)
}

// PayloadBytes returns the current frame's raw payload.
func (fr *FrameReader) PayloadBytes() []byte {
	return fr.payload
}

// Err returns the first malformed-header error encountered, if any.
func (fr *FrameReader) Err() error {
	return fr.err
}
