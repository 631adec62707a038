package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWritePrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0x7f)
	w.WriteUint16(0xbeef)
	w.WriteInt32(-42)
	w.WriteUint32(0xdeadbeef)
	w.WriteInt64(-1 << 40)
	w.WriteFloat32(98.76)

	r := NewReader(w.Frame(0)[7:])

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7f), b)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), u16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i32)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<40), i64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(98.76), f32)

	assert.Equal(t, 0, r.Remaining())
}

func TestReadWriteString(t *testing.T) {
	for _, s := range []string{"", "hi", "привет мир", string(make([]byte, 300))} {
		w := NewWriter()
		w.WriteString(s)

		got, err := NewReader(w.Frame(0)[7:]).ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestReadStringEmptyFlag(t *testing.T) {
	s, err := NewReader([]byte{0x00}).ReadString()
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestReadStringBadFlag(t *testing.T) {
	_, err := NewReader([]byte{0x05, 0x02, 'h', 'i'}).ReadString()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadStringTruncated(t *testing.T) {
	// Declared length 10, only 2 bytes present.
	_, err := NewReader([]byte{0x0b, 0x0a, 'h', 'i'}).ReadString()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadI32List(t *testing.T) {
	w := NewWriter()
	w.WriteI32List([]int32{1, -2, 3})

	got, err := NewReader(w.Frame(0)[7:]).ReadI32List()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 3}, got)
}

func TestReadI32ListTruncated(t *testing.T) {
	// Count says two entries, only one follows.
	_, err := NewReader([]byte{0x02, 0x00, 0x01, 0x00, 0x00, 0x00}).ReadI32List()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadRemaining(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	_, err := r.ReadByte()
	require.NoError(t, err)

	assert.Equal(t, []byte{2, 3, 4}, r.ReadRemaining())
	assert.Equal(t, 0, r.Remaining())
}
