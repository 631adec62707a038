package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReaderIterates(t *testing.T) {
	w1 := NewWriter()
	w1.WriteInt32(7)
	w2 := NewWriter()
	w2.WriteString("hello")

	body := append(w1.Frame(4), w2.Frame(1)...)

	fr := NewFrameReader(body)

	require.True(t, fr.Next())
	assert.Equal(t, uint16(4), fr.ID())
	v, err := fr.Payload().ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	require.True(t, fr.Next())
	assert.Equal(t, uint16(1), fr.ID())
	s, err := fr.Payload().ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	assert.False(t, fr.Next())
	assert.NoError(t, fr.Err())
}

func TestFrameReaderEmptyBody(t *testing.T) {
	fr := NewFrameReader(nil)
	assert.False(t, fr.Next())
	assert.NoError(t, fr.Err())
}

func TestFrameReaderTrailingGarbage(t *testing.T) {
	fr := NewFrameReader([]byte{0x04, 0x00, 0x00})
	assert.False(t, fr.Next())
	assert.ErrorIs(t, fr.Err(), ErrMalformed)
}

func TestFrameReaderOverlongPayload(t *testing.T) {
	// Header declares 100 payload bytes, none follow.
	body := []byte{0x04, 0x00, 0x00, 0x64, 0x00, 0x00, 0x00}
	fr := NewFrameReader(body)
	assert.False(t, fr.Next())
	assert.ErrorIs(t, fr.Err(), ErrMalformed)
}

func TestFrameRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteString("payload")
	frame := w.Frame(83)

	fr := NewFrameReader(frame)
	require.True(t, fr.Next())
	assert.Equal(t, uint16(83), fr.ID())
	s, err := fr.Payload().ReadString()
	require.NoError(t, err)
	assert.Equal(t, "payload", s)
}
