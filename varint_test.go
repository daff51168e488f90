package gobwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0x7f, 0x80, 0xff, 0x1234, 1 << 32, ^uint64(0)}
	for _, v := range cases {
		b := appendUvarint(nil, v)
		c := NewCursor(b)
		got, err := ReadUvarint(&c)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, 0, c.Remaining())
	}
}

func TestUvarintSingleByteForm(t *testing.T) {
	b := appendUvarint(nil, 5)
	require.Equal(t, []byte{5}, b)
}

func TestSvarintRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, -128, 1 << 40, -(1 << 40)}
	for _, v := range cases {
		b := appendSvarint(nil, v)
		c := NewCursor(b)
		got, err := ReadSvarint(&c)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.14159, 1e300, -1e-300}
	for _, v := range cases {
		u := floatBitsToWire(v)
		require.Equal(t, v, floatBitsFromWire(u))
	}
}

func TestReadUvarintIncomplete(t *testing.T) {
	c := NewCursor([]byte{0x80 | byte(^uint8(0))})
	_, err := ReadUvarint(&c)
	require.Error(t, err)
	require.True(t, isIncomplete(err))
}
