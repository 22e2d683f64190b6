package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	result := CheckEndianness()
	switch testBytes[0] {
	case 0x01:
		require.Equal(t, binary.BigEndian, result)
		require.False(t, IsNativeLittleEndian())
	case 0x02:
		require.Equal(t, binary.LittleEndian, result)
		require.True(t, IsNativeLittleEndian())
	default:
		require.Failf(t, "unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestForFlag(t *testing.T) {
	require.Equal(t, GetLittleEndianEngine(), ForFlag(false))
	require.Equal(t, GetBigEndianEngine(), ForFlag(true))

	buf := ForFlag(true).AppendUint64(nil, 0x0102030405060708)
	require.Equal(t, byte(0x01), buf[0])
	require.Equal(t, uint64(0x0102030405060708), GetBigEndianEngine().Uint64(buf))
}
