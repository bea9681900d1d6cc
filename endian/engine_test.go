package endian

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIREngine(t *testing.T) {
	require.Equal(t, binary.BigEndian, GetIREngine())
	require.Equal(t, binary.BigEndian, GetBigEndianEngine())
	require.Equal(t, binary.LittleEndian, GetLittleEndianEngine())
}

func TestSignedRoundTrip(t *testing.T) {
	engine := GetIREngine()

	t.Run("int16", func(t *testing.T) {
		for _, v := range []int16{0, 1, -1, math.MinInt16, math.MaxInt16} {
			buf := AppendInt16(engine, nil, v)
			require.Len(t, buf, 2)
			require.Equal(t, v, Int16(engine, buf))
		}
	})

	t.Run("int32", func(t *testing.T) {
		for _, v := range []int32{0, 1, -1, math.MinInt32, math.MaxInt32} {
			buf := AppendInt32(engine, nil, v)
			require.Len(t, buf, 4)
			require.Equal(t, v, Int32(engine, buf))
		}
	})

	t.Run("int64", func(t *testing.T) {
		for _, v := range []int64{0, 1, -1, math.MinInt64, math.MaxInt64} {
			buf := AppendInt64(engine, nil, v)
			require.Len(t, buf, 8)
			require.Equal(t, v, Int64(engine, buf))
		}
	})

	t.Run("int8", func(t *testing.T) {
		require.Equal(t, int8(-1), Int8([]byte{0xFF}))
		require.Equal(t, int8(127), Int8([]byte{0x7F}))
	})
}

func TestBigEndianLayout(t *testing.T) {
	buf := AppendInt32(GetIREngine(), nil, -20)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xEC}, buf)

	buf = AppendInt16(GetIREngine(), nil, 0x0102)
	require.Equal(t, []byte{0x01, 0x02}, buf)
}
