package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(64)

	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 64, bb.Cap())
}

func TestByteBuffer_Writes(t *testing.T) {
	bb := NewByteBuffer(4)

	bb.MustWrite([]byte("ab"))
	require.NoError(t, bb.WriteByte('c'))
	n, err := bb.WriteString("de")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	n, err = bb.Write([]byte("f"))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.Equal(t, "abcdef", bb.String())
	require.Equal(t, []byte("abcdef"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("some data"))
	capBefore := bb.Cap()

	bb.Reset()

	require.Equal(t, 0, bb.Len())
	require.Equal(t, capBefore, bb.Cap())
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity is a no-op", func(t *testing.T) {
		bb := NewByteBuffer(128)
		bb.Grow(64)
		require.Equal(t, 128, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(8)
		bb.MustWrite([]byte("12345678"))
		bb.Grow(1)
		require.Equal(t, 8+UnitBufferDefaultSize, bb.Cap())
		require.Equal(t, "12345678", bb.String())
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * UnitBufferDefaultSize
		bb := NewByteBuffer(size)
		bb.MustWrite(make([]byte, size))
		bb.Grow(1)
		require.Equal(t, size+size/4, bb.Cap())
	})

	t.Run("grows at least by required bytes", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(10 * UnitBufferDefaultSize)
		require.GreaterOrEqual(t, bb.Cap(), 10*UnitBufferDefaultSize)
	})
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())

	_, err = bb.WriteTo(errorWriter{})
	require.Error(t, err)
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	bb := p.Get()
	bb.Grow(1024)
	require.Greater(t, bb.Cap(), 32)
	p.Put(bb)

	// an oversized buffer must not come back; a new default-sized one is created instead
	for range 4 {
		got := p.Get()
		require.LessOrEqual(t, got.Cap(), 32)
		p.Put(got)
	}

	p.Put(nil)
}

func TestUnitBuffer_ResetOnPut(t *testing.T) {
	bb := GetUnitBuffer()
	bb.MustWrite([]byte("stale"))
	PutUnitBuffer(bb)

	got := GetUnitBuffer()
	defer PutUnitBuffer(got)
	require.Equal(t, 0, got.Len())
}

func TestPool_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 100 {
				bb := GetUnitBuffer()
				_ = bb.WriteByte(byte(id))
				if bb.Len() != 1 {
					t.Errorf("pooled buffer was not reset: len=%d", bb.Len())
				}
				PutUnitBuffer(bb)
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkGetPut_Reuse(b *testing.B) {
	payload := bytes.Repeat([]byte("x"), 200)
	for b.Loop() {
		bb := GetUnitBuffer()
		bb.MustWrite(payload)
		PutUnitBuffer(bb)
	}
}
