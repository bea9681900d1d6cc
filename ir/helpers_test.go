package ir

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/irstream/encoding"
)

type testEvent struct {
	ts  int64
	msg string
}

// buildStream encodes events with explicit timestamp deltas and optionally the EOF tag.
func buildStream(t testing.TB, ref int64, deltas []int64, messages []string, withEOF bool) []byte {
	t.Helper()

	meta, err := NewMetadata(ref, "yyyy-MM-dd HH:mm:ss.SSS", "UTC").MarshalJSON()
	require.NoError(t, err)
	out, err := encoding.AppendPreamble(nil, meta)
	require.NoError(t, err)

	enc := encoding.NewEncoder()
	defer enc.Release()
	for i, d := range deltas {
		out, err = enc.AppendLogEvent(out, d, messages[i])
		require.NoError(t, err)
	}
	if withEOF {
		out = encoding.AppendEOF(out)
	}

	return out
}

// writeStream encodes events with a Writer.
func writeStream(t testing.TB, ref int64, events []testEvent, opts ...WriterOption) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, NewMetadata(ref, "", "UTC"), opts...)
	require.NoError(t, err)
	for _, ev := range events {
		require.NoError(t, w.WriteLogEvent(ev.ts, ev.msg))
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func newSession(t testing.TB, src io.Reader, opts ...Option) *DecoderBuffer {
	t.Helper()

	db, err := NewDecoderBuffer(src, opts...)
	require.NoError(t, err)
	_, err = DecodePreamble(db)
	require.NoError(t, err)

	return db
}

// countingReader counts Read calls.
type countingReader struct {
	r     io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

// chunkedReader returns data in chunks of the given sizes, cycling through them.
type chunkedReader struct {
	data  []byte
	sizes []int
	next  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(r.sizes[r.next%len(r.sizes)], len(p), len(r.data))
	r.next++
	copy(p, r.data[:n])
	r.data = r.data[n:]

	return n, nil
}
