package compress

import (
	"io"

	"github.com/arloliu/irstream/format"
)

// noOpCodec passes data through unchanged.
type noOpCodec struct{}

var _ Codec = noOpCodec{}

func (noOpCodec) Type() format.CompressionType { return format.CompressionNone }

func (noOpCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (noOpCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
