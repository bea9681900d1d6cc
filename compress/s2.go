package compress

import (
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/irstream/format"
)

// s2Codec reads and writes the S2 stream format. Snappy framed streams are also readable.
type s2Codec struct{}

var _ Codec = s2Codec{}

func (s2Codec) Type() format.CompressionType { return format.CompressionS2 }

func (s2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

func (s2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w, s2.WriterConcurrency(1)), nil
}
