package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/irstream/format"
)

// lz4Codec reads and writes the LZ4 frame format.
type lz4Codec struct{}

var _ Codec = lz4Codec{}

func (lz4Codec) Type() format.CompressionType { return format.CompressionLZ4 }

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.ConcurrencyOption(1)); err != nil {
		return nil, err
	}

	return zw, nil
}
