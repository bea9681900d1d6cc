//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

type gozstdReader struct {
	*gozstd.Reader
}

func (r gozstdReader) Close() error {
	r.Release()
	return nil
}

type gozstdWriter struct {
	*gozstd.Writer
}

func (w gozstdWriter) Close() error {
	defer w.Release()
	return w.Writer.Close()
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gozstdReader{gozstd.NewReader(r)}, nil
}

func (zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstdWriter{gozstd.NewWriterLevel(w, gozstd.DefaultCompressionLevel)}, nil
}
