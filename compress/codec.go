package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
)

// Codec creates streaming decompressors and compressors for one compression format.
//
// Implementations are stateless and safe for concurrent use; the readers and writers they
// return are not.
type Codec interface {
	// Type returns the compression format handled by the codec.
	Type() format.CompressionType

	// NewReader returns a reader that decompresses r.
	//
	// Closing the returned reader releases the decoder's resources; it does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter returns a writer that compresses into w.
	//
	// Close must be called to flush the final frame; it does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

// Frame magic numbers used by Detect.
var (
	zstdMagic   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic    = []byte{0x04, 0x22, 0x4D, 0x18}
	s2Magic     = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// maxMagicLength is the number of bytes Detect needs to recognize every format.
const maxMagicLength = 10

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: noOpCodec{},
	format.CompressionZstd: zstdCodec{},
	format.CompressionS2:   s2Codec{},
	format.CompressionLZ4:  lz4Codec{},
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// Detect identifies the compression format from the first bytes of a stream.
//
// Anything that is not a recognized compressed frame, an uncompressed IR stream included,
// is reported as format.CompressionNone.
func Detect(head []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(head, lz4Magic):
		return format.CompressionLZ4
	case bytes.HasPrefix(head, s2Magic), bytes.HasPrefix(head, snappyMagic):
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

// NewReader returns a reader yielding the decompressed contents of r.
//
// With format.CompressionAuto the format is detected from the leading bytes of r, which are
// peeked and not lost. The detected (or given) type is returned alongside the reader.
func NewReader(r io.Reader, compressionType format.CompressionType) (io.ReadCloser, format.CompressionType, error) {
	if compressionType == format.CompressionAuto {
		br := bufio.NewReader(r)
		head, err := br.Peek(maxMagicLength)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, compressionType, fmt.Errorf("failed to detect compression: %w", err)
		}
		compressionType = Detect(head)
		r = br
	}

	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, compressionType, err
	}

	rc, err := codec.NewReader(r)
	if err != nil {
		return nil, compressionType, fmt.Errorf("failed to create %s reader: %w", compressionType, err)
	}

	return rc, compressionType, nil
}

// NewWriter returns a writer that compresses into w using compressionType.
// format.CompressionAuto is not valid for writing.
func NewWriter(w io.Writer, compressionType format.CompressionType) (io.WriteCloser, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	wc, err := codec.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", compressionType, err)
	}

	return wc, nil
}

// LazyReader is a decompressing reader that defers detection and decoder construction to
// its first Read, so creating one never touches the wrapped reader.
//
// A failure while opening the decoder is returned by every subsequent Read.
type LazyReader struct {
	src io.Reader
	rc  io.ReadCloser
	ct  format.CompressionType
	err error
}

// NewLazyReader returns a LazyReader over r. compressionType may be format.CompressionAuto.
func NewLazyReader(r io.Reader, compressionType format.CompressionType) *LazyReader {
	return &LazyReader{src: r, ct: compressionType}
}

// Read opens the decoder on first use and reads decompressed bytes from it.
func (l *LazyReader) Read(p []byte) (int, error) {
	if l.rc == nil {
		if l.err != nil {
			return 0, l.err
		}
		rc, ct, err := NewReader(l.src, l.ct)
		l.ct = ct
		if err != nil {
			l.err = err
			return 0, err
		}
		l.rc = rc
		l.src = nil
	}

	return l.rc.Read(p)
}

// Compression returns the compression type. It is format.CompressionAuto until the first
// Read has detected the format.
func (l *LazyReader) Compression() format.CompressionType {
	return l.ct
}

// Close releases the decoder, if one was opened. It does not close the wrapped reader.
func (l *LazyReader) Close() error {
	if l.rc == nil {
		return nil
	}

	return l.rc.Close()
}
