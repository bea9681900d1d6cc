package ir

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/irstream/compress"
	"github.com/arloliu/irstream/encoding"
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/internal/options"
	"github.com/arloliu/irstream/internal/pool"
)

// defaultFlushThreshold is the amount of encoded data buffered before it is written out.
const defaultFlushThreshold = 32 * 1024

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithOutputCompression compresses the output. The default is format.CompressionNone.
func WithOutputCompression(ct format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if ct == format.CompressionAuto {
			return fmt.Errorf("%w: %s is not valid for writing", errs.ErrUnsupportedCompression, ct)
		}
		w.compression = ct

		return nil
	})
}

// WithFlushThreshold sets how many encoded bytes are buffered before being written out.
func WithFlushThreshold(n int) WriterOption {
	return options.NoError(func(w *Writer) {
		if n > 0 {
			w.flushThreshold = n
		}
	})
}

// Writer encodes log events into a four-byte encoded IR stream.
//
// Note: Writer is NOT thread-safe.
type Writer struct {
	dst            io.Writer
	compressor     io.WriteCloser
	enc            *encoding.Encoder
	buf            *pool.ByteBuffer
	metadata       *Metadata
	prevTimestamp  int64
	numEvents      uint64
	compression    format.CompressionType
	flushThreshold int
	closed         bool
}

// NewWriter writes the preamble for metadata to dst and returns a Writer for the log events.
// Close must be called to terminate the stream; it does not close dst.
func NewWriter(dst io.Writer, metadata *Metadata, opts ...WriterOption) (*Writer, error) {
	if metadata == nil {
		return nil, errors.New("ir: nil metadata")
	}

	w := &Writer{
		metadata:       metadata,
		prevTimestamp:  metadata.ReferenceTimestamp(),
		compression:    format.CompressionNone,
		flushThreshold: defaultFlushThreshold,
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	metadataJSON, err := metadata.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrEncode, err)
	}

	w.buf = pool.GetUnitBuffer()
	if w.buf.B, err = encoding.AppendPreamble(w.buf.B, metadataJSON); err != nil {
		w.release()
		return nil, err
	}

	wc, err := compress.NewWriter(dst, w.compression)
	if err != nil {
		w.release()
		return nil, err
	}
	w.compressor = wc
	w.dst = wc
	w.enc = encoding.NewEncoder()

	return w, nil
}

// Metadata returns the metadata written in the preamble.
func (w *Writer) Metadata() *Metadata {
	return w.metadata
}

// NumLogEvents returns the number of log events written.
func (w *Writer) NumLogEvents() uint64 {
	return w.numEvents
}

// WriteLogEvent encodes one log event. timestamp is in milliseconds since the Unix epoch and
// need not be ordered.
func (w *Writer) WriteLogEvent(timestamp int64, message string) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	var err error
	if w.buf.B, err = w.enc.AppendLogEvent(w.buf.B, timestamp-w.prevTimestamp, message); err != nil {
		return err
	}
	w.prevTimestamp = timestamp
	w.numEvents++

	if w.buf.Len() >= w.flushThreshold {
		return w.flush()
	}

	return nil
}

// Write encodes ev, ignoring its index and metadata.
func (w *Writer) Write(ev *LogEvent) error {
	return w.WriteLogEvent(ev.Timestamp(), ev.Message())
}

// Flush writes buffered events to the destination. It does not flush the compressor.
func (w *Writer) Flush() error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	return w.flush()
}

func (w *Writer) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.buf.WriteTo(w.dst)
	w.buf.Reset()

	return err
}

// Close writes the end-of-stream tag and flushes everything, including the compressor.
// Calling Close more than once is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.release()

	w.buf.B = encoding.AppendEOF(w.buf.B)
	err := w.flush()

	return errors.Join(err, w.compressor.Close())
}

func (w *Writer) release() {
	if w.enc != nil {
		w.enc.Release()
		w.enc = nil
	}
	if w.buf != nil {
		pool.PutUnitBuffer(w.buf)
		w.buf = nil
	}
}
