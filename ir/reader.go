package ir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/arloliu/irstream/compress"
	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/internal/options"
	"github.com/arloliu/irstream/query"
	"github.com/arloliu/irstream/stream"
)

// DefaultReaderBufferSize is the initial stream buffer capacity of a Reader.
const DefaultReaderBufferSize = 64 * 1024

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*Reader]

// WithCompression sets the compression of the input. The default, format.CompressionAuto,
// detects it from the leading bytes.
func WithCompression(ct format.CompressionType) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.compression = ct
	})
}

// WithAllowIncomplete makes a truncated stream end like a complete one instead of failing
// with errs.ErrIncompleteStream.
func WithAllowIncomplete(allow bool) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.allowIncomplete = allow
	})
}

// WithContext aborts blocking reads once ctx is done.
func WithContext(ctx context.Context) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.ctx = ctx
	})
}

// WithDecoderOptions configures the Reader's DecoderBuffer.
func WithDecoderOptions(opts ...Option) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.decoderOpts = append(r.decoderOpts, opts...)
	})
}

// Reader reads log events from an IR stream.
//
// The preamble is decoded lazily, on the first call that needs it. Compression detection
// and decoder setup are deferred to the first buffer refill as well, so constructing a
// Reader never reads from the source.
//
// Note: Reader is NOT thread-safe.
type Reader struct {
	db              *DecoderBuffer
	decompressor    *compress.LazyReader
	owned           io.Closer
	buffered        *LogEvent
	compression     format.CompressionType
	allowIncomplete bool
	ctx             context.Context //nolint:containedctx
	decoderOpts     []Option
}

// NewReader creates a Reader over src. Closing the Reader does not close src.
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{compression: format.CompressionAuto}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	if r.ctx != nil {
		src = stream.NewContextSource(r.ctx, src)
	}

	if r.compression != format.CompressionAuto {
		if _, err := compress.GetCodec(r.compression); err != nil {
			return nil, err
		}
	}
	r.decompressor = compress.NewLazyReader(src, r.compression)

	decoderOpts := append([]Option{WithBufferCapacity(DefaultReaderBufferSize)}, r.decoderOpts...)
	db, err := NewDecoderBuffer(r.decompressor, decoderOpts...)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.decoderOpts = nil

	return r, nil
}

// OpenFile opens the IR file at path. The file is closed with the Reader.
func OpenFile(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r.owned = f

	return r, nil
}

// ReadPreamble decodes the preamble if that has not happened yet.
func (r *Reader) ReadPreamble() error {
	if r.db.HasMetadata() {
		return nil
	}
	_, err := DecodePreamble(r.db)

	return err
}

// Metadata returns the stream metadata, decoding the preamble if needed.
func (r *Reader) Metadata() (*Metadata, error) {
	if err := r.ReadPreamble(); err != nil {
		return nil, err
	}

	return r.db.Metadata(), nil
}

// Compression returns the compression of the input. With auto-detection it returns
// format.CompressionAuto until the first read from the source has identified the format.
func (r *Reader) Compression() format.CompressionType {
	return r.decompressor.Compression()
}

// NumDecodedLogEvents returns the number of log events decoded so far.
func (r *Reader) NumDecodedLogEvents() uint64 {
	return r.db.NumDecodedLogEvents()
}

// DecoderBuffer returns the Reader's decoding session.
func (r *Reader) DecoderBuffer() *DecoderBuffer {
	return r.db
}

// Next returns the next log event, or io.EOF at the end of the stream.
func (r *Reader) Next() (*LogEvent, error) {
	return r.next(nil)
}

// NextMatch returns the next log event matching q, or io.EOF when the stream ends or the
// search passes q's termination timestamp.
func (r *Reader) NextMatch(q *query.Query) (*LogEvent, error) {
	return r.next(q)
}

// SkipToTime discards log events until the first one with a timestamp at or after ts, which
// is kept and returned by the following Next, NextMatch, All or Search. It reports how many
// events were discarded. Reaching the end of the stream is not an error; every remaining
// event then counts as skipped.
func (r *Reader) SkipToTime(ts int64) (uint64, error) {
	if err := r.ReadPreamble(); err != nil {
		return 0, err
	}

	var skipped uint64
	if r.buffered != nil {
		if r.buffered.Timestamp() >= ts {
			return 0, nil
		}
		r.buffered = nil
		skipped++
	}

	q, err := query.New(ts, query.DefaultUpperBound, nil)
	if err != nil {
		return 0, err
	}

	before := r.db.NumDecodedLogEvents()
	ev, err := DecodeNextLogEvent(r.db, q, r.allowIncomplete)
	skipped += r.db.NumDecodedLogEvents() - before
	switch {
	case errors.Is(err, io.EOF):
		return skipped, nil
	case err != nil:
		return skipped, err
	}
	r.buffered = ev

	return skipped - 1, nil
}

func (r *Reader) next(q *query.Query) (*LogEvent, error) {
	if err := r.ReadPreamble(); err != nil {
		return nil, err
	}

	if ev := r.buffered; ev != nil {
		r.buffered = nil
		if q == nil || q.Matches(ev) {
			return ev, nil
		}
		if q.IsSafelyPast(ev.Timestamp()) {
			return nil, io.EOF
		}
	}

	return DecodeNextLogEvent(r.db, q, r.allowIncomplete)
}

// All iterates over the remaining log events. Iteration stops after the first error, which
// is yielded with a nil event.
//
//	for ev, err := range reader.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(ev)
//	}
func (r *Reader) All() iter.Seq2[*LogEvent, error] {
	return r.iterate(nil)
}

// Search iterates over the remaining log events matching q.
func (r *Reader) Search(q *query.Query) iter.Seq2[*LogEvent, error] {
	return r.iterate(q)
}

func (r *Reader) iterate(q *query.Query) iter.Seq2[*LogEvent, error] {
	return func(yield func(*LogEvent, error) bool) {
		for {
			ev, err := r.next(q)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Close releases the decompressor and, for readers from OpenFile, closes the file.
func (r *Reader) Close() error {
	err := r.decompressor.Close()
	if r.owned != nil {
		err = errors.Join(err, r.owned.Close())
		r.owned = nil
	}

	return err
}
