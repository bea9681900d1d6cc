package ir

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/arloliu/irstream/encoding"
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/internal/options"
	"github.com/arloliu/irstream/metrics"
	"github.com/arloliu/irstream/stream"
)

// UnitDecoder decodes a single log event unit from the front of a byte slice.
//
// Implementations must be pure: the same bytes always give the same result. They report a
// truncated unit with errs.ErrIncompleteIR, the end-of-stream tag with errs.ErrEndOfIR and
// malformed bytes with an error wrapping errs.ErrDecode.
type UnitDecoder interface {
	DecodeUnit(buf []byte) (encoding.Unit, error)
}

// Option configures a DecoderBuffer.
type Option = options.Option[*DecoderBuffer]

// WithBufferCapacity sets the initial capacity of the stream buffer.
func WithBufferCapacity(n int) Option {
	return options.NoError(func(db *DecoderBuffer) {
		db.streamOpts = append(db.streamOpts, stream.WithInitialCapacity(n))
	})
}

// WithMaxBufferCapacity limits how large the stream buffer may grow.
func WithMaxBufferCapacity(n int) Option {
	return options.NoError(func(db *DecoderBuffer) {
		db.streamOpts = append(db.streamOpts, stream.WithMaxCapacity(n))
	})
}

// WithStreamOptions passes options through to the underlying stream.Buffer.
func WithStreamOptions(opts ...stream.Option) Option {
	return options.NoError(func(db *DecoderBuffer) {
		db.streamOpts = append(db.streamOpts, opts...)
	})
}

// WithUnitDecoder replaces the default encoding.FourByteDecoder.
func WithUnitDecoder(d UnitDecoder) Option {
	return options.New(func(db *DecoderBuffer) error {
		if d == nil {
			return errors.New("ir: nil unit decoder")
		}
		db.decoder = d

		return nil
	})
}

// WithLogger sets the logger for decoding diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(db *DecoderBuffer) {
		if logger != nil {
			db.logger = logger
		}
	})
}

// WithMetrics records decoding activity in c.
func WithMetrics(c *metrics.Collector) Option {
	return options.NoError(func(db *DecoderBuffer) {
		db.metrics = c
	})
}

// DecoderBuffer is the decoding session of one IR stream: the stream buffer plus the state
// carried from one DecodeNextLogEvent call to the next.
//
// Note: DecoderBuffer is NOT thread-safe.
type DecoderBuffer struct {
	buf     *stream.Buffer
	decoder UnitDecoder

	metadata         *Metadata
	runningTimestamp int64
	numDecoded       uint64
	eof              bool

	streamOpts []stream.Option
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// NewDecoderBuffer creates a decoding session reading from src.
func NewDecoderBuffer(src io.Reader, opts ...Option) (*DecoderBuffer, error) {
	db := &DecoderBuffer{
		decoder: encoding.FourByteDecoder{},
		logger:  zap.NewNop(),
	}
	if err := options.Apply(db, opts...); err != nil {
		return nil, err
	}

	streamOpts := append([]stream.Option{stream.WithLogger(db.logger)}, db.streamOpts...)
	if db.metrics != nil {
		streamOpts = append(streamOpts, stream.WithObserver(db.metrics))
	}

	buf, err := stream.New(src, streamOpts...)
	if err != nil {
		return nil, err
	}
	db.buf = buf
	db.streamOpts = nil

	return db, nil
}

// Metadata returns the decoded stream metadata, or nil before DecodePreamble succeeds.
func (db *DecoderBuffer) Metadata() *Metadata {
	return db.metadata
}

// HasMetadata reports whether the preamble has been decoded.
func (db *DecoderBuffer) HasMetadata() bool {
	return db.metadata != nil
}

// NumDecodedLogEvents returns the number of log events decoded so far, including events a
// query skipped.
func (db *DecoderBuffer) NumDecodedLogEvents() uint64 {
	return db.numDecoded
}

// RunningTimestamp returns the timestamp of the most recently decoded event, or the reference
// timestamp if none has been decoded.
func (db *DecoderBuffer) RunningTimestamp() int64 {
	return db.runningTimestamp
}

// Buffer returns the underlying stream buffer.
func (db *DecoderBuffer) Buffer() *stream.Buffer {
	return db.buf
}

// tryRead refills the stream buffer, failing with errs.ErrIncompleteStream when the source
// has nothing more to give.
func (db *DecoderBuffer) tryRead() error {
	n, err := db.buf.Refill()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: source exhausted after %d bytes", errs.ErrIncompleteStream, db.buf.BytesRead())
	}

	return nil
}
