package ir

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/arloliu/irstream/encoding"
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/internal/hash"
	"github.com/arloliu/irstream/metrics"
	"github.com/arloliu/irstream/query"
)

// DecodePreamble decodes the magic number and metadata at the start of the stream, reading
// from the source as needed, and seeds the running timestamp with the reference timestamp.
//
// Returns:
//   - errs.ErrMetadataAlreadyDecoded if the preamble was decoded before
//   - errs.ErrIncompleteStream if the source ends inside the preamble
//   - errs.ErrInvalidMagicNumber, errs.ErrUnsupportedEncoding, errs.ErrUnsupportedVersion or
//     errs.ErrMetadataCorrupted for an unusable preamble
func DecodePreamble(db *DecoderBuffer) (*Metadata, error) {
	if db.metadata != nil {
		return nil, errs.ErrMetadataAlreadyDecoded
	}

	var preamble encoding.Preamble
	for {
		p, err := encoding.DecodePreamble(db.buf.Unconsumed())
		if err == nil {
			preamble = p
			break
		}
		if !errors.Is(err, errs.ErrIncompleteIR) {
			db.metrics.DecodeError(metrics.ErrorKindMetadata)
			return nil, err
		}
		if err := db.tryRead(); err != nil {
			return nil, err
		}
	}

	metadata, err := parseMetadata(preamble.Metadata)
	if err != nil {
		db.metrics.DecodeError(metrics.ErrorKindMetadata)
		return nil, err
	}
	if err := db.buf.CommitConsumed(preamble.Size); err != nil {
		return nil, err
	}

	db.metadata = metadata
	db.runningTimestamp = metadata.ReferenceTimestamp()
	db.logger.Debug("IR preamble decoded",
		zap.String("version", metadata.Version()),
		zap.Int64("reference_timestamp", metadata.ReferenceTimestamp()),
		zap.String("timezone", metadata.TimezoneID()))

	return metadata, nil
}

// DecodeNextLogEvent decodes log events until one satisfies q, or the first one when q is nil.
//
// Timestamps are accumulated across calls in db. Every decoded event, matching or not,
// advances the event index.
//
// Returns io.EOF when the stream ends. It also returns io.EOF, without marking the stream as
// ended, when a query meets an event past its termination timestamp. When the source runs out
// in the middle of an event the result is io.EOF if allowIncomplete is set and
// errs.ErrIncompleteStream otherwise. Once the stream has ended, later calls return io.EOF
// without reading.
func DecodeNextLogEvent(db *DecoderBuffer, q *query.Query, allowIncomplete bool) (*LogEvent, error) {
	if db.metadata == nil {
		return nil, errs.ErrMetadataNotDecoded
	}
	if db.eof {
		return nil, io.EOF
	}

	if q == nil {
		return decodeLogEvents(db, allowIncomplete, unfilteredHandler(db.metadata))
	}

	return decodeLogEvents(db, allowIncomplete, queryHandler(db, q))
}

// terminateHandler inspects each decoded event and decides whether the decode loop stops.
// A stop without an event ends the call with io.EOF.
type terminateHandler func(timestamp int64, unit *encoding.Unit, index uint64) (ev *LogEvent, stop bool)

func unfilteredHandler(metadata *Metadata) terminateHandler {
	return func(timestamp int64, unit *encoding.Unit, index uint64) (*LogEvent, bool) {
		return newDecodedEvent(unit, timestamp, index, metadata), true
	}
}

func queryHandler(db *DecoderBuffer, q *query.Query) terminateHandler {
	return func(timestamp int64, unit *encoding.Unit, index uint64) (*LogEvent, bool) {
		if q.IsSafelyPast(timestamp) {
			db.metrics.SearchTerminated()
			db.logger.Debug("search terminated past the termination timestamp",
				zap.Int64("timestamp", timestamp),
				zap.Int64("termination_timestamp", q.TerminationTimestamp()),
				zap.Uint64("index", index))

			return nil, true
		}
		if q.MatchesTimeRange(timestamp) && q.MatchesWildcards(unit.Message) {
			return newDecodedEvent(unit, timestamp, index, db.metadata), true
		}

		return nil, false
	}
}

func newDecodedEvent(unit *encoding.Unit, timestamp int64, index uint64, metadata *Metadata) *LogEvent {
	return &LogEvent{
		message:   unit.Message,
		timestamp: timestamp,
		index:     index,
		logtypeID: hash.ID(unit.Logtype),
		metadata:  metadata,
	}
}

func decodeLogEvents(db *DecoderBuffer, allowIncomplete bool, handle terminateHandler) (*LogEvent, error) {
	for {
		unit, err := db.decoder.DecodeUnit(db.buf.Unconsumed())
		switch {
		case err == nil:
		case errors.Is(err, errs.ErrIncompleteIR):
			readErr := db.tryRead()
			if readErr == nil {
				continue
			}
			if errors.Is(readErr, errs.ErrIncompleteStream) {
				if allowIncomplete {
					db.eof = true
					db.logger.Warn("IR stream is truncated, treating as end of stream",
						zap.Uint64("decoded_events", db.numDecoded),
						zap.Int("unconsumed_bytes", db.buf.NumUnconsumed()))

					return nil, io.EOF
				}
				db.metrics.DecodeError(metrics.ErrorKindIncomplete)
			}

			return nil, readErr
		case errors.Is(err, errs.ErrEndOfIR):
			// The stream is over; the end-of-stream tag is left unconsumed.
			db.eof = true

			return nil, io.EOF
		default:
			db.metrics.DecodeError(metrics.ErrorKindMalformed)
			return nil, fmt.Errorf("log event %d: %w", db.numDecoded, err)
		}

		if err := db.buf.CommitConsumed(unit.Size); err != nil {
			return nil, err
		}
		db.runningTimestamp += unit.TimestampDelta
		index := db.numDecoded
		db.numDecoded++
		db.metrics.EventDecoded()

		if ev, stop := handle(db.runningTimestamp, &unit, index); stop {
			if ev == nil {
				return nil, io.EOF
			}
			db.metrics.EventReturned()

			return ev, nil
		}
	}
}
