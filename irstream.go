// Package irstream reads and writes CLP IR streams: compact, losslessly encoded log files in
// which every message is split into a logtype and its variables.
//
// Decoding is streaming. A stream is pulled through a growable buffer one log event at a time,
// so memory use is bounded by the largest event rather than the size of the stream. Searches
// filter events by time range and wildcard patterns and stop once the stream has moved safely
// past the requested range.
//
// # Core Features
//
//   - Four-byte encoded IR streams, the format written by CLP logging libraries
//   - Time range and wildcard queries with early termination
//   - Tolerant decoding of truncated streams
//   - Transparent decompression (Zstd, S2, LZ4), detected from the leading bytes
//   - Structured logging with zap and Prometheus metrics for the decoder
//
// # Basic Usage
//
// Reading every event of a file:
//
//	import "github.com/arloliu/irstream"
//
//	reader, _ := irstream.Open("app.clp.zst")
//	defer reader.Close()
//
//	for ev, err := range reader.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(ev.FormattedMessage(nil))
//	}
//
// Searching a time range:
//
//	q, _ := irstream.NewQueryBuilder().
//	    SetLowerBound(start.UnixMilli()).
//	    SetUpperBound(end.UnixMilli()).
//	    AddWildcard(query.Substring("connection reset", false)).
//	    Build()
//
//	for ev, err := range reader.Search(q) {
//	    ...
//	}
//
// Writing a stream:
//
//	writer, _ := irstream.NewDefaultWriter(out, time.Now(), "UTC")
//	writer.WriteLogEvent(time.Now().UnixMilli(), "INFO server started on port 8080")
//	writer.Close()
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the ir and query packages. For
// fine-grained control over buffering and decoding, use ir.NewDecoderBuffer,
// ir.DecodePreamble and ir.DecodeNextLogEvent directly.
package irstream

import (
	"io"
	"time"

	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/internal/hash"
	"github.com/arloliu/irstream/ir"
	"github.com/arloliu/irstream/query"
)

// DefaultTimestampFormat is the timestamp pattern recorded by NewDefaultWriter.
const DefaultTimestampFormat = "yyyy-MM-dd HH:mm:ss.SSS"

var defaultWriterOptions = []ir.WriterOption{
	ir.WithOutputCompression(format.CompressionZstd),
}

func NewReader(src io.Reader, opts ...ir.ReaderOption) (*ir.Reader, error) {
	return ir.NewReader(src, opts...)
}

func Open(path string, opts ...ir.ReaderOption) (*ir.Reader, error) {
	return ir.OpenFile(path, opts...)
}

func NewWriter(dst io.Writer, metadata *ir.Metadata, opts ...ir.WriterOption) (*ir.Writer, error) {
	return ir.NewWriter(dst, metadata, opts...)
}

// NewDefaultWriter creates a Zstd compressed writer whose reference timestamp is refTime.
func NewDefaultWriter(dst io.Writer, refTime time.Time, timezoneID string) (*ir.Writer, error) {
	metadata := ir.NewMetadata(refTime.UnixMilli(), DefaultTimestampFormat, timezoneID)
	return ir.NewWriter(dst, metadata, defaultWriterOptions...)
}

func NewMetadata(refTimestamp int64, timestampFormat, timezoneID string) *ir.Metadata {
	return ir.NewMetadata(refTimestamp, timestampFormat, timezoneID)
}

func NewQuery(lower, upper int64, wildcards []query.WildcardQuery, opts ...query.Option) (*query.Query, error) {
	return query.New(lower, upper, wildcards, opts...)
}

func NewQueryBuilder() *query.Builder {
	return query.NewBuilder()
}

// LogtypeID returns the identifier that ir.LogEvent.LogtypeID reports for events of the given
// logtype.
func LogtypeID(logtype string) uint64 {
	return hash.ID(logtype)
}
