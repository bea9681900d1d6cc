package ir

import (
	"fmt"
	"time"

	"github.com/arloliu/irstream/query"
)

// TimestampLayout is the layout of formatted timestamps: ISO 8601 with a space separator,
// millisecond precision and the numeric zone offset.
const TimestampLayout = "2006-01-02 15:04:05.000-07:00"

// LogEvent is one decoded log event.
type LogEvent struct {
	message   string
	timestamp int64
	index     uint64
	logtypeID uint64
	metadata  *Metadata
}

var _ query.Event = (*LogEvent)(nil)

// NewLogEvent creates a LogEvent. metadata may be nil.
func NewLogEvent(message string, timestamp int64, index uint64, metadata *Metadata) *LogEvent {
	return &LogEvent{
		message:   message,
		timestamp: timestamp,
		index:     index,
		metadata:  metadata,
	}
}

// Message returns the decoded log message.
func (e *LogEvent) Message() string { return e.message }

// Timestamp returns the event time in milliseconds since the Unix epoch.
func (e *LogEvent) Timestamp() int64 { return e.timestamp }

// Index returns the 0-based position of the event in its stream.
func (e *LogEvent) Index() uint64 { return e.index }

// LogtypeID returns the xxHash64 of the event's logtype. Events produced by the same log
// statement share a logtype ID.
func (e *LogEvent) LogtypeID() uint64 { return e.logtypeID }

// Metadata returns the metadata of the stream the event came from, or nil.
func (e *LogEvent) Metadata() *Metadata { return e.metadata }

// Time returns the event timestamp as a time.Time in UTC.
func (e *LogEvent) Time() time.Time {
	return time.UnixMilli(e.timestamp).UTC()
}

// FormattedTimestamp formats the timestamp in the stream's time zone, or UTC when the event
// has no metadata.
func (e *LogEvent) FormattedTimestamp() string {
	loc := time.UTC
	if e.metadata != nil {
		loc = e.metadata.Location()
	}

	return e.FormattedTimestampIn(loc)
}

// FormattedTimestampIn formats the timestamp in loc.
func (e *LogEvent) FormattedTimestampIn(loc *time.Location) string {
	return time.UnixMilli(e.timestamp).In(loc).Format(TimestampLayout)
}

// FormattedMessage returns the formatted timestamp followed by the message. A nil loc uses the
// stream's time zone.
func (e *LogEvent) FormattedMessage(loc *time.Location) string {
	if loc == nil {
		return e.FormattedTimestamp() + e.message
	}

	return e.FormattedTimestampIn(loc) + e.message
}

func (e *LogEvent) String() string {
	return e.FormattedMessage(nil)
}

// GoString renders the event's fields for debugging.
func (e *LogEvent) GoString() string {
	return fmt.Sprintf("LogEvent{index=%d, timestamp=%d, logtype_id=%#x, message=%q}",
		e.index, e.timestamp, e.logtypeID, e.message)
}
