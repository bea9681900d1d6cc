package query

import (
	"fmt"
	"math"
	"strconv"

	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/internal/hash"
	"github.com/arloliu/irstream/internal/options"
)

const (
	// DefaultLowerBound is the lower bound of an unbounded search, the Unix epoch.
	DefaultLowerBound int64 = 0
	// DefaultUpperBound is the upper bound of an unbounded search.
	DefaultUpperBound int64 = math.MaxInt64
	// DefaultTerminationMargin is the default disorder tolerance, in milliseconds, past the
	// upper bound before a search stops reading.
	DefaultTerminationMargin int64 = 60_000
)

// Event is the view of a decoded log event that a Query filters on.
type Event interface {
	Timestamp() int64
	Message() string
}

// Option configures a Query.
type Option = options.Option[*Query]

// WithTerminationMargin sets how far, in milliseconds, timestamps may run past the upper bound
// before the search terminates. Negative margins are rejected with errs.ErrInvalidQuery.
func WithTerminationMargin(ms int64) Option {
	return options.New(func(q *Query) error {
		if ms < 0 {
			return fmt.Errorf("%w: negative termination margin %d", errs.ErrInvalidQuery, ms)
		}
		q.margin = ms

		return nil
	})
}

// Query is an immutable search filter over decoded log events.
//
// An event matches when its timestamp lies in [LowerBound, UpperBound] and, if any wildcard
// queries are given, its message matches at least one of them. Because timestamps in a stream
// may be locally out of order, a search only gives up once a timestamp exceeds
// TerminationTimestamp, which is UpperBound plus the termination margin.
//
// A Query is safe for concurrent use.
type Query struct {
	lower       int64
	upper       int64
	margin      int64
	termination int64
	wildcards   []WildcardQuery
}

// New creates a Query.
//
// Parameters:
//   - lower: inclusive lower bound, in milliseconds since the Unix epoch
//   - upper: inclusive upper bound, in milliseconds since the Unix epoch
//   - wildcards: message filters; nil or empty matches every message
//   - opts: WithTerminationMargin
//
// Returns:
//   - *Query: the query
//   - error: errs.ErrInvalidQuery if lower > upper or an option is invalid
func New(lower, upper int64, wildcards []WildcardQuery, opts ...Option) (*Query, error) {
	if lower > upper {
		return nil, fmt.Errorf("%w: lower bound %d exceeds upper bound %d", errs.ErrInvalidQuery, lower, upper)
	}

	q := &Query{
		lower:     lower,
		upper:     upper,
		margin:    DefaultTerminationMargin,
		wildcards: append([]WildcardQuery(nil), wildcards...),
	}
	if err := options.Apply(q, opts...); err != nil {
		return nil, err
	}

	if q.upper > math.MaxInt64-q.margin {
		q.termination = math.MaxInt64
	} else {
		q.termination = q.upper + q.margin
	}

	return q, nil
}

// NewDefault creates a Query that matches every event.
func NewDefault() *Query {
	q, _ := New(DefaultLowerBound, DefaultUpperBound, nil)
	return q
}

// LowerBound returns the inclusive lower bound of the time range.
func (q *Query) LowerBound() int64 { return q.lower }

// UpperBound returns the inclusive upper bound of the time range.
func (q *Query) UpperBound() int64 { return q.upper }

// TerminationTimestamp returns the timestamp past which a search stops.
func (q *Query) TerminationTimestamp() int64 { return q.termination }

// TerminationMargin returns TerminationTimestamp - UpperBound.
func (q *Query) TerminationMargin() int64 { return q.termination - q.upper }

// Wildcards returns a copy of the wildcard queries.
func (q *Query) Wildcards() []WildcardQuery {
	return append([]WildcardQuery(nil), q.wildcards...)
}

// MatchesTimeRange reports whether ts lies within [LowerBound, UpperBound].
func (q *Query) MatchesTimeRange(ts int64) bool {
	return q.lower <= ts && ts <= q.upper
}

// MatchesWildcards reports whether message matches any of the wildcard queries.
// A query without wildcards matches every message.
func (q *Query) MatchesWildcards(message string) bool {
	if len(q.wildcards) == 0 {
		return true
	}
	for i := range q.wildcards {
		if q.wildcards[i].Matches(message) {
			return true
		}
	}

	return false
}

// Matches reports whether ev satisfies both the time range and the wildcard queries.
func (q *Query) Matches(ev Event) bool {
	return q.MatchesTimeRange(ev.Timestamp()) && q.MatchesWildcards(ev.Message())
}

// IsSafelyPast reports whether ts is beyond the termination timestamp, meaning no later event
// in a stream with bounded disorder can still match.
func (q *Query) IsSafelyPast(ts int64) bool {
	return ts > q.termination
}

// Fingerprint returns a stable 64-bit hash of the query, suitable as a cache key or log field.
func (q *Query) Fingerprint() uint64 {
	fields := make([]string, 0, 3+3*len(q.wildcards))
	fields = append(fields,
		strconv.FormatInt(q.lower, 10),
		strconv.FormatInt(q.upper, 10),
		strconv.FormatInt(q.termination, 10))
	for _, w := range q.wildcards {
		fields = append(fields, w.Pattern, strconv.FormatBool(w.CaseSensitive), strconv.FormatBool(w.PartialMatch))
	}

	return hash.Fields(fields...)
}

func (q *Query) String() string {
	return fmt.Sprintf("Query{lower=%d, upper=%d, termination=%d, wildcards=%v}",
		q.lower, q.upper, q.termination, q.wildcards)
}
