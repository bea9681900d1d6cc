// Package query defines the filters applied while searching an IR stream.
//
// A Query combines an inclusive time range with optional wildcard message filters:
//
//	q, err := query.New(start, end, []query.WildcardQuery{
//	    query.Substring("connection reset", false),
//	}, query.WithTerminationMargin(30_000))
//
// Timestamps in a stream are only approximately ordered, so a search keeps reading past the
// upper bound until an event's timestamp exceeds the termination timestamp (the upper bound
// plus the termination margin). Events beyond the margin are assumed unable to precede a
// match.
//
// Queries are immutable and safe to share between goroutines. Builder and Config offer
// chained and YAML-based construction respectively.
package query
