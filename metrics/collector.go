// Package metrics exposes decoder and buffer activity as Prometheus counters.
//
// A nil *Collector is valid and records nothing, so components can call it unconditionally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "irstream"

	// Decode error kinds.
	ErrorKindIncomplete = "incomplete"
	ErrorKindMalformed  = "malformed"
	ErrorKindMetadata   = "metadata"
)

// Collector holds the decoder metrics.
type Collector struct {
	bytesRead      prometheus.Counter
	refills        prometheus.Counter
	bufferGrows    prometheus.Counter
	eventsDecoded  prometheus.Counter
	eventsReturned prometheus.Counter
	searchesEnded  prometheus.Counter
	decodeErrors   *prometheus.CounterVec // by kind
}

// New creates a Collector and registers it with reg. A nil reg leaves the metrics unregistered.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "bytes_read_total",
			Help:      "Total number of bytes read from IR byte sources",
		}),
		refills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "refills_total",
			Help:      "Total number of stream buffer refills",
		}),
		bufferGrows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "grows_total",
			Help:      "Total number of times a stream buffer doubled its capacity",
		}),
		eventsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "events_decoded_total",
			Help:      "Total number of log events decoded, matching or not",
		}),
		eventsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "events_returned_total",
			Help:      "Total number of log events returned to callers",
		}),
		searchesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "searches_terminated_total",
			Help:      "Total number of searches stopped early past the termination timestamp",
		}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "errors_total",
			Help:      "Total number of decode failures by kind",
		}, []string{"kind"}), // kind: incomplete, malformed, metadata
	}

	if reg == nil {
		return c, nil
	}

	for _, collector := range []prometheus.Collector{
		c.bytesRead, c.refills, c.bufferGrows,
		c.eventsDecoded, c.eventsReturned, c.searchesEnded, c.decodeErrors,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveRefill records one stream buffer refill.
func (c *Collector) ObserveRefill(bytesRead int, grown bool) {
	if c == nil {
		return
	}
	c.refills.Inc()
	c.bytesRead.Add(float64(bytesRead))
	if grown {
		c.bufferGrows.Inc()
	}
}

// EventDecoded records a log event decoded from the stream.
func (c *Collector) EventDecoded() {
	if c == nil {
		return
	}
	c.eventsDecoded.Inc()
}

// EventReturned records a log event handed to the caller.
func (c *Collector) EventReturned() {
	if c == nil {
		return
	}
	c.eventsReturned.Inc()
}

// SearchTerminated records a search stopped by the termination timestamp.
func (c *Collector) SearchTerminated() {
	if c == nil {
		return
	}
	c.searchesEnded.Inc()
}

// DecodeError records a decode failure of the given kind.
func (c *Collector) DecodeError(kind string) {
	if c == nil {
		return
	}
	c.decodeErrors.WithLabelValues(kind).Inc()
}
