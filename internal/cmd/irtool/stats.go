package irtool

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/arloliu/irstream/ir"
	"github.com/arloliu/irstream/metrics"
)

// streamStats summarizes one IR stream.
type streamStats struct {
	metadata    *ir.Metadata
	compression string
	events      uint64
	first       *ir.LogEvent
	last        *ir.LogEvent
	minTs       int64
	maxTs       int64
	logtypes    map[uint64]*logtypeStats
}

type logtypeStats struct {
	id     uint64
	count  uint64
	sample string
}

func newStreamStats() *streamStats {
	return &streamStats{
		minTs:    math.MaxInt64,
		maxTs:    math.MinInt64,
		logtypes: make(map[uint64]*logtypeStats),
	}
}

func (s *streamStats) add(ev *ir.LogEvent) {
	if s.first == nil {
		s.first = ev
	}
	s.last = ev
	s.events++
	s.minTs = min(s.minTs, ev.Timestamp())
	s.maxTs = max(s.maxTs, ev.Timestamp())

	lt, ok := s.logtypes[ev.LogtypeID()]
	if !ok {
		lt = &logtypeStats{id: ev.LogtypeID(), sample: strings.TrimSuffix(ev.Message(), "\n")}
		s.logtypes[ev.LogtypeID()] = lt
	}
	lt.count++
}

// topLogtypes returns the n most frequent logtypes, ties broken by ID.
func (s *streamStats) topLogtypes(n int) []*logtypeStats {
	all := make([]*logtypeStats, 0, len(s.logtypes))
	for _, lt := range s.logtypes {
		all = append(all, lt)
	}
	slices.SortFunc(all, func(a, b *logtypeStats) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}

		return cmp.Compare(a.id, b.id)
	})

	return all[:min(n, len(all))]
}

func (s *streamStats) write(w io.Writer, path string, top int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", path)
	fmt.Fprintf(tw, "compression:\t%s\n", s.compression)
	fmt.Fprintf(tw, "version:\t%s\n", s.metadata.Version())
	fmt.Fprintf(tw, "timezone:\t%s\n", s.metadata.TimezoneID())
	fmt.Fprintf(tw, "timestamp format:\t%s\n", s.metadata.TimestampFormat())
	loc := s.metadata.Location()
	fmt.Fprintf(tw, "reference:\t%s\n", formatMillis(s.metadata.ReferenceTimestamp(), loc))
	fmt.Fprintf(tw, "events:\t%d\n", s.events)
	if s.events > 0 {
		fmt.Fprintf(tw, "first:\t%s\n", s.first.FormattedTimestamp())
		fmt.Fprintf(tw, "last:\t%s\n", s.last.FormattedTimestamp())
		fmt.Fprintf(tw, "earliest:\t%s\n", formatMillis(s.minTs, loc))
		fmt.Fprintf(tw, "latest:\t%s\n", formatMillis(s.maxTs, loc))
	}
	fmt.Fprintf(tw, "logtypes:\t%d\n", len(s.logtypes))
	if err := tw.Flush(); err != nil {
		return err
	}

	if top <= 0 || len(s.logtypes) == 0 {
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tLOGTYPE ID\tSAMPLE")
	for _, lt := range s.topLogtypes(top) {
		fmt.Fprintf(tw, "%d\t%016x\t%s\n", lt.count, lt.id, lt.sample)
	}

	return tw.Flush()
}

// newStatsCommand constructs the `stats` command.
func newStatsCommand(g *globalOptions) *cobra.Command {
	var (
		rf          readerFlags
		top         int
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: "Summarize IR streams: metadata, time span and most frequent logtypes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			collector, err := metrics.New(reg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, path := range args {
				if i > 0 {
					fmt.Fprintln(out)
				}
				stats, err := collectStats(cmd, g, &rf, path, collector)
				if err != nil {
					return err
				}
				if err := stats.write(out, path, top); err != nil {
					return err
				}
			}

			if !showMetrics {
				return nil
			}
			fmt.Fprintln(out)

			return writeMetrics(out, reg)
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&top, "top", 10, "Number of most frequent logtypes to list")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print decoder metrics in the Prometheus text format")

	return cmd
}

func collectStats(cmd *cobra.Command, g *globalOptions, rf *readerFlags, path string, c *metrics.Collector) (*streamStats, error) {
	r, err := rf.open(cmd, g, path, ir.WithMetrics(c))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	stats := newStreamStats()
	if stats.metadata, err = r.Metadata(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	stats.compression = r.Compression().String()

	for ev, err := range r.All() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		stats.add(ev)
	}

	return stats, nil
}

func formatMillis(ts int64, loc *time.Location) string {
	return time.UnixMilli(ts).In(loc).Format(ir.TimestampLayout)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}

	return nil
}
