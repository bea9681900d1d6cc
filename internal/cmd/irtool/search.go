package irtool

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/irstream/query"
)

// queryFlags describe a search on the command line, optionally on top of a YAML query file.
type queryFlags struct {
	queryFile     string
	lower         int64
	upper         int64
	since         string
	until         string
	margin        time.Duration
	patterns      []string
	caseSensitive bool
	fullMatch     bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.queryFile, "query", "", "YAML query file; other query flags override its values")
	flags.Int64Var(&f.lower, "lower", query.DefaultLowerBound, "Lower timestamp bound in epoch milliseconds")
	flags.Int64Var(&f.upper, "upper", query.DefaultUpperBound, "Upper timestamp bound in epoch milliseconds")
	flags.StringVar(&f.since, "since", "", "Lower timestamp bound as an RFC 3339 time")
	flags.StringVar(&f.until, "until", "", "Upper timestamp bound as an RFC 3339 time")
	flags.DurationVar(&f.margin, "margin", time.Duration(query.DefaultTerminationMargin)*time.Millisecond,
		"How far past the upper bound the search continues before stopping")
	flags.StringArrayVarP(&f.patterns, "pattern", "p", nil, "Wildcard pattern; repeat for alternatives")
	flags.BoolVar(&f.caseSensitive, "case-sensitive", false, "Match patterns case-sensitively")
	flags.BoolVar(&f.fullMatch, "full-match", false, "Patterns must match the whole message")
	cmd.MarkFlagsMutuallyExclusive("lower", "since")
	cmd.MarkFlagsMutuallyExclusive("upper", "until")
}

func (f *queryFlags) build(cmd *cobra.Command) (*query.Query, error) {
	b := query.NewBuilder()
	if f.queryFile != "" {
		cfg, err := query.LoadConfig(f.queryFile)
		if err != nil {
			return nil, err
		}
		b = cfg.Builder()
	}

	flags := cmd.Flags()
	if flags.Changed("lower") {
		b.SetLowerBound(f.lower)
	}
	if flags.Changed("upper") {
		b.SetUpperBound(f.upper)
	}
	if f.since != "" {
		t, err := time.Parse(time.RFC3339Nano, f.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		b.SetLowerBound(t.UnixMilli())
	}
	if f.until != "" {
		t, err := time.Parse(time.RFC3339Nano, f.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		b.SetUpperBound(t.UnixMilli())
	}
	if flags.Changed("margin") {
		b.SetTerminationMargin(f.margin.Milliseconds())
	}
	for _, pattern := range f.patterns {
		b.AddWildcard(query.WildcardQuery{
			Pattern:       pattern,
			CaseSensitive: f.caseSensitive,
			PartialMatch:  !f.fullMatch,
		})
	}

	return b.Build()
}

const searchExample = `  irtool search app.clp.zst -p "*connection reset*" --since 2024-03-01T10:00:00Z
  irtool search --query slow-requests.yaml app.clp.zst`

// newSearchCommand constructs the `search` command.
func newSearchCommand(g *globalOptions) *cobra.Command {
	var (
		rf    readerFlags
		pf    printFlags
		qf    queryFlags
		count bool
	)

	cmd := &cobra.Command{
		Use:     "search FILE...",
		Short:   "Print the log events matching a time range and wildcard patterns",
		Example: searchExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.build(cmd)
			if err != nil {
				return err
			}
			g.logger.Debug("search query", zap.Stringer("query", q))

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()

			var p *eventPrinter
			if !count {
				if p, err = newEventPrinter(out, &pf); err != nil {
					return err
				}
			}

			total := 0
			for _, path := range args {
				n, err := printEvents(cmd, g, &rf, path, q, pf.limit, p)
				if err != nil {
					return err
				}
				total += n
			}
			if count {
				fmt.Fprintln(out, total)
			}

			return out.Flush()
		},
	}
	rf.register(cmd)
	pf.register(cmd)
	qf.register(cmd)
	cmd.Flags().BoolVarP(&count, "count", "c", false, "Print only the number of matching events")

	return cmd
}
