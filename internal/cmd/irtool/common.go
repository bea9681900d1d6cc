package irtool

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/ir"
	"github.com/arloliu/irstream/query"
)

const stdioPath = "-"

// readerFlags are the input flags shared by the reading commands.
type readerFlags struct {
	compression     string
	allowIncomplete bool
	bufferSize      int
}

func (f *readerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.compression, "compression", "auto", "Input compression: auto|none|zstd|s2|lz4")
	cmd.Flags().BoolVar(&f.allowIncomplete, "allow-incomplete", false, "Treat a truncated stream as ended instead of failing")
	cmd.Flags().IntVar(&f.bufferSize, "buffer-size", ir.DefaultReaderBufferSize, "Initial decode buffer size in bytes")
}

// open creates a Reader for path, or for the command's standard input when path is "-".
func (f *readerFlags) open(cmd *cobra.Command, g *globalOptions, path string, extra ...ir.Option) (*ir.Reader, error) {
	ct, ok := format.ParseCompressionType(f.compression)
	if !ok {
		return nil, fmt.Errorf("invalid --compression %q", f.compression)
	}

	decoderOpts := append([]ir.Option{
		ir.WithBufferCapacity(f.bufferSize),
		ir.WithLogger(g.logger.With(zap.String("file", path))),
	}, extra...)
	opts := []ir.ReaderOption{
		ir.WithCompression(ct),
		ir.WithAllowIncomplete(f.allowIncomplete),
		ir.WithContext(cmd.Context()),
		ir.WithDecoderOptions(decoderOpts...),
	}

	if path == stdioPath {
		return ir.NewReader(cmd.InOrStdin(), opts...)
	}

	return ir.OpenFile(path, opts...)
}

// printFlags control how events are written out.
type printFlags struct {
	timezone string
	asJSON   bool
	limit    int
}

func (f *printFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "Time zone for timestamps (default: the stream's zone)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print one JSON object per event")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Stop after this many events per file (0 means no limit)")
}

type eventRecord struct {
	File      string `json:"file"`
	Index     uint64 `json:"index"`
	Timestamp int64  `json:"timestamp"`
	Time      string `json:"time"`
	Message   string `json:"message"`
}

type eventPrinter struct {
	w   io.Writer
	enc *json.Encoder
	loc *time.Location
}

func newEventPrinter(w io.Writer, f *printFlags) (*eventPrinter, error) {
	p := &eventPrinter{w: w}
	if f.timezone != "" {
		loc, err := time.LoadLocation(f.timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid --timezone: %w", err)
		}
		p.loc = loc
	}
	if f.asJSON {
		p.enc = json.NewEncoder(w)
	}

	return p, nil
}

func (p *eventPrinter) print(path string, ev *ir.LogEvent) error {
	if p.enc != nil {
		ts := ev.FormattedTimestamp()
		if p.loc != nil {
			ts = ev.FormattedTimestampIn(p.loc)
		}

		return p.enc.Encode(eventRecord{
			File:      path,
			Index:     ev.Index(),
			Timestamp: ev.Timestamp(),
			Time:      ts,
			Message:   strings.TrimSuffix(ev.Message(), "\n"),
		})
	}

	line := ev.FormattedMessage(p.loc)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(p.w, line)

	return err
}

// printEvents writes the events of path that match q, or every event when q is nil, and
// returns how many were written.
func printEvents(cmd *cobra.Command, g *globalOptions, rf *readerFlags, path string, q *query.Query, limit int, p *eventPrinter) (int, error) {
	r, err := rf.open(cmd, g, path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	seq := r.All()
	if q != nil {
		seq = r.Search(q)
	}

	n := 0
	for ev, err := range seq {
		if err != nil {
			return n, fmt.Errorf("%s: %w", path, err)
		}
		if p != nil {
			if err := p.print(path, ev); err != nil {
				return n, err
			}
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	g.logger.Debug("file processed",
		zap.String("file", path),
		zap.Int("events", n),
		zap.Uint64("decoded", r.NumDecodedLogEvents()))

	return n, nil
}
