package irtool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/irstream"
	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/ir"
)

var (
	nowFunc    = time.Now
	createFile = func(name string) (io.WriteCloser, error) { return os.Create(name) }
)

const encodeLong = `Encode text logs into an IR stream.

Each line becomes one log event. A line starting with a timestamp in the layout printed by
"irtool decode" keeps that timestamp; other lines reuse the previous one. With no FILE, or
when FILE is -, standard input is read.`

// newEncodeCommand constructs the `encode` command.
func newEncodeCommand(g *globalOptions) *cobra.Command {
	var (
		output          string
		compression     string
		timezone        string
		timestampFormat string
		flushThreshold  int
	)

	cmd := &cobra.Command{
		Use:   "encode [FILE...]",
		Short: "Encode text logs into an IR stream",
		Long:  encodeLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, ok := format.ParseCompressionType(compression)
			if !ok || ct == format.CompressionAuto {
				return fmt.Errorf("invalid --compression %q", compression)
			}
			if len(args) == 0 {
				args = []string{stdioPath}
			}

			var dst io.Writer = cmd.OutOrStdout()
			var f io.WriteCloser
			if output != stdioPath {
				var err error
				if f, err = createFile(output); err != nil {
					return err
				}
				dst = f
			}

			enc := &lineEncoder{
				dst:             dst,
				timezone:        timezone,
				timestampFormat: timestampFormat,
				opts: []ir.WriterOption{
					ir.WithOutputCompression(ct),
					ir.WithFlushThreshold(flushThreshold),
				},
			}
			if err := enc.encodeAll(cmd, args); err != nil {
				if f != nil {
					_ = f.Close()
				}
				return err
			}
			if f != nil {
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to close %s: %w", output, err)
				}
			}
			g.logger.Info("IR stream written",
				zap.String("output", output),
				zap.Stringer("compression", ct),
				zap.Uint64("events", enc.numEvents))

			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", stdioPath, "Output file, - for standard output")
	cmd.Flags().StringVar(&compression, "compression", "zstd", "Output compression: none|zstd|s2|lz4")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "Time zone recorded in the stream metadata")
	cmd.Flags().StringVar(&timestampFormat, "timestamp-format", irstream.DefaultTimestampFormat,
		"Timestamp pattern recorded in the stream metadata")
	cmd.Flags().IntVar(&flushThreshold, "flush-threshold", 32*1024, "Encoded bytes buffered before each write")

	return cmd
}

// lineEncoder writes the lines of one or more inputs to a single IR stream. The writer is
// created lazily so that the first timestamp becomes the reference timestamp.
type lineEncoder struct {
	dst             io.Writer
	timezone        string
	timestampFormat string
	opts            []ir.WriterOption

	w         *ir.Writer
	last      int64
	numEvents uint64
}

// encodeAll encodes every input in order and terminates the stream.
func (e *lineEncoder) encodeAll(cmd *cobra.Command, paths []string) error {
	for _, path := range paths {
		if err := e.encodeFile(cmd, path); err != nil {
			return err
		}
	}

	return e.close()
}

func (e *lineEncoder) encodeFile(cmd *cobra.Command, path string) error {
	var src io.Reader = cmd.InOrStdin()
	if path != stdioPath {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	br := bufio.NewReader(src)
	for {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if werr := e.writeLine(line); werr != nil {
				return fmt.Errorf("%s: %w", path, werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (e *lineEncoder) writeLine(line string) error {
	ts, msg, ok := splitTimestamp(line)
	if !ok {
		ts, msg = e.last, line
		if e.w == nil {
			ts = nowFunc().UnixMilli()
		}
	}

	if err := e.ensureWriter(ts); err != nil {
		return err
	}
	if err := e.w.WriteLogEvent(ts, msg); err != nil {
		return err
	}
	e.last = ts
	e.numEvents++

	return nil
}

func (e *lineEncoder) ensureWriter(ref int64) error {
	if e.w != nil {
		return nil
	}

	w, err := ir.NewWriter(e.dst, ir.NewMetadata(ref, e.timestampFormat, e.timezone), e.opts...)
	if err != nil {
		return err
	}
	e.w = w

	return nil
}

func (e *lineEncoder) close() error {
	if err := e.ensureWriter(nowFunc().UnixMilli()); err != nil {
		return err
	}

	return e.w.Close()
}

// splitTimestamp splits a line printed by `irtool decode` into its timestamp and message.
func splitTimestamp(line string) (int64, string, bool) {
	n := len(ir.TimestampLayout)
	if len(line) < n {
		return 0, "", false
	}
	t, err := time.Parse(ir.TimestampLayout, line[:n])
	if err != nil {
		return 0, "", false
	}

	return t.UnixMilli(), line[n:], true
}
