package irtool

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel  string
	logFormat string
	logger    *zap.Logger
}

// NewRootCommand constructs the irtool root command and registers its subcommands.
func NewRootCommand() *cobra.Command {
	g := &globalOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "irtool",
		Short:        "Inspect, search and create CLP IR log streams",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
			if err != nil {
				return err
			}
			g.logger = logger

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = g.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "Log format: console|json")

	root.AddCommand(
		newDecodeCommand(g),
		newSearchCommand(g),
		newEncodeCommand(g),
		newStatsCommand(g),
	)

	return root
}

// newLogger builds a zap logger writing to w.
func newLogger(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	var encoder zapcore.Encoder
	switch format {
	case "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	case "json":
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, fmt.Errorf("invalid --log-format %q; use console|json", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), lvl)

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
