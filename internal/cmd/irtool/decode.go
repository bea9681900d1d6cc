package irtool

import (
	"bufio"

	"github.com/spf13/cobra"
)

// newDecodeCommand constructs the `decode` command.
func newDecodeCommand(g *globalOptions) *cobra.Command {
	var (
		rf readerFlags
		pf printFlags
	)

	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Print every log event of IR streams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()

			p, err := newEventPrinter(out, &pf)
			if err != nil {
				return err
			}
			for _, path := range args {
				if _, err := printEvents(cmd, g, &rf, path, nil, pf.limit, p); err != nil {
					return err
				}
			}

			return out.Flush()
		},
	}
	rf.register(cmd)
	pf.register(cmd)

	return cmd
}
