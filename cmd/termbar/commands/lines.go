package commands

import (
	"github.com/spf13/cobra"
)

func newLinesCommand(opts *Options) *cobra.Command {
	var (
		total   int
		outPath string
		report  bool
	)

	cmd := &cobra.Command{
		Use:   "lines --total N [flags]",
		Short: "Advance the bar once per line read from stdin",
		Long: `Reads stdin line by line and advances a progress bar of --total
operations for each line. Lines are discarded unless --out names a file to
copy them to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd, opts)
			defer a.Shutdown()
			a.HandleSignals()

			result, err := a.CountLines(a.Context(), total, outPath)
			if err != nil {
				return err
			}
			if report {
				return a.Render(result)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&total, "total", "t", 0, "number of lines expected")
	cmd.Flags().StringVar(&outPath, "out", "", "copy the input lines to this file")
	cmd.Flags().BoolVar(&report, "report", false, "print a report after the bar")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}
