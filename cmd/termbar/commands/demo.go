package commands

import (
	"time"

	"github.com/spf13/cobra"
)

func newDemoCommand(opts *Options) *cobra.Command {
	var (
		total  int
		delay  time.Duration
		report bool
	)

	cmd := &cobra.Command{
		Use:   "demo [flags]",
		Short: "Show a bar filling up with simulated work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd, opts)
			defer a.Shutdown()
			a.HandleSignals()

			result, err := a.Demo(a.Context(), total, delay)
			if err != nil {
				return err
			}
			if report {
				return a.Render(result)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&total, "total", "t", 100, "number of simulated operations")
	cmd.Flags().DurationVarP(&delay, "delay", "d", 50*time.Millisecond, "time spent on each operation")
	cmd.Flags().BoolVar(&report, "report", false, "print a report after the bar")

	return cmd
}
