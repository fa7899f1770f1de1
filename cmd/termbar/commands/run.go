package commands

import (
	"github.com/spf13/cobra"
)

func newRunCommand(opts *Options) *cobra.Command {
	var (
		file      string
		workers   int
		rateLimit int
	)

	cmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Run shell commands concurrently behind one progress bar",
		Long: `Reads one shell command per line from --file, or stdin, and runs them
on a pool of workers. The bar advances when a command finishes and a report
follows it. Empty lines and lines starting with # are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := workerFlags(cmd, opts.Config, workers, rateLimit); err != nil {
				return err
			}

			a := newApp(cmd, opts)
			defer a.Shutdown()
			a.HandleSignals()

			commands, err := a.LoadCommands(file)
			if err != nil {
				return err
			}

			result, runErr := a.RunCommands(a.Context(), commands)
			if result != nil {
				if err := a.Render(result); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one command per line (default stdin)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of concurrent workers (0 for CPU count)")
	cmd.Flags().IntVarP(&rateLimit, "rate-limit", "r", 0, "maximum commands started per second (0 for unlimited)")

	return cmd
}
