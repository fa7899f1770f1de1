package commands

import (
	"github.com/spf13/cobra"
)

func newPlanCommand(opts *Options) *cobra.Command {
	var total int

	cmd := &cobra.Command{
		Use:   "plan --total N [flags]",
		Short: "Print the layout a bar would get in this terminal",
		Long: `Plans a bar of --total operations with the current size, field and
width settings and prints which fields fit, without drawing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd, opts)
			defer a.Shutdown()

			result, err := a.Plan(total)
			if err != nil {
				return err
			}
			return a.Render(result)
		},
	}

	cmd.Flags().IntVarP(&total, "total", "t", 0, "number of operations")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}
