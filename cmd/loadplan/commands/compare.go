package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/spf13/cobra"
)

func newCompareCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <file>",
		Short: "Compare loading policies on the same order",
		Long: `Plan the same order under the current settings and a few alternative
policies (the other group key, the salvage ceiling everywhere, smaller
special piles) and print the outcome of each side by side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.importLines(args[0])
			if err != nil {
				return err
			}

			results := engine.CompareScenarios(engine.BuildDefaultScenarios(a.settings), lines, a.prefs)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tPILES\tSTACKED\tUNALLOCATED PILES\tUNALLOCATED PRODUCTS\tUTILIZATION")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
					r.Scenario.Name, r.AllocatedPiles, r.StackedPiles,
					r.UnallocatedPiles, r.UnallocatedProducts, r.Utilization)
			}
			return tw.Flush()
		},
	}
	return cmd
}
