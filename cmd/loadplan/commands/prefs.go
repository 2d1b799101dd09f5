package commands

import (
	"fmt"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/piwi3910/LoadPlan/internal/project"
	"github.com/spf13/cobra"
)

func newPrefsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage the client preference table",
	}

	var builtIn bool
	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the preference table as YAML",
		Long: `Write the active preference table (from --prefs or the config file) as
YAML, ready to be edited and passed back with --prefs. With --built-in the
table compiled into the program is written instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := a.prefs
			if builtIn {
				table = model.DefaultPreferences()
			}
			if err := project.SavePreferences(args[0], table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d client preferences written to %s\n", len(table), args[0])
			return nil
		},
	}
	exportCmd.Flags().BoolVar(&builtIn, "built-in", false, "export the built-in table")

	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a preference table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := project.LoadPreferences(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d client preferences OK\n", args[0], len(table))
			return nil
		},
	}

	cmd.AddCommand(exportCmd, checkCmd)
	return cmd
}
