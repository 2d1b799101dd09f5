package commands

import (
	"time"

	"github.com/piwi3910/LoadPlan/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	var (
		pdf   bool
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <inbox> <outbox>",
		Short: "Plan order files as they arrive in a directory",
		Long: `Watch the inbox directory. Every CSV or XLSX order file found there, or
written later, is planned once per version and its plan is written to the
outbox as <name>.json (and <name>.pdf with --pdf).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := watch.New(watch.Config{
				Inbox:       args[0],
				Outbox:      args[1],
				Settings:    a.settings,
				Preferences: a.prefs,
				PDF:         pdf,
				Delay:       delay,
			}, nil, a.log)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&pdf, "pdf", false, "also write the loading report")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "quiet period before a changed file is planned")

	return cmd
}
