package commands

import (
	"path/filepath"

	"github.com/piwi3910/LoadPlan/internal/server"
	"github.com/piwi3910/LoadPlan/internal/store"
	"github.com/piwi3910/LoadPlan/internal/telemetry"
	"github.com/piwi3910/LoadPlan/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr    string
		dbPath  string
		baseURL string
		inbox   string
		outbox  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the planner over HTTP:

  POST /api/plan             plan an uploaded CSV/XLSX or a JSON request
  POST /api/share            store a plan and get a share link
  GET  /api/shared           list shared plans
  GET  /api/shared/:id       fetch a shared plan
  GET  /api/shared/:id/pdf   loading report of a shared plan
  GET  /health, /metrics

With --watch the inbox watcher runs alongside the server.`,
		Example: `  loadplan serve --addr :8080 --db /var/lib/loadplan/plans.db --watch /srv/inbox`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.config
			if addr == "" {
				addr = cfg.ListenAddr
			}
			if dbPath == "" {
				dbPath = cfg.DatabasePath
			}
			if baseURL == "" {
				baseURL = cfg.BaseURL
			}
			if inbox == "" {
				inbox = cfg.InboxDir
			}
			if outbox == "" {
				outbox = cfg.OutboxDir
			}

			st, err := store.Open(ctx, store.Config{Path: dbPath})
			if err != nil {
				return err
			}
			defer st.Close()

			metrics := telemetry.NewPlanMetrics("loadplan")
			srv := server.New(server.Config{
				Settings:    a.settings,
				Preferences: a.prefs,
				BaseURL:     baseURL,
			}, st, metrics, a.log)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx, addr) })

			if inbox != "" {
				if outbox == "" {
					outbox = filepath.Join(inbox, "planned")
				}
				w, err := watch.New(watch.Config{
					Inbox:       inbox,
					Outbox:      outbox,
					Settings:    a.settings,
					Preferences: a.prefs,
				}, metrics, a.log)
				if err != nil {
					return err
				}
				g.Go(func() error { return w.Run(ctx) })
			}

			a.log.Info().Str("addr", addr).Str("db", dbPath).Str("inbox", inbox).Msg("LoadPlan serving")
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for shared plans")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "prefix of share links")
	cmd.Flags().StringVar(&inbox, "watch", "", "inbox directory to watch for order files")
	cmd.Flags().StringVar(&outbox, "outbox", "", "directory for plans of watched files")

	return cmd
}
