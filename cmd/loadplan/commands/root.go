package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/piwi3910/LoadPlan/internal/project"
	"github.com/piwi3910/LoadPlan/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by all commands, loaded before any of them runs.
type app struct {
	configPath string
	prefsPath  string
	logLevel   string
	logFormat  string

	config   model.AppConfig
	settings model.PlanSettings
	prefs    model.PreferenceTable
	log      zerolog.Logger
	closer   io.Closer
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "loadplan",
		Short: "LoadPlan - glass panel truck loading planner",
		Long: `LoadPlan builds piles of glass panels from a delivery order export and
places them on the truck's cradles (cavaletes) and rear rack (malhal).

Placement follows the loading rules of the yard:
  - Client preferences for side and position
  - Whole-client groups kept together where they fit
  - Stack ceilings per compartment and material
  - Driver/helper weight balance on vertical cradles
  - A salvage pass for whatever is left`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path (default ~/.loadplan/config.json)")
	rootCmd.PersistentFlags().StringVar(&a.prefsPath, "prefs", "", "client preference table (YAML)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	rootCmd.AddCommand(newPlanCommand(a))
	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newCompareCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newPrefsCommand(a))

	return rootCmd
}

// load reads the app config and the preference table and sets up logging.
// Flags win over the LOG_LEVEL environment variable, which wins over the
// config file.
func (a *app) load() error {
	path := a.configPath
	if path == "" {
		path = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(path)
	if err != nil {
		return err
	}
	a.config = cfg

	level := cfg.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if a.logLevel != "" {
		level = a.logLevel
	}
	format := cfg.LogFormat
	if a.logFormat != "" {
		format = a.logFormat
	}
	logger, closer, err := telemetry.NewLogger(telemetry.LoggingConfig{Level: level, Format: format})
	if err != nil {
		return err
	}
	a.log, a.closer = logger, closer

	a.settings = model.DefaultSettings()
	cfg.ApplyToSettings(&a.settings)
	if err := a.settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	prefsPath := cfg.PreferencesFile
	if a.prefsPath != "" {
		prefsPath = a.prefsPath
	}
	prefs, err := project.LoadPreferences(prefsPath)
	if err != nil {
		return err
	}
	a.prefs = prefs

	a.log.Debug().
		Str("config", path).
		Str("preferences", prefsPath).
		Int("clients", len(prefs)).
		Msg("configuration loaded")
	return nil
}

// saveRecent records a planned file in the app config. Failures are only
// logged.
func (a *app) saveRecent(file string) {
	path := a.configPath
	if path == "" {
		path = project.DefaultConfigPath()
	}
	project.AddRecentFile(&a.config, file)
	if err := project.SaveAppConfig(path, a.config); err != nil {
		a.log.Warn().Err(err).Msg("failed to update recent files")
	}
}
