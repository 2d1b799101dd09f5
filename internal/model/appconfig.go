package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default planning settings applied to every run
	DefaultGroupBy         GroupKey `json:"default_group_by"`
	DefaultMaxUnitsPerPile int      `json:"default_max_units_per_pile"`
	DefaultGeneralCeiling  int      `json:"default_general_ceiling"`
	DefaultSalvageCeiling  int      `json:"default_salvage_ceiling"`
	PreferencesFile        string   `json:"preferences_file"` // YAML preference table; empty = built-in table

	// Service settings
	DatabasePath string `json:"database_path"` // SQLite file for shared plans
	ListenAddr   string `json:"listen_addr"`
	BaseURL      string `json:"base_url"` // Prefix of share links
	InboxDir     string `json:"inbox_dir"`
	OutboxDir    string `json:"outbox_dir"`

	// Logging
	LogLevel  string `json:"log_level"`  // "debug", "info", "warn", "error"
	LogFormat string `json:"log_format"` // "console" or "json"

	RecentFiles []string `json:"recent_files"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultGroupBy:         defaults.GroupBy,
		DefaultMaxUnitsPerPile: defaults.MaxUnitsPerPile,
		DefaultGeneralCeiling:  defaults.Ceilings.General,
		DefaultSalvageCeiling:  defaults.Ceilings.Salvage,
		DatabasePath:           "loadplan.db",
		ListenAddr:             ":8080",
		BaseURL:                "http://localhost:8080",
		LogLevel:               "info",
		LogFormat:              "console",
		RecentFiles:            []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a PlanSettings struct.
// Zero values leave the setting untouched.
func (c AppConfig) ApplyToSettings(s *PlanSettings) {
	if c.DefaultGroupBy != "" {
		s.GroupBy = c.DefaultGroupBy
	}
	if c.DefaultMaxUnitsPerPile > 0 {
		s.MaxUnitsPerPile = c.DefaultMaxUnitsPerPile
	}
	if c.DefaultGeneralCeiling > 0 {
		s.Ceilings.General = c.DefaultGeneralCeiling
	}
	if c.DefaultSalvageCeiling > 0 {
		s.Ceilings.Salvage = c.DefaultSalvageCeiling
	}
}
