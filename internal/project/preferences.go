package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/LoadPlan/internal/model"
	"gopkg.in/yaml.v3"
)

// PreferenceFile is the YAML layout of a client preference table.
//
//	clients:
//	  6765:
//	    lado: driver
//	    positions: [front]
type PreferenceFile struct {
	Clients model.PreferenceTable `yaml:"clients"`
}

// LoadPreferences reads and validates a preference table. An empty path
// returns the built-in table.
func LoadPreferences(path string) (model.PreferenceTable, error) {
	if path == "" {
		return model.DefaultPreferences(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	var file PreferenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse preferences YAML: %w", err)
	}
	if file.Clients == nil {
		file.Clients = model.PreferenceTable{}
	}
	if err := file.Clients.Validate(); err != nil {
		return nil, err
	}
	return file.Clients, nil
}

// SavePreferences writes a preference table as YAML, creating parent
// directories as needed.
func SavePreferences(path string, table model.PreferenceTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	data, err := yaml.Marshal(PreferenceFile{Clients: table})
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
