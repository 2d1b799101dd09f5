package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// PlanFileVersion is written into every saved plan.
const PlanFileVersion = "1.0.0"

// PlanFile is a computed plan together with the settings and input that
// produced it.
type PlanFile struct {
	Version   string             `json:"version"`
	CreatedAt string             `json:"created_at"`
	Source    string             `json:"source,omitempty"` // Imported file name
	Settings  model.PlanSettings `json:"settings"`
	Result    model.PlanResult   `json:"result"`
}

// NewPlanFile stamps a plan with the current version and time.
func NewPlanFile(source string, settings model.PlanSettings, result model.PlanResult) PlanFile {
	return PlanFile{
		Version:   PlanFileVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Source:    source,
		Settings:  settings,
		Result:    result,
	}
}

// SavePlan writes a plan file as JSON.
func SavePlan(path string, plan PlanFile) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// LoadPlan reads a plan file written by SavePlan.
func LoadPlan(path string) (PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanFile{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	var plan PlanFile
	if err := json.Unmarshal(data, &plan); err != nil {
		return PlanFile{}, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if plan.Version == "" {
		return PlanFile{}, fmt.Errorf("invalid plan file: missing version field")
	}
	return plan, nil
}
