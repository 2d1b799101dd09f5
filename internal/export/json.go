package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// WriteJSON writes the plan as indented JSON. Piles refer to their base by
// id, so the output is a plain tree without cycles.
func WriteJSON(w io.Writer, result model.PlanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}

// ExportJSON writes the plan to a JSON file.
func ExportJSON(path string, result model.PlanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
