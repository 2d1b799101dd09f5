package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the line's fields.
func (l ProductLine) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid product line: %w", err)
	}
	return nil
}

// Validate checks field ranges and that the placement order only names
// configured compartments.
func (s PlanSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid plan settings: %w", err)
	}
	seen := make(map[string]bool, len(s.Compartments))
	for _, c := range s.Compartments {
		if seen[c.ID] {
			return fmt.Errorf("invalid plan settings: duplicate compartment %q", c.ID)
		}
		seen[c.ID] = true
		names := make(map[SideName]bool, len(c.Sides))
		for _, sd := range c.Sides {
			if names[sd.Name] {
				return fmt.Errorf("invalid plan settings: compartment %q has side %q twice", c.ID, sd.Name)
			}
			names[sd.Name] = true
		}
	}
	for _, id := range s.PlacementOrder {
		if !seen[id] {
			return fmt.Errorf("invalid plan settings: placement order names unknown compartment %q", id)
		}
	}
	return nil
}

// Validate checks every preference of the table.
func (t PreferenceTable) Validate() error {
	for id, p := range t {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("invalid preference for client %d: %w", id, err)
		}
	}
	return nil
}
