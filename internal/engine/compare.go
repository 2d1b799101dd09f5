package engine

import (
	"fmt"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PlanSettings
}

// ComparisonResult holds the plan and computed statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario            ComparisonScenario
	Result              model.PlanResult
	AllocatedPiles      int
	UnallocatedPiles    int
	UnallocatedProducts int
	Utilization         float64
	StackedPiles        int
}

// CompareScenarios plans the same lines under each scenario and returns the
// results in scenario order. This enables side-by-side comparison of
// different ceiling policies and grouping keys.
func CompareScenarios(scenarios []ComparisonScenario, lines []model.ProductLine, prefs PreferenceResolver) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		planner := New(scenario.Settings, WithPreferences(prefs))
		result := planner.Plan(lines)

		stacked := 0
		for _, p := range result.Allocated {
			if p.Stacked() {
				stacked++
			}
		}

		results = append(results, ComparisonResult{
			Scenario:            scenario,
			Result:              result,
			AllocatedPiles:      result.Summary.AllocatedPiles,
			UnallocatedPiles:    result.Summary.UnallocatedPiles,
			UnallocatedProducts: result.Summary.UnallocatedProducts,
			Utilization:         result.TotalUtilization(),
			StackedPiles:        stacked,
		})
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying the policies that differ between loading
// practices.
func BuildDefaultScenarios(baseSettings model.PlanSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: the other grouping key
	altGroup := baseSettings
	if baseSettings.GroupBy == model.GroupBySequence {
		altGroup.GroupBy = model.GroupByClient
		scenarios = append(scenarios, ComparisonScenario{Name: "Group by Client", Settings: altGroup})
	} else {
		altGroup.GroupBy = model.GroupBySequence
		scenarios = append(scenarios, ComparisonScenario{Name: "Group by Sequence", Settings: altGroup})
	}

	// Scenario: salvage ceiling for every stack
	if baseSettings.Ceilings.Salvage > baseSettings.Ceilings.General {
		generous := baseSettings
		generous.Ceilings.General = baseSettings.Ceilings.Salvage
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Stack Ceiling %d", generous.Ceilings.General),
			Settings: generous,
		})
	}

	// Scenario: split special piles earlier
	if baseSettings.SpecialSplitThreshold > 12 {
		smallSpecial := baseSettings
		smallSpecial.SpecialSplitThreshold = 12
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Special Piles of 12",
			Settings: smallSpecial,
		})
	}

	return scenarios
}
