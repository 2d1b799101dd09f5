package model

import "sort"

// FreeSpan is unused floor at the far end of a side, where another pile
// could still stand.
type FreeSpan struct {
	Compartment string   `json:"compartment"`
	Side        SideName `json:"side"`
	Offset      float64  `json:"offset"` // Start of the free floor (mm from the side start)
	Width       float64  `json:"width"`  // Free floor width (mm)
}

// MinFreeSpan is the narrowest free floor (in mm) worth reporting. Anything
// smaller cannot take a pile.
const MinFreeSpan = 300.0

// DetectFreeSpans returns the free floor left on each side of a compartment,
// widest first. The span starts after the last floor pile; stacked piles
// take no floor.
func DetectFreeSpans(c Compartment) []FreeSpan {
	var spans []FreeSpan
	for _, s := range c.Sides {
		var end float64
		for _, p := range s.Piles {
			if p.Stacked() {
				continue
			}
			if right := p.Offset + p.Width; right > end {
				end = right
			}
		}
		if w := s.Capacity - end; w >= MinFreeSpan {
			spans = append(spans, FreeSpan{
				Compartment: c.ID,
				Side:        s.Name,
				Offset:      end,
				Width:       w,
			})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Width > spans[j].Width
	})
	return spans
}

// DetectAllFreeSpans finds free floor across every compartment of a plan,
// in compartment order.
func DetectAllFreeSpans(result PlanResult) []FreeSpan {
	var all []FreeSpan
	for _, c := range result.Compartments {
		all = append(all, DetectFreeSpans(c)...)
	}
	return all
}

// TotalFreeWidth returns the summed width of the spans in mm.
func TotalFreeWidth(spans []FreeSpan) float64 {
	var total float64
	for _, s := range spans {
		total += s.Width
	}
	return total
}
