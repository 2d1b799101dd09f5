package engine

import "github.com/piwi3910/LoadPlan/internal/model"

// Summarize derives the counts of a plan from its input units and piles.
func Summarize(units []model.ProductUnit, res model.PlanResult) model.Summary {
	s := model.Summary{
		TotalProducts:    len(units),
		AllocatedPiles:   len(res.Allocated),
		UnallocatedPiles: len(res.Unallocated),
		Utilization:      model.CalculateUtilization(res.Compartments),
	}
	clients := make(map[string]bool)
	for _, u := range units {
		key := u.ClientID
		if key == "" {
			key = u.ClientName
		}
		clients[key] = true
		if u.Special {
			s.SpecialProducts++
		} else {
			s.NormalProducts++
		}
	}
	s.Clients = len(clients)
	for _, p := range res.Allocated {
		s.AllocatedProducts += p.Count()
	}
	for _, p := range res.Unallocated {
		s.UnallocatedProducts += p.Count()
	}
	return s
}
