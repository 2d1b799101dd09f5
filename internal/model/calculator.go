package model

// CompartmentUtilization holds the floor usage figures of one compartment.
type CompartmentUtilization struct {
	ID       string  `json:"id"`
	Capacity float64 `json:"capacity"` // Sum of side capacities (mm)
	Occupied float64 `json:"occupied"` // Sum of occupied side widths (mm)
	Percent  float64 `json:"percent"`  // Occupied / Capacity * 100
	Weight   float64 `json:"weight"`   // Total weight carried (kg)
	Units    int     `json:"units"`    // Panels carried, stacked piles included
	Piles    int     `json:"piles"`
}

// CalculateUtilization computes per-compartment usage of a finished layout.
func CalculateUtilization(compartments []Compartment) []CompartmentUtilization {
	out := make([]CompartmentUtilization, 0, len(compartments))
	for _, c := range compartments {
		u := CompartmentUtilization{ID: c.ID, Weight: c.TotalWeight}
		for _, s := range c.Sides {
			u.Capacity += s.Capacity
			u.Occupied += s.Occupied
			u.Piles += len(s.Piles)
			for _, p := range s.Piles {
				u.Units += p.Count()
			}
		}
		if u.Capacity > 0 {
			u.Percent = u.Occupied / u.Capacity * 100
		}
		out = append(out, u)
	}
	return out
}

// TotalUtilization returns the occupied share of all floor space, in percent.
func (r PlanResult) TotalUtilization() float64 {
	var capacity, occupied float64
	for _, c := range r.Compartments {
		for _, s := range c.Sides {
			capacity += s.Capacity
			occupied += s.Occupied
		}
	}
	if capacity == 0 {
		return 0
	}
	return occupied / capacity * 100
}

// TotalWeight returns the weight carried by all compartments.
func (r PlanResult) TotalWeight() float64 {
	var w float64
	for _, c := range r.Compartments {
		w += c.TotalWeight
	}
	return w
}
