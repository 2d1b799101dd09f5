package model

// StackedPile is a base pile together with the piles resting on it,
// bottom to top.
type StackedPile struct {
	Base  Pile   `json:"base"`
	Above []Pile `json:"above,omitempty"`
}

// Units returns the number of units in the whole stack.
func (s StackedPile) Units() int {
	n := s.Base.Count()
	for _, p := range s.Above {
		n += p.Count()
	}
	return n
}

// BuildStackView groups the piles of a side into stacks. Chains are linear,
// so every stacked pile is reached by walking up from exactly one base.
// Piles whose base is not on the side are reported as bases themselves.
func BuildStackView(side Side) []StackedPile {
	byID := make(map[string]bool, len(side.Piles))
	above := make(map[string]Pile, len(side.Piles))
	for _, p := range side.Piles {
		byID[p.ID] = true
	}
	for _, p := range side.Piles {
		if p.BaseOf != "" && byID[p.BaseOf] {
			above[p.BaseOf] = p
		}
	}

	var stacks []StackedPile
	for _, p := range side.Piles {
		if p.BaseOf != "" && byID[p.BaseOf] {
			continue
		}
		s := StackedPile{Base: p}
		cur := p.ID
		for {
			next, ok := above[cur]
			if !ok {
				break
			}
			s.Above = append(s.Above, next)
			cur = next.ID
		}
		stacks = append(stacks, s)
	}
	return stacks
}
