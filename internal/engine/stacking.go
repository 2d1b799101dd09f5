package engine

import (
	"sort"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// chainFilter restricts which sides a stacking attempt may use.
type chainFilter int

const (
	anySide    chainFilter = iota
	plainSides             // sides without an active chain
	chainSides             // sides with an active chain
)

// stackMode describes one stacking attempt.
type stackMode struct {
	salvage  bool
	minDepth int // target must rest on at least this many piles
	sides    chainFilter
}

// stackCeiling is the unit limit for stacking on side s.
func (r *run) stackCeiling(s *side, salvage bool) int {
	if s.chainAnchor >= 0 {
		return r.chainCeiling(s.comp, salvage)
	}
	if salvage {
		return r.settings.Ceilings.Salvage
	}
	return r.settings.Ceilings.General
}

// chainCeiling is the unit limit of a multi-pile chain in compartment c.
func (r *run) chainCeiling(c *compartment, salvage bool) int {
	if c.vertical() {
		return r.settings.Ceilings.VerticalChain
	}
	if salvage {
		return r.settings.Ceilings.Salvage
	}
	return r.settings.Ceilings.General
}

// compatible applies the rules shared by simple and multi-pile stacking:
// nothing rests on a protected pile, a standing pile never rests on a
// laid-down one, and special and normal piles never mix.
func compatible(base, cand *model.Pile) bool {
	if base.Protected {
		return false
	}
	if !cand.LaidDown && base.LaidDown {
		return false
	}
	return base.Special == cand.Special
}

// canStack reports whether pile cand may rest on pile target in side s.
func (r *run) canStack(s *side, target, cand int, salvage bool) bool {
	l := r.layout
	tp, cp := l.piles[target], l.piles[cand]
	if l.covered(target) {
		return false
	}
	if s.chainAnchor >= 0 {
		if target != l.top(s.chainAnchor) {
			return false
		}
	} else if cp.Width > tp.Width {
		return false
	}
	if !compatible(tp, cp) {
		return false
	}
	total := l.reach(target) + cp.Count()
	if total > r.stackCeiling(s, salvage) {
		return false
	}
	if tp.Special && cp.Special && tp.HasType(model.GlassPVB) && total > r.settings.Ceilings.SpecialPVB {
		return false
	}
	if s.name == model.SideMiddle && sideUnits(l, s)+cp.Count() > r.settings.Ceilings.Middle {
		return false
	}
	return true
}

// targets lists the piles of side s that can currently be stacked on: the
// chain top when the side has an active chain, otherwise every uncovered
// pile in placement order.
func (r *run) targets(s *side) []int {
	l := r.layout
	if s.chainAnchor >= 0 {
		return []int{l.top(s.chainAnchor)}
	}
	var out []int
	for _, i := range s.piles {
		if !l.covered(i) {
			out = append(out, i)
		}
	}
	return out
}

// stackSimple rests pile cand on the first compatible target, scanning the
// given compartments in order and their sides in definition order.
func (r *run) stackSimple(cand int, comps []*compartment, mode stackMode) bool {
	l := r.layout
	for _, c := range comps {
		for _, s := range c.sides {
			active := s.chainAnchor >= 0
			if (mode.sides == plainSides && active) || (mode.sides == chainSides && !active) {
				continue
			}
			for _, t := range r.targets(s) {
				if l.depth(t) < mode.minDepth {
					continue
				}
				if r.canStack(s, t, cand, mode.salvage) {
					l.stack(s, t, cand)
					return true
				}
			}
		}
	}
	return false
}

// formChain rests pile cand on a combination of base piles of one side that
// together are at least as wide. Only sides without stacked piles qualify.
// The member with the largest reach becomes the chain root and the side's
// chain anchor; from then on the side only accepts stacking on that chain's
// top.
func (r *run) formChain(cand int, comps []*compartment, salvage bool) bool {
	for _, c := range comps {
		for _, s := range c.sides {
			if r.formChainOn(s, cand, salvage) {
				return true
			}
		}
	}
	return false
}

func (r *run) formChainOn(s *side, cand int, salvage bool) bool {
	l := r.layout
	if s.chainAnchor >= 0 {
		return false
	}
	var members []int
	for _, i := range s.piles {
		if l.piles[i].BaseOf != "" {
			// a second chain would share the side with an existing one
			return false
		}
		if !l.covered(i) {
			members = append(members, i)
		}
	}
	if len(members) < 2 {
		return false
	}
	sort.SliceStable(members, func(a, b int) bool {
		return l.piles[members[a]].Width > l.piles[members[b]].Width
	})
	if limit := r.settings.MaxChainMembers; len(members) > limit {
		members = members[:limit]
	}

	cp := l.piles[cand]
	ceiling := r.chainCeiling(s.comp, salvage)
	for size := 2; size <= len(members); size++ {
		found := -1
		forEachCombination(len(members), size, func(combo []int) bool {
			if root, ok := r.chainFits(s, members, combo, cp, ceiling); ok {
				found = root
				return false
			}
			return true
		})
		if found >= 0 {
			l.setChainAnchor(s, l.root(found))
			l.stack(s, found, cand)
			return true
		}
	}
	return false
}

// chainFits checks one combination and returns the member chosen as root.
func (r *run) chainFits(s *side, members, combo []int, cp *model.Pile, ceiling int) (int, bool) {
	l := r.layout
	var width float64
	root, maxReach := -1, -1
	allSpecial, anyPVB := true, false
	for _, k := range combo {
		m := members[k]
		mp := l.piles[m]
		if !compatible(mp, cp) {
			return -1, false
		}
		width += mp.Width
		if reach := l.reach(m); reach > maxReach {
			root, maxReach = m, reach
		}
		allSpecial = allSpecial && mp.Special
		anyPVB = anyPVB || mp.HasType(model.GlassPVB)
	}
	if width < cp.Width {
		return -1, false
	}
	total := maxReach + cp.Count()
	if total > ceiling {
		return -1, false
	}
	if allSpecial && cp.Special && anyPVB && total > r.settings.Ceilings.SpecialPVB {
		return -1, false
	}
	if s.name == model.SideMiddle && sideUnits(l, s)+cp.Count() > r.settings.Ceilings.Middle {
		return -1, false
	}
	return root, true
}

// forEachCombination calls fn with every k-subset of 0..n-1 in lexicographic
// order until fn returns false.
func forEachCombination(n, k int, fn func([]int) bool) {
	if k > n || k <= 0 {
		return
	}
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		if !fn(combo) {
			return
		}
		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}
