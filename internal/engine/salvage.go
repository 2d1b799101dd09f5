package engine

import (
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/LoadPlan/internal/model"
)

// salvage makes a last attempt at every pile the cascade left over, lightest
// first. A pile that cannot be stacked as is gets split by dimension into a
// laid-down and a standing part, each retried on its own; the split pile
// itself is then dropped from both lists.
func (r *run) salvage(leftovers []int) (allocated, unallocated []int) {
	l := r.layout
	order := append([]int(nil), leftovers...)
	sort.SliceStable(order, func(a, b int) bool {
		return l.piles[order[a]].Weight < l.piles[order[b]].Weight
	})

	for _, i := range order {
		if r.stackSimple(i, l.order, stackMode{salvage: true, minDepth: 2}) ||
			r.stackSimple(i, l.order, stackMode{salvage: true}) {
			allocated = append(allocated, i)
			continue
		}
		for _, sub := range r.split(i) {
			if r.salvagePart(sub) {
				allocated = append(allocated, sub)
			} else {
				unallocated = append(unallocated, sub)
			}
		}
	}
	if len(order) > 0 {
		r.log.Debug().
			Int("leftovers", len(order)).
			Int("salvaged", len(allocated)).
			Int("unallocated", len(unallocated)).
			Msg("salvage pass")
	}
	return allocated, unallocated
}

// salvagePart tries a split part: chain formation, stacking on plain sides,
// continuing an active chain, then any floor space.
func (r *run) salvagePart(i int) bool {
	l := r.layout
	return r.formChain(i, l.order, true) ||
		r.stackSimple(i, l.order, stackMode{salvage: true, sides: plainSides}) ||
		r.stackSimple(i, l.order, stackMode{salvage: true, sides: chainSides}) ||
		r.placeDirect(i)
}

// split separates the units of pile i into a laid-down and a standing pile
// by absolute dimensions, ignoring material rules. Either part may be
// missing. Parts are added to the arena.
func (r *run) split(i int) []int {
	l := r.layout
	orig := l.piles[i]
	var laid, standing []model.ProductUnit
	for _, u := range orig.Units {
		if NeedsLayDownByDimensions(u.Width, u.Height, r.settings) {
			u.Orient(true)
			laid = append(laid, u)
		} else {
			u.Orient(false)
			standing = append(standing, u)
		}
	}

	var parts []int
	for _, part := range []struct {
		suffix string
		units  []model.ProductUnit
	}{{"laid", laid}, {"standing", standing}} {
		if len(part.units) == 0 {
			continue
		}
		id := uuid.NewSHA1(pileNamespace, []byte(orig.ID+"/"+part.suffix)).String()
		parts = append(parts, l.Add(pileFromUnits(id, orig.GroupKey, part.units, orig.Special)))
	}
	return parts
}
