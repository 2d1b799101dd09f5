package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// floorSides returns the front and back sides of a compartment. The middle
// side only ever takes special piles and is handled by placeMiddle.
func floorSides(c *compartment) []*side {
	var out []*side
	for _, name := range []model.SideName{model.SideFront, model.SideBack} {
		if s := c.side(name); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// placeOne runs the per-pile rules within the given compartments: base
// placement, simple stacking and multi-pile chains for normal piles;
// stacking, chains and the middle side for special piles. A non-empty
// cohesion key makes base placement prefer sides already holding piles of
// that group.
func (r *run) placeOne(i int, comps []*compartment, groupWeight float64, cohesion string) bool {
	p := r.layout.piles[i]
	if !p.Special && r.placeBase(i, comps, groupWeight, cohesion) {
		return true
	}
	if r.stackSimple(i, comps, stackMode{}) {
		return true
	}
	if r.formChain(i, comps, false) {
		return true
	}
	if p.Special {
		return r.placeMiddle(i, comps)
	}
	return false
}

// placeBase puts a normal pile on the floor of the first compartment that
// has room for it.
func (r *run) placeBase(i int, comps []*compartment, groupWeight float64, cohesion string) bool {
	for _, c := range comps {
		if cohesion != "" && r.placeWithGroup(c, i, cohesion) {
			return true
		}
		if r.placeInCompartment(c, i, groupWeight) {
			return true
		}
	}
	return false
}

// placeWithGroup puts the pile on a side that already holds a base pile of
// the same group.
func (r *run) placeWithGroup(c *compartment, i int, key string) bool {
	l := r.layout
	for _, s := range floorSides(c) {
		if !l.canFit(s, i) {
			continue
		}
		for _, j := range s.piles {
			if pj := l.piles[j]; pj.GroupKey == key && pj.BaseOf == "" {
				l.place(s, i)
				return true
			}
		}
	}
	return false
}

// placeInCompartment chooses a floor side of c for pile i. Horizontal
// compartments fill front then back. On a vertical compartment standing
// piles follow the weight share rule and laid-down piles are balanced.
func (r *run) placeInCompartment(c *compartment, i int, groupWeight float64) bool {
	l := r.layout
	front, back := c.side(model.SideFront), c.side(model.SideBack)
	fits := func(s *side) bool { return s != nil && l.canFit(s, i) }

	if !c.vertical() {
		for _, s := range floorSides(c) {
			if l.canFit(s, i) {
				l.place(s, i)
				return true
			}
		}
		return false
	}

	var first, second *side
	if l.piles[i].LaidDown {
		first, second = r.balancedSide(c, front, back)
	} else {
		first, second = r.weightedSide(front, back, l.piles[i].Weight, groupWeight)
	}
	for _, s := range []*side{first, second} {
		if fits(s) {
			l.place(s, i)
			return true
		}
	}
	return false
}

// weightedSide prefers the front while it is empty and the pile keeps it
// under the driver's share of the group weight, otherwise the lighter side.
func (r *run) weightedSide(front, back *side, pileWeight, groupWeight float64) (*side, *side) {
	if back == nil {
		return front, nil
	}
	if len(front.piles) == 0 && front.weight+pileWeight < r.settings.DriverWeightShare*groupWeight {
		return front, back
	}
	if front.weight < back.weight {
		return front, back
	}
	return back, front
}

// balancedSide picks the side with less load as soon as unit count, weight
// or occupied width differ by more than the tolerance, checked in that
// order. Balanced sides take turns.
func (r *run) balancedSide(c *compartment, front, back *side) (*side, *side) {
	if back == nil {
		return front, nil
	}
	l := r.layout
	metrics := [][2]float64{
		{float64(sideUnits(l, front)), float64(sideUnits(l, back))},
		{front.weight, back.weight},
		{front.occupied, back.occupied},
	}
	for _, m := range metrics {
		sum := m[0] + m[1]
		if sum > 0 && math.Abs(m[0]-m[1])/sum > r.settings.BalanceTolerance {
			if m[0] < m[1] {
				return front, back
			}
			return back, front
		}
	}
	l.saveComp(c)
	turn := c.alternate
	c.alternate++
	if turn%2 == 0 {
		return front, back
	}
	return back, front
}

// placeAllStanding puts every given pile on one floor side, the first one
// with room for all of them.
func (r *run) placeAllStanding(piles []int) bool {
	if len(piles) == 0 {
		return false
	}
	l := r.layout
	var total float64
	for _, i := range piles {
		total += l.piles[i].Width
	}
	for _, c := range l.order {
		for _, s := range floorSides(c) {
			if s.remaining >= total {
				for _, i := range piles {
					l.place(s, i)
				}
				return true
			}
		}
	}
	return false
}

// placeWithPreference puts a pile where the client asked for it. The
// requested lado is checked against the geometric position the pile would
// take on the side.
func (r *run) placeWithPreference(i int, pref model.ClientPreference) bool {
	l := r.layout
	comps := l.order
	if len(pref.Compartments) > 0 {
		comps = nil
		for _, id := range pref.Compartments {
			if c := l.compartment(id); c != nil {
				comps = append(comps, c)
			}
		}
	}

	names := []model.SideName{model.SideFront, model.SideBack}
	if len(pref.Positions) > 0 {
		names = nil
		seen := make(map[model.SideName]bool)
		for _, pos := range pref.Positions {
			n := pos.SideName()
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	p := l.piles[i]
	for _, c := range comps {
		for _, n := range names {
			s := c.side(n)
			if s == nil || !l.canFit(s, i) {
				continue
			}
			if pref.Lado != "" && ladoAt(s.occupied, p.Width, s.capacity) != pref.Lado {
				continue
			}
			l.place(s, i)
			return true
		}
	}
	return false
}

// placeMiddle puts a special pile on the least loaded middle side, on the
// floor when there is room, otherwise on a pile already there.
func (r *run) placeMiddle(i int, comps []*compartment) bool {
	l := r.layout
	var middles []*side
	for _, c := range comps {
		if m := c.side(model.SideMiddle); m != nil {
			middles = append(middles, m)
		}
	}
	sort.SliceStable(middles, func(a, b int) bool {
		return sideUnits(l, middles[a]) < sideUnits(l, middles[b])
	})

	p := l.piles[i]
	for _, m := range middles {
		if p.Width > m.capacity {
			continue
		}
		if sideUnits(l, m)+p.Count() > r.settings.Ceilings.Middle {
			continue
		}
		if l.canFit(m, i) {
			l.place(m, i)
			return true
		}
		for _, t := range r.targets(m) {
			if r.canStack(m, t, i, false) {
				l.stack(m, t, i)
				return true
			}
		}
	}
	return false
}

// placeDirect puts a pile on the floor of the first side with room for it.
// Middle sides only take special piles, up to their unit cap.
func (r *run) placeDirect(i int) bool {
	l := r.layout
	p := l.piles[i]
	for _, c := range l.order {
		for _, s := range c.sides {
			if s.name == model.SideMiddle &&
				(!p.Special || sideUnits(l, s)+p.Count() > r.settings.Ceilings.Middle) {
				continue
			}
			if l.canFit(s, i) {
				l.place(s, i)
				return true
			}
		}
	}
	return false
}
