package engine

import (
	"fmt"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// side is the mutable state of one compartment side during a run.
type side struct {
	name        model.SideName
	capacity    float64
	occupied    float64
	remaining   float64
	weight      float64
	piles       []int // arena indices in placement order
	chainAnchor int   // root of the active multi-pile chain, -1 when none
	comp        *compartment
}

// compartment is the mutable state of one compartment during a run.
type compartment struct {
	spec        model.CompartmentSpec
	sides       []*side
	totalWeight float64
	alternate   int // strict alternation counter for laid-down piles
}

func (c *compartment) side(name model.SideName) *side {
	for _, s := range c.sides {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (c *compartment) vertical() bool {
	return c.spec.Orientation == model.OrientationVertical
}

// Layout is the compartment model of one run. Piles live in an arena and
// refer to each other by id, so a chain can only grow at its current top.
// Every change of occupied width goes through place.
type Layout struct {
	compartments []*compartment // output order
	order        []*compartment // placement priority
	piles        []*model.Pile
	index        map[string]int
	coveredBy    map[int]int // base index -> index of the pile resting on it
	tx           *Tx
}

// NewLayout creates empty compartments from the settings.
func NewLayout(settings model.PlanSettings) *Layout {
	l := &Layout{
		index:     make(map[string]int),
		coveredBy: make(map[int]int),
	}
	byID := make(map[string]*compartment)
	for _, spec := range settings.Compartments {
		c := &compartment{spec: spec}
		for _, ss := range spec.Sides {
			c.sides = append(c.sides, &side{
				name:        ss.Name,
				capacity:    ss.Capacity,
				remaining:   ss.Capacity,
				chainAnchor: -1,
				comp:        c,
			})
		}
		l.compartments = append(l.compartments, c)
		byID[spec.ID] = c
	}
	for _, id := range settings.PlacementOrder {
		if c, ok := byID[id]; ok {
			l.order = append(l.order, c)
		}
	}
	return l
}

// compartment returns the compartment with the given id.
func (l *Layout) compartment(id string) *compartment {
	for _, c := range l.compartments {
		if c.spec.ID == id {
			return c
		}
	}
	return nil
}

// Add puts a pile into the arena and returns its index.
func (l *Layout) Add(p model.Pile) int {
	if _, dup := l.index[p.ID]; dup {
		panic(fmt.Sprintf("engine: duplicate pile id %s", p.ID))
	}
	cp := p.Clone()
	l.piles = append(l.piles, &cp)
	i := len(l.piles) - 1
	l.index[p.ID] = i
	return i
}

// Pile returns the arena copy of the pile with the given id.
func (l *Layout) Pile(id string) (model.Pile, bool) {
	i, ok := l.index[id]
	if !ok {
		return model.Pile{}, false
	}
	return l.piles[i].Clone(), true
}

// CapacityOf returns the fixed width capacity of a compartment side.
func (l *Layout) CapacityOf(compartmentID string, name model.SideName) (float64, bool) {
	c := l.compartment(compartmentID)
	if c == nil {
		return 0, false
	}
	s := c.side(name)
	if s == nil {
		return 0, false
	}
	return s.capacity, true
}

// canFit reports whether the pile fits beside the piles already on the side.
func (l *Layout) canFit(s *side, i int) bool {
	return s.occupied+l.piles[i].Width <= s.capacity
}

// place puts pile i on the floor of the side, after the piles already there.
func (l *Layout) place(s *side, i int) {
	p := l.piles[i]
	if !l.canFit(s, i) {
		panic(fmt.Sprintf("engine: pile %s (%.0f) does not fit %s/%s (%.0f left)",
			p.ID, p.Width, s.comp.spec.ID, s.name, s.remaining))
	}
	l.saveSide(s)
	l.saveComp(s.comp)
	l.savePile(i)

	p.Offset = s.occupied
	p.Lado = ladoAt(s.occupied, p.Width, s.capacity)
	s.occupied += p.Width
	s.remaining -= p.Width
	l.attach(s, i)
}

// stack rests pile i on pile base, which must be a current top of the side.
func (l *Layout) stack(s *side, base, i int) {
	if _, covered := l.coveredBy[base]; covered {
		panic(fmt.Sprintf("engine: pile %s is already covered", l.piles[base].ID))
	}
	l.saveSide(s)
	l.saveComp(s.comp)
	l.savePile(i)
	l.saveCover(base)

	b, p := l.piles[base], l.piles[i]
	p.BaseOf = b.ID
	p.Offset = b.Offset
	p.Lado = b.Lado
	l.coveredBy[base] = i
	l.attach(s, i)
}

func (l *Layout) attach(s *side, i int) {
	p := l.piles[i]
	p.Allocated = true
	p.Compartment = s.comp.spec.ID
	p.Side = s.name
	s.piles = append(s.piles, i)
	s.weight += p.Weight
	s.comp.totalWeight += p.Weight
}

// setChainAnchor records the root of the side's active multi-pile chain.
func (l *Layout) setChainAnchor(s *side, root int) {
	l.saveSide(s)
	s.chainAnchor = root
}

// ladoAt classifies a floor position by its midpoint: the first half of a
// side is the driver's, the second half the helper's.
func ladoAt(offset, width, capacity float64) model.Lado {
	if offset+width/2 < capacity/2 {
		return model.LadoDriver
	}
	return model.LadoHelper
}

// covered reports whether another pile rests on pile i.
func (l *Layout) covered(i int) bool {
	_, ok := l.coveredBy[i]
	return ok
}

// top follows the chain upwards from pile i to its current top.
func (l *Layout) top(i int) int {
	for {
		next, ok := l.coveredBy[i]
		if !ok {
			return i
		}
		i = next
	}
}

// root follows the chain downwards from pile i to the floor.
func (l *Layout) root(i int) int {
	for l.piles[i].BaseOf != "" {
		i = l.index[l.piles[i].BaseOf]
	}
	return i
}

// depth is the number of piles below pile i.
func (l *Layout) depth(i int) int {
	d := 0
	for l.piles[i].BaseOf != "" {
		i = l.index[l.piles[i].BaseOf]
		d++
	}
	return d
}

// reach counts the units of pile i and every pile below it.
func (l *Layout) reach(i int) int {
	n := l.piles[i].Count()
	for l.piles[i].BaseOf != "" {
		i = l.index[l.piles[i].BaseOf]
		n += l.piles[i].Count()
	}
	return n
}

// sideUnits counts every unit on the side, stacked piles included.
func sideUnits(l *Layout, s *side) int {
	n := 0
	for _, i := range s.piles {
		n += l.piles[i].Count()
	}
	return n
}

// Compartments returns a copy of the layout in output order.
func (l *Layout) Compartments() []model.Compartment {
	out := make([]model.Compartment, 0, len(l.compartments))
	for _, c := range l.compartments {
		mc := model.Compartment{
			ID:          c.spec.ID,
			Kind:        c.spec.Kind,
			Orientation: c.spec.Orientation,
			Height:      c.spec.Height,
			TotalWeight: c.totalWeight,
			Sides:       make([]model.Side, 0, len(c.sides)),
		}
		for _, s := range c.sides {
			ms := model.Side{
				Name:      s.name,
				Capacity:  s.capacity,
				Occupied:  s.occupied,
				Remaining: s.remaining,
				Weight:    s.weight,
				Piles:     make([]model.Pile, 0, len(s.piles)),
			}
			if s.chainAnchor >= 0 {
				ms.ChainAnchorID = l.piles[s.chainAnchor].ID
			}
			for _, i := range s.piles {
				ms.Piles = append(ms.Piles, l.piles[i].Clone())
			}
			mc.Sides = append(mc.Sides, ms)
		}
		out = append(out, mc)
	}
	return out
}
