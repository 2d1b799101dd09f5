package engine

import "github.com/piwi3910/LoadPlan/internal/model"

// Tx journals the records a speculative placement touches so that it can be
// undone. Only the first change of each record is saved. Transactions do not
// nest.
type Tx struct {
	sides    map[*side]sideState
	comps    map[*compartment]compState
	piles    map[int]pileState
	covers   map[int]coverState
	arenaLen int
}

type sideState struct {
	occupied    float64
	remaining   float64
	weight      float64
	piles       []int
	chainAnchor int
}

type compState struct {
	totalWeight float64
	alternate   int
}

type pileState struct {
	allocated   bool
	compartment string
	side        model.SideName
	lado        model.Lado
	offset      float64
	baseOf      string
}

type coverState struct {
	top int
	ok  bool
}

// Begin starts journaling changes to the layout.
func (l *Layout) Begin() *Tx {
	if l.tx != nil {
		panic("engine: nested transaction")
	}
	l.tx = &Tx{
		sides:    make(map[*side]sideState),
		comps:    make(map[*compartment]compState),
		piles:    make(map[int]pileState),
		covers:   make(map[int]coverState),
		arenaLen: len(l.piles),
	}
	return l.tx
}

// Commit keeps every change made since Begin.
func (l *Layout) Commit(tx *Tx) {
	if l.tx != tx {
		panic("engine: commit of inactive transaction")
	}
	l.tx = nil
}

// Rollback restores every record touched since Begin and drops piles added
// to the arena in the meantime.
func (l *Layout) Rollback(tx *Tx) {
	if l.tx != tx {
		panic("engine: rollback of inactive transaction")
	}
	l.tx = nil

	for s, st := range tx.sides {
		s.occupied = st.occupied
		s.remaining = st.remaining
		s.weight = st.weight
		s.piles = st.piles
		s.chainAnchor = st.chainAnchor
	}
	for c, st := range tx.comps {
		c.totalWeight = st.totalWeight
		c.alternate = st.alternate
	}
	for i, st := range tx.piles {
		if i >= tx.arenaLen {
			continue
		}
		p := l.piles[i]
		p.Allocated = st.allocated
		p.Compartment = st.compartment
		p.Side = st.side
		p.Lado = st.lado
		p.Offset = st.offset
		p.BaseOf = st.baseOf
	}
	for base, st := range tx.covers {
		if st.ok {
			l.coveredBy[base] = st.top
		} else {
			delete(l.coveredBy, base)
		}
	}
	for i := tx.arenaLen; i < len(l.piles); i++ {
		delete(l.index, l.piles[i].ID)
	}
	l.piles = l.piles[:tx.arenaLen]
}

func (l *Layout) saveSide(s *side) {
	if l.tx == nil {
		return
	}
	if _, ok := l.tx.sides[s]; ok {
		return
	}
	l.tx.sides[s] = sideState{
		occupied:    s.occupied,
		remaining:   s.remaining,
		weight:      s.weight,
		piles:       append([]int(nil), s.piles...),
		chainAnchor: s.chainAnchor,
	}
}

func (l *Layout) saveComp(c *compartment) {
	if l.tx == nil {
		return
	}
	if _, ok := l.tx.comps[c]; ok {
		return
	}
	l.tx.comps[c] = compState{totalWeight: c.totalWeight, alternate: c.alternate}
}

func (l *Layout) savePile(i int) {
	if l.tx == nil {
		return
	}
	if _, ok := l.tx.piles[i]; ok {
		return
	}
	p := l.piles[i]
	l.tx.piles[i] = pileState{
		allocated:   p.Allocated,
		compartment: p.Compartment,
		side:        p.Side,
		lado:        p.Lado,
		offset:      p.Offset,
		baseOf:      p.BaseOf,
	}
}

func (l *Layout) saveCover(base int) {
	if l.tx == nil {
		return
	}
	if _, ok := l.tx.covers[base]; ok {
		return
	}
	top, ok := l.coveredBy[base]
	l.tx.covers[base] = coverState{top: top, ok: ok}
}
