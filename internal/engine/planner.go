package engine

import (
	"sort"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/rs/zerolog"
)

// PreferenceResolver looks up client specific placement overrides.
type PreferenceResolver interface {
	Lookup(clientID string) (model.ClientPreference, bool)
}

// Planner runs the pile builder and the placement cascade.
type Planner struct {
	Settings    model.PlanSettings
	Preferences PreferenceResolver
	Logger      zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithPreferences replaces the built-in preference table. A nil resolver
// keeps the built-in table.
func WithPreferences(r PreferenceResolver) Option {
	return func(p *Planner) {
		if r != nil {
			p.Preferences = r
		}
	}
}

// WithLogger sets the logger used for per-group debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Planner) { p.Logger = l }
}

// New returns a planner with the built-in preference table and no logging.
func New(settings model.PlanSettings, opts ...Option) *Planner {
	p := &Planner{
		Settings:    settings,
		Preferences: model.DefaultPreferences(),
		Logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run holds the state of one planning run.
type run struct {
	settings model.PlanSettings
	prefs    PreferenceResolver
	log      zerolog.Logger
	layout   *Layout
	builder  *PileBuilder
}

// Plan builds piles from the product lines and places them on the vehicle.
// Every call starts from empty compartments, so the result depends on the
// input alone.
func (p *Planner) Plan(lines []model.ProductLine) model.PlanResult {
	r := &run{
		settings: p.Settings,
		prefs:    p.Preferences,
		log:      p.Logger,
		layout:   NewLayout(p.Settings),
		builder:  NewPileBuilder(p.Settings),
	}
	if r.prefs == nil {
		r.prefs = model.PreferenceTable{}
	}

	units := ExpandLines(lines, p.Settings)
	var allocated, leftovers []int
	for _, g := range groupUnits(units, p.Settings.GroupBy) {
		pref, hasPref := r.prefs.Lookup(g.clientID)
		piles := r.builder.Build(g.key, g.units, hasPref && pref.LayDown)

		idx := make([]int, len(piles))
		for k, pile := range piles {
			idx[k] = r.layout.Add(pile)
		}
		r.placeGroup(g.key, idx, pref, hasPref)

		placed := 0
		for _, i := range idx {
			if r.layout.piles[i].Allocated {
				allocated = append(allocated, i)
				placed++
			} else {
				leftovers = append(leftovers, i)
			}
		}
		r.log.Debug().
			Str("group", g.key).
			Int("piles", len(idx)).
			Int("placed", placed).
			Bool("preference", hasPref).
			Msg("group planned")
	}

	salvaged, unallocated := r.salvage(leftovers)
	allocated = append(allocated, salvaged...)
	return r.result(units, allocated, unallocated)
}

// placeGroup runs the cascade for the piles of one group.
func (r *run) placeGroup(key string, piles []int, pref model.ClientPreference, hasPref bool) {
	l := r.layout

	var normals, specials []int
	var groupWeight float64
	for _, i := range piles {
		if l.piles[i].Special {
			specials = append(specials, i)
		} else {
			normals = append(normals, i)
			groupWeight += l.piles[i].Weight
		}
	}
	sort.SliceStable(normals, func(a, b int) bool {
		return l.piles[normals[a]].Weight < l.piles[normals[b]].Weight
	})
	ordered := append(normals, specials...)

	if !hasPref {
		if r.placeWholeGroup(key, ordered, groupWeight) {
			return
		}
		var standing []int
		for _, i := range normals {
			if !l.piles[i].LaidDown {
				standing = append(standing, i)
			}
		}
		r.placeAllStanding(standing)
	}

	for _, i := range ordered {
		if l.piles[i].Allocated {
			continue
		}
		if hasPref && r.placeWithPreference(i, pref) {
			continue
		}
		r.placeOne(i, l.order, groupWeight, "")
	}
}

// placeWholeGroup tries each compartment in priority order and keeps the
// first one that takes every pile of the group. Failed attempts leave the
// layout untouched.
func (r *run) placeWholeGroup(key string, piles []int, groupWeight float64) bool {
	l := r.layout
	for _, c := range l.order {
		tx := l.Begin()
		ok := true
		for _, i := range piles {
			if !r.placeOne(i, []*compartment{c}, groupWeight, key) {
				ok = false
				break
			}
		}
		if ok {
			l.Commit(tx)
			return true
		}
		l.Rollback(tx)
	}
	return false
}

// result copies the final layout and pile lists out of the run.
func (r *run) result(units []model.ProductUnit, allocated, unallocated []int) model.PlanResult {
	l := r.layout
	res := model.PlanResult{
		Compartments: l.Compartments(),
		Allocated:    make([]model.Pile, 0, len(allocated)),
		Unallocated:  make([]model.Pile, 0, len(unallocated)),
	}
	for _, i := range allocated {
		res.Allocated = append(res.Allocated, l.piles[i].Clone())
	}
	for _, i := range unallocated {
		res.Unallocated = append(res.Unallocated, l.piles[i].Clone())
	}
	res.Summary = Summarize(units, res)
	return res
}
