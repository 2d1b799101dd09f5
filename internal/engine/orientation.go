package engine

import (
	"math"
	"sort"
	"strconv"

	"github.com/piwi3910/LoadPlan/internal/model"
)

// NeedsLayDownByDimensions reports whether a panel is too long or too wide
// to travel standing.
func NeedsLayDownByDimensions(w, h float64, s model.PlanSettings) bool {
	return math.Max(w, h) > s.LayDownLongest || math.Min(w, h) > s.LayDownShortest
}

// MustLayDown reports whether a panel has to travel laid down, either because
// of its dimensions or because of its material.
func MustLayDown(w, h float64, t model.GlassType, s model.PlanSettings) bool {
	return NeedsLayDownByDimensions(w, h, s) || t.AlwaysLaidDown()
}

// ExpandLines turns product lines into individual, oriented units sorted by
// delivery sequence. Lines with the same sequence keep their input order.
func ExpandLines(lines []model.ProductLine, s model.PlanSettings) []model.ProductUnit {
	var units []model.ProductUnit
	for _, l := range lines {
		t := l.Type
		if t == "" {
			t = model.DetectGlassType(l.Product)
		}
		layDown := MustLayDown(l.Width, l.Height, t, s)
		for q := 0; q < l.Quantity; q++ {
			u := model.ProductUnit{
				ClientID:   l.ClientID,
				ClientName: l.ClientName,
				Order:      l.Order,
				Product:    l.Product,
				Type:       t,
				Sequence:   l.Sequence,
				City:       l.City,
				Width:      l.Width,
				Height:     l.Height,
				Weight:     l.UnitWeight(),
				Special:    t.IsSpecial(),
			}
			u.Orient(layDown)
			units = append(units, u)
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Sequence < units[j].Sequence
	})
	return units
}

// unitGroup is the set of units planned together.
type unitGroup struct {
	key      string
	clientID string
	units    []model.ProductUnit
}

// groupUnits splits units by the configured key. Groups are returned in
// reverse order of first appearance so that the last delivery is loaded
// first.
func groupUnits(units []model.ProductUnit, by model.GroupKey) []unitGroup {
	index := make(map[string]int)
	var groups []unitGroup
	for _, u := range units {
		key := u.ClientID
		if key == "" {
			key = u.ClientName
		}
		if by == model.GroupBySequence {
			key = strconv.Itoa(u.Sequence)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, unitGroup{key: key, clientID: u.ClientID})
		}
		groups[i].units = append(groups[i].units, u)
	}
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	return groups
}
