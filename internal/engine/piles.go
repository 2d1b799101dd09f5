package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/LoadPlan/internal/model"
)

// pileNamespace seeds the name-based pile ids so that identical input always
// yields identical ids.
var pileNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("loadplan/pile"))

// PileBuilder groups the units of one group into piles.
type PileBuilder struct {
	Settings model.PlanSettings
	seq      int
}

// NewPileBuilder returns a builder whose id sequence starts at zero.
func NewPileBuilder(settings model.PlanSettings) *PileBuilder {
	return &PileBuilder{Settings: settings}
}

// Build returns the piles of one group: standing normal piles, laid-down
// normal piles, then special piles. A pile never mixes orientations or
// special and normal units. When layDown is set every unit is laid down
// first.
func (b *PileBuilder) Build(key string, units []model.ProductUnit, layDown bool) []model.Pile {
	var standing, laid, special []model.ProductUnit
	for _, u := range units {
		if layDown {
			u.Orient(true)
		}
		switch {
		case u.Special:
			special = append(special, u)
		case u.MustLayDown:
			laid = append(laid, u)
		default:
			standing = append(standing, u)
		}
	}

	var piles []model.Pile
	for _, chunk := range chunkEvenly(byWidthDesc(standing), b.Settings.MaxUnitsPerPile) {
		piles = append(piles, b.newPile(key, chunk, false))
	}
	for _, chunk := range chunkEvenly(byWidthDesc(laid), b.Settings.MaxUnitsPerPile) {
		piles = append(piles, b.newPile(key, chunk, false))
	}

	if len(special) > 0 {
		anyLaid := false
		for _, u := range special {
			if u.MustLayDown {
				anyLaid = true
				break
			}
		}
		if anyLaid {
			for i := range special {
				special[i].Orient(true)
			}
		}
		special = byWidthDesc(special)
		if len(special) > b.Settings.SpecialSplitThreshold {
			for _, chunk := range chunkEvenly(special, b.Settings.SpecialSplitThreshold) {
				piles = append(piles, b.newPile(key, chunk, true))
			}
		} else {
			piles = append(piles, b.newPile(key, special, true))
		}
	}
	return piles
}

// newPile derives the pile's measures from its units. Width comes from the
// first unit, which is the widest after sorting.
func (b *PileBuilder) newPile(key string, units []model.ProductUnit, special bool) model.Pile {
	b.seq++
	id := uuid.NewSHA1(pileNamespace, []byte(fmt.Sprintf("%s#%d", key, b.seq)))
	p := pileFromUnits(id.String(), key, units, special)
	p.Width = units[0].Width
	return p
}

// pileFromUnits builds a pile whose width is the widest unit.
func pileFromUnits(id, key string, units []model.ProductUnit, special bool) model.Pile {
	p := model.Pile{
		ID:         id,
		GroupKey:   key,
		ClientID:   units[0].ClientID,
		ClientName: units[0].ClientName,
		Units:      append([]model.ProductUnit(nil), units...),
		Special:    special,
		LaidDown:   units[0].MustLayDown,
	}
	for _, u := range units {
		if u.Width > p.Width {
			p.Width = u.Width
		}
		if u.Height > p.Height {
			p.Height = u.Height
		}
		p.Weight += u.Weight
	}
	p.Protected = p.Special && p.LaidDown
	return p
}

// byWidthDesc sorts units widest first, keeping input order among equals.
func byWidthDesc(units []model.ProductUnit) []model.ProductUnit {
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Width > units[j].Width
	})
	return units
}

// chunkEvenly splits units into the fewest chunks of at most max units. The
// remainder is spread over the first chunks, so sizes differ by at most one.
func chunkEvenly(units []model.ProductUnit, max int) [][]model.ProductUnit {
	n := len(units)
	if n == 0 {
		return nil
	}
	if max <= 0 {
		max = n
	}
	k := (n + max - 1) / max
	size, rem := n/k, n%k
	chunks := make([][]model.ProductUnit, 0, k)
	start := 0
	for i := 0; i < k; i++ {
		end := start + size
		if i < rem {
			end++
		}
		chunks = append(chunks, units[start:end])
		start = end
	}
	return chunks
}
