package engine

import (
	"testing"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeAt adds a pile and puts it on the floor of the given side.
func placeAt(t *testing.T, r *run, comp string, name model.SideName, p model.Pile) int {
	t.Helper()
	l := r.layout
	i := l.Add(p)
	s := sideOf(t, l, comp, name)
	require.True(t, l.canFit(s, i))
	l.place(s, i)
	return i
}

func only(t *testing.T, r *run, id string) []*compartment {
	t.Helper()
	c := r.layout.compartment(id)
	require.NotNil(t, c)
	return []*compartment{c}
}

func TestStackSimple_NarrowerOnWider(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	base := placeAt(t, r, "cavalete_1", model.SideFront, testPile("base", 1000, 10, model.GlassTempered, false))
	cand := r.layout.Add(testPile("cand", 800, 10, model.GlassTempered, false))

	require.True(t, r.stackSimple(cand, r.layout.order, stackMode{}))

	p, _ := r.layout.Pile("cand")
	assert.Equal(t, "base", p.BaseOf)
	assert.Equal(t, "cavalete_1", p.Compartment)
	assert.Equal(t, 1000.0, sideOf(t, r.layout, "cavalete_1", model.SideFront).occupied)
	assert.True(t, r.layout.covered(base))

	next := r.layout.Add(testPile("next", 700, 5, model.GlassTempered, false))
	require.True(t, r.stackSimple(next, r.layout.order, stackMode{}))
	p, _ = r.layout.Pile("next")
	assert.Equal(t, "cand", p.BaseOf, "a chain only grows at its top")
}

func TestStackSimple_WiderRejected(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("base", 1000, 10, model.GlassTempered, false))
	cand := r.layout.Add(testPile("cand", 1200, 5, model.GlassTempered, false))

	assert.False(t, r.stackSimple(cand, r.layout.order, stackMode{}))
	assert.False(t, r.layout.piles[cand].Allocated)
}

func TestStackSimple_Ceilings(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("base", 1000, 30, model.GlassTempered, false))
	cand := r.layout.Add(testPile("cand", 900, 3, model.GlassTempered, false))
	comps := only(t, r, "cavalete_1")

	assert.False(t, r.stackSimple(cand, comps, stackMode{}), "33 units exceed the general ceiling")
	assert.False(t, r.stackSimple(cand, comps, stackMode{salvage: true, minDepth: 2}), "the base rests on nothing")
	assert.True(t, r.stackSimple(cand, comps, stackMode{salvage: true}), "33 units fit the salvage ceiling")
}

func TestCompatible(t *testing.T) {
	standing := testPile("s", 1000, 1, model.GlassTempered, false)
	laid := testPile("l", 2000, 1, model.GlassTempered, true)
	special := testPile("sp", 1000, 1, model.GlassLaminated, false)
	protected := testPile("p", 2000, 1, model.GlassPVB, true)
	require.True(t, protected.Protected)

	tests := []struct {
		name       string
		base, cand model.Pile
		want       bool
	}{
		{"standing on standing", standing, standing, true},
		{"laid on standing", standing, laid, true},
		{"laid on laid", laid, laid, true},
		{"standing on laid", laid, standing, false},
		{"special on normal", standing, special, false},
		{"normal on special", special, standing, false},
		{"special on special", special, special, true},
		{"anything on protected", protected, protected, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compatible(&tt.base, &tt.cand))
		})
	}
}

func TestCanStack_PVBCap(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("pvb", 1000, 20, model.GlassPVB, false))
	comps := only(t, r, "cavalete_1")

	tooMany := r.layout.Add(testPile("six", 800, 6, model.GlassLaminated, false))
	assert.False(t, r.stackSimple(tooMany, comps, stackMode{}))

	fits := r.layout.Add(testPile("five", 800, 5, model.GlassLaminated, false))
	assert.True(t, r.stackSimple(fits, comps, stackMode{}))
}

func TestCanStack_MiddleCap(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	placeAt(t, r, "cavalete_1", model.SideMiddle, testPile("mid", 1000, 8, model.GlassLaminated, false))
	comps := only(t, r, "cavalete_1")

	tooMany := r.layout.Add(testPile("five", 800, 5, model.GlassLaminated, false))
	assert.False(t, r.stackSimple(tooMany, comps, stackMode{}))

	fits := r.layout.Add(testPile("four", 800, 4, model.GlassLaminated, false))
	assert.True(t, r.stackSimple(fits, comps, stackMode{}))
	assert.Equal(t, 12, sideUnits(r.layout, sideOf(t, r.layout, "cavalete_1", model.SideMiddle)))
}

func TestFormChain_WideSpecialOnTwoBases(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	a := placeAt(t, r, "cavalete_3", model.SideFront, testPile("a", 1200, 10, model.GlassLaminated, false))
	b := placeAt(t, r, "cavalete_3", model.SideFront, testPile("b", 1200, 10, model.GlassLaminated, false))
	wide := r.layout.Add(testPile("wide", 2300, 5, model.GlassLaminated, false))

	require.False(t, r.stackSimple(wide, r.layout.order, stackMode{}), "no single base is wide enough")
	require.True(t, r.formChain(wide, r.layout.order, false))

	front := sideOf(t, r.layout, "cavalete_3", model.SideFront)
	assert.Equal(t, a, front.chainAnchor)
	p, _ := r.layout.Pile("wide")
	assert.Equal(t, "a", p.BaseOf)
	assert.Equal(t, 2400.0, front.occupied)

	// The side now only accepts the chain top, whatever its width.
	wider := r.layout.Add(testPile("wider", 2500, 3, model.GlassLaminated, false))
	require.True(t, r.stackSimple(wider, r.layout.order, stackMode{}))
	p, _ = r.layout.Pile("wider")
	assert.Equal(t, "wide", p.BaseOf)

	small := r.layout.Add(testPile("small", 500, 2, model.GlassLaminated, false))
	require.True(t, r.stackSimple(small, r.layout.order, stackMode{}))
	p, _ = r.layout.Pile("small")
	assert.Equal(t, "wider", p.BaseOf)
	assert.False(t, r.layout.covered(b), "the other member never gets a second chain")
}

func TestFormChain_HorizontalCeiling(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("a", 1000, 30, model.GlassTempered, false))
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("b", 1000, 1, model.GlassTempered, false))
	comps := only(t, r, "cavalete_1")

	five := r.layout.Add(testPile("five", 1800, 5, model.GlassTempered, false))
	assert.False(t, r.formChain(five, comps, false))
	assert.False(t, r.formChain(five, comps, true), "35 units exceed the salvage ceiling too")

	four := r.layout.Add(testPile("four", 1800, 4, model.GlassTempered, false))
	assert.False(t, r.formChain(four, comps, false))
	assert.True(t, r.formChain(four, comps, true))
	p, _ := r.layout.Pile("four")
	assert.Equal(t, "a", p.BaseOf, "the member with the largest reach is the root")
}

func TestFormChain_SkipsSidesWithStacks(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	l := r.layout
	a := placeAt(t, r, "cavalete_1", model.SideFront, testPile("a", 1000, 5, model.GlassTempered, false))
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("b", 1000, 5, model.GlassTempered, false))
	c := l.Add(testPile("c", 800, 5, model.GlassTempered, false))
	l.stack(sideOf(t, l, "cavalete_1", model.SideFront), a, c)

	wide := l.Add(testPile("wide", 1900, 5, model.GlassTempered, false))
	assert.False(t, r.formChain(wide, only(t, r, "cavalete_1"), false))
}

func TestFormChain_NeedsTwoMembers(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	placeAt(t, r, "cavalete_1", model.SideFront, testPile("a", 1000, 5, model.GlassTempered, false))
	wide := r.layout.Add(testPile("wide", 1900, 5, model.GlassTempered, false))

	assert.False(t, r.formChain(wide, only(t, r, "cavalete_1"), false))
}

func TestStackSimple_ChainFilter(t *testing.T) {
	r := newTestRun(model.DefaultSettings())
	l := r.layout
	root := placeAt(t, r, "cavalete_3", model.SideFront, testPile("root", 1500, 5, model.GlassTempered, false))
	l.setChainAnchor(sideOf(t, l, "cavalete_3", model.SideFront), root)
	comps := only(t, r, "cavalete_3")

	cand := l.Add(testPile("cand", 1000, 5, model.GlassTempered, false))
	assert.False(t, r.stackSimple(cand, comps, stackMode{sides: plainSides}))
	assert.True(t, r.stackSimple(cand, comps, stackMode{sides: chainSides}))
}

func TestForEachCombination(t *testing.T) {
	var got [][]int
	forEachCombination(4, 2, func(c []int) bool {
		got = append(got, append([]int(nil), c...))
		return true
	})
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)

	calls := 0
	forEachCombination(5, 3, func([]int) bool {
		calls++
		return calls < 2
	})
	assert.Equal(t, 2, calls, "iteration stops when fn returns false")

	forEachCombination(2, 3, func([]int) bool {
		t.Error("no combination of 3 out of 2")
		return true
	})
}
