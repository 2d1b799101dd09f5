package engine

import (
	"testing"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeUnits returns n oriented units of the given panel.
func makeUnits(n int, w, h, weight float64, typ model.GlassType) []model.ProductUnit {
	s := model.DefaultSettings()
	out := make([]model.ProductUnit, n)
	for i := range out {
		out[i] = model.ProductUnit{
			ClientID: "1",
			Type:     typ,
			Width:    w,
			Height:   h,
			Weight:   weight,
			Special:  typ.IsSpecial(),
		}
		out[i].Orient(MustLayDown(w, h, typ, s))
	}
	return out
}

func TestBuild_SplitsEvenly(t *testing.T) {
	b := NewPileBuilder(model.DefaultSettings())

	piles := b.Build("1", makeUnits(45, 800, 2000, 20, model.GlassTempered), false)

	require.Len(t, piles, 2)
	assert.Equal(t, 23, piles[0].Count())
	assert.Equal(t, 22, piles[1].Count())
	for _, p := range piles {
		assert.Equal(t, 800.0, p.Width)
		assert.Equal(t, 2000.0, p.Height)
		assert.False(t, p.Special)
		assert.False(t, p.LaidDown)
		assert.Equal(t, "1", p.GroupKey)
	}
	assert.Equal(t, 460.0, piles[0].Weight)
}

func TestBuild_SeparatesOrientationAndSpecial(t *testing.T) {
	b := NewPileBuilder(model.DefaultSettings())

	var in []model.ProductUnit
	in = append(in, makeUnits(3, 3000, 1000, 30, model.GlassTempered)...)
	in = append(in, makeUnits(5, 800, 2000, 20, model.GlassTempered)...)
	in = append(in, makeUnits(2, 700, 1500, 15, model.GlassPVB)...)

	piles := b.Build("1", in, false)
	require.Len(t, piles, 3)

	assert.False(t, piles[0].LaidDown, "standing normal piles come first")
	assert.Equal(t, 5, piles[0].Count())

	assert.True(t, piles[1].LaidDown)
	assert.Equal(t, 3, piles[1].Count())
	assert.Equal(t, 3000.0, piles[1].Width)

	assert.True(t, piles[2].Special)
	assert.False(t, piles[2].Protected, "standing special piles accept stacking")
}

func TestBuild_WidthFromWidestUnit(t *testing.T) {
	b := NewPileBuilder(model.DefaultSettings())

	var in []model.ProductUnit
	in = append(in, makeUnits(1, 700, 2000, 10, model.GlassTempered)...)
	in = append(in, makeUnits(1, 900, 2000, 10, model.GlassTempered)...)
	in = append(in, makeUnits(1, 800, 2000, 10, model.GlassTempered)...)

	piles := b.Build("1", in, false)
	require.Len(t, piles, 1)
	assert.Equal(t, 900.0, piles[0].Width)
	assert.Equal(t, 900.0, piles[0].Units[0].Width, "units are sorted widest first")
}

func TestBuild_SpecialThreshold(t *testing.T) {
	b := NewPileBuilder(model.DefaultSettings())

	piles := b.Build("1", makeUnits(26, 700, 1500, 15, model.GlassLaminated), false)
	require.Len(t, piles, 2)
	assert.Equal(t, 13, piles[0].Count())
	assert.Equal(t, 13, piles[1].Count())

	piles = b.Build("2", makeUnits(25, 700, 1500, 15, model.GlassLaminated), false)
	require.Len(t, piles, 1, "the threshold itself stays in one pile")
	assert.Equal(t, 25, piles[0].Count())
}

func TestBuild_OneLaidSpecialLaysAllDown(t *testing.T) {
	b := NewPileBuilder(model.DefaultSettings())

	var in []model.ProductUnit
	in = append(in, makeUnits(2, 700, 1500, 15, model.GlassPVB)...)
	in = append(in, makeUnits(1, 2600, 1000, 40, model.GlassPVB)...)

	piles := b.Build("1", in, false)
	require.Len(t, piles, 1)
	p := piles[0]
	assert.True(t, p.LaidDown)
	assert.True(t, p.Protected)
	assert.Equal(t, 2600.0, p.Width)
	for _, u := range p.Units {
		assert.True(t, u.MustLayDown)
		assert.GreaterOrEqual(t, u.Width, u.Height)
	}
}

func TestBuild_ForcedLayDown(t *testing.T) {
	b := NewPileBuilder(model.DefaultSettings())

	piles := b.Build("1", makeUnits(5, 800, 2000, 20, model.GlassTempered), true)
	require.Len(t, piles, 1)
	assert.True(t, piles[0].LaidDown)
	assert.Equal(t, 2000.0, piles[0].Width)
	assert.Equal(t, 800.0, piles[0].Height)
}

func TestBuild_DeterministicIDs(t *testing.T) {
	in := makeUnits(45, 800, 2000, 20, model.GlassTempered)

	a := NewPileBuilder(model.DefaultSettings()).Build("1", in, false)
	b := NewPileBuilder(model.DefaultSettings()).Build("1", in, false)

	require.Len(t, a, 2)
	require.Len(t, b, 2)
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.Equal(t, a[1].ID, b[1].ID)
	assert.NotEqual(t, a[0].ID, a[1].ID)
}

func TestChunkEvenly(t *testing.T) {
	tests := []struct {
		n, max int
		want   []int
	}{
		{0, 30, nil},
		{30, 30, []int{30}},
		{31, 30, []int{16, 15}},
		{61, 30, []int{21, 20, 20}},
		{50, 25, []int{25, 25}},
	}
	for _, tt := range tests {
		chunks := chunkEvenly(make([]model.ProductUnit, tt.n), tt.max)
		var sizes []int
		for _, c := range chunks {
			sizes = append(sizes, len(c))
		}
		assert.Equal(t, tt.want, sizes, "n=%d max=%d", tt.n, tt.max)
	}
}
