package export

import (
	"fmt"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layers.
const (
	LayerSides   = "SIDES"
	LayerPiles   = "PILES"
	LayerStacked = "STACKED"
	LayerText    = "TEXT"
)

// Drawing scale: one unit of a pile is drawn this many millimetres tall.
const (
	dxfUnitHeight = 20.0
	dxfSideGap    = 400.0
	dxfTextHeight = 80.0
)

// ExportDXF writes the layout as a DXF drawing in millimetres. Each side is
// an outlined strip as long as its capacity; floor piles are drawn at their
// offsets and stacked piles on top of their bases, every pile as tall as
// its unit count.
func ExportDXF(path string, result model.PlanResult) error {
	if len(result.Compartments) == 0 {
		return fmt.Errorf("no compartments to export")
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerSides, color.White},
		{LayerPiles, color.Green},
		{LayerStacked, color.Cyan},
		{LayerText, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	y := 0.0
	for _, c := range result.Compartments {
		for _, s := range c.Sides {
			height := sideDrawHeight(s)
			if err := drawSide(d, c, s, y, height); err != nil {
				return fmt.Errorf("failed to draw %s/%s: %w", c.ID, s.Name, err)
			}
			y -= height + dxfSideGap
		}
	}

	return d.SaveAs(path)
}

// sideDrawHeight is the height of the tallest stack on the side plus room
// for the caption.
func sideDrawHeight(s model.Side) float64 {
	tallest := 0
	for _, st := range model.BuildStackView(s) {
		if st.Units() > tallest {
			tallest = st.Units()
		}
	}
	return float64(tallest)*dxfUnitHeight + 2*dxfTextHeight
}

func drawSide(d *drawing.Drawing, c model.Compartment, s model.Side, floorY, height float64) error {
	if err := d.ChangeLayer(LayerSides); err != nil {
		return err
	}
	if err := rect(d, 0, floorY, s.Capacity, height); err != nil {
		return err
	}

	if err := d.ChangeLayer(LayerText); err != nil {
		return err
	}
	caption := fmt.Sprintf("%s %s %.0f/%.0f", c.ID, s.Name, s.Occupied, s.Capacity)
	if _, err := d.Text(caption, 0, floorY+height-dxfTextHeight, 0, dxfTextHeight); err != nil {
		return err
	}

	for _, st := range model.BuildStackView(s) {
		y := floorY
		for i, p := range append([]model.Pile{st.Base}, st.Above...) {
			layer := LayerPiles
			if i > 0 {
				layer = LayerStacked
			}
			if err := d.ChangeLayer(layer); err != nil {
				return err
			}
			h := float64(p.Count()) * dxfUnitHeight
			if err := rect(d, st.Base.Offset, y, p.Width, h); err != nil {
				return err
			}
			y += h
		}
	}
	return nil
}

// rect draws an axis-aligned rectangle as four lines.
func rect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}
