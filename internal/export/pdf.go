// Package export writes loading plans to files: a printable loading report,
// QR-coded pile labels, a DXF layout drawing and JSON.
package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/LoadPlan/internal/model"
)

// pileColor represents an RGB color for a client's piles.
type pileColor struct {
	R, G, B int
}

// pileColors is cycled over the clients of a plan.
var pileColors = []pileColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	sideGap      = 6.0
)

// ExportPDF generates the loading report. Each compartment is drawn on its
// own page, side by side, with stacked piles drawn above their bases,
// followed by a summary page.
func ExportPDF(path string, result model.PlanResult, settings model.PlanSettings) error {
	pdf, err := buildReport(result, settings)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WritePDF writes the loading report to w.
func WritePDF(w io.Writer, result model.PlanResult, settings model.PlanSettings) error {
	pdf, err := buildReport(result, settings)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildReport(result model.PlanResult, settings model.PlanSettings) (*fpdf.Fpdf, error) {
	if len(result.Compartments) == 0 {
		return nil, fmt.Errorf("no compartments to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	colors := clientColors(result)

	for _, c := range result.Compartments {
		pdf.AddPage()
		renderCompartmentPage(pdf, tr, c, colors)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, tr, result, settings)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return pdf, nil
}

// clientColors assigns a color to every client in id order.
func clientColors(result model.PlanResult) map[string]pileColor {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range append(append([]model.Pile(nil), result.Allocated...), result.Unallocated...) {
		if !seen[p.ClientID] {
			seen[p.ClientID] = true
			ids = append(ids, p.ClientID)
		}
	}
	sort.Strings(ids)
	colors := make(map[string]pileColor, len(ids))
	for i, id := range ids {
		colors[id] = pileColors[i%len(pileColors)]
	}
	return colors
}

// renderCompartmentPage draws one compartment. Every side is a horizontal
// band scaled to its capacity; the height of a pile is proportional to its
// unit count.
func renderCompartmentPage(pdf *fpdf.Fpdf, tr func(string) string, c model.Compartment, colors map[string]pileColor) {
	var units, piles int
	var occupied, capacity float64
	tallest := 1
	for _, s := range c.Sides {
		occupied += s.Occupied
		capacity += s.Capacity
		piles += len(s.Piles)
		for _, st := range model.BuildStackView(s) {
			units += st.Units()
			if st.Units() > tallest {
				tallest = st.Units()
			}
		}
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Compartment %s (%s, %.0f mm high)", c.ID, c.Orientation, c.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, tr(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	pct := 0.0
	if capacity > 0 {
		pct = occupied / capacity * 100
	}
	stats := fmt.Sprintf("Piles: %d | Units: %d | Weight: %.1f kg | Floor used: %.0f / %.0f mm (%.1f%%)",
		piles, units, c.TotalWeight, occupied, capacity, pct)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	if len(c.Sides) == 0 {
		return
	}

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	bandHeight := (drawHeight - sideGap*float64(len(c.Sides)-1)) / float64(len(c.Sides))

	maxCapacity := 0.0
	for _, s := range c.Sides {
		maxCapacity = math.Max(maxCapacity, s.Capacity)
	}
	scale := drawWidth / maxCapacity
	unitHeight := (bandHeight - 6) / float64(tallest)

	clients := make(map[string]bool)
	for i, s := range c.Sides {
		top := drawAreaTop + float64(i)*(bandHeight+sideGap)
		renderSide(pdf, tr, s, marginLeft, top, scale, bandHeight, unitHeight, colors)
		for _, p := range s.Piles {
			clients[p.ClientID] = true
		}
	}

	drawClientLegend(pdf, tr, clients, colors, pageHeight-marginBottom-legendHeight+4)
}

// renderSide draws a side band with its piles, bases on the floor line and
// stacked piles on top of them.
func renderSide(pdf *fpdf.Fpdf, tr func(string) string, s model.Side, x, top, scale, bandHeight, unitHeight float64, colors map[string]pileColor) {
	bandW := s.Capacity * scale
	floorY := top + bandHeight

	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x, top, bandW, bandHeight, "FD")

	// Half-way mark between driver and helper.
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{1.5, 1.5}, 0)
	pdf.Line(x+bandW/2, top, x+bandW/2, floorY)
	pdf.SetDashPattern([]float64{}, 0)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetXY(x+1, top+1)
	label := fmt.Sprintf("%s  %.0f / %.0f mm  %.1f kg", s.Name, s.Occupied, s.Capacity, s.Weight)
	if s.ChainAnchorID != "" {
		label += "  chain"
	}
	pdf.CellFormat(bandW-2, 4, tr(label), "", 0, "L", false, 0, "")

	for _, st := range model.BuildStackView(s) {
		px := x + st.Base.Offset*scale
		y := floorY
		for _, p := range append([]model.Pile{st.Base}, st.Above...) {
			pw := p.Width * scale
			ph := float64(p.Count()) * unitHeight
			y -= ph
			drawPile(pdf, tr, p, px, y, pw, ph, colors[p.ClientID])
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawPile renders one pile rectangle with its client and unit count.
func drawPile(pdf *fpdf.Fpdf, tr func(string) string, p model.Pile, x, y, w, h float64, col pileColor) {
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, w, h, "FD")
	if p.LaidDown {
		pdf.SetLineWidth(0.15)
		pdf.Line(x, y, x+w, y+h)
	}
	if p.Special {
		pdf.SetLineWidth(0.6)
		pdf.Rect(x+0.5, y+0.5, w-1, h-1, "D")
	}

	if w > 12 && h > 4 {
		pdf.SetFont("Helvetica", "", labelFontSize(w, h))
		pdf.SetTextColor(0, 0, 0)
		text := fmt.Sprintf("%s x%d", p.ClientID, p.Count())
		tw := pdf.GetStringWidth(text)
		if tw < w-1 {
			pdf.SetXY(x+(w-tw)/2, y+h/2-2)
			pdf.CellFormat(tw, 4, tr(text), "", 0, "C", false, 0, "")
		}
	}
}

// drawClientLegend renders a color swatch per client shown on the page.
func drawClientLegend(pdf *fpdf.Fpdf, tr func(string) string, clients map[string]bool, colors map[string]pileColor, startY float64) {
	if len(clients) == 0 {
		return
	}
	ids := make([]string, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(18, 4, "Clients:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 20
	maxX := pageWidth - marginRight
	for _, id := range ids {
		col := colors[id]
		labelW := pdf.GetStringWidth(id) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, tr(id), "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, tr func(string) string, result model.PlanResult, settings model.PlanSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Loading Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	sum := result.Summary

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Clients", fmt.Sprintf("%d", sum.Clients)},
		{"Products", fmt.Sprintf("%d (%d normal, %d special)", sum.TotalProducts, sum.NormalProducts, sum.SpecialProducts)},
		{"Allocated", fmt.Sprintf("%d products in %d piles", sum.AllocatedProducts, sum.AllocatedPiles)},
		{"Unallocated", fmt.Sprintf("%d products in %d piles", sum.UnallocatedProducts, sum.UnallocatedPiles)},
		{"Floor Utilization", fmt.Sprintf("%.1f%%", result.TotalUtilization())},
		{"Total Weight", fmt.Sprintf("%.1f kg", result.TotalWeight())},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Compartment Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{50, 30, 30, 55, 35, 40}
	headers := []string{"Compartment", "Piles", "Units", "Floor Used / Capacity", "Utilization", "Weight"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, u := range sum.Utilization {
		xPos = marginLeft
		rowData := []string{
			u.ID,
			fmt.Sprintf("%d", u.Piles),
			fmt.Sprintf("%d", u.Units),
			fmt.Sprintf("%.0f / %.0f mm", u.Occupied, u.Capacity),
			fmt.Sprintf("%.1f%%", u.Percent),
			fmt.Sprintf("%.1f kg", u.Weight),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, tr(cell), "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.Unallocated) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unallocated Piles", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, p := range result.Unallocated {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s %s: %d units, %.0f mm wide, %.1f kg", p.ClientID, p.ClientName, p.Count(), p.Width, p.Weight)
			if p.LaidDown {
				text += ", laid down"
			}
			pdf.CellFormat(200, 5, tr(text), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	if y > pageHeight-marginBottom-40 {
		pdf.AddPage()
		y = marginTop
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Grouping", string(settings.GroupBy)},
		{"Units per Pile", fmt.Sprintf("%d", settings.MaxUnitsPerPile)},
		{"Stack Ceiling", fmt.Sprintf("%d (salvage %d, vertical chain %d)", settings.Ceilings.General, settings.Ceilings.Salvage, settings.Ceilings.VerticalChain)},
		{"Middle Ceiling", fmt.Sprintf("%d", settings.Ceilings.Middle)},
		{"Special Split", fmt.Sprintf("%d", settings.SpecialSplitThreshold)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by LoadPlan", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
