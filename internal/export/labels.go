package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/LoadPlan/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each pile label's QR code.
type LabelInfo struct {
	PileID      string         `json:"pile"`
	ClientID    string         `json:"client"`
	ClientName  string         `json:"client_name"`
	Compartment string         `json:"compartment"`
	Side        model.SideName `json:"side"`
	Lado        model.Lado     `json:"lado"`
	BaseOf      string         `json:"base_of,omitempty"`
	Units       int            `json:"units"`
	Weight      float64        `json:"weight_kg"`
	Width       float64        `json:"width_mm"`
	LaidDown    bool           `json:"laid_down"`
	Special     bool           `json:"special"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per allocated pile,
// in loading order. The QR code encodes the pile's placement as JSON.
func ExportLabels(path string, result model.PlanResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no allocated piles to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, tr, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for pile %s: %w", label.PileID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.PileID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Client (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	client := info.ClientID
	if info.ClientName != "" && info.ClientName != info.ClientID {
		client += " " + info.ClientName
	}
	client = tr(client)
	if pdf.GetStringWidth(client) > textW {
		for len(client) > 0 && pdf.GetStringWidth(client+"...") > textW {
			client = client[:len(client)-1]
		}
		client += "..."
	}
	pdf.CellFormat(textW, 4.5, client, "", 1, "L", false, 0, "")

	// Placement
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	where := fmt.Sprintf("%s / %s / %s", info.Compartment, info.Side, info.Lado)
	pdf.CellFormat(textW, 3.5, tr(where), "", 1, "L", false, 0, "")

	// Contents
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	contents := fmt.Sprintf("%d un | %.1f kg | %.0f mm", info.Units, info.Weight, info.Width)
	pdf.CellFormat(textW, 3, contents, "", 1, "L", false, 0, "")

	var flags string
	switch {
	case info.BaseOf != "":
		flags = "Stacked on " + shortID(info.BaseOf)
	case info.LaidDown:
		flags = "Laid down"
	}
	if info.Special {
		if flags != "" {
			flags += " | "
		}
		flags += "Special"
	}
	if flags != "" {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, flags, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// shortID returns the first block of a pile id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// CollectLabelInfos extracts label information for every allocated pile,
// compartment by compartment and side by side.
func CollectLabelInfos(result model.PlanResult) []LabelInfo {
	var labels []LabelInfo
	for _, c := range result.Compartments {
		for _, s := range c.Sides {
			for _, p := range s.Piles {
				labels = append(labels, LabelInfo{
					PileID:      p.ID,
					ClientID:    p.ClientID,
					ClientName:  p.ClientName,
					Compartment: c.ID,
					Side:        s.Name,
					Lado:        p.Lado,
					BaseOf:      p.BaseOf,
					Units:       p.Count(),
					Weight:      p.Weight,
					Width:       p.Width,
					LaidDown:    p.LaidDown,
					Special:     p.Special,
				})
			}
		}
	}
	return labels
}
