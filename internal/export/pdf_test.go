package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/piwi3910/LoadPlan/internal/model"
)

// buildTestLines creates a realistic delivery: a large client that needs two
// piles, a laid-down TM order, a special PVB order and a panel too wide for
// any compartment.
func buildTestLines() []model.ProductLine {
	return []model.ProductLine{
		{ClientID: "9001", ClientName: "Vidraçaria Central", Product: "Temperado 8mm", Type: model.GlassTempered,
			Width: 800, Height: 2000, Weight: 900, Quantity: 45, Sequence: 1},
		{ClientID: "9002", ClientName: "Box & Cia", Product: "Chapa TM2", Type: model.GlassTM2,
			Width: 1500, Height: 1000, Weight: 120, Quantity: 6, Sequence: 2},
		{ClientID: "9003", ClientName: "Obra Norte", Product: "Laminado PVB 8mm", Type: model.GlassPVB,
			Width: 900, Height: 1800, Weight: 200, Quantity: 8, Sequence: 3},
		{ClientID: "9004", ClientName: "Fachadas Sul", Product: "Temperado 10mm", Type: model.GlassTempered,
			Width: 4000, Height: 2000, Weight: 150, Quantity: 2, Sequence: 4},
	}
}

func buildTestPlan() (model.PlanResult, model.PlanSettings) {
	settings := model.DefaultSettings()
	return engine.New(settings).Plan(buildTestLines()), settings
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_output.pdf")

	result, settings := buildTestPlan()

	err := ExportPDF(path, result, settings)
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
	// One page per compartment plus the summary
	if info.Size() < 1000 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	err := ExportPDF(path, model.PlanResult{}, model.DefaultSettings())
	if err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written for an empty result")
	}
}

func TestExportPDF_EmptyVehicle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no_piles.pdf")

	settings := model.DefaultSettings()
	result := engine.New(settings).Plan(nil)

	if err := ExportPDF(path, result, settings); err != nil {
		t.Fatalf("ExportPDF returned error for an empty vehicle: %v", err)
	}
}

func TestExportPDF_WithUnallocatedPiles(t *testing.T) {
	result, settings := buildTestPlan()
	if len(result.Unallocated) == 0 {
		t.Fatal("test plan should leave the oversized panels unallocated")
	}

	path := filepath.Join(t.TempDir(), "unallocated.pdf")
	if err := ExportPDF(path, result, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_ManyUnallocated(t *testing.T) {
	settings := model.DefaultSettings()
	var lines []model.ProductLine
	for i := 0; i < 60; i++ {
		lines = append(lines, model.ProductLine{
			ClientID: fmt.Sprintf("%d", 7000+i), Product: "Temperado", Type: model.GlassTempered,
			Width: 5000, Height: 2500, Weight: 50, Quantity: 1, Sequence: i,
		})
	}
	result := engine.New(settings).Plan(lines)

	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportPDF(path, result, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestWritePDF(t *testing.T) {
	result, settings := buildTestPlan()

	var buf bytes.Buffer
	if err := WritePDF(&buf, result, settings); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestClientColors(t *testing.T) {
	result, _ := buildTestPlan()
	colors := clientColors(result)

	if len(colors) != 4 {
		t.Fatalf("expected 4 client colors, got %d", len(colors))
	}
	if colors["9001"] != pileColors[0] || colors["9004"] != pileColors[3] {
		t.Error("colors should follow client id order")
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 25, 7},
		{10, 15, 6},
	}
	for _, tt := range tests {
		got := labelFontSize(tt.w, tt.h)
		if got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}
