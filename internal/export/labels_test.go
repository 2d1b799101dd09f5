package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/LoadPlan/internal/engine"
	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	result, _ := buildTestPlan()
	err := ExportLabels(path, result)
	if err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_NoAllocatedPiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	result := engine.New(model.DefaultSettings()).Plan(nil)
	if err := ExportLabels(path, result); err == nil {
		t.Fatal("expected error when no pile is allocated, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	result, _ := buildTestPlan()
	labels := CollectLabelInfos(result)

	require.Len(t, labels, len(result.Allocated))

	seen := make(map[string]bool)
	for _, l := range labels {
		assert.False(t, seen[l.PileID], "pile %s labelled twice", l.PileID)
		seen[l.PileID] = true

		p, ok := result.FindPile(l.PileID)
		require.True(t, ok)
		assert.True(t, p.Allocated)
		assert.Equal(t, p.Compartment, l.Compartment)
		assert.Equal(t, p.Side, l.Side)
		assert.Equal(t, p.Count(), l.Units)
		assert.Equal(t, p.BaseOf, l.BaseOf)
	}

	// Labels follow the compartment order of the plan.
	order := make(map[string]int)
	for i, c := range result.Compartments {
		order[c.ID] = i
	}
	for i := 1; i < len(labels); i++ {
		assert.LessOrEqual(t, order[labels[i-1].Compartment], order[labels[i].Compartment])
	}
}

func TestCollectLabelInfos_Unallocated(t *testing.T) {
	result, _ := buildTestPlan()
	for _, l := range CollectLabelInfos(result) {
		if l.ClientID == "9004" {
			t.Errorf("unallocated client 9004 should have no label")
		}
	}
}

func TestLabelInfo_JSON(t *testing.T) {
	info := LabelInfo{
		PileID:      "a1b2c3d4-0000",
		ClientID:    "6765",
		ClientName:  "Vidros Sul",
		Compartment: "cavalete_3",
		Side:        model.SideFront,
		Lado:        model.LadoDriver,
		Units:       22,
		Weight:      440,
		Width:       800,
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "cavalete_3", fields["compartment"])
	assert.Equal(t, "driver", fields["lado"])
	assert.Equal(t, 22.0, fields["units"])
	_, hasBase := fields["base_of"]
	assert.False(t, hasBase, "floor piles carry no base")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "a1b2c3d4", shortID("a1b2c3d4-e5f6"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestExportLabels_ManyPiles(t *testing.T) {
	var lines []model.ProductLine
	for i := 0; i < 12; i++ {
		lines = append(lines, model.ProductLine{
			ClientID: string(rune('A' + i)), ClientName: "Cliente", Product: "Temperado",
			Type: model.GlassTempered, Width: 400, Height: 600, Weight: 30, Quantity: 3, Sequence: i,
		})
	}
	result := engine.New(model.DefaultSettings()).Plan(lines)

	path := filepath.Join(t.TempDir(), "many_labels.pdf")
	if err := ExportLabels(path, result); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}
