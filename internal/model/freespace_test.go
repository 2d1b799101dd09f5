package model

import (
	"testing"
)

func TestDetectFreeSpansEmptyCompartment(t *testing.T) {
	c := Compartment{
		ID: "cavalete_3",
		Sides: []Side{
			{Name: SideFront, Capacity: 3800},
			{Name: SideBack, Capacity: 3800},
		},
	}
	spans := DetectFreeSpans(c)
	if len(spans) != 2 {
		t.Fatalf("expected 2 free spans for an empty compartment, got %d", len(spans))
	}
	for _, s := range spans {
		if s.Offset != 0 || s.Width != 3800 {
			t.Errorf("expected the whole side free, got offset %.0f width %.0f", s.Offset, s.Width)
		}
	}
}

func TestDetectFreeSpansAfterLastFloorPile(t *testing.T) {
	c := Compartment{
		ID: "cavalete_1",
		Sides: []Side{
			{Name: SideFront, Capacity: 2200, Piles: []Pile{
				{ID: "a", Offset: 0, Width: 800},
				{ID: "b", Offset: 800, Width: 600},
				{ID: "c", Offset: 0, Width: 1900, BaseOf: "a"},
			}},
			{Name: SideBack, Capacity: 2200, Piles: []Pile{
				{ID: "d", Offset: 0, Width: 2000},
			}},
		},
	}
	spans := DetectFreeSpans(c)
	if len(spans) != 1 {
		t.Fatalf("expected 1 free span, got %d: %+v", len(spans), spans)
	}
	s := spans[0]
	if s.Side != SideFront || s.Offset != 1400 || s.Width != 800 {
		t.Errorf("expected front span at 1400 of 800mm, got %s at %.0f of %.0fmm", s.Side, s.Offset, s.Width)
	}
}

func TestDetectFreeSpansWidestFirst(t *testing.T) {
	c := Compartment{
		ID: "malhal",
		Sides: []Side{
			{Name: SideFront, Capacity: 2200, Piles: []Pile{{ID: "a", Width: 1500}}},
			{Name: SideMiddle, Capacity: 2200, Piles: []Pile{{ID: "b", Width: 500}}},
		},
	}
	spans := DetectFreeSpans(c)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Side != SideMiddle || spans[1].Side != SideFront {
		t.Errorf("expected the middle side first, got %s then %s", spans[0].Side, spans[1].Side)
	}
}

func TestDetectAllFreeSpansAndTotal(t *testing.T) {
	result := PlanResult{Compartments: []Compartment{
		{ID: "cavalete_3", Sides: []Side{{Name: SideFront, Capacity: 3800, Piles: []Pile{{ID: "a", Width: 3600}}}}},
		{ID: "malhal", Sides: []Side{{Name: SideFront, Capacity: 2200}}},
	}}
	spans := DetectAllFreeSpans(result)
	if len(spans) != 1 {
		t.Fatalf("a 200mm remnant is not reported, expected 1 span, got %d", len(spans))
	}
	if spans[0].Compartment != "malhal" {
		t.Errorf("expected the malhal span, got %s", spans[0].Compartment)
	}
	if total := TotalFreeWidth(spans); total != 2200 {
		t.Errorf("expected 2200mm free, got %.0f", total)
	}
}
