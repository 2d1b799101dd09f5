package model

import (
	"math"
	"strings"
	"unicode"
)

// GlassType is the material tag of a product line.
type GlassType string

const (
	GlassPVB               GlassType = "PVB"
	GlassTempered          GlassType = "Temperado"
	GlassLaminated         GlassType = "Laminado Comum"
	GlassMould             GlassType = "Molde"
	GlassEco               GlassType = "Eco Glass"
	GlassLaminatedTempered GlassType = "Laminado Temperado"
	GlassTM                GlassType = "TM"
	GlassTM1               GlassType = "TM1"
	GlassTM2               GlassType = "TM2"
	GlassTM3               GlassType = "TM3"
	GlassTM4               GlassType = "TM4"
	GlassTM1Ref            GlassType = "TM1REF"
	GlassTM2Ref            GlassType = "TM2REF"
	GlassTM3Ref            GlassType = "TM3REF"
	GlassTM4Ref            GlassType = "TM4REF"
	GlassTM5Escd           GlassType = "TM5ESCD"
)

// IsSpecial reports whether panels of this type need segregated handling.
func (g GlassType) IsSpecial() bool {
	switch g {
	case GlassEco, GlassMould, GlassPVB, GlassLaminated, GlassLaminatedTempered:
		return true
	}
	return false
}

// AlwaysLaidDown reports whether panels of this type are transported laid
// down regardless of their dimensions.
func (g GlassType) AlwaysLaidDown() bool {
	switch g {
	case GlassTM, GlassTM1, GlassTM2, GlassTM3, GlassTM4,
		GlassTM1Ref, GlassTM2Ref, GlassTM3Ref, GlassTM4Ref, GlassTM5Escd:
		return true
	}
	return false
}

// phraseTypes are matched as substrings of the lowercased description,
// most specific first.
var phraseTypes = []GlassType{
	GlassLaminatedTempered,
	GlassLaminated,
	GlassEco,
	GlassPVB,
	GlassMould,
	GlassTempered,
}

// tokenTypes are matched against whole words of the description.
var tokenTypes = []GlassType{
	GlassTM5Escd,
	GlassTM1Ref, GlassTM2Ref, GlassTM3Ref, GlassTM4Ref,
	GlassTM1, GlassTM2, GlassTM3, GlassTM4,
	GlassTM,
}

// DetectGlassType derives the material type from a free-text product
// description. Unknown descriptions default to tempered glass.
func DetectGlassType(description string) GlassType {
	lower := strings.ToLower(description)
	for _, t := range phraseTypes {
		if strings.Contains(lower, strings.ToLower(string(t))) {
			return t
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, t := range tokenTypes {
		want := strings.ToLower(string(t))
		for _, w := range words {
			if w == want {
				return t
			}
		}
	}
	return GlassTempered
}

// ProductLine is one normalized input record: a quantity of identical panels
// ordered by one client.
type ProductLine struct {
	ClientID   string    `json:"client_id" validate:"required"`
	ClientName string    `json:"client_name"`
	Order      string    `json:"order"`
	Product    string    `json:"product"`
	Type       GlassType `json:"type" validate:"required"`
	Width      float64   `json:"width" validate:"gt=0"`   // mm
	Height     float64   `json:"height" validate:"gt=0"`  // mm
	Weight     float64   `json:"weight" validate:"gte=0"` // kg, whole line
	Quantity   int       `json:"quantity" validate:"gt=0"`
	Sequence   int       `json:"sequence" validate:"gte=0"` // delivery sequence
	City       string    `json:"city"`
}

// UnitWeight returns the weight of a single panel of the line.
func (l ProductLine) UnitWeight() float64 {
	if l.Quantity <= 0 {
		return 0
	}
	return l.Weight / float64(l.Quantity)
}

// ProductUnit is one physical panel.
// A standing unit has Width <= Height; a laid-down unit has Width >= Height.
type ProductUnit struct {
	ClientID    string    `json:"client_id"`
	ClientName  string    `json:"client_name"`
	Order       string    `json:"order"`
	Product     string    `json:"product"`
	Type        GlassType `json:"type"`
	Sequence    int       `json:"sequence"`
	City        string    `json:"city,omitempty"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Weight      float64   `json:"weight"`
	MustLayDown bool      `json:"must_lay_down"`
	Special     bool      `json:"special"`
}

// Orient sets the unit's orientation, swapping width and height so that the
// long side is horizontal when laid down and vertical when standing.
func (u *ProductUnit) Orient(layDown bool) {
	long := math.Max(u.Width, u.Height)
	short := math.Min(u.Width, u.Height)
	if layDown {
		u.Width, u.Height = long, short
	} else {
		u.Width, u.Height = short, long
	}
	u.MustLayDown = layDown
}

// SideName names a placement area within a compartment.
type SideName string

const (
	SideFront  SideName = "front"
	SideMiddle SideName = "middle"
	SideBack   SideName = "back"
)

// Lado is the vehicle side a pile ends up on.
type Lado string

const (
	LadoDriver Lado = "driver"
	LadoHelper Lado = "helper"
)

// Orientation of a compartment on the vehicle.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// Pile is a group of units moved and stacked as one.
type Pile struct {
	ID          string        `json:"id"`
	GroupKey    string        `json:"group_key"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"` // tallest unit
	Weight      float64       `json:"weight"` // sum of units
	Units       []ProductUnit `json:"units"`
	Special     bool          `json:"special"`
	LaidDown    bool          `json:"laid_down"`
	Protected   bool          `json:"protected"` // nothing may be stacked on it
	Allocated   bool          `json:"allocated"`
	Compartment string        `json:"compartment,omitempty"`
	Side        SideName      `json:"side,omitempty"`
	Lado        Lado          `json:"lado,omitempty"`
	Offset      float64       `json:"offset"`            // distance from the side's start, mm
	BaseOf      string        `json:"base_of,omitempty"` // id of the pile this one rests on
}

// Count returns the number of units in the pile.
func (p Pile) Count() int {
	return len(p.Units)
}

// Stacked reports whether the pile rests on another pile.
func (p Pile) Stacked() bool {
	return p.BaseOf != ""
}

// HasType reports whether any unit of the pile is of the given type.
func (p Pile) HasType(t GlassType) bool {
	for _, u := range p.Units {
		if u.Type == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the pile.
func (p Pile) Clone() Pile {
	c := p
	c.Units = append([]ProductUnit(nil), p.Units...)
	return c
}

// Side is a capacity-bounded placement area within a compartment.
// Occupied + Remaining always equals Capacity.
type Side struct {
	Name          SideName `json:"name"`
	Capacity      float64  `json:"capacity"`
	Occupied      float64  `json:"occupied"`
	Remaining     float64  `json:"remaining"`
	Weight        float64  `json:"weight"`
	Piles         []Pile   `json:"piles"` // placement order, base and stacked piles
	ChainAnchorID string   `json:"chain_anchor_id,omitempty"`
}

// Compartment is a physical carrier section of the vehicle.
type Compartment struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	Orientation Orientation `json:"orientation"`
	Height      float64     `json:"height"`
	Sides       []Side      `json:"sides"`
	TotalWeight float64     `json:"total_weight"`
}

// Side returns the named side of the compartment.
func (c *Compartment) Side(name SideName) (*Side, bool) {
	for i := range c.Sides {
		if c.Sides[i].Name == name {
			return &c.Sides[i], true
		}
	}
	return nil, false
}

// Position is a requested placement along a compartment.
type Position string

const (
	PositionFront Position = "front"
	PositionBack  Position = "back"
	PositionEnd   Position = "end"
)

// SideName returns the compartment side serving the position.
func (p Position) SideName() SideName {
	if p == PositionFront {
		return SideFront
	}
	return SideBack
}

// ClientPreference is a per-client override of the generic placement rules.
type ClientPreference struct {
	Lado         Lado       `json:"lado,omitempty" yaml:"lado,omitempty" validate:"omitempty,oneof=driver helper"`
	Compartments []string   `json:"compartments,omitempty" yaml:"compartments,omitempty"`
	Positions    []Position `json:"positions,omitempty" yaml:"positions,omitempty" validate:"dive,oneof=front back end"`
	LayDown      bool       `json:"lay_down,omitempty" yaml:"lay_down,omitempty"`
}

// PlanResult is the outcome of one planning run.
type PlanResult struct {
	Compartments []Compartment `json:"compartments"`
	Allocated    []Pile        `json:"allocated"`
	Unallocated  []Pile        `json:"unallocated"`
	Summary      Summary       `json:"summary"`
}

// Summary holds counts derived from a plan.
type Summary struct {
	Clients             int                      `json:"clients"`
	TotalProducts       int                      `json:"total_products"`
	NormalProducts      int                      `json:"normal_products"`
	SpecialProducts     int                      `json:"special_products"`
	AllocatedProducts   int                      `json:"allocated_products"`
	UnallocatedProducts int                      `json:"unallocated_products"`
	AllocatedPiles      int                      `json:"allocated_piles"`
	UnallocatedPiles    int                      `json:"unallocated_piles"`
	Utilization         []CompartmentUtilization `json:"utilization"`
}

// FindPile returns the allocated or unallocated pile with the given id.
func (r PlanResult) FindPile(id string) (Pile, bool) {
	for _, p := range r.Allocated {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range r.Unallocated {
		if p.ID == id {
			return p, true
		}
	}
	return Pile{}, false
}
