package model

// GroupKey selects how product units are grouped before piles are built.
type GroupKey string

const (
	GroupByClient   GroupKey = "client"   // One group per client
	GroupBySequence GroupKey = "sequence" // One group per delivery sequence number
)

// Ceilings are the maximum unit counts of a stack chain, per stacking context.
type Ceilings struct {
	General       int `json:"general" yaml:"general" validate:"gt=0"`               // Simple stacking and horizontal multi-pile chains
	Salvage       int `json:"salvage" yaml:"salvage" validate:"gt=0"`               // Leftover pass
	Middle        int `json:"middle" yaml:"middle" validate:"gt=0"`                 // Total units on a middle side
	VerticalChain int `json:"vertical_chain" yaml:"vertical_chain" validate:"gt=0"` // Multi-pile chains on a vertical compartment
	SpecialPVB    int `json:"special_pvb" yaml:"special_pvb" validate:"gt=0"`       // Special piles stacked on PVB piles
}

// SideSpec is the fixed definition of a compartment side.
type SideSpec struct {
	Name     SideName `json:"name" yaml:"name" validate:"oneof=front middle back"`
	Capacity float64  `json:"capacity" yaml:"capacity" validate:"gt=0"` // mm
}

// CompartmentSpec is the fixed definition of a compartment.
type CompartmentSpec struct {
	ID          string      `json:"id" yaml:"id" validate:"required"`
	Kind        string      `json:"kind" yaml:"kind"`
	Orientation Orientation `json:"orientation" yaml:"orientation" validate:"oneof=horizontal vertical"`
	Height      float64     `json:"height" yaml:"height"`
	Sides       []SideSpec  `json:"sides" yaml:"sides" validate:"min=1,dive"`
}

// PlanSettings holds every tunable of the pile builder and placement cascade.
type PlanSettings struct {
	GroupBy GroupKey `json:"group_by" yaml:"group_by" validate:"oneof=client sequence"`

	// Pile building
	MaxUnitsPerPile       int     `json:"max_units_per_pile" yaml:"max_units_per_pile" validate:"gt=0"`
	SpecialSplitThreshold int     `json:"special_split_threshold" yaml:"special_split_threshold" validate:"gt=0"`
	LayDownLongest        float64 `json:"lay_down_longest" yaml:"lay_down_longest" validate:"gt=0"`   // Longest side above this lies down
	LayDownShortest       float64 `json:"lay_down_shortest" yaml:"lay_down_shortest" validate:"gt=0"` // Shortest side above this lies down

	// Placement
	DriverWeightShare float64  `json:"driver_weight_share" yaml:"driver_weight_share" validate:"gt=0,lte=1"`
	BalanceTolerance  float64  `json:"balance_tolerance" yaml:"balance_tolerance" validate:"gte=0,lte=1"`
	MaxChainMembers   int      `json:"max_chain_members" yaml:"max_chain_members" validate:"gte=2"`
	Ceilings          Ceilings `json:"ceilings" yaml:"ceilings"`

	// Vehicle layout, in output order. PlacementOrder lists compartment ids in
	// the order they are tried.
	Compartments   []CompartmentSpec `json:"compartments" yaml:"compartments" validate:"min=1,dive"`
	PlacementOrder []string          `json:"placement_order" yaml:"placement_order" validate:"min=1"`
}

// DefaultSettings returns the production configuration of the three-cradle
// truck with its rear rack.
func DefaultSettings() PlanSettings {
	horizontal := func(id string) CompartmentSpec {
		return CompartmentSpec{
			ID:          id,
			Kind:        "cavalete",
			Orientation: OrientationHorizontal,
			Height:      2450,
			Sides: []SideSpec{
				{Name: SideFront, Capacity: 2200},
				{Name: SideMiddle, Capacity: 2200},
				{Name: SideBack, Capacity: 2200},
			},
		}
	}
	return PlanSettings{
		GroupBy:               GroupByClient,
		MaxUnitsPerPile:       30,
		SpecialSplitThreshold: 25,
		LayDownLongest:        2450,
		LayDownShortest:       1200,
		DriverWeightShare:     0.6,
		BalanceTolerance:      0.2,
		MaxChainMembers:       10,
		Ceilings: Ceilings{
			General:       32,
			Salvage:       34,
			Middle:        12,
			VerticalChain: 60,
			SpecialPVB:    25,
		},
		Compartments: []CompartmentSpec{
			horizontal("cavalete_1"),
			horizontal("cavalete_2"),
			{
				ID:          "cavalete_3",
				Kind:        "cavalete",
				Orientation: OrientationVertical,
				Height:      2450,
				Sides: []SideSpec{
					{Name: SideFront, Capacity: 3800},
					{Name: SideBack, Capacity: 3800},
				},
			},
			{
				ID:          "malhal",
				Kind:        "malhal",
				Orientation: OrientationHorizontal,
				Height:      2450,
				Sides: []SideSpec{
					{Name: SideFront, Capacity: 2200},
					{Name: SideMiddle, Capacity: 2200},
				},
			},
		},
		PlacementOrder: []string{"cavalete_3", "cavalete_2", "cavalete_1", "malhal"},
	}
}

// CompartmentSpec returns the definition of the compartment with the given id.
func (s PlanSettings) CompartmentSpec(id string) (CompartmentSpec, bool) {
	for _, c := range s.Compartments {
		if c.ID == id {
			return c, true
		}
	}
	return CompartmentSpec{}, false
}
